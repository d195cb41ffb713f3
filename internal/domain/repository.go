package domain

import "context"

// VectorSearchResult is a chunk found via similarity search, score normalized
// to [0,1] (higher is better).
type VectorSearchResult struct {
	Chunk Chunk
	Score float64
}

// ChunkRepository provides read access to the ingested chunk corpus.
type ChunkRepository interface {
	// Search performs a similarity search over chunk embeddings.
	Search(ctx context.Context, queryVector []float32, limit int) ([]VectorSearchResult, error)

	// SearchFiltered restricts the search to chunks whose business tags
	// match the non-empty fields of the filter.
	SearchFiltered(ctx context.Context, queryVector []float32, filter TagFilter, limit int) ([]VectorSearchResult, error)

	// ListAll streams the full corpus in (document, chunk_index) order.
	// It is the source of truth for keyword index rebuilds.
	ListAll(ctx context.Context) ([]Chunk, error)

	// Count returns the corpus size.
	Count(ctx context.Context) (int, error)
}

// TagFilter narrows retrieval by extracted business-context tags. Zero-value
// fields are ignored.
type TagFilter struct {
	FiscalPeriod string
	Company      string
	Department   string
}

// IsZero reports whether no filter field is set.
func (f TagFilter) IsZero() bool {
	return f.FiscalPeriod == "" && f.Company == "" && f.Department == ""
}

// FactRepository executes validated read-only statements against the
// structured financial facts table.
type FactRepository interface {
	// QueryFacts runs an already-validated SELECT and maps rows to FactRow.
	QueryFacts(ctx context.Context, stmt string) ([]FactRow, error)

	// Schema returns the facts table DDL description handed to the SQL
	// generator prompt.
	Schema() string
}
