package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Chunk is the immutable unit of retrievable text. Chunks are produced by the
// ingestion pipeline and are read-only to the retrieval core.
type Chunk struct {
	ID         uuid.UUID
	Content    string
	Document   string
	PageNumber *int // nil for documents without page/sheet numbering
	ChunkIndex int  // sequential position within the source document
	WordCount  int
	Embedding  pgvector.Vector

	// Business-context tags extracted at ingestion time. Empty when the
	// extractor found nothing; usable as retrieval filters.
	FiscalPeriod string
	Company      string
	Department   string

	CreatedAt time.Time
}

// ChunkRef identifies a chunk by its position metadata without carrying text.
type ChunkRef struct {
	Document   string
	ChunkIndex int
	PageNumber *int
}

// Key returns the identity used to join vector results against keyword ranks.
func (r ChunkRef) Key() ChunkKey {
	return ChunkKey{Document: r.Document, ChunkIndex: r.ChunkIndex}
}

// ChunkKey is the comparable (document, chunk index) pair.
type ChunkKey struct {
	Document   string
	ChunkIndex int
}

// ResultOrigin marks which retriever produced a result. Raw scores are only
// comparable within a single origin.
type ResultOrigin string

const (
	OriginVector  ResultOrigin = "vector"
	OriginKeyword ResultOrigin = "keyword"
	OriginSQL     ResultOrigin = "sql"
	OriginHybrid  ResultOrigin = "hybrid"
)

// RankedResult is a single retrieval hit. Score semantics depend on Origin:
// cosine similarity in [0,1] for vector, unbounded positive BM25 for keyword,
// a small positive RRF value for hybrid, and a constant 1.0 for sql.
type RankedResult struct {
	Score      float64
	Content    string
	Document   string
	PageNumber *int
	ChunkIndex int
	WordCount  int
	Origin     ResultOrigin
}

// Key returns the (document, chunk index) identity of the result.
func (r RankedResult) Key() ChunkKey {
	return ChunkKey{Document: r.Document, ChunkIndex: r.ChunkIndex}
}

// CitedResult is a RankedResult whose content carries the provenance suffix.
// It is the terminal output of the retrieval core.
type CitedResult struct {
	RankedResult
}

// FactRow is one row of the structured financial facts table.
type FactRow struct {
	Entity     string
	Metric     string
	Value      float64
	Unit       string
	Period     string
	FiscalYear int
	PageNumber *int
	Document   string
}
