package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finrag-orchestrator/internal/domain"
)

// VectorRetriever is the pass-through to the semantic index: embed the query,
// run a similarity search, tag the hits. It does not retry; an unreachable
// backend propagates as RetrievalError for the orchestrator to judge.
type VectorRetriever struct {
	encoder domain.VectorEncoder
	chunks  domain.ChunkRepository
	logger  *slog.Logger
}

func NewVectorRetriever(encoder domain.VectorEncoder, chunks domain.ChunkRepository, logger *slog.Logger) *VectorRetriever {
	return &VectorRetriever{
		encoder: encoder,
		chunks:  chunks,
		logger:  logger,
	}
}

// Search returns up to topK chunks by cosine similarity, origin=vector,
// scores in [0,1]. A non-zero filter narrows the search to chunks carrying
// the matching business tags.
func (r *VectorRetriever) Search(ctx context.Context, query string, filter domain.TagFilter, topK int) ([]domain.RankedResult, error) {
	if topK < 1 {
		topK = 1
	}

	start := time.Now()
	embeddings, err := r.encoder.Encode(ctx, []string{query})
	if err != nil {
		return nil, &domain.RetrievalError{Backend: "embedding", Cause: err}
	}
	if len(embeddings) != 1 {
		return nil, &domain.RetrievalError{
			Backend: "embedding",
			Cause:   fmt.Errorf("expected 1 embedding, got %d", len(embeddings)),
		}
	}

	var hits []domain.VectorSearchResult
	if filter.IsZero() {
		hits, err = r.chunks.Search(ctx, embeddings[0], topK)
	} else {
		hits, err = r.chunks.SearchFiltered(ctx, embeddings[0], filter, topK)
	}
	if err != nil {
		return nil, &domain.RetrievalError{Backend: "vector index", Cause: err}
	}

	results := make([]domain.RankedResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, domain.RankedResult{
			Score:      hit.Score,
			Content:    hit.Chunk.Content,
			Document:   hit.Chunk.Document,
			PageNumber: hit.Chunk.PageNumber,
			ChunkIndex: hit.Chunk.ChunkIndex,
			WordCount:  wordCount(hit.Chunk),
			Origin:     domain.OriginVector,
		})
	}

	r.logger.Info("vector_search_completed",
		slog.Int("requested", topK),
		slog.Int("hit_count", len(results)),
		slog.Duration("elapsed", time.Since(start)))

	return results, nil
}

func wordCount(c domain.Chunk) int {
	if c.WordCount > 0 {
		return c.WordCount
	}
	return len(strings.Fields(c.Content))
}
