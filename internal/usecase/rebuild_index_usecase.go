package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finrag-orchestrator/internal/domain"
	"finrag-orchestrator/internal/lexical"
)

// RebuildIndexUsecase rebuilds the keyword index from the stored chunk corpus
// (the source of truth — no re-ingestion of original documents), persists it,
// and swaps it into serving.
type RebuildIndexUsecase interface {
	Execute(ctx context.Context) error
}

type rebuildIndexUsecase struct {
	chunks   domain.ChunkRepository
	provider *lexical.Provider
	path     string
	k1       float64
	b        float64
	logger   *slog.Logger
}

func NewRebuildIndexUsecase(
	chunks domain.ChunkRepository,
	provider *lexical.Provider,
	path string,
	k1, b float64,
	logger *slog.Logger,
) RebuildIndexUsecase {
	return &rebuildIndexUsecase{
		chunks:   chunks,
		provider: provider,
		path:     path,
		k1:       k1,
		b:        b,
		logger:   logger,
	}
}

func (u *rebuildIndexUsecase) Execute(ctx context.Context) error {
	start := time.Now()

	corpus, err := u.chunks.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	idx, err := lexical.Build(corpus, u.k1, u.b)
	if err != nil {
		return fmt.Errorf("failed to build keyword index: %w", err)
	}

	if err := idx.Save(u.path); err != nil {
		return fmt.Errorf("failed to persist keyword index: %w", err)
	}

	// Swap only after the index is fully built and durably written; serving
	// readers keep the previous instance until this point.
	u.provider.Swap(idx)

	u.logger.Info("keyword_index_rebuilt",
		slog.Int("corpus_size", idx.Len()),
		slog.String("path", u.path),
		slog.Duration("elapsed", time.Since(start)))

	return nil
}
