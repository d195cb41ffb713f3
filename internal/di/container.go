package di

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"finrag-orchestrator/internal/adapter/llm"
	"finrag-orchestrator/internal/adapter/repository"
	"finrag-orchestrator/internal/domain"
	"finrag-orchestrator/internal/infra/config"
	"finrag-orchestrator/internal/infra/httpclient"
	"finrag-orchestrator/internal/lexical"
	"finrag-orchestrator/internal/usecase"
	"finrag-orchestrator/internal/worker"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	// Repositories
	ChunkRepo domain.ChunkRepository
	FactRepo  domain.FactRepository

	// Keyword index serving handle
	KeywordProvider *lexical.Provider

	// Usecases
	QueryUsecase   usecase.QueryUsecase
	RebuildUsecase usecase.RebuildIndexUsecase

	// Worker
	RebuildWorker *worker.RebuildWorker
}

// NewApplicationComponents wires all dependencies from config and database
// pool. keywordIndex may be nil when no persisted index exists yet; hybrid
// queries then degrade to vector-only ranking until the first rebuild.
func NewApplicationComponents(cfg *config.Config, pool *pgxpool.Pool, keywordIndex *lexical.Index, log *slog.Logger) (*ApplicationComponents, error) {
	// Repositories
	chunkRepo := repository.NewChunkRepository(pool)
	factRepo := repository.NewFactRepository(pool)

	// Shared HTTP clients with connection pooling
	embedderHTTP := httpclient.NewPooledClient(time.Duration(cfg.Embedder.Timeout) * time.Second)
	augurHTTP := httpclient.NewPooledClient(time.Duration(cfg.Augur.Timeout) * time.Second)

	// External clients
	embedder := llm.NewEmbedder(cfg.Embedder.URL, cfg.Embedder.Model, cfg.Embedder.Dimension, embedderHTTP, cfg.Embedder.RPS, log)
	textClassifier := llm.NewClassifier(cfg.Augur.URL, cfg.Augur.Model, augurHTTP, cfg.Augur.RPS, log)
	sqlGenerator := llm.NewSQLGenerator(cfg.Augur.URL, cfg.Augur.Model, augurHTTP, cfg.Augur.RPS, log)

	// Keyword index serving handle
	keywordProvider := lexical.NewProvider(keywordIndex)

	// Retrieval config
	retrievalConfig := usecase.RetrievalConfig{
		DefaultTopK:         cfg.Retrieval.DefaultTopK,
		MaxTopK:             cfg.Retrieval.MaxTopK,
		CandidateMultiplier: cfg.Retrieval.CandidateMultiplier,
		MinCandidates:       cfg.Retrieval.MinCandidates,
		RRFK:                cfg.Retrieval.RRFK,
		Alpha:               cfg.Retrieval.Alpha,
		QueryTimeout:        cfg.Retrieval.QueryTimeout,
		ClassifierTimeout:   cfg.Retrieval.ClassifierTimeout,
		ClassifierCacheSize: cfg.Retrieval.ClassifierCacheSize,
	}
	if err := retrievalConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retrieval config: %w", err)
	}

	// Retrieval branch usecases
	queryClassifier := usecase.NewQueryClassifier(textClassifier, cfg.Retrieval.ClassifierTimeout, cfg.Retrieval.ClassifierCacheSize, log)
	vectorRetriever := usecase.NewVectorRetriever(embedder, chunkRepo, log)
	sqlRetriever := usecase.NewSQLRetriever(sqlGenerator, factRepo, log)

	// Orchestrator
	queryUsecase := usecase.NewQueryUsecase(
		queryClassifier, vectorRetriever, sqlRetriever, keywordProvider,
		retrievalConfig, log,
	)

	// Index maintenance
	rebuildUsecase := usecase.NewRebuildIndexUsecase(
		chunkRepo, keywordProvider,
		cfg.Keyword.IndexPath, cfg.Keyword.K1, cfg.Keyword.B, log,
	)
	rebuildWorker := worker.NewRebuildWorker(rebuildUsecase, cfg.Keyword.RebuildInterval, log)

	return &ApplicationComponents{
		ChunkRepo:       chunkRepo,
		FactRepo:        factRepo,
		KeywordProvider: keywordProvider,
		QueryUsecase:    queryUsecase,
		RebuildUsecase:  rebuildUsecase,
		RebuildWorker:   rebuildWorker,
	}, nil
}
