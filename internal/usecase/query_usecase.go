package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"finrag-orchestrator/internal/domain"
	"finrag-orchestrator/internal/lexical"
	"finrag-orchestrator/internal/usecase/retrieval"

	"golang.org/x/sync/errgroup"
)

// QueryInput defines the input parameters for Execute.
type QueryInput struct {
	Query string
	TopK  int // 0 means the configured default

	// Filter narrows semantic retrieval by business tags. Zero value means
	// no narrowing; the SQL branch is unaffected.
	Filter domain.TagFilter
}

// QueryOutput carries the cited results and the classification that produced
// them.
type QueryOutput struct {
	Results   []domain.CitedResult
	QueryType domain.QueryType
}

// QueryUsecase is the top-level entry point of the retrieval core:
// classify, dispatch, fuse, cite.
type QueryUsecase interface {
	Execute(ctx context.Context, input QueryInput) (*QueryOutput, error)
}

type queryUsecase struct {
	classifier *QueryClassifier
	vector     *VectorRetriever
	sql        *SQLRetriever
	keyword    *lexical.Provider
	cfg        RetrievalConfig
	logger     *slog.Logger
}

// NewQueryUsecase wires the orchestrator. keyword may serve a nil index, in
// which case hybrid queries degrade to vector-only ranking.
func NewQueryUsecase(
	classifier *QueryClassifier,
	vector *VectorRetriever,
	sql *SQLRetriever,
	keyword *lexical.Provider,
	cfg RetrievalConfig,
	logger *slog.Logger,
) QueryUsecase {
	return &queryUsecase{
		classifier: classifier,
		vector:     vector,
		sql:        sql,
		keyword:    keyword,
		cfg:        cfg,
		logger:     logger,
	}
}

func (u *queryUsecase) Execute(ctx context.Context, input QueryInput) (*QueryOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, &domain.QueryError{Reason: "empty query"}
	}

	topK := input.TopK
	if topK <= 0 {
		topK = u.cfg.DefaultTopK
	}
	if topK > u.cfg.MaxTopK {
		topK = u.cfg.MaxTopK
	}

	ctx, cancel := context.WithTimeout(ctx, u.cfg.QueryTimeout)
	defer cancel()

	start := time.Now()
	queryType := u.classifier.Classify(ctx, input.Query)

	var results []domain.RankedResult
	var err error
	switch queryType {
	case domain.QueryTypeSQL:
		results, err = u.executeSQLOnly(ctx, input.Query, topK)
	case domain.QueryTypeVector:
		results, err = u.executeVectorOnly(ctx, input.Query, input.Filter, topK)
	default:
		results, err = u.executeHybrid(ctx, input.Query, input.Filter, topK)
	}
	if err != nil {
		return nil, err
	}

	u.logger.Info("query_completed",
		slog.String("query_type", queryType.String()),
		slog.Int("result_count", len(results)),
		slog.Duration("elapsed", time.Since(start)))

	return &QueryOutput{
		Results:   domain.AnnotateCitations(results),
		QueryType: queryType,
	}, nil
}

// executeSQLOnly runs the structured path alone; its failures are terminal.
func (u *queryUsecase) executeSQLOnly(ctx context.Context, query string, topK int) ([]domain.RankedResult, error) {
	results, err := u.sql.Retrieve(ctx, query)
	if err != nil {
		return nil, &domain.QueryError{Reason: "structured retrieval failed", Cause: err}
	}
	return truncateResults(results, topK), nil
}

// executeVectorOnly runs the semantic path alone; no fusion is applied, so no
// candidate widening either.
func (u *queryUsecase) executeVectorOnly(ctx context.Context, query string, filter domain.TagFilter, topK int) ([]domain.RankedResult, error) {
	results, err := u.vector.Search(ctx, query, filter, topK)
	if err != nil {
		return nil, &domain.QueryError{Reason: "vector retrieval failed", Cause: err}
	}
	return truncateResults(results, topK), nil
}

// executeHybrid dispatches the SQL branch and the vector+keyword branch
// concurrently, waits for both to complete or definitively fail, fuses, then
// places structured facts ahead of fused passages. Only the loss of every
// branch is fatal.
func (u *queryUsecase) executeHybrid(ctx context.Context, query string, filter domain.TagFilter, topK int) ([]domain.RankedResult, error) {
	var (
		sqlResults   []domain.RankedResult
		sqlErr       error
		fusedResults []domain.RankedResult
		vectorErr    error
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sqlResults, sqlErr = u.sql.Retrieve(gctx, query)
		return nil // branch failures are judged after the join
	})

	g.Go(func() error {
		semantic, err := u.vector.Search(gctx, query, filter, u.cfg.CandidateLimit(topK))
		if err != nil {
			vectorErr = err
			return nil
		}

		var keywordScores []float64
		var keywordMeta []domain.ChunkRef
		if idx := u.keyword.Get(); idx != nil {
			keywordScores = idx.Score(query)
			keywordMeta = idx.Refs()
		} else {
			u.logger.Warn("keyword_index_unavailable")
		}

		fusedResults = retrieval.Fuse(semantic, keywordScores, keywordMeta, retrieval.FusionParams{
			Alpha: u.cfg.Alpha,
			K:     u.cfg.RRFK,
			TopK:  topK,
		})
		return nil
	})

	// Fusion and merging only begin once both branches have joined.
	_ = g.Wait()

	if sqlErr != nil && vectorErr != nil {
		return nil, &domain.QueryError{
			Reason: "all retrieval paths failed",
			Cause:  errors.Join(sqlErr, vectorErr),
		}
	}
	if sqlErr != nil {
		u.logger.Warn("hybrid_sql_branch_dropped", slog.String("error", sqlErr.Error()))
		sqlResults = nil
	}
	if vectorErr != nil {
		u.logger.Warn("hybrid_vector_branch_dropped", slog.String("error", vectorErr.Error()))
		fusedResults = nil
	}

	merged := make([]domain.RankedResult, 0, len(sqlResults)+len(fusedResults))
	merged = append(merged, sqlResults...)
	merged = append(merged, fusedResults...)
	return truncateResults(merged, topK), nil
}

func truncateResults(results []domain.RankedResult, topK int) []domain.RankedResult {
	if topK > 0 && len(results) > topK {
		return results[:topK]
	}
	return results
}
