package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finrag-orchestrator/internal/domain"
)

// SQLRetriever answers a query from the structured financial facts table by
// generating a constrained read-only statement, validating it, and executing
// it. Whether its failures are fatal is the orchestrator's call, not ours.
type SQLRetriever struct {
	generator domain.SQLGenerator
	facts     domain.FactRepository
	logger    *slog.Logger
}

func NewSQLRetriever(generator domain.SQLGenerator, facts domain.FactRepository, logger *slog.Logger) *SQLRetriever {
	return &SQLRetriever{
		generator: generator,
		facts:     facts,
		logger:    logger,
	}
}

// Retrieve translates the query to SQL and executes it. Zero matching rows is
// a successful empty result. Unsafe statements fail with UnsafeQueryError and
// are never executed; execution failures fail with SQLGenerationError.
func (r *SQLRetriever) Retrieve(ctx context.Context, query string) ([]domain.RankedResult, error) {
	start := time.Now()

	stmt, err := r.generator.GenerateSQL(ctx, query, r.facts.Schema())
	if err != nil {
		return nil, &domain.SQLGenerationError{Cause: fmt.Errorf("generation call failed: %w", err)}
	}
	stmt = strings.TrimSpace(stmt)

	if err := ValidateStatement(stmt); err != nil {
		r.logger.Warn("unsafe_sql_rejected",
			slog.String("statement", stmt),
			slog.String("error", err.Error()))
		return nil, err
	}

	rows, err := r.facts.QueryFacts(ctx, stmt)
	if err != nil {
		return nil, &domain.SQLGenerationError{Statement: stmt, Cause: err}
	}

	results := make([]domain.RankedResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, factToResult(row))
	}

	r.logger.Info("sql_retrieval_completed",
		slog.Int("row_count", len(results)),
		slog.Duration("elapsed", time.Since(start)))

	return results, nil
}

// factToResult renders one fact row as a retrievable result. Facts carry a
// constant score: they are exact matches, not similarity hits.
func factToResult(row domain.FactRow) domain.RankedResult {
	content := fmt.Sprintf("%s %s: %g %s", row.Entity, row.Metric, row.Value, row.Unit)
	if row.Period != "" || row.FiscalYear != 0 {
		content += fmt.Sprintf(" (%s)", strings.TrimSpace(fmt.Sprintf("%s %s", row.Period, fiscalYearLabel(row.FiscalYear))))
	}
	return domain.RankedResult{
		Score:      1.0,
		Content:    content,
		Document:   row.Document,
		PageNumber: row.PageNumber,
		ChunkIndex: 0,
		WordCount:  len(strings.Fields(content)),
		Origin:     domain.OriginSQL,
	}
}

func fiscalYearLabel(year int) string {
	if year == 0 {
		return ""
	}
	return fmt.Sprintf("FY%d", year)
}
