package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"finrag-orchestrator/internal/domain"

	"golang.org/x/time/rate"
)

// SQLGenerator translates a natural-language question into one read-only
// SELECT over the financial facts table. The output is untrusted; validation
// happens in the usecase layer before execution.
type SQLGenerator struct {
	baseURL string
	model   string
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewSQLGenerator(baseURL, model string, client *http.Client, rps float64, logger *slog.Logger) *SQLGenerator {
	return &SQLGenerator{
		baseURL: baseURL,
		model:   model,
		client:  client,
		limiter: newLimiter(rps),
		logger:  logger,
	}
}

const sqlPrompt = `Translate the question into exactly one PostgreSQL SELECT statement over this table:

%s

Rules:
- Output a single SELECT statement, nothing else.
- Never modify data. No INSERT, UPDATE, DELETE, DDL.
- Include source_document and page_number in the projection when possible.
- Use ILIKE for metric and entity matching.

Question: %s`

func (g *SQLGenerator) GenerateSQL(ctx context.Context, query string, schema string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	start := time.Now()

	format := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"sql": map[string]interface{}{"type": "string"},
		},
		"required": []string{"sql"},
	}

	reqBody := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(sqlPrompt, schema, query)},
		},
		Stream: false,
		Format: format,
		Options: map[string]interface{}{
			"temperature": classifierTemperature,
		},
	}

	content, err := postChat(ctx, g.client, g.baseURL, reqBody)
	if err != nil {
		return "", err
	}

	var parsed struct {
		SQL string `json:"sql"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return "", fmt.Errorf("failed to parse SQL generation response %q: %w", content, err)
	}

	stmt := strings.TrimSpace(parsed.SQL)
	g.logger.Info("sql_generation_completed",
		slog.Int("statement_len", len(stmt)),
		slog.Duration("elapsed", time.Since(start)))

	return stmt, nil
}

var _ domain.SQLGenerator = (*SQLGenerator)(nil)
