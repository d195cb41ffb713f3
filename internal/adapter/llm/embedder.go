// Package llm holds the adapters for the external LLM-backed capabilities:
// embedding, text classification, and NL-to-SQL generation. All three speak
// the Ollama-style HTTP API and are treated as fallible, non-deterministic
// collaborators.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"finrag-orchestrator/internal/domain"

	"golang.org/x/time/rate"
)

// Embedder turns text into fixed-dimension embeddings via the /api/embed
// endpoint.
type Embedder struct {
	baseURL   string
	model     string
	dimension int
	client    *http.Client
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// NewEmbedder constructs an embedder. dimension must match the vector
// index's configured dimension; the mismatch check happens at startup, not
// per request.
func NewEmbedder(baseURL, model string, dimension int, client *http.Client, rps float64, logger *slog.Logger) *Embedder {
	return &Embedder{
		baseURL:   baseURL,
		model:     model,
		dimension: dimension,
		client:    client,
		limiter:   newLimiter(rps),
		logger:    logger,
	}
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (e *Embedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	start := time.Now()
	reqBody := embedRequest{Model: e.model, Input: texts}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/embed", e.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Error("embed_call_failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("failed to call embedder: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedder returned status: %d", resp.StatusCode)
	}

	var respBody embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	for i, emb := range respBody.Embeddings {
		if len(emb) != e.dimension {
			return nil, fmt.Errorf("embedding %d has dimension %d, configured dimension is %d", i, len(emb), e.dimension)
		}
	}

	e.logger.Info("embed_completed",
		slog.Int("text_count", len(texts)),
		slog.Duration("elapsed", time.Since(start)))

	return respBody.Embeddings, nil
}

func (e *Embedder) Dimension() int {
	return e.dimension
}

func (e *Embedder) Version() string {
	return e.model
}

var _ domain.VectorEncoder = (*Embedder)(nil)

// newLimiter returns a limiter for the given requests-per-second budget;
// rps <= 0 means unlimited.
func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
