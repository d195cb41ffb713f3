package llm

import (
	"bytes"
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

const classifierTemperature = 0.0

// Classifier asks the chat endpoint to pick one label from a closed set,
// constrained by a JSON-schema response format so the model cannot answer in
// prose.
type Classifier struct {
	baseURL string
	model   string
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewClassifier(baseURL, model string, client *http.Client, rps float64, logger *slog.Logger) *Classifier {
	return &Classifier{
		baseURL: baseURL,
		model:   model,
		client:  client,
		limiter: newLimiter(rps),
		logger:  logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string                 `json:"model"`
	Messages []chatMessage          `json:"messages"`
	Stream   bool                   `json:"stream"`
	Format   map[string]interface{} `json:"format,omitempty"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

const classifierPrompt = `You route questions over financial documents to the right retrieval path.

Label definitions:
- sql_only: the question asks for specific numeric facts (metric values, totals, comparisons by year/quarter) answerable from a structured facts table.
- vector_only: the question asks for narrative, explanations, or discussion found in document prose.
- hybrid: the question needs both numbers and narrative, or you are unsure.

Question: %s`

func (c *Classifier) ClassifyText(ctx context.Context, text string, labels []string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	start := time.Now()

	format := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"label": map[string]interface{}{
				"type": "string",
				"enum": labels,
			},
		},
		"required": []string{"label"},
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(classifierPrompt, text)},
		},
		Stream: false,
		Format: format,
		Options: map[string]interface{}{
			"temperature": classifierTemperature,
		},
	}

	content, err := postChat(ctx, c.client, c.baseURL, reqBody)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Label string `json:"label"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return "", fmt.Errorf("failed to parse classification response %q: %w", content, err)
	}

	c.logger.Info("classification_completed",
		slog.String("label", parsed.Label),
		slog.Duration("elapsed", time.Since(start)))

	return strings.TrimSpace(parsed.Label), nil
}

// postChat is the shared transport for the chat-style capabilities.
func postChat(ctx context.Context, client *http.Client, baseURL string, reqBody chatRequest) (string, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/chat", baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call chat endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat endpoint returned status: %d", resp.StatusCode)
	}

	var respBody chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return respBody.Message.Content, nil
}

var _ domain.TextClassifier = (*Classifier)(nil)
