package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"finrag-orchestrator/internal/domain"
	"finrag-orchestrator/internal/usecase"

	"github.com/labstack/echo/v4"
)

// RebuildTrigger requests an asynchronous keyword-index rebuild. It reports
// whether the request was accepted (false when a rebuild is already queued).
type RebuildTrigger interface {
	Trigger() bool
}

type Handler struct {
	queryUsecase usecase.QueryUsecase
	rebuilds     RebuildTrigger
}

func NewHandler(queryUsecase usecase.QueryUsecase, rebuilds RebuildTrigger) *Handler {
	return &Handler{
		queryUsecase: queryUsecase,
		rebuilds:     rebuilds,
	}
}

// Register wires the handler's routes onto the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/v1/query", h.Query)
	e.POST("/internal/index/rebuild", h.RebuildIndex)
}

type queryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`

	// Optional business-tag narrowing for the semantic branch.
	FiscalPeriod string `json:"fiscal_period"`
	Company      string `json:"company"`
	Department   string `json:"department"`
}

type queryResult struct {
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
	Document   string  `json:"document"`
	PageNumber *int    `json:"page_number"`
	ChunkIndex int     `json:"chunk_index"`
	Origin     string  `json:"origin"`
}

type queryResponse struct {
	QueryType string        `json:"query_type"`
	Results   []queryResult `json:"results"`
}

// Query answers a natural-language question with cited passages and facts.
// (POST /v1/query)
func (h *Handler) Query(ctx echo.Context) error {
	var req queryRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	output, err := h.queryUsecase.Execute(ctx.Request().Context(), usecase.QueryInput{
		Query: req.Query,
		TopK:  req.TopK,
		Filter: domain.TagFilter{
			FiscalPeriod: req.FiscalPeriod,
			Company:      req.Company,
			Department:   req.Department,
		},
	})
	if err != nil {
		var qErr *domain.QueryError
		if errors.As(err, &qErr) && strings.Contains(qErr.Reason, "empty") {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": qErr.Error()})
		}
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	results := make([]queryResult, 0, len(output.Results))
	for _, r := range output.Results {
		results = append(results, queryResult{
			Text:       r.Content,
			Score:      r.Score,
			Document:   r.Document,
			PageNumber: r.PageNumber,
			ChunkIndex: r.ChunkIndex,
			Origin:     string(r.Origin),
		})
	}

	return ctx.JSON(http.StatusOK, queryResponse{
		QueryType: output.QueryType.String(),
		Results:   results,
	})
}

// RebuildIndex queues a keyword-index rebuild.
// (POST /internal/index/rebuild)
func (h *Handler) RebuildIndex(ctx echo.Context) error {
	if h.rebuilds.Trigger() {
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "rebuild queued"})
	}
	return ctx.JSON(http.StatusAccepted, map[string]string{"status": "rebuild already pending"})
}
