package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"finrag-orchestrator/internal/domain"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// QueryClassifier decides whether a query is answered from the structured
// facts table, the passage store, or both. Classification is fail-closed: any
// error or out-of-set label degrades to hybrid, the most-recall option, and
// is never surfaced to the caller.
const classifierCacheTTL = 15 * time.Minute

type QueryClassifier struct {
	classifier domain.TextClassifier
	timeout    time.Duration
	cache      *expirable.LRU[string, domain.QueryType]
	logger     *slog.Logger
}

// NewQueryClassifier creates a classifier usecase. cacheSize <= 0 disables
// caching. Cached classifications expire so a query's routing can follow
// corpus changes.
func NewQueryClassifier(classifier domain.TextClassifier, timeout time.Duration, cacheSize int, logger *slog.Logger) *QueryClassifier {
	var cache *expirable.LRU[string, domain.QueryType]
	if cacheSize > 0 {
		cache = expirable.NewLRU[string, domain.QueryType](cacheSize, nil, classifierCacheTTL)
	}
	return &QueryClassifier{
		classifier: classifier,
		timeout:    timeout,
		cache:      cache,
		logger:     logger,
	}
}

// Classify returns the query type for a non-empty query. It never returns an
// error: classifier failures degrade to QueryTypeHybrid with a logged warning.
func (c *QueryClassifier) Classify(ctx context.Context, query string) domain.QueryType {
	key := strings.ToLower(strings.TrimSpace(query))
	if c.cache != nil {
		if qt, ok := c.cache.Get(key); ok {
			return qt
		}
	}

	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	label, err := c.classifier.ClassifyText(cctx, query, domain.ClassifierLabels())
	if err != nil {
		c.logger.Warn("query_classification_failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return domain.QueryTypeHybrid
	}

	qt, err := domain.ParseQueryType(strings.ToLower(strings.TrimSpace(label)))
	if err != nil {
		c.logger.Warn("query_classification_unrecognized_label",
			slog.String("label", label))
		return domain.QueryTypeHybrid
	}

	c.logger.Info("query_classified",
		slog.String("query_type", qt.String()),
		slog.Duration("elapsed", time.Since(start)))

	if c.cache != nil {
		c.cache.Add(key, qt)
	}
	return qt
}
