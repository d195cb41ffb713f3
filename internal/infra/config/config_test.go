package config_test

import (
	"testing"
	"time"

	"finrag-orchestrator/internal/infra/config"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "9020", cfg.Port)
	assert.Equal(t, 1024, cfg.Embedder.Dimension)
	assert.Equal(t, 60.0, cfg.Retrieval.RRFK)
	assert.Equal(t, 0.7, cfg.Retrieval.Alpha)
	assert.Equal(t, 30*time.Second, cfg.Retrieval.QueryTimeout)
	assert.Equal(t, 1.2, cfg.Keyword.K1)
	assert.Equal(t, 0.75, cfg.Keyword.B)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RETRIEVAL_ALPHA", "0.3")
	t.Setenv("EMBEDDING_DIMENSION", "768")
	t.Setenv("KEYWORD_INDEX_PATH", "/tmp/test.idx")
	t.Setenv("OTEL_ENABLED", "true")

	cfg := config.Load()

	assert.Equal(t, 0.3, cfg.Retrieval.Alpha)
	assert.Equal(t, 768, cfg.Embedder.Dimension)
	assert.Equal(t, "/tmp/test.idx", cfg.Keyword.IndexPath)
	assert.True(t, cfg.OTelEnabled)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("RETRIEVAL_ALPHA", "not-a-number")
	t.Setenv("EMBEDDING_DIMENSION", "many")

	cfg := config.Load()

	assert.Equal(t, 0.7, cfg.Retrieval.Alpha)
	assert.Equal(t, 1024, cfg.Embedder.Dimension)
}
