package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"finrag-orchestrator/internal/domain"
	"finrag-orchestrator/internal/lexical"
	"finrag-orchestrator/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRebuildIndex_BuildsPersistsAndSwaps(t *testing.T) {
	chunks := new(MockChunkRepository)
	chunks.On("ListAll", mock.Anything).Return([]domain.Chunk{
		{Content: "net income rose", Document: "a.pdf", ChunkIndex: 0},
		{Content: "cash flow statement", Document: "a.pdf", ChunkIndex: 1},
	}, nil)

	provider := lexical.NewProvider(nil)
	path := filepath.Join(t.TempDir(), "keyword.idx")

	uc := usecase.NewRebuildIndexUsecase(chunks, provider, path, lexical.DefaultK1, lexical.DefaultB, discardLogger())
	require.NoError(t, uc.Execute(context.Background()))

	idx := provider.Get()
	require.NotNil(t, idx, "fresh index swapped into serving")
	assert.Equal(t, 2, idx.Len())

	_, err := os.Stat(path)
	assert.NoError(t, err, "index persisted to disk")
}

func TestRebuildIndex_EmptyCorpusFails(t *testing.T) {
	chunks := new(MockChunkRepository)
	chunks.On("ListAll", mock.Anything).Return([]domain.Chunk{}, nil)

	provider := lexical.NewProvider(nil)
	uc := usecase.NewRebuildIndexUsecase(chunks, provider, filepath.Join(t.TempDir(), "k.idx"), 0, 0, discardLogger())

	err := uc.Execute(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmptyCorpus)
	assert.Nil(t, provider.Get(), "no index installed on failure")
}

func TestRebuildIndex_RepositoryFailure(t *testing.T) {
	chunks := new(MockChunkRepository)
	chunks.On("ListAll", mock.Anything).Return(nil, errors.New("db down"))

	provider := lexical.NewProvider(nil)
	uc := usecase.NewRebuildIndexUsecase(chunks, provider, filepath.Join(t.TempDir(), "k.idx"), 0, 0, discardLogger())

	assert.Error(t, uc.Execute(context.Background()))
}
