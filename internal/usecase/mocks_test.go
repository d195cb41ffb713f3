package usecase_test

import (
	"context"
	"io"
	"log/slog"

	"finrag-orchestrator/internal/domain"

	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// MockTextClassifier is a test double for domain.TextClassifier.
type MockTextClassifier struct {
	mock.Mock
}

func (m *MockTextClassifier) ClassifyText(ctx context.Context, text string, labels []string) (string, error) {
	args := m.Called(ctx, text, labels)
	return args.String(0), args.Error(1)
}

// MockSQLGenerator is a test double for domain.SQLGenerator.
type MockSQLGenerator struct {
	mock.Mock
}

func (m *MockSQLGenerator) GenerateSQL(ctx context.Context, query string, schema string) (string, error) {
	args := m.Called(ctx, query, schema)
	return args.String(0), args.Error(1)
}

// MockFactRepository is a test double for domain.FactRepository.
type MockFactRepository struct {
	mock.Mock
}

func (m *MockFactRepository) QueryFacts(ctx context.Context, stmt string) ([]domain.FactRow, error) {
	args := m.Called(ctx, stmt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FactRow), args.Error(1)
}

func (m *MockFactRepository) Schema() string {
	args := m.Called()
	return args.String(0)
}

// MockVectorEncoder is a test double for domain.VectorEncoder.
type MockVectorEncoder struct {
	mock.Mock
}

func (m *MockVectorEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockVectorEncoder) Dimension() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockVectorEncoder) Version() string {
	args := m.Called()
	return args.String(0)
}

// MockChunkRepository is a test double for domain.ChunkRepository.
type MockChunkRepository struct {
	mock.Mock
}

func (m *MockChunkRepository) Search(ctx context.Context, queryVector []float32, limit int) ([]domain.VectorSearchResult, error) {
	args := m.Called(ctx, queryVector, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VectorSearchResult), args.Error(1)
}

func (m *MockChunkRepository) SearchFiltered(ctx context.Context, queryVector []float32, filter domain.TagFilter, limit int) ([]domain.VectorSearchResult, error) {
	args := m.Called(ctx, queryVector, filter, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VectorSearchResult), args.Error(1)
}

func (m *MockChunkRepository) ListAll(ctx context.Context) ([]domain.Chunk, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Chunk), args.Error(1)
}

func (m *MockChunkRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
