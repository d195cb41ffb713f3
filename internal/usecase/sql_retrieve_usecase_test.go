package usecase_test

import (
	"context"
	"errors"
	"testing"

	"finrag-orchestrator/internal/domain"
	"finrag-orchestrator/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const factsSchema = "financial_facts(entity, metric, value, unit, period, fiscal_year, page_number)"

func TestSQLRetrieve_MapsRowsToResults(t *testing.T) {
	generator := new(MockSQLGenerator)
	facts := new(MockFactRepository)
	facts.On("Schema").Return(factsSchema)

	stmt := "SELECT * FROM financial_facts WHERE metric = 'EBITDA'"
	generator.On("GenerateSQL", mock.Anything, "EBITDA for Acme", factsSchema).Return(stmt, nil)

	page := 14
	facts.On("QueryFacts", mock.Anything, stmt).Return([]domain.FactRow{
		{
			Entity: "Acme Corp", Metric: "EBITDA", Value: 42.5, Unit: "MUSD",
			Period: "Q3", FiscalYear: 2024, PageNumber: &page, Document: "acme_10q.pdf",
		},
	}, nil)

	r := usecase.NewSQLRetriever(generator, facts, discardLogger())
	results, err := r.Retrieve(context.Background(), "EBITDA for Acme")

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Acme Corp EBITDA: 42.5 MUSD (Q3 FY2024)", results[0].Content)
	assert.Equal(t, domain.OriginSQL, results[0].Origin)
	assert.Equal(t, 1.0, results[0].Score)
	assert.Equal(t, "acme_10q.pdf", results[0].Document)
	require.NotNil(t, results[0].PageNumber)
	assert.Equal(t, 14, *results[0].PageNumber)
}

func TestSQLRetrieve_UnsafeStatementNeverExecuted(t *testing.T) {
	generator := new(MockSQLGenerator)
	facts := new(MockFactRepository)
	facts.On("Schema").Return(factsSchema)

	generator.On("GenerateSQL", mock.Anything, mock.Anything, mock.Anything).
		Return("DROP TABLE financial_facts", nil)

	r := usecase.NewSQLRetriever(generator, facts, discardLogger())
	_, err := r.Retrieve(context.Background(), "delete everything")

	var unsafeErr *domain.UnsafeQueryError
	require.True(t, errors.As(err, &unsafeErr))
	facts.AssertNotCalled(t, "QueryFacts", mock.Anything, mock.Anything)
}

func TestSQLRetrieve_GenerationCallFailure(t *testing.T) {
	generator := new(MockSQLGenerator)
	facts := new(MockFactRepository)
	facts.On("Schema").Return(factsSchema)

	generator.On("GenerateSQL", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("model unavailable"))

	r := usecase.NewSQLRetriever(generator, facts, discardLogger())
	_, err := r.Retrieve(context.Background(), "revenue by quarter")

	var genErr *domain.SQLGenerationError
	assert.True(t, errors.As(err, &genErr))
}

func TestSQLRetrieve_ExecutionFailure(t *testing.T) {
	generator := new(MockSQLGenerator)
	facts := new(MockFactRepository)
	facts.On("Schema").Return(factsSchema)

	stmt := "SELECT nonexistent_column FROM financial_facts"
	generator.On("GenerateSQL", mock.Anything, mock.Anything, mock.Anything).Return(stmt, nil)
	facts.On("QueryFacts", mock.Anything, stmt).Return(nil, errors.New("column does not exist"))

	r := usecase.NewSQLRetriever(generator, facts, discardLogger())
	_, err := r.Retrieve(context.Background(), "weird query")

	var genErr *domain.SQLGenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, stmt, genErr.Statement)
}

func TestSQLRetrieve_ZeroRowsIsSuccess(t *testing.T) {
	generator := new(MockSQLGenerator)
	facts := new(MockFactRepository)
	facts.On("Schema").Return(factsSchema)

	stmt := "SELECT * FROM financial_facts WHERE fiscal_year = 1999"
	generator.On("GenerateSQL", mock.Anything, mock.Anything, mock.Anything).Return(stmt, nil)
	facts.On("QueryFacts", mock.Anything, stmt).Return([]domain.FactRow{}, nil)

	r := usecase.NewSQLRetriever(generator, facts, discardLogger())
	results, err := r.Retrieve(context.Background(), "ancient data")

	assert.NoError(t, err)
	assert.Empty(t, results)
}
