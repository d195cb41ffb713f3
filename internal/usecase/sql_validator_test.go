package usecase_test

import (
	"errors"
	"testing"

	"finrag-orchestrator/internal/domain"
	"finrag-orchestrator/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func TestValidateStatement(t *testing.T) {
	tests := []struct {
		name   string
		stmt   string
		safe   bool
		reason string
	}{
		{
			name: "plain select",
			stmt: "SELECT entity, metric, value FROM financial_facts WHERE metric = 'revenue'",
			safe: true,
		},
		{
			name: "select with trailing semicolon",
			stmt: "SELECT * FROM financial_facts LIMIT 10;",
			safe: true,
		},
		{
			name: "select with aggregate and group by",
			stmt: "select entity, sum(value) from financial_facts group by entity order by 2 desc",
			safe: true,
		},
		{
			name: "value containing a keyword substring is fine",
			stmt: "SELECT * FROM financial_facts WHERE entity = 'dropbox_inc'",
			safe: true,
		},
		{
			name:   "empty statement",
			stmt:   "   ",
			safe:   false,
			reason: "empty",
		},
		{
			name:   "drop table",
			stmt:   "DROP TABLE financial_facts",
			safe:   false,
			reason: "not a SELECT",
		},
		{
			name:   "select with embedded drop",
			stmt:   "SELECT * FROM financial_facts; DROP TABLE financial_facts",
			safe:   false,
			reason: "multiple statements",
		},
		{
			name:   "update disguised in subselect",
			stmt:   "SELECT * FROM financial_facts WHERE id IN (UPDATE financial_facts SET value = 0)",
			safe:   false,
			reason: "forbidden keyword",
		},
		{
			name:   "delete",
			stmt:   "DELETE FROM financial_facts",
			safe:   false,
			reason: "not a SELECT",
		},
		{
			name:   "comment injection",
			stmt:   "SELECT * FROM financial_facts -- WHERE fiscal_year = 2024",
			safe:   false,
			reason: "comment",
		},
		{
			name:   "insert",
			stmt:   "INSERT INTO financial_facts VALUES (1)",
			safe:   false,
			reason: "not a SELECT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := usecase.ValidateStatement(tt.stmt)
			if tt.safe {
				assert.NoError(t, err)
				return
			}
			var unsafeErr *domain.UnsafeQueryError
			assert.True(t, errors.As(err, &unsafeErr), "want UnsafeQueryError, got %v", err)
			assert.Contains(t, unsafeErr.Error(), tt.reason)
		})
	}
}
