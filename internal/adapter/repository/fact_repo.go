package repository

import (
	"context"
	"fmt"
	"strconv"

	"finrag-orchestrator/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// factsSchema is the DDL description handed verbatim to the SQL generation
// prompt. It must stay in sync with the migration that owns the table.
const factsSchema = `CREATE TABLE financial_facts (
    entity          TEXT NOT NULL,      -- company or business unit
    metric          TEXT NOT NULL,      -- e.g. 'revenue', 'EBITDA margin'
    value           DOUBLE PRECISION NOT NULL,
    unit            TEXT NOT NULL,      -- e.g. 'MUSD', '%'
    period          TEXT,               -- e.g. 'Q3', 'H1'
    fiscal_year     INTEGER,
    page_number     INTEGER,            -- page in the source document
    source_document TEXT NOT NULL
)`

type factRepository struct {
	pool *pgxpool.Pool
}

// NewFactRepository creates a FactRepository over the financial_facts table.
// It executes only statements that already passed safety validation.
func NewFactRepository(pool *pgxpool.Pool) domain.FactRepository {
	return &factRepository{pool: pool}
}

func (r *factRepository) Schema() string {
	return factsSchema
}

// QueryFacts runs the validated SELECT and maps rows to FactRow by column
// name. Generated statements may project any subset of the schema columns;
// unknown columns are ignored rather than failing the whole query.
func (r *factRepository) QueryFacts(ctx context.Context, stmt string) ([]domain.FactRow, error) {
	rows, err := r.pool.Query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to execute facts query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()

	var facts []domain.FactRow
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read facts row: %w", err)
		}

		var row domain.FactRow
		for i, field := range fields {
			if i >= len(values) || values[i] == nil {
				continue
			}
			assignFactColumn(&row, string(field.Name), values[i])
		}
		facts = append(facts, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return facts, nil
}

func assignFactColumn(row *domain.FactRow, column string, value interface{}) {
	switch column {
	case "entity":
		row.Entity = asString(value)
	case "metric":
		row.Metric = asString(value)
	case "value", "sum", "avg", "min", "max", "total":
		row.Value = asFloat(value)
	case "unit":
		row.Unit = asString(value)
	case "period":
		row.Period = asString(value)
	case "fiscal_year":
		row.FiscalYear = int(asFloat(value))
	case "page_number":
		page := int(asFloat(value))
		row.PageNumber = &page
	case "source_document":
		row.Document = asString(value)
	}
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case int16:
		return float64(n)
	case int:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	default:
		return 0
	}
}
