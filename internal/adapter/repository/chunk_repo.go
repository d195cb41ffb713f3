package repository

import (
	"context"
	"fmt"
	"strings"

	"finrag-orchestrator/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type chunkRepository struct {
	pool *pgxpool.Pool
}

// NewChunkRepository creates a ChunkRepository backed by the document_chunks
// table with a pgvector embedding column.
func NewChunkRepository(pool *pgxpool.Pool) domain.ChunkRepository {
	return &chunkRepository{pool: pool}
}

const chunkColumns = "id, content, document, page_number, chunk_index, word_count, fiscal_period, company, department"

func (r *chunkRepository) Search(ctx context.Context, queryVector []float32, limit int) ([]domain.VectorSearchResult, error) {
	return r.search(ctx, queryVector, domain.TagFilter{}, limit)
}

func (r *chunkRepository) SearchFiltered(ctx context.Context, queryVector []float32, filter domain.TagFilter, limit int) ([]domain.VectorSearchResult, error) {
	return r.search(ctx, queryVector, filter, limit)
}

func (r *chunkRepository) search(ctx context.Context, queryVector []float32, filter domain.TagFilter, limit int) ([]domain.VectorSearchResult, error) {
	// Cosine distance; 1 - distance puts scores in [0,1], higher better.
	query := fmt.Sprintf(`
		SELECT %s, 1 - (embedding <=> $1) AS score
		FROM document_chunks
	`, chunkColumns)

	args := []interface{}{pgvector.NewVector(queryVector)}
	var conds []string
	if filter.FiscalPeriod != "" {
		args = append(args, filter.FiscalPeriod)
		conds = append(conds, fmt.Sprintf("fiscal_period = $%d", len(args)))
	}
	if filter.Company != "" {
		args = append(args, filter.Company)
		conds = append(conds, fmt.Sprintf("company = $%d", len(args)))
	}
	if filter.Department != "" {
		args = append(args, filter.Department)
		conds = append(conds, fmt.Sprintf("department = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY embedding <=> $1 LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	var results []domain.VectorSearchResult
	for rows.Next() {
		var res domain.VectorSearchResult
		c := &res.Chunk
		if err := rows.Scan(
			&c.ID, &c.Content, &c.Document, &c.PageNumber, &c.ChunkIndex,
			&c.WordCount, &c.FiscalPeriod, &c.Company, &c.Department, &res.Score,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}

func (r *chunkRepository) ListAll(ctx context.Context) ([]domain.Chunk, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM document_chunks
		ORDER BY document ASC, chunk_index ASC
	`, chunkColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(
			&c.ID, &c.Content, &c.Document, &c.PageNumber, &c.ChunkIndex,
			&c.WordCount, &c.FiscalPeriod, &c.Company, &c.Department,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return chunks, nil
}

func (r *chunkRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM document_chunks").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}
