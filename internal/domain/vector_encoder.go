package domain

import "context"

// VectorEncoder turns text into embeddings. The embedding dimension is fixed
// per deployment and must match the vector index's configured dimension; a
// mismatch is a configuration error, not something to recover from at runtime.
type VectorEncoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	Version() string
}
