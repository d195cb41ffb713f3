package domain

import "context"

// TextClassifier is the external text-classification capability. It is
// network-bound and non-deterministic; callers must treat both errors and
// out-of-set labels as recoverable.
type TextClassifier interface {
	// ClassifyText returns one label from the provided closed set.
	ClassifyText(ctx context.Context, text string, labels []string) (string, error)
}

// SQLGenerator is the external NL-to-SQL capability. The returned statement
// is untrusted and must pass safety validation before execution.
type SQLGenerator interface {
	GenerateSQL(ctx context.Context, query string, schema string) (string, error)
}
