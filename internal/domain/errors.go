package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyCorpus is returned when building a keyword index over zero chunks.
var ErrEmptyCorpus = errors.New("cannot build keyword index over empty corpus")

// ErrIndexCorrupt is returned when a persisted keyword index fails its
// integrity checks on load (bad header, version mismatch, record miscount).
var ErrIndexCorrupt = errors.New("keyword index file is corrupt")

// QueryError is the user-visible terminal error: empty input, or every
// dispatched retrieval path failed.
type QueryError struct {
	Reason string
	Cause  error
}

func (e *QueryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("query failed: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("query failed: %s", e.Reason)
}

func (e *QueryError) Unwrap() error { return e.Cause }

// RetrievalError indicates an individual backend was unreachable. The
// orchestrator decides whether it is fatal based on the query type.
type RetrievalError struct {
	Backend string
	Cause   error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("%s backend unreachable: %v", e.Backend, e.Cause)
}

func (e *RetrievalError) Unwrap() error { return e.Cause }

// SQLGenerationError indicates the NL-to-SQL path produced a statement that
// could not be executed (malformed SQL, schema mismatch).
type SQLGenerationError struct {
	Statement string
	Cause     error
}

func (e *SQLGenerationError) Error() string {
	return fmt.Sprintf("generated SQL failed to execute: %v", e.Cause)
}

func (e *SQLGenerationError) Unwrap() error { return e.Cause }

// UnsafeQueryError indicates a generated statement failed safety validation
// and was never executed.
type UnsafeQueryError struct {
	Statement string
	Reason    string
}

func (e *UnsafeQueryError) Error() string {
	return fmt.Sprintf("unsafe generated SQL rejected: %s", e.Reason)
}
