package usecase

import (
	"strings"

	"finrag-orchestrator/internal/domain"
)

// forbiddenKeywords are statement shapes that must never reach the facts
// table. The generated SQL is untrusted LLM output; anything beyond a single
// read-only SELECT is rejected before execution.
var forbiddenKeywords = []string{
	"insert", "update", "delete", "drop", "alter", "create",
	"truncate", "grant", "revoke", "attach", "pragma", "merge",
	"copy", "vacuum", "execute", "call",
}

// ValidateStatement checks that stmt is a single read-only SELECT. It returns
// *domain.UnsafeQueryError for anything else; the statement must not be
// executed in that case.
func ValidateStatement(stmt string) error {
	trimmed := strings.TrimSpace(stmt)
	trimmed = strings.TrimSuffix(trimmed, ";")
	if trimmed == "" {
		return &domain.UnsafeQueryError{Statement: stmt, Reason: "empty statement"}
	}

	lower := strings.ToLower(trimmed)

	if !strings.HasPrefix(lower, "select") {
		return &domain.UnsafeQueryError{Statement: stmt, Reason: "statement is not a SELECT"}
	}
	if strings.Contains(lower, ";") {
		return &domain.UnsafeQueryError{Statement: stmt, Reason: "multiple statements"}
	}
	if strings.Contains(lower, "--") || strings.Contains(lower, "/*") {
		return &domain.UnsafeQueryError{Statement: stmt, Reason: "comment markers"}
	}

	for _, word := range tokenizeSQL(lower) {
		for _, kw := range forbiddenKeywords {
			if word == kw {
				return &domain.UnsafeQueryError{Statement: stmt, Reason: "forbidden keyword: " + kw}
			}
		}
	}

	return nil
}

// tokenizeSQL splits a statement into bare words so forbidden-keyword checks
// do not false-positive on column values like 'dropbox'.
func tokenizeSQL(stmt string) []string {
	return strings.FieldsFunc(stmt, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return false
		default:
			return true
		}
	})
}
