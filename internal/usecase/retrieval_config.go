package usecase

import (
	"fmt"
	"time"
)

// RetrievalConfig holds the tunable parameters for hybrid retrieval. Values
// are loaded once at startup and threaded through constructors; nothing reads
// them from ambient state.
type RetrievalConfig struct {
	// DefaultTopK is the result count used when a request does not set one.
	DefaultTopK int

	// MaxTopK caps the per-request result count.
	MaxTopK int

	// CandidateMultiplier widens the vector candidate pool before fusion:
	// the orchestrator requests max(CandidateMultiplier*topK, MinCandidates)
	// so RRF has enough material to re-rank. Requesting exactly topK before
	// fusion silently degrades fusion quality.
	CandidateMultiplier int

	// MinCandidates is the floor of the widened candidate pool.
	MinCandidates int

	// RRFK is the Reciprocal Rank Fusion smoothing constant. The source
	// system uses 60.
	RRFK float64

	// Alpha is the semantic-trust weight in [0,1]. The source system uses
	// 0.7 (semantic-leaning).
	Alpha float64

	// QueryTimeout bounds one whole query: classification, all retrieval
	// branches, and fusion. In-flight branches are cancelled on expiry.
	QueryTimeout time.Duration

	// ClassifierTimeout bounds the single classification round trip.
	ClassifierTimeout time.Duration

	// ClassifierCacheSize is the LRU size for classification results.
	// Zero disables the cache.
	ClassifierCacheSize int
}

// DefaultRetrievalConfig returns the source-system defaults.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		DefaultTopK:         5,
		MaxTopK:             50,
		CandidateMultiplier: 4,
		MinCandidates:       20,
		RRFK:                60.0,
		Alpha:               0.7,
		QueryTimeout:        30 * time.Second,
		ClassifierTimeout:   10 * time.Second,
		ClassifierCacheSize: 256,
	}
}

// Validate checks the configuration at startup.
func (c RetrievalConfig) Validate() error {
	if c.DefaultTopK < 1 || c.DefaultTopK > c.MaxTopK {
		return fmt.Errorf("defaultTopK must be in [1, %d], got %d", c.MaxTopK, c.DefaultTopK)
	}
	if c.MaxTopK < 1 || c.MaxTopK > 50 {
		return fmt.Errorf("maxTopK must be in [1, 50], got %d", c.MaxTopK)
	}
	if c.CandidateMultiplier < 1 {
		return fmt.Errorf("candidateMultiplier must be positive, got %d", c.CandidateMultiplier)
	}
	if c.MinCandidates < 1 {
		return fmt.Errorf("minCandidates must be positive, got %d", c.MinCandidates)
	}
	if c.RRFK <= 0 {
		return fmt.Errorf("rrfK must be positive, got %f", c.RRFK)
	}
	if c.Alpha < 0 || c.Alpha > 1 {
		return fmt.Errorf("alpha must be in [0.0, 1.0], got %f", c.Alpha)
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("queryTimeout must be positive, got %v", c.QueryTimeout)
	}
	if c.ClassifierTimeout <= 0 {
		return fmt.Errorf("classifierTimeout must be positive, got %v", c.ClassifierTimeout)
	}
	return nil
}

// CandidateLimit returns the widened vector candidate count for a requested
// topK.
func (c RetrievalConfig) CandidateLimit(topK int) int {
	limit := c.CandidateMultiplier * topK
	if limit < c.MinCandidates {
		limit = c.MinCandidates
	}
	return limit
}
