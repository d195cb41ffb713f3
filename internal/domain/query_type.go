package domain

import "fmt"

// QueryType drives orchestration branching. It is produced once per query by
// the classifier and never persisted.
type QueryType int

const (
	// QueryTypeSQL answers from the structured facts table only.
	QueryTypeSQL QueryType = iota
	// QueryTypeVector answers from the unstructured passage store only.
	QueryTypeVector
	// QueryTypeHybrid combines both stores. It is also the fail-closed
	// default when classification is unavailable.
	QueryTypeHybrid
)

const (
	labelSQL    = "sql_only"
	labelVector = "vector_only"
	labelHybrid = "hybrid"
)

// ParseQueryType maps a classifier label to a QueryType. Labels outside the
// fixed set are an error; callers decide the fallback.
func ParseQueryType(label string) (QueryType, error) {
	switch label {
	case labelSQL:
		return QueryTypeSQL, nil
	case labelVector:
		return QueryTypeVector, nil
	case labelHybrid:
		return QueryTypeHybrid, nil
	default:
		return QueryTypeHybrid, fmt.Errorf("unrecognized query type label: %q", label)
	}
}

// ClassifierLabels returns the closed label set the classifier must choose from.
func ClassifierLabels() []string {
	return []string{labelSQL, labelVector, labelHybrid}
}

func (t QueryType) String() string {
	switch t {
	case QueryTypeSQL:
		return labelSQL
	case QueryTypeVector:
		return labelVector
	case QueryTypeHybrid:
		return labelHybrid
	default:
		return fmt.Sprintf("QueryType(%d)", int(t))
	}
}
