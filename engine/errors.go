package engine

import (
	"fmt"
	"strings"
)

// QueryErrorKind classifies query failures.
type QueryErrorKind int

const (
	UnknownYear QueryErrorKind = iota + 1
	EmptySelection
	NoData
	UnknownEntity
	InvalidSpec
)

func (k QueryErrorKind) String() string {
	switch k {
	case UnknownYear:
		return "unknown year"
	case EmptySelection:
		return "empty selection"
	case NoData:
		return "no data"
	case UnknownEntity:
		return "unknown entity"
	case InvalidSpec:
		return "invalid query"
	default:
		return "unknown"
	}
}

// Kind-only sentinels for errors.Is.
var (
	ErrUnknownYear    = &QueryError{Kind: UnknownYear}
	ErrEmptySelection = &QueryError{Kind: EmptySelection}
	ErrNoData         = &QueryError{Kind: NoData}
	ErrUnknownEntity  = &QueryError{Kind: UnknownEntity}
	ErrInvalidSpec    = &QueryError{Kind: InvalidSpec}
)

// QueryError reports a query the index cannot answer.
type QueryError struct {
	Kind        QueryErrorKind
	Dataset     string
	Year        int
	Entity      string
	Suggestions []string // close entity names for UnknownEntity
	Detail      string
}

func (e *QueryError) Error() string {
	var b strings.Builder
	b.WriteString("query")
	if e.Dataset != "" {
		fmt.Fprintf(&b, " %s", e.Dataset)
	}
	fmt.Fprintf(&b, ": %s", e.Kind)
	switch e.Kind {
	case UnknownYear:
		fmt.Fprintf(&b, " %d", e.Year)
	case UnknownEntity:
		fmt.Fprintf(&b, " %q", e.Entity)
		if len(e.Suggestions) > 0 {
			fmt.Fprintf(&b, " (did you mean %s?)", strings.Join(e.Suggestions, ", "))
		}
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	return b.String()
}

// Is matches any QueryError of the same kind.
func (e *QueryError) Is(target error) bool {
	t, ok := target.(*QueryError)
	return ok && t.Kind == e.Kind
}
