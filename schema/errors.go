package schema

import (
	"fmt"
	"strings"
)

// ErrorKind classifies schema failures.
type ErrorKind int

const (
	NoEntityColumn ErrorKind = iota + 1
	DuplicateColumn
	NoTimeColumn
	AmbiguousValueColumn
	NoMeasurementColumn
)

func (k ErrorKind) String() string {
	switch k {
	case NoEntityColumn:
		return "no entity column"
	case DuplicateColumn:
		return "duplicate column"
	case NoTimeColumn:
		return "no time column"
	case AmbiguousValueColumn:
		return "ambiguous value column"
	case NoMeasurementColumn:
		return "no measurement column"
	default:
		return "unknown"
	}
}

// Kind-only sentinels for errors.Is.
var (
	ErrNoEntityColumn       = &SchemaError{Kind: NoEntityColumn}
	ErrDuplicateColumn      = &SchemaError{Kind: DuplicateColumn}
	ErrNoTimeColumn         = &SchemaError{Kind: NoTimeColumn}
	ErrAmbiguousValueColumn = &SchemaError{Kind: AmbiguousValueColumn}
	ErrNoMeasurementColumn  = &SchemaError{Kind: NoMeasurementColumn}
)

// SchemaError reports a dataset whose columns cannot serve a request.
type SchemaError struct {
	Kind   ErrorKind
	Table  string
	Column string   // offending or missing identifier, when there is one
	Labels []string // raw labels involved (duplicates, candidates)
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "schema %s: %s", e.Table, e.Kind)
	if e.Column != "" {
		fmt.Fprintf(&b, " %q", e.Column)
	}
	if len(e.Labels) > 0 {
		fmt.Fprintf(&b, " (%s)", quoteAll(e.Labels))
	}
	return b.String()
}

// Is matches any SchemaError of the same kind.
func (e *SchemaError) Is(target error) bool {
	t, ok := target.(*SchemaError)
	return ok && t.Kind == e.Kind
}

func quoteAll(labels []string) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = fmt.Sprintf("%q", l)
	}
	return strings.Join(parts, ", ")
}
