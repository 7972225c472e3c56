package loader

import "fmt"

// ErrorKind classifies why a source could not be loaded.
type ErrorKind int

const (
	UnsupportedFormat ErrorKind = iota + 1
	IOFailure
	ParseFailure
)

func (k ErrorKind) String() string {
	switch k {
	case UnsupportedFormat:
		return "unsupported format"
	case IOFailure:
		return "io failure"
	case ParseFailure:
		return "parse failure"
	default:
		return "unknown"
	}
}

// Kind-only sentinels for errors.Is.
var (
	ErrUnsupportedFormat = &LoadError{Kind: UnsupportedFormat}
	ErrIOFailure         = &LoadError{Kind: IOFailure}
	ErrParseFailure      = &LoadError{Kind: ParseFailure}
)

// LoadError reports a failed load of one source.
type LoadError struct {
	Kind   ErrorKind
	Source string
	Err    error
}

func newLoadError(kind ErrorKind, source string, err error) *LoadError {
	return &LoadError{Kind: kind, Source: source, Err: err}
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("load %s: %s", e.Source, e.Kind)
	}
	return fmt.Sprintf("load %s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is matches any LoadError of the same kind, so callers can test against
// the package sentinels.
func (e *LoadError) Is(target error) bool {
	t, ok := target.(*LoadError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}
