package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/spektr-org/yearbook/loader"
	"github.com/spektr-org/yearbook/schema"
)

// ============================================================================
// ENGINE OPTIONS: Functional options for BuildIndex() and NewSession()
// ============================================================================

// Option configures index building via functional options pattern.
type Option func(*config)

type config struct {
	ValueColumn string // long layout: measurement holding the values
	Logger      *logrus.Entry
}

// WithValueColumn names the value column of a long-layout table.
// Wide tables ignore it.
func WithValueColumn(column string) Option {
	return func(c *config) {
		c.ValueColumn = column
	}
}

// WithLogger sets the logger for index diagnostics.
func WithLogger(l *logrus.Entry) Option {
	return func(c *config) {
		c.Logger = l
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Logger: logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// ============================================================================
// SESSION OPTIONS
// ============================================================================

// Profiles supplies per-dataset configuration keyed by source path.
type Profiles interface {
	SchemaFor(source string) schema.Config
	ValueColumnFor(source string) string
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSchemaConfig sets the key columns used for every dataset that has no
// profile.
func WithSchemaConfig(cfg schema.Config) SessionOption {
	return func(s *Session) { s.schema = cfg }
}

// WithProfiles resolves per-dataset key columns and value columns.
func WithProfiles(p Profiles) SessionOption {
	return func(s *Session) { s.profiles = p }
}

// WithLoadOptions passes options through to the loader.
func WithLoadOptions(opts ...loader.Option) SessionOption {
	return func(s *Session) { s.loadOpts = append(s.loadOpts, opts...) }
}

// WithSessionLogger sets the session logger. It is also handed to the
// loader and to BuildIndex.
func WithSessionLogger(l *logrus.Entry) SessionOption {
	return func(s *Session) { s.logger = l }
}
