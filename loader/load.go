package loader

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ============================================================================
// LOADER: Raw tabular sources → RawTable
// ============================================================================
// Load reads one file, Read reads any io.Reader, LoadAll reads many files
// concurrently. Each load produces an independent table; a failure is
// scoped to its own source.
// ============================================================================

// Option configures loading via functional options.
type Option func(*options)

type options struct {
	delimiter rune // 0 = by format
	workers   int
	logger    *logrus.Entry
}

// WithDelimiter forces the field delimiter for delimited text formats.
func WithDelimiter(d rune) Option {
	return func(o *options) { o.delimiter = d }
}

// WithWorkers bounds how many sources LoadAll reads at once.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(l *logrus.Entry) Option {
	return func(o *options) { o.logger = l }
}

func applyOptions(opts []Option) *options {
	o := &options{
		workers: 4,
		logger:  logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.workers < 1 {
		o.workers = 1
	}
	return o
}

// Load reads the file at path. The format is chosen by extension.
func Load(path string, opts ...Option) (*RawTable, error) {
	return load(path, applyOptions(opts))
}

func load(path string, o *options) (*RawTable, error) {
	format := FormatFromPath(path)
	if format == FormatUnknown {
		return nil, newLoadError(UnsupportedFormat, path,
			errors.Errorf("unsupported file extension %q", filepath.Ext(path)))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, newLoadError(IOFailure, path, err)
	}
	defer func() { _ = f.Close() }()

	return read(path, format, f, o)
}

// Read reads a source of the given format from r. name identifies the
// source in errors and in the returned table.
func Read(name string, format Format, r io.Reader, opts ...Option) (*RawTable, error) {
	return read(name, format, r, applyOptions(opts))
}

func read(name string, format Format, r io.Reader, o *options) (*RawTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, newLoadError(IOFailure, name, errors.Wrap(err, "read source"))
	}

	var table *RawTable
	switch format {
	case FormatCSV:
		table, err = readDelimited(name, data, pick(o.delimiter, ','))
	case FormatTSV:
		table, err = readDelimited(name, data, pick(o.delimiter, '\t'))
	case FormatText:
		table, err = readDelimited(name, data, pick(o.delimiter, sniffDelimiter(data)))
	case FormatXLSX:
		table, err = readWorkbook(name, data)
	default:
		return nil, newLoadError(UnsupportedFormat, name, errors.Errorf("unsupported format %s", format))
	}
	if err != nil {
		o.logger.WithFields(logrus.Fields{"source": name, "format": format.String()}).
			WithError(err).Warn("load failed")
		return nil, err
	}

	o.logger.WithFields(logrus.Fields{
		"source":  name,
		"format":  format.String(),
		"columns": len(table.Columns),
		"rows":    len(table.Rows),
	}).Debug("📥 loaded source")
	return table, nil
}

func pick(override, fallback rune) rune {
	if override != 0 {
		return override
	}
	return fallback
}

// Result is the outcome of loading one source in LoadAll.
type Result struct {
	Source string
	Table  *RawTable
	Err    error
}

// LoadAll loads every path concurrently and returns one Result per path,
// in input order. A failing source never blocks the others.
func LoadAll(paths []string, opts ...Option) []Result {
	o := applyOptions(opts)
	results := make([]Result, len(paths))

	var g errgroup.Group
	g.SetLimit(o.workers)
	for i, path := range paths {
		g.Go(func() error {
			table, err := load(path, o)
			results[i] = Result{Source: path, Table: table, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
