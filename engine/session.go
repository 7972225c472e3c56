package engine

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/spektr-org/yearbook/loader"
	"github.com/spektr-org/yearbook/schema"
)

// ============================================================================
// SESSION: Engine API consumed by the UI layer
// ============================================================================
// Entry points:
//   Load(paths...)           → datasets (each loaded and normalized, or failed)
//   CompareSchemas(datasets) → CompatibilityReport
//   BuildIndex(dataset)      → Index, owned by the session
//   Query(index, spec)       → rows for one year
//   Aggregate(dataset, spec) → ranked composite scores
//
// A session owns its datasets and indexes. Load and BuildIndex replace them
// wholesale; queries only read.
// ============================================================================

// Dataset is one source after loading and normalization.
type Dataset struct {
	Source string
	Table  *schema.Table
	Err    error
}

// OK reports whether the dataset loaded and normalized.
func (d Dataset) OK() bool { return d.Err == nil && d.Table != nil }

// Session holds the datasets and indexes of one front-end.
type Session struct {
	schema   schema.Config
	profiles Profiles
	loadOpts []loader.Option
	logger   *logrus.Entry

	mu       sync.RWMutex
	datasets []Dataset
	indexes  map[string]*Index
}

// NewSession creates a session with the default key columns.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		schema:  schema.DefaultConfig(),
		logger:  logrus.NewEntry(logrus.StandardLogger()),
		indexes: make(map[string]*Index),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads and normalizes every path. Failures are reported per dataset
// and never stop the others. The result replaces the session's datasets.
func (s *Session) Load(paths ...string) []Dataset {
	opts := append([]loader.Option{loader.WithLogger(s.logger)}, s.loadOpts...)
	results := loader.LoadAll(paths, opts...)

	datasets := make([]Dataset, len(results))
	for i, r := range results {
		ds := Dataset{Source: r.Source, Err: r.Err}
		if r.Err == nil {
			ds.Table, ds.Err = schema.Normalize(r.Table, s.schemaFor(r.Source))
		}
		if ds.Err != nil {
			s.logger.WithField("source", r.Source).WithError(ds.Err).Warn("❌ dataset unavailable")
		}
		datasets[i] = ds
	}

	s.mu.Lock()
	s.datasets = datasets
	s.indexes = make(map[string]*Index)
	s.mu.Unlock()

	s.logger.WithField("datasets", len(datasets)).Debug("📂 session loaded")
	return datasets
}

// Datasets returns the datasets of the last Load.
func (s *Session) Datasets() []Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Dataset, len(s.datasets))
	copy(out, s.datasets)
	return out
}

// Dataset looks up a loaded dataset by source.
func (s *Session) Dataset(source string) (Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ds := range s.datasets {
		if ds.Source == source {
			return ds, true
		}
	}
	return Dataset{}, false
}

// CompareSchemas reconciles the column sets of datasets. Failed datasets
// are listed in the report and left out of the intersection.
func (s *Session) CompareSchemas(datasets []Dataset) schema.CompatibilityReport {
	results := make([]schema.DatasetResult, len(datasets))
	for i, ds := range datasets {
		results[i] = schema.DatasetResult{Source: ds.Source, Table: ds.Table, Err: ds.Err}
	}
	report := schema.Reconcile(results)

	s.logger.WithFields(logrus.Fields{
		"datasets": len(report.Datasets),
		"common":   len(report.Common),
		"verdict":  string(report.Verdict),
	}).Debug("🔍 schemas compared")
	return report
}

// BuildIndex builds the dataset's index and stores it on the session,
// replacing any earlier one. A profile's value column applies unless opts
// set one.
func (s *Session) BuildIndex(ds Dataset, opts ...Option) (*Index, error) {
	if !ds.OK() {
		return nil, errors.Wrapf(datasetErr(ds), "build index for %s", ds.Source)
	}

	base := []Option{WithLogger(s.logger)}
	if s.profiles != nil {
		if col := s.profiles.ValueColumnFor(ds.Source); col != "" {
			base = append(base, WithValueColumn(col))
		}
	}

	idx, err := BuildIndex(ds.Table, append(base, opts...)...)
	if err != nil {
		return nil, errors.Wrapf(err, "build index for %s", ds.Source)
	}

	s.mu.Lock()
	s.indexes[ds.Source] = idx
	s.mu.Unlock()
	return idx, nil
}

// Index returns the index last built for source.
func (s *Session) Index(source string) (*Index, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indexes[source]
	return idx, ok
}

// Query normalizes spec and runs it against idx.
func (s *Session) Query(idx *Index, spec QuerySpec) (*Result, error) {
	spec = NormalizeQuerySpec(spec)
	res, err := Query(idx, spec)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"dataset": idx.Dataset,
		"year":    res.Year,
		"rows":    len(res.Rows),
		"matched": res.Matched,
	}).Debug("🔧 query")
	return res, nil
}

// Series returns one entity's values across years.
func (s *Session) Series(idx *Index, entity string) ([]Point, error) {
	return idx.Series(entity)
}

// Aggregate ranks the dataset's groups by composite score.
func (s *Session) Aggregate(ds Dataset, spec AggregateSpec) (*Ranking, error) {
	if !ds.OK() {
		return nil, errors.Wrapf(datasetErr(ds), "aggregate %s", ds.Source)
	}
	if spec.ColumnsContaining == "" && len(spec.Columns) == 0 && s.profiles != nil {
		spec.ColumnsContaining = measureContainsFor(s.profiles, ds.Source)
	}

	ranking, err := Aggregate(ds.Table, spec)
	if err != nil {
		return nil, errors.Wrapf(err, "aggregate %s", ds.Source)
	}
	s.logger.WithFields(logrus.Fields{
		"dataset": ds.Source,
		"groups":  ranking.Groups,
		"columns": len(ranking.Columns),
	}).Debug("📊 aggregate")
	return ranking, nil
}

func (s *Session) schemaFor(source string) schema.Config {
	if s.profiles != nil {
		return s.profiles.SchemaFor(source)
	}
	return s.schema
}

// measureContainsFor reads an optional measurement substring from profiles
// that provide one.
func measureContainsFor(p Profiles, source string) string {
	if mp, ok := p.(interface{ MeasureContainsFor(string) string }); ok {
		return mp.MeasureContainsFor(source)
	}
	return ""
}

func datasetErr(ds Dataset) error {
	if ds.Err != nil {
		return ds.Err
	}
	return errors.New("dataset has no table")
}
