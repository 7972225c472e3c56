package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/spektr-org/yearbook/config"
	"github.com/spektr-org/yearbook/engine"
	"github.com/spektr-org/yearbook/loader"
	"github.com/spektr-org/yearbook/schema"
)

// ============================================================================
// YEARBOOK CLI: Entity × Year datasets from the terminal
// ============================================================================

const version = "0.3.0"

const (
	exitOK         = 0
	exitValidation = 2
	exitUsage      = 3
	exitLoad       = 4
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "%s %v\n", color.RedString("Error:"), err)
		return exitCode(err)
	}
	return exitOK
}

// ============================================================================
// ERRORS → EXIT CODES
// ============================================================================

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...interface{}) error {
	return &cliError{code: exitUsage, err: fmt.Errorf(format, args...)}
}

// exitCode maps an error to the process exit code. Errors that carry no
// known kind are treated as usage errors; cobra's own flag and argument
// errors land there.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	var le *loader.LoadError
	if errors.As(err, &le) {
		return exitLoad
	}
	var se *schema.SchemaError
	if errors.As(err, &se) {
		return exitValidation
	}
	var qe *engine.QueryError
	if errors.As(err, &qe) {
		return exitValidation
	}
	return exitUsage
}

// ============================================================================
// ROOT COMMAND
// ============================================================================

type app struct {
	stdout io.Writer
	stderr io.Writer

	format   string
	envFiles []string
	profiles string
	logLevel string

	cfg     *config.Config
	session *engine.Session
	out     renderer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "yearbook",
		Short: "Query entity × year datasets",
		Long: `Yearbook loads entity × year datasets (CSV, TSV, XLSX), checks that they
share columns, and answers per-year, per-entity and grouped questions.

Environment:
  YEARBOOK_ENTITY_KEYS   entity column names, in priority order (default Country,country_name)
  YEARBOOK_TIME_KEYS     time column names (default Year)
  YEARBOOK_LOG_LEVEL     silent|error|warn|info|debug (default warn)
  YEARBOOK_LOAD_WORKERS  parallel loads (default 4)
  YEARBOOK_DELIMITER     force a field delimiter for delimited files
  YEARBOOK_PROFILES      YAML file with per-dataset overrides`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup() },
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.format, "format", "f", "table", "Output format: table, json, pretty, csv")
	pf.StringSliceVar(&a.envFiles, "env-file", config.DefaultEnvFiles, "Env files read before the environment")
	pf.StringVar(&a.profiles, "profiles", "", "YAML profile file (overrides YEARBOOK_PROFILES)")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level (overrides YEARBOOK_LOG_LEVEL)")

	root.AddCommand(
		newInspectCmd(a),
		newCompareCmd(a),
		newQueryCmd(a),
		newEntitiesCmd(a),
		newSeriesCmd(a),
		newMeasuresCmd(a),
		newAggregateCmd(a),
		newVersionCmd(a),
	)
	return root
}

func (a *app) setup() error {
	switch a.format {
	case formatTable, formatJSON, formatPretty, formatCSV:
	default:
		return usageErrorf("unknown format %q (expected table, json, pretty or csv)", a.format)
	}
	a.out = renderer{w: a.stdout, format: a.format}

	cfg, err := config.Load(a.envFiles...)
	if err != nil {
		return &cliError{code: exitUsage, err: err}
	}
	if a.profiles != "" {
		profiles, err := config.LoadProfiles(a.profiles)
		if err != nil {
			return &cliError{code: exitUsage, err: err}
		}
		cfg.Profiles = profiles
	}
	if a.logLevel != "" {
		if err := cfg.SetLogLevel(a.logLevel); err != nil {
			return &cliError{code: exitUsage, err: err}
		}
	}

	logger := cfg.Logger()
	logger.SetOutput(a.stderr)
	a.cfg = cfg
	a.session = engine.NewSession(
		engine.WithSchemaConfig(cfg.SchemaConfig()),
		engine.WithProfiles(cfg),
		engine.WithLoadOptions(cfg.LoaderOptions()...),
		engine.WithSessionLogger(logrus.NewEntry(logger)),
	)
	return nil
}

// loadOne loads a single dataset. A dataset that failed to load or
// normalize comes back as its error.
func (a *app) loadOne(path string) (engine.Dataset, error) {
	ds := a.session.Load(path)[0]
	if !ds.OK() {
		return ds, ds.Err
	}
	return ds, nil
}

// index loads path and builds its index.
func (a *app) index(path, valueColumn string) (*engine.Index, error) {
	ds, err := a.loadOne(path)
	if err != nil {
		return nil, err
	}
	var opts []engine.Option
	if valueColumn != "" {
		opts = append(opts, engine.WithValueColumn(valueColumn))
	}
	return a.session.BuildIndex(ds, opts...)
}

// indexes loads every path together and builds one index per dataset.
// The first dataset that fails stops the command.
func (a *app) indexes(paths []string) ([]*engine.Index, error) {
	datasets := a.session.Load(paths...)
	out := make([]*engine.Index, 0, len(datasets))
	for _, ds := range datasets {
		if !ds.OK() {
			return nil, ds.Err
		}
		idx, err := a.session.BuildIndex(ds)
		if err != nil {
			return nil, err
		}
		out = append(out, idx)
	}
	return out, nil
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Print the version",
		Args:              cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(a.stdout, "yearbook %s\n", version)
		},
	}
}
