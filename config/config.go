package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/yearbook/loader"
	"github.com/spektr-org/yearbook/schema"
)

// DefaultEnvFiles are read, when present, before the environment is parsed.
var DefaultEnvFiles = []string{".env", ".env.local"}

// LoadEnv loads the env files that exist and returns how many were read.
// Variables already set in the process environment win.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Profile overrides key columns and value selection for one dataset.
type Profile struct {
	EntityKeys      []string `yaml:"entityKeys"`
	TimeKeys        []string `yaml:"timeKeys"`
	ValueColumn     string   `yaml:"valueColumn"`
	MeasureContains string   `yaml:"measureContains"`
}

type profileFile struct {
	Datasets map[string]Profile `yaml:"datasets"`
}

// Config is the process configuration.
type Config struct {
	EntityKeys   []string `env:"YEARBOOK_ENTITY_KEYS" envDefault:"Country,country_name"`
	TimeKeys     []string `env:"YEARBOOK_TIME_KEYS" envDefault:"Year"`
	LogLevel     string   `env:"YEARBOOK_LOG_LEVEL" envDefault:"warn"`
	LoadWorkers  int      `env:"YEARBOOK_LOAD_WORKERS" envDefault:"4"`
	Delimiter    string   `env:"YEARBOOK_DELIMITER"`
	ProfilesPath string   `env:"YEARBOOK_PROFILES"`

	// Profiles are keyed by file base name ("life.csv").
	Profiles map[string]Profile

	logger *logrus.Logger
}

// Load reads env files, parses the environment and loads the profile file
// if one is configured.
func Load(envFiles ...string) (*Config, error) {
	if _, err := LoadEnv(envFiles); err != nil {
		return nil, errors.Wrap(err, "load env files")
	}

	c := &Config{}
	if err := env.Parse(c); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}
	if err := c.validate(); err != nil {
		return nil, err
	}

	if c.ProfilesPath != "" {
		profiles, err := LoadProfiles(c.ProfilesPath)
		if err != nil {
			return nil, err
		}
		c.Profiles = profiles
	}

	c.logger = logrus.New()
	c.logger.SetOutput(os.Stderr)
	c.logger.SetLevel(c.LogrusLogLevel())
	return c, nil
}

func (c *Config) validate() error {
	c.EntityKeys = trimAll(c.EntityKeys)
	c.TimeKeys = trimAll(c.TimeKeys)
	if len(c.EntityKeys) == 0 {
		return errors.New("YEARBOOK_ENTITY_KEYS must name at least one column")
	}

	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "silent", "error", "warn", "info", "debug":
	default:
		return fmt.Errorf("invalid YEARBOOK_LOG_LEVEL=%q (expected silent|error|warn|info|debug)", c.LogLevel)
	}

	if c.LoadWorkers < 1 {
		return fmt.Errorf("YEARBOOK_LOAD_WORKERS must be positive, got %d", c.LoadWorkers)
	}

	if c.Delimiter != "" {
		d := c.Delimiter
		if d == `\t` {
			d = "\t"
		}
		if utf8.RuneCountInString(d) != 1 {
			return fmt.Errorf("invalid YEARBOOK_DELIMITER=%q (expected one character)", c.Delimiter)
		}
		c.Delimiter = d
	}
	return nil
}

// LoadProfiles reads a YAML profile file:
//
//	datasets:
//	  life.csv:
//	    valueColumn: Life expectancy
//	  aqi.csv:
//	    entityKeys: [Country]
//	    measureContains: AQI Value
func LoadProfiles(path string) (map[string]Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open profiles %s", path)
	}
	defer func() { _ = f.Close() }()

	var pf profileFile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&pf); err != nil {
		return nil, errors.Wrapf(err, "decode profiles %s", path)
	}
	if pf.Datasets == nil {
		pf.Datasets = map[string]Profile{}
	}
	return pf.Datasets, nil
}

// Logger returns the configured logger, writing to stderr.
func (c *Config) Logger() *logrus.Logger {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.SetOutput(os.Stderr)
		c.logger.SetLevel(c.LogrusLogLevel())
	}
	return c.logger
}

// SetLogLevel replaces LogLevel and applies it to the logger.
func (c *Config) SetLogLevel(level string) error {
	prev := c.LogLevel
	c.LogLevel = level
	if err := c.validate(); err != nil {
		c.LogLevel = prev
		return err
	}
	c.Logger().SetLevel(c.LogrusLogLevel())
	return nil
}

// LogrusLogLevel maps LogLevel to a logrus level.
func (c *Config) LogrusLogLevel() logrus.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.WarnLevel
	}
}

// SchemaConfig returns the global key columns.
func (c *Config) SchemaConfig() schema.Config {
	return schema.Config{EntityKeys: c.EntityKeys, TimeKeys: c.TimeKeys}
}

// SchemaFor returns the key columns for source, taking a profile's keys
// over the global ones.
func (c *Config) SchemaFor(source string) schema.Config {
	cfg := c.SchemaConfig()
	if p, ok := c.profile(source); ok {
		if len(p.EntityKeys) > 0 {
			cfg.EntityKeys = p.EntityKeys
		}
		if len(p.TimeKeys) > 0 {
			cfg.TimeKeys = p.TimeKeys
		}
	}
	return cfg
}

// ValueColumnFor returns the profile's long-layout value column, if any.
func (c *Config) ValueColumnFor(source string) string {
	p, _ := c.profile(source)
	return p.ValueColumn
}

// MeasureContainsFor returns the profile's measurement substring, if any.
func (c *Config) MeasureContainsFor(source string) string {
	p, _ := c.profile(source)
	return p.MeasureContains
}

// LoaderOptions translates the loading settings into loader options.
func (c *Config) LoaderOptions() []loader.Option {
	opts := []loader.Option{loader.WithWorkers(c.LoadWorkers)}
	if c.Delimiter != "" {
		r, _ := utf8.DecodeRuneInString(c.Delimiter)
		opts = append(opts, loader.WithDelimiter(r))
	}
	return opts
}

func (c *Config) profile(source string) (Profile, bool) {
	p, ok := c.Profiles[filepath.Base(source)]
	return p, ok
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
