package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/yearbook/schema"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"YEARBOOK_ENTITY_KEYS", "YEARBOOK_TIME_KEYS", "YEARBOOK_LOG_LEVEL",
		"YEARBOOK_LOAD_WORKERS", "YEARBOOK_DELIMITER", "YEARBOOK_PROFILES",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, schema.DefaultConfig(), c.SchemaConfig())
	assert.Equal(t, []string{"Country", "country_name"}, c.EntityKeys)
	assert.Equal(t, 4, c.LoadWorkers)
	assert.Equal(t, logrus.WarnLevel, c.Logger().GetLevel())
	assert.Len(t, c.LoaderOptions(), 1)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("YEARBOOK_ENTITY_KEYS", " Country Name ,Country")
	t.Setenv("YEARBOOK_TIME_KEYS", "Year,year")
	t.Setenv("YEARBOOK_LOG_LEVEL", "debug")
	t.Setenv("YEARBOOK_LOAD_WORKERS", "2")
	t.Setenv("YEARBOOK_DELIMITER", `\t`)
	t.Setenv("YEARBOOK_PROFILES", "")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"Country Name", "Country"}, c.EntityKeys)
	assert.Equal(t, []string{"Year", "year"}, c.TimeKeys)
	assert.Equal(t, "\t", c.Delimiter)
	assert.Equal(t, logrus.DebugLevel, c.LogrusLogLevel())
	assert.Len(t, c.LoaderOptions(), 2)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, filepath.Join(dir, ".env"), "YEARBOOK_LOAD_WORKERS=7\n")

	t.Setenv("YEARBOOK_LOAD_WORKERS", "")
	require.NoError(t, os.Unsetenv("YEARBOOK_LOAD_WORKERS"))

	n, err := LoadEnv([]string{envFile, filepath.Join(dir, ".env.local")})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, c.LoadWorkers)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"YEARBOOK_LOG_LEVEL", "loud"},
		{"YEARBOOK_LOAD_WORKERS", "0"},
		{"YEARBOOK_LOAD_WORKERS", "many"},
		{"YEARBOOK_DELIMITER", ";;"},
		{"YEARBOOK_ENTITY_KEYS", " , "},
		{"YEARBOOK_PROFILES", "/nonexistent/profiles.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestProfiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "profiles.yaml"), `datasets:
  life.csv:
    valueColumn: Life expectancy
  aqi.csv:
    entityKeys: [country]
    measureContains: AQI Value
`)
	t.Setenv("YEARBOOK_PROFILES", path)
	t.Setenv("YEARBOOK_ENTITY_KEYS", "Country")
	t.Setenv("YEARBOOK_TIME_KEYS", "Year")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Life expectancy", c.ValueColumnFor("/data/life.csv"))
	assert.Equal(t, schema.DefaultConfig(), c.SchemaFor("/data/life.csv"))

	aqi := c.SchemaFor("aqi.csv")
	assert.Equal(t, []string{"country"}, aqi.EntityKeys)
	assert.Equal(t, []string{"Year"}, aqi.TimeKeys, "unset profile keys fall back to global keys")
	assert.Equal(t, "AQI Value", c.MeasureContainsFor("data/aqi.csv"))

	assert.Equal(t, "", c.ValueColumnFor("other.csv"))
}

func TestLoadProfiles_UnknownField(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "p.yaml"), "datasets:\n  a.csv:\n    valueColumns: x\n")

	_, err := LoadProfiles(path)
	assert.Error(t, err)
}

func TestSetLogLevel(t *testing.T) {
	c := &Config{EntityKeys: []string{"Country"}, LogLevel: "warn", LoadWorkers: 1}

	require.NoError(t, c.SetLogLevel("info"))
	assert.Equal(t, logrus.InfoLevel, c.Logger().GetLevel())

	assert.Error(t, c.SetLogLevel("chatty"))
	assert.Equal(t, "info", c.LogLevel, "a rejected level leaves the old one in place")
}
