package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://mapa.um.warszawa.pl/mapviewer/foi", cfg.FOI.Endpoint)
	assert.Equal(t, "getfoi", cfg.FOI.Request)
	assert.Equal(t, "1.0", cfg.FOI.Version)
	assert.Equal(t, 1608, cfg.FOI.Width)
	assert.Equal(t, 581, cfg.FOI.Height)
	assert.Equal(t, "dane_wawa.BOS_ZIELEN_DRZEWA", cfg.FOI.Theme)
	assert.Equal(t, 2178, cfg.FOI.DstSRID)
	assert.Equal(t, "649_58860", cfg.FOI.TID)
	assert.Equal(t, "literal", cfg.FOI.Repair)
	assert.InDelta(t, 7489046.2903, cfg.Scan.UpperX, 1e-6)
	assert.InDelta(t, 5774703.9076, cfg.Scan.LowerY, 1e-6)
	assert.InDelta(t, 2000.0, cfg.Scan.TileSide, 1e-9)
	assert.Equal(t, 0, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, "skip", cfg.Extract.OnError)
	assert.Equal(t, "data", cfg.Export.Dir)
	assert.Equal(t, DefaultColumns, cfg.Export.Columns)
	assert.Equal(t, []string{"csv"}, cfg.Export.Formats)
	assert.Empty(t, cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
scan:
  tile_side: 500
extract:
  on_error: abort
export:
  dir: out
  formats: [csv, geojson]
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 500.0, cfg.Scan.TileSide, 1e-9)
	assert.Equal(t, "abort", cfg.Extract.OnError)
	assert.Equal(t, "out", cfg.Export.Dir)
	assert.Equal(t, []string{"csv", "geojson"}, cfg.Export.Formats)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, "getfoi", cfg.FOI.Request)
	assert.Equal(t, DefaultColumns, cfg.Export.Columns)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
  dsn: trees.db
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("TREES_STORE_DRIVER", "postgres")
	t.Setenv("TREES_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "trees.db", cfg.Store.DSN)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("TREES_FOI_ENDPOINT", "http://localhost:9999/foi")
	t.Setenv("TREES_FETCH_TIMEOUT_SECS", "30")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999/foi", cfg.FOI.Endpoint)
	assert.Equal(t, 30, cfg.Fetch.TimeoutSecs)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("scan: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func validConfig() *Config {
	return &Config{
		FOI:     FOIConfig{Endpoint: "http://example.test/foi", Repair: "literal"},
		Scan:    ScanConfig{TileSide: 2000},
		Extract: ExtractConfig{OnError: "skip"},
		Export:  ExportConfig{Dir: "data", Columns: []string{"id"}, Formats: []string{"csv"}},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing endpoint", func(c *Config) { c.FOI.Endpoint = "" }, "foi.endpoint is required"},
		{"bad repair", func(c *Config) { c.FOI.Repair = "regex" }, "foi.repair"},
		{"zero tile", func(c *Config) { c.Scan.TileSide = 0 }, "scan.tile_side must be > 0"},
		{"negative timeout", func(c *Config) { c.Fetch.TimeoutSecs = -1 }, "fetch.timeout_secs"},
		{"negative rate", func(c *Config) { c.Fetch.RatePerSec = -1 }, "fetch.rate_per_sec"},
		{"bad on_error", func(c *Config) { c.Extract.OnError = "ignore" }, "extract.on_error"},
		{"no columns", func(c *Config) { c.Export.Columns = nil }, "export.columns must not be empty"},
		{"no formats", func(c *Config) { c.Export.Formats = nil }, "export.formats must not be empty"},
		{"bad format", func(c *Config) { c.Export.Formats = []string{"csv", "pdf"} }, "unknown format pdf"},
		{"bad driver", func(c *Config) { c.Store.Driver = "mysql" }, "store.driver"},
		{"driver without dsn", func(c *Config) { c.Store.Driver = "sqlite" }, "store.dsn is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.Scan.TileSide = -1
	cfg.Extract.OnError = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan.tile_side")
	assert.Contains(t, err.Error(), "extract.on_error")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
