package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"energy-traffic-light/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 1.0, c.Simulation.Speed)
	assert.Equal(t, 0.1, c.Simulation.MinSpeed)
	assert.Equal(t, 24.0, c.Simulation.MaxSpeed)
	assert.Equal(t, StartModeOverlap, c.Simulation.StartMode)

	start, err := c.StartTime()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC), start)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
server:
  port: "9090"
simulation:
  start_mode: fixed
  start_time: "2024-08-01T12:00:00Z"
  speed: 2
  tick_interval: 500ms
charts:
  views:
    weekly:
      smooth: 4
widgets:
  source: mock
  seed: 42
`)
	c, err := LoadUnchecked(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.Equal(t, "9090", c.Server.Port)
	assert.Equal(t, StartModeFixed, c.Simulation.StartMode)
	assert.Equal(t, 500*time.Millisecond, c.Simulation.TickInterval)
	assert.Equal(t, 2.0, c.Simulation.Speed)
	assert.Equal(t, 24*time.Hour, c.Simulation.Window)
	assert.Equal(t, 4, c.Charts.Views["weekly"].Smooth)
	assert.Equal(t, int64(42), c.Widgets.Seed)
}

func TestTariffFileMerge(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tou.yaml", `
tariff:
  name: time_of_use
  params:
    peak_start: "16:00"
    peak_end: "20:00"
    peak_price: 0.4
`)
	path := writeFile(t, dir, "config.yaml", `
tariff_file: tou.yaml
tariff:
  params:
    peak_price: 0.5
`)
	c, err := LoadUnchecked(path)
	require.NoError(t, err)
	assert.Equal(t, pricing.NameTimeOfUse, c.Tariff.Name)
	assert.Equal(t, 0.5, c.Tariff.Params["peak_price"])
	assert.Equal(t, "16:00", c.Tariff.Params["peak_start"])

	p, err := c.Pricer()
	require.NoError(t, err)
	assert.Equal(t, pricing.NameTimeOfUse, p.Name())
}

func TestApplyEnv(t *testing.T) {
	c := Default()
	c.ApplyEnv(env(map[string]string{
		"API_PORT":        "7000",
		"API_ENV":         "production",
		"DATA_BASE_URL":   "https://example.org/app",
		"ALLOWED_ORIGINS": "http://a.test, http://b.test",
	}))
	assert.Equal(t, "7000", c.Server.Port)
	assert.Equal(t, "production", c.Server.Env)
	assert.Equal(t, SourceHTTP, c.Data.Source)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.Server.AllowedOrigins)
	assert.NoError(t, c.Validate())
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"speed out of range": func(c *Config) { c.Simulation.Speed = 30 },
		"bad start mode":     func(c *Config) { c.Simulation.StartMode = "later" },
		"bad start time":     func(c *Config) { c.Simulation.StartTime = "yesterday" },
		"bad source":         func(c *Config) { c.Data.Source = "ftp" },
		"http without url":   func(c *Config) { c.Data.Source = SourceHTTP },
		"bad widget source":  func(c *Config) { c.Widgets.Source = "live" },
		"bad tariff":         func(c *Config) { c.Tariff.Name = "surge" },
		"bad log level":      func(c *Config) { c.Log.Level = "loud" },
		"zero tick":          func(c *Config) { c.Simulation.TickInterval = 0 },
		"negative smooth":    func(c *Config) { c.Charts.Views = map[string]ViewConfig{"daily": {Smooth: -1}} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}

func TestMergeView(t *testing.T) {
	base := ViewConfig{Downsample: 168, Smooth: 3, LabelLayout: "Mon"}
	got := MergeView(base, ViewConfig{Smooth: 5})
	assert.Equal(t, ViewConfig{Downsample: 168, Smooth: 5, LabelLayout: "Mon"}, got)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	c, err := LoadUnchecked("")
	require.NoError(t, err)
	assert.Equal(t, "8080", c.Server.Port)
}
