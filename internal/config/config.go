package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"energy-traffic-light/internal/logging"
	"energy-traffic-light/internal/pricing"

	"gopkg.in/yaml.v3"
)

const (
	StartModeOverlap = "overlap"
	StartModeFixed   = "fixed"

	SourceFile = "file"
	SourceHTTP = "http"

	WidgetSourceMock       = "mock"
	WidgetSourceSimulation = "simulation"

	DefaultStartTime = "2024-07-10T00:00:00Z"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Data       DataConfig       `yaml:"data"`
	Simulation SimulationConfig `yaml:"simulation"`
	Charts     ChartsConfig     `yaml:"charts"`
	Widgets    WidgetsConfig    `yaml:"widgets"`
	// Optional: load the tariff from a separate YAML file. Tariff overrides TariffFile.
	TariffFile string       `yaml:"tariff_file"`
	Tariff     TariffConfig `yaml:"tariff"`
	Log        LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Port           string   `yaml:"port"`
	Env            string   `yaml:"env"`
	StaticDir      string   `yaml:"static_dir"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DataConfig struct {
	Source  string        `yaml:"source"` // file | http
	Dir     string        `yaml:"dir"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type SimulationConfig struct {
	StartMode    string        `yaml:"start_mode"` // overlap | fixed
	StartTime    string        `yaml:"start_time"` // RFC3339, used by fixed mode
	Speed        float64       `yaml:"speed"`
	MinSpeed     float64       `yaml:"min_speed"`
	MaxSpeed     float64       `yaml:"max_speed"`
	TickInterval time.Duration `yaml:"tick_interval"`
	Window       time.Duration `yaml:"window"`
	AutoPlay     bool          `yaml:"auto_play"`
}

type ChartsConfig struct {
	Width    int                   `yaml:"width"`
	Height   int                   `yaml:"height"`
	CacheTTL time.Duration         `yaml:"cache_ttl"`
	Views    map[string]ViewConfig `yaml:"views"`
}

// ViewConfig shapes one view mode. Zero fields fall back to the built-in view.
type ViewConfig struct {
	Downsample  int    `yaml:"downsample"`
	Smooth      int    `yaml:"smooth"`
	LabelLayout string `yaml:"label_layout"`
}

type WidgetsConfig struct {
	Source          string        `yaml:"source"` // mock | simulation
	Seed            int64         `yaml:"seed"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	NotifyInterval  time.Duration `yaml:"notify_interval"`
	NotificationTTL time.Duration `yaml:"notification_ttl"`
}

type TariffConfig struct {
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:"params"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns a config that runs the dashboard against ./data.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      "8080",
			Env:       "development",
			StaticDir: "./web/dist",
		},
		Data: DataConfig{
			Source:  SourceFile,
			Dir:     "./data",
			Timeout: 30 * time.Second,
		},
		Simulation: SimulationConfig{
			StartMode:    StartModeOverlap,
			StartTime:    DefaultStartTime,
			Speed:        1,
			MinSpeed:     0.1,
			MaxSpeed:     24,
			TickInterval: time.Second,
			Window:       24 * time.Hour,
		},
		Charts: ChartsConfig{
			Width:    1024,
			Height:   400,
			CacheTTL: 30 * time.Second,
		},
		Widgets: WidgetsConfig{
			Source:          WidgetSourceSimulation,
			PollInterval:    5 * time.Second,
			NotifyInterval:  10 * time.Second,
			NotificationTTL: 5 * time.Second,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds a config from defaults, the YAML file (if path is set) and the
// environment, then validates it.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it or read the
// environment. Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if c.TariffFile != "" {
		tariffPath := c.TariffFile
		if !filepath.IsAbs(tariffPath) {
			// Prefer paths relative to the config file, then fall back to cwd.
			cand := filepath.Join(filepath.Dir(path), tariffPath)
			if _, err := os.Stat(cand); err == nil {
				tariffPath = cand
			}
		}
		loaded, err := loadTariffFile(tariffPath)
		if err != nil {
			return nil, err
		}
		c.Tariff = MergeTariff(loaded, c.Tariff)
	}
	return c, nil
}

// ApplyEnv overlays the environment variables the deployment uses.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Server.Port, "API_PORT")
	set(&c.Server.Env, "API_ENV")
	set(&c.Server.StaticDir, "STATIC_DIR")
	set(&c.Data.Dir, "DATA_DIR")
	set(&c.Log.Level, "LOG_LEVEL")
	if v := strings.TrimSpace(getenv("DATA_BASE_URL")); v != "" {
		c.Data.BaseURL = v
		c.Data.Source = SourceHTTP
	}
	if v := strings.TrimSpace(getenv("ALLOWED_ORIGINS")); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	switch c.Data.Source {
	case SourceFile:
		if c.Data.Dir == "" {
			return errors.New("data.dir is required for the file source")
		}
	case SourceHTTP:
		if c.Data.BaseURL == "" {
			return errors.New("data.base_url is required for the http source")
		}
	default:
		return fmt.Errorf("data.source must be %q or %q, got %q", SourceFile, SourceHTTP, c.Data.Source)
	}

	s := c.Simulation
	if s.StartMode != StartModeOverlap && s.StartMode != StartModeFixed {
		return fmt.Errorf("simulation.start_mode must be %q or %q", StartModeOverlap, StartModeFixed)
	}
	if _, err := c.StartTime(); err != nil {
		return err
	}
	if s.MinSpeed <= 0 || s.MaxSpeed < s.MinSpeed {
		return fmt.Errorf("simulation speed range [%g, %g] is invalid", s.MinSpeed, s.MaxSpeed)
	}
	if s.Speed < s.MinSpeed || s.Speed > s.MaxSpeed {
		return fmt.Errorf("simulation.speed %g is outside [%g, %g]", s.Speed, s.MinSpeed, s.MaxSpeed)
	}
	if s.TickInterval <= 0 {
		return errors.New("simulation.tick_interval must be positive")
	}
	if s.Window <= 0 {
		return errors.New("simulation.window must be positive")
	}

	if c.Charts.Width <= 0 || c.Charts.Height <= 0 {
		return errors.New("charts.width and charts.height must be positive")
	}
	for name, v := range c.Charts.Views {
		if v.Downsample < 0 || v.Smooth < 0 {
			return fmt.Errorf("charts.views.%s: downsample and smooth must be >= 0", name)
		}
	}

	w := c.Widgets
	if w.Source != WidgetSourceMock && w.Source != WidgetSourceSimulation {
		return fmt.Errorf("widgets.source must be %q or %q", WidgetSourceMock, WidgetSourceSimulation)
	}
	if w.PollInterval <= 0 || w.NotifyInterval <= 0 || w.NotificationTTL <= 0 {
		return errors.New("widget intervals must be positive")
	}

	// Validate tariff params by constructing the pricer.
	if _, err := c.Pricer(); err != nil {
		return fmt.Errorf("tariff config invalid: %w", err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// StartTime parses simulation.start_time.
func (c *Config) StartTime() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, c.Simulation.StartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("simulation.start_time: %w", err)
	}
	return t, nil
}

func (c *Config) Pricer() (pricing.Pricer, error) {
	return pricing.New(c.Tariff.Name, c.Tariff.Params)
}

type tariffFileWrapper struct {
	Tariff TariffConfig `yaml:"tariff"`
}

func loadTariffFile(path string) (TariffConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return TariffConfig{}, err
	}
	var w tariffFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return TariffConfig{}, err
	}
	return w.Tariff, nil
}

// MergeTariff overlays override onto base: a different name replaces the whole
// tariff, params are merged key by key.
func MergeTariff(base, override TariffConfig) TariffConfig {
	if override.Name != "" && override.Name != base.Name {
		return override
	}
	out := TariffConfig{Name: base.Name, Params: map[string]any{}}
	for k, v := range base.Params {
		out.Params[k] = v
	}
	for k, v := range override.Params {
		out.Params[k] = v
	}
	return out
}

// MergeView overlays non-zero fields from override onto base.
// Used to apply charts.views entries and per-request overrides to the built-in views.
func MergeView(base, override ViewConfig) ViewConfig {
	out := base
	if override.Downsample != 0 {
		out.Downsample = override.Downsample
	}
	if override.Smooth != 0 {
		out.Smooth = override.Smooth
	}
	if override.LabelLayout != "" {
		out.LabelLayout = override.LabelLayout
	}
	return out
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
