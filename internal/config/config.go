package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"daygrid/internal/dayview"
)

// SourceConfig describes a single ICS source.
type SourceConfig struct {
	// ID is an internal identifier used for logging and colors.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
	// Location is a local .ics path or an http(s) subscription URL.
	Location string `yaml:"location" json:"location" validate:"required"`
	// Color fills the source's event blocks.
	Color string `yaml:"color" json:"color" validate:"omitempty,hexcolor"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the web server.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// LabelConfig controls hour label text. FontSize also decides label
// height, which the grid uses to pad the first and last hour.
type LabelConfig struct {
	// Format is "24h" or "12h".
	Format     string `yaml:"format" json:"format" validate:"oneof=24h 12h"`
	FontFamily string `yaml:"font_family" json:"font_family"`
	FontSize   int    `yaml:"font_size" json:"font_size" validate:"gt=0"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the web server.
	Listen string `yaml:"listen" json:"listen" validate:"required"`

	// Timezone is the IANA zone events are placed in (e.g. "Europe/Berlin").
	Timezone string `yaml:"timezone" json:"timezone" validate:"required,timezone"`

	// Refresh is a standard 5-field cron spec for periodic re-rendering.
	Refresh string `yaml:"refresh" json:"refresh" validate:"required,cronspec"`

	LogLevel  string `yaml:"log_level" json:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `yaml:"log_format" json:"log_format" validate:"oneof=console json"`

	// CacheDir keeps remote ICS bodies; OutputDir receives rendered files.
	CacheDir  string `yaml:"cache_dir" json:"cache_dir" validate:"required"`
	OutputDir string `yaml:"output_dir" json:"output_dir" validate:"required"`

	// Width is the container width in pixels.
	Width   int             `yaml:"width" json:"width" validate:"gt=0"`
	RTL     bool            `yaml:"rtl" json:"rtl"`
	Padding dayview.Padding `yaml:"padding" json:"padding"`

	Grid   dayview.Config `yaml:"grid" json:"grid"`
	Labels LabelConfig    `yaml:"labels" json:"labels"`

	Sources []SourceConfig `yaml:"sources" json:"sources" validate:"dive"`

	// BasicAuth, if set, protects every endpoint except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`

	// EPaper also writes a tri-color quantized copy of every captured PNG.
	EPaper bool `yaml:"epaper,omitempty" json:"epaper,omitempty"`

	// CORSOrigins enables CORS for the listed origins ("*" for any).
	CORSOrigins []string `yaml:"cors_origins,omitempty" json:"cors_origins,omitempty"`
	// RateLimit caps requests per second per client IP; 0 disables it.
	RateLimit int `yaml:"rate_limit,omitempty" json:"rate_limit,omitempty" validate:"gte=0"`
}

const (
	defaultListen    = "127.0.0.1:8080"
	defaultTimezone  = "UTC"
	defaultRefresh   = "*/15 * * * *"
	defaultCacheDir  = "./var/ics-cache"
	defaultOutputDir = "./var/out"
	defaultWidth     = 480
)

func defaultGrid() dayview.Config {
	g := dayview.DefaultConfig()
	g.DividerHeight = 1
	g.HalfHourHeight = 23
	g.HourLabelWidth = 56
	g.HourLabelMarginEnd = 8
	g.EventMargin = 2
	return g
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:    defaultListen,
		Timezone:  defaultTimezone,
		Refresh:   defaultRefresh,
		LogLevel:  "info",
		LogFormat: "console",
		CacheDir:  defaultCacheDir,
		OutputDir: defaultOutputDir,
		Width:     defaultWidth,
		Padding:   dayview.Padding{Left: 8, Top: 8, Right: 8, Bottom: 8},
		Grid:      defaultGrid(),
		Labels: LabelConfig{
			Format:     "24h",
			FontFamily: "sans-serif",
			FontSize:   12,
		},
		Sources: []SourceConfig{},
	}
}

// Normalize fills in missing values so older or partial files still work.
// Grid dimensions are defaulted one by one, so a zero dimension always
// means unset.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.Refresh == "" {
		c.Refresh = d.Refresh
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = d.LogFormat
	}
	if c.CacheDir == "" {
		c.CacheDir = d.CacheDir
	}
	if c.OutputDir == "" {
		c.OutputDir = d.OutputDir
	}
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Grid.DividerHeight <= 0 {
		c.Grid.DividerHeight = d.Grid.DividerHeight
	}
	if c.Grid.HalfHourHeight <= 0 {
		c.Grid.HalfHourHeight = d.Grid.HalfHourHeight
	}
	if c.Grid.HourLabelWidth <= 0 {
		c.Grid.HourLabelWidth = d.Grid.HourLabelWidth
	}
	if c.Grid.HourLabelMarginEnd <= 0 {
		c.Grid.HourLabelMarginEnd = d.Grid.HourLabelMarginEnd
	}
	if c.Grid.EventMargin <= 0 {
		c.Grid.EventMargin = d.Grid.EventMargin
	}
	if c.Grid.EndHour == 0 {
		c.Grid.EndHour = dayview.HoursPerDay
	}
	if c.Labels.Format == "" {
		c.Labels.Format = d.Labels.Format
	}
	if c.Labels.FontFamily == "" {
		c.Labels.FontFamily = d.Labels.FontFamily
	}
	if c.Labels.FontSize <= 0 {
		c.Labels.FontSize = d.Labels.FontSize
	}
	if c.Sources == nil {
		c.Sources = []SourceConfig{}
	}
	for i := range c.Sources {
		if c.Sources[i].ID == "" {
			if c.Sources[i].Name != "" {
				c.Sources[i].ID = c.Sources[i].Name
			} else {
				c.Sources[i].ID = "source-" + strconv.Itoa(i+1)
			}
		}
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("cronspec", func(fl validator.FieldLevel) bool {
		_, err := cron.ParseStandard(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks field constraints and the grid dimensions.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Grid.Validate(); err != nil {
		return fmt.Errorf("config: grid: %w", err)
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Environment overrides, applied after the file is loaded.
const (
	EnvListen   = "DAYGRID_LISTEN"
	EnvTimezone = "DAYGRID_TIMEZONE"
	EnvLogLevel = "DAYGRID_LOG_LEVEL"
	EnvCacheDir = "DAYGRID_CACHE_DIR"
	EnvWidth    = "DAYGRID_WIDTH"
)

// LoadEnv reads .env files into the process environment without
// overwriting variables that are already set. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv copies DAYGRID_* variables over the loaded values.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvListen); v != "" {
		c.Listen = v
	}
	if v := os.Getenv(EnvTimezone); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvCacheDir); v != "" {
		c.CacheDir = v
	}
	if v := os.Getenv(EnvWidth); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvWidth, err)
		}
		c.Width = n
	}
	return nil
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist a default config is written there with 0600
// permissions and returned. Otherwise the file is parsed and normalized.
// Validation is left to the caller so flag and env overrides can apply
// first.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Callers may still run with the defaults.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically via a temp file and rename. The
// parent directory is created with 0700 and the file ends up 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".daygrid-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
