// Package config holds energyscope's user configuration.
//
// Settings are resolved in layers: built-in defaults, then the YAML file at
// $ENERGYSCOPE_HOME/config.yaml, then ENERGYSCOPE_* environment variables.
// Command-line flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/energyscope/internal/cache"
	"github.com/rshade/energyscope/internal/logging"
)

// Output formats understood by the CLI.
const (
	FormatTable  = "table"
	FormatJSON   = "json"
	FormatNDJSON = "ndjson"
)

const (
	// DefaultDataSource is where the dataset is read from when nothing else is configured.
	DefaultDataSource = "data/energy_data.json"

	// DefaultAddr is the listen address for the HTTP server.
	DefaultAddr = ":8080"

	// Timeline bounds of the bundled dataset.
	DefaultTimelineStart = 1965
	DefaultTimelineEnd   = 2023

	defaultFetchTimeout    = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultPrecision       = 2
	maxPrecision           = 6
	configFileName         = "config.yaml"
	cacheDirName           = "cache"
)

// Config is the complete energyscope configuration.
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Cache    CacheConfig    `yaml:"cache"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
	Server   ServerConfig   `yaml:"server"`
	Timeline TimelineConfig `yaml:"timeline"`
}

// DataConfig locates the dataset.
type DataConfig struct {
	// Source is a file path or an http(s) URL.
	Source  string        `yaml:"source"`
	Timeout time.Duration `yaml:"timeout"`
}

// CacheConfig controls the local cache of remotely fetched datasets.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	TTLSeconds int    `yaml:"ttl_seconds"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	Directory  string `yaml:"directory,omitempty"`
}

// OutputConfig controls CLI rendering.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Precision     int    `yaml:"precision"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
	Caller bool   `yaml:"caller,omitempty"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins,omitempty"`
}

// TimelineConfig describes the years the dataset nominally spans.
type TimelineConfig struct {
	Start       int `yaml:"start"`
	End         int `yaml:"end"`
	DefaultYear int `yaml:"default_year"`
}

// New returns a Config populated with defaults only.
func New() *Config {
	cacheDir := ""
	if dir, err := GetConfigDir(); err == nil {
		cacheDir = filepath.Join(dir, cacheDirName)
	}

	return &Config{
		Data: DataConfig{
			Source:  DefaultDataSource,
			Timeout: defaultFetchTimeout,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: cache.DefaultTTLSeconds,
			MaxSizeMB:  cache.DefaultMaxSizeMB,
			Directory:  cacheDir,
		},
		Output: OutputConfig{
			DefaultFormat: FormatTable,
			Precision:     defaultPrecision,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatConsole,
		},
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ShutdownTimeout: defaultShutdownTimeout,
			AllowedOrigins:  []string{"*"},
		},
		Timeline: TimelineConfig{
			Start:       DefaultTimelineStart,
			End:         DefaultTimelineEnd,
			DefaultYear: DefaultTimelineEnd,
		},
	}
}

// Load resolves the configuration from defaults, the config file (when present) and
// the environment.
func Load() (*Config, error) {
	cfg := New()

	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	if err = cfg.MergeFile(path); err != nil {
		return nil, err
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// MergeFile applies the YAML file at path on top of c. A missing file is not an error.
func (c *Config) MergeFile(path string) error {
	if !fileExists(path) {
		return nil
	}
	return ShallowMergeYAML(c, path)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Data.Source) == "" {
		errs = append(errs, errors.New("data.source cannot be empty"))
	}
	if c.Data.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("data.timeout must be positive, got %s", c.Data.Timeout))
	}

	if c.Cache.Enabled {
		if err := cache.ValidateTTL(c.Cache.TTLSeconds); err != nil {
			errs = append(errs, fmt.Errorf("cache.ttl_seconds: %w", err))
		}
		if c.Cache.MaxSizeMB < 0 {
			errs = append(errs, fmt.Errorf("cache.max_size_mb cannot be negative, got %d", c.Cache.MaxSizeMB))
		}
		if c.Cache.Directory == "" {
			errs = append(errs, errors.New("cache.directory cannot be empty when the cache is enabled"))
		}
	}

	if !slices.Contains(OutputFormats(), c.Output.DefaultFormat) {
		errs = append(errs, fmt.Errorf("output.default_format %q must be one of %s",
			c.Output.DefaultFormat, strings.Join(OutputFormats(), ", ")))
	}
	if c.Output.Precision < 0 || c.Output.Precision > maxPrecision {
		errs = append(errs, fmt.Errorf("output.precision must be between 0 and %d, got %d",
			maxPrecision, c.Output.Precision))
	}

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil || c.Logging.Level == "" {
		errs = append(errs, fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level))
	}
	if c.Logging.Format != logging.FormatJSON && c.Logging.Format != logging.FormatConsole {
		errs = append(errs, fmt.Errorf("logging.format %q must be %s or %s",
			c.Logging.Format, logging.FormatJSON, logging.FormatConsole))
	}

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr cannot be empty"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout must be positive, got %s", c.Server.ShutdownTimeout))
	}

	if c.Timeline.Start > c.Timeline.End {
		errs = append(errs, fmt.Errorf("timeline.start %d is after timeline.end %d",
			c.Timeline.Start, c.Timeline.End))
	}
	if c.Timeline.DefaultYear < c.Timeline.Start || c.Timeline.DefaultYear > c.Timeline.End {
		errs = append(errs, fmt.Errorf("timeline.default_year %d is outside %d-%d",
			c.Timeline.DefaultYear, c.Timeline.Start, c.Timeline.End))
	}

	return errors.Join(errs...)
}

// OutputFormats lists the accepted output formats.
func OutputFormats() []string {
	return []string{FormatTable, FormatJSON, FormatNDJSON}
}
