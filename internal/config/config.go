// Package config assembles server settings from built-in defaults, an
// optional TOML file and SUBPIXEL_MCP_* environment variables, in that
// order of precedence (later wins).
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ironsheep/subpixel-mcp/internal/imaging"
	"github.com/ironsheep/subpixel-mcp/internal/logger"
	"github.com/ironsheep/subpixel-mcp/internal/subpixel"
)

// Environment variables read by Load.
const (
	EnvConfigFile    = "SUBPIXEL_MCP_CONFIG"
	EnvLogLevel      = "SUBPIXEL_MCP_LOG_LEVEL"
	EnvLogFormat     = "SUBPIXEL_MCP_LOG_FORMAT"
	EnvMaxIterations = "SUBPIXEL_MCP_MAX_ITERATIONS"
	EnvWorkers       = "SUBPIXEL_MCP_WORKERS"
	EnvToolTimeout   = "SUBPIXEL_MCP_TOOL_TIMEOUT"
	EnvDefaultMethod = "SUBPIXEL_MCP_DEFAULT_METHOD"
)

// Config holds the server settings.
type Config struct {
	// LogLevel is a zerolog level name: debug, info, warn or error.
	LogLevel string `toml:"log_level"`

	// LogFormat is "json" or "console".
	LogFormat string `toml:"log_format"`

	// MaxMeanShiftIterations bounds every mean-shift run.
	MaxMeanShiftIterations int `toml:"max_mean_shift_iterations"`

	// Workers bounds concurrent extremum refinement; 0 means GOMAXPROCS.
	Workers int `toml:"workers"`

	// ToolTimeout limits each tool call, e.g. "30s".
	ToolTimeout time.Duration `toml:"tool_timeout"`

	// DefaultMethod is used when a tool call names no method.
	DefaultMethod string `toml:"default_method"`

	// DefaultChannel is used when a tool call names no channel.
	DefaultChannel string `toml:"default_channel"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "json",
		MaxMeanShiftIterations: subpixel.DefaultMaxIterations,
		Workers:                0,
		ToolTimeout:            30 * time.Second,
		DefaultMethod:          "parabolic separable",
		DefaultChannel:         string(imaging.Luma),
	}
}

// Load builds the configuration from the process environment. The TOML file
// named by SUBPIXEL_MCP_CONFIG is read when set.
func Load() (*Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path, ok := lookup(EnvConfigFile); ok && path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.mergeEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile overlays the keys present in a TOML file. Unknown keys are
// rejected so that typos do not pass silently.
func (c *Config) mergeFile(path string) error {
	meta, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config file %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) mergeEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.LogFormat = v
	}
	if v, ok := lookup(EnvDefaultMethod); ok && v != "" {
		c.DefaultMethod = v
	}
	if v, ok := lookup(EnvMaxIterations); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxIterations, err)
		}
		c.MaxMeanShiftIterations = n
	}
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	if v, ok := lookup(EnvToolTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvToolTimeout, err)
		}
		c.ToolTimeout = d
	}
	return nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		errs = append(errs, fmt.Errorf("log_format: want json or console, got %q", c.LogFormat))
	}
	if c.MaxMeanShiftIterations < 1 {
		errs = append(errs, fmt.Errorf("max_mean_shift_iterations: must be at least 1, got %d", c.MaxMeanShiftIterations))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers: must not be negative, got %d", c.Workers))
	}
	if c.ToolTimeout <= 0 {
		errs = append(errs, fmt.Errorf("tool_timeout: must be positive, got %s", c.ToolTimeout))
	}
	if _, err := subpixel.ParseMethod(c.DefaultMethod, 2); err != nil {
		errs = append(errs, fmt.Errorf("default_method: %w", err))
	}
	if _, err := imaging.ParseChannel(c.DefaultChannel); err != nil {
		errs = append(errs, fmt.Errorf("default_channel: %w", err))
	}
	return errors.Join(errs...)
}

// Logger builds the logger described by the configuration, writing to w.
func (c *Config) Logger(w io.Writer) (*logger.Logger, error) {
	level, err := logger.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	if c.LogFormat == "console" {
		return logger.NewConsole(w, level), nil
	}
	return logger.New(w, level), nil
}
