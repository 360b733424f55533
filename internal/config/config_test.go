package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "subpixel-mcp.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.MaxMeanShiftIterations != 10000 {
		t.Errorf("MaxMeanShiftIterations: got %d, want 10000", cfg.MaxMeanShiftIterations)
	}
	if cfg.ToolTimeout != 30*time.Second {
		t.Errorf("ToolTimeout: got %v, want 30s", cfg.ToolTimeout)
	}
	if cfg.DefaultMethod != "parabolic separable" {
		t.Errorf("DefaultMethod: got %q", cfg.DefaultMethod)
	}
}

func TestLoad_NoSources(t *testing.T) {
	cfg, err := load(envMap(nil))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfigFile(t, `
log_level = "debug"
log_format = "console"
max_mean_shift_iterations = 250
workers = 4
tool_timeout = "5s"
default_method = "gaussian"
default_channel = "lightness"
`)

	cfg, err := load(envMap(map[string]string{EnvConfigFile: path}))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	want := Config{
		LogLevel:               "debug",
		LogFormat:              "console",
		MaxMeanShiftIterations: 250,
		Workers:                4,
		ToolTimeout:            5 * time.Second,
		DefaultMethod:          "gaussian",
		DefaultChannel:         "lightness",
	}
	if *cfg != want {
		t.Errorf("got %+v, want %+v", *cfg, want)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfigFile(t, `workers = 2`)

	cfg, err := load(envMap(map[string]string{EnvConfigFile: path}))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers: got %d, want 2", cfg.Workers)
	}
	if cfg.LogLevel != "info" || cfg.MaxMeanShiftIterations != 10000 {
		t.Errorf("unset keys should keep defaults, got %+v", cfg)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
log_level = "debug"
workers = 4
tool_timeout = "5s"
`)

	cfg, err := load(envMap(map[string]string{
		EnvConfigFile:    path,
		EnvLogLevel:      "warn",
		EnvWorkers:       "8",
		EnvToolTimeout:   "1m30s",
		EnvMaxIterations: "42",
		EnvDefaultMethod: "linear",
		EnvLogFormat:     "json",
	}))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel: got %q, want warn", cfg.LogLevel)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers: got %d, want 8", cfg.Workers)
	}
	if cfg.ToolTimeout != 90*time.Second {
		t.Errorf("ToolTimeout: got %v, want 1m30s", cfg.ToolTimeout)
	}
	if cfg.MaxMeanShiftIterations != 42 {
		t.Errorf("MaxMeanShiftIterations: got %d, want 42", cfg.MaxMeanShiftIterations)
	}
	if cfg.DefaultMethod != "linear" {
		t.Errorf("DefaultMethod: got %q, want linear", cfg.DefaultMethod)
	}
}

func TestLoad_EmptyEnvIgnored(t *testing.T) {
	cfg, err := load(envMap(map[string]string{EnvWorkers: "", EnvConfigFile: ""}))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Workers != 0 {
		t.Errorf("Workers: got %d, want 0", cfg.Workers)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		wantMsg string
	}{
		{"unknown key", `wokers = 3`, nil, "unknown keys"},
		{"malformed toml", `workers = `, nil, "failed to read config file"},
		{"wrong type", `workers = "many"`, nil, "failed to read config file"},
		{"bad iterations env", "", map[string]string{EnvMaxIterations: "ten"}, EnvMaxIterations},
		{"bad workers env", "", map[string]string{EnvWorkers: "1.5"}, EnvWorkers},
		{"bad timeout env", "", map[string]string{EnvToolTimeout: "30"}, EnvToolTimeout},
		{"invalid level", "", map[string]string{EnvLogLevel: "loud"}, "log_level"},
		{"invalid method", "", map[string]string{EnvDefaultMethod: "cubic"}, "default_method"},
		{"zero iterations", `max_mean_shift_iterations = 0`, nil, "max_mean_shift_iterations"},
		{"negative workers", `workers = -1`, nil, "workers"},
		{"zero timeout", `tool_timeout = "0s"`, nil, "tool_timeout"},
		{"invalid channel", `default_channel = "alpha"`, nil, "default_channel"},
		{"invalid format", `log_format = "xml"`, nil, "log_format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := map[string]string{}
			for k, v := range tt.env {
				env[k] = v
			}
			if tt.file != "" {
				env[EnvConfigFile] = writeConfigFile(t, tt.file)
			}
			_, err := load(envMap(env))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	if _, err := load(envMap(map[string]string{EnvConfigFile: path})); err == nil {
		t.Error("missing config file should fail")
	}
}

func TestLoad_ProcessEnvironment(t *testing.T) {
	t.Setenv(EnvConfigFile, "")
	t.Setenv(EnvWorkers, "3")
	t.Setenv(EnvLogLevel, "error")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Workers != 3 || cfg.LogLevel != "error" {
		t.Errorf("got %+v", cfg)
	}
}

func TestValidate_ReportsAll(t *testing.T) {
	cfg := Default()
	cfg.Workers = -2
	cfg.ToolTimeout = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"workers", "tool_timeout"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %q", err, want)
		}
	}
}

func TestConfig_Logger(t *testing.T) {
	tests := []struct {
		format   string
		wantJSON bool
	}{
		{"json", true},
		{"console", false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			cfg := Default()
			cfg.LogFormat = tt.format

			var buf bytes.Buffer
			log, err := cfg.Logger(&buf)
			if err != nil {
				t.Fatalf("Logger failed: %v", err)
			}
			log.Info("config", "hello", nil)

			out := buf.String()
			if !strings.Contains(out, "hello") {
				t.Fatalf("output %q should contain the message", out)
			}
			if got := strings.HasPrefix(out, "{"); got != tt.wantJSON {
				t.Errorf("JSON output: got %v, want %v (%q)", got, tt.wantJSON, out)
			}
		})
	}
}

func TestConfig_LoggerFiltersByLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "warn"

	var buf bytes.Buffer
	log, err := cfg.Logger(&buf)
	if err != nil {
		t.Fatalf("Logger failed: %v", err)
	}
	log.Info("config", "quiet", nil)
	if buf.Len() != 0 {
		t.Errorf("info event should be filtered at warn level, got %q", buf.String())
	}
}
