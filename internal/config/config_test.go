package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.API.URL != "http://localhost:5000" {
		t.Errorf("expected default api url http://localhost:5000, got %s", cfg.API.URL)
	}
	if cfg.API.GetTimeout() != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %s", cfg.API.GetTimeout())
	}
	if cfg.Auth.StorageKey != "jwt" {
		t.Errorf("expected default storage key jwt, got %s", cfg.Auth.StorageKey)
	}
	if cfg.Storage.Backend != "badger" {
		t.Errorf("expected default backend badger, got %s", cfg.Storage.Backend)
	}
	if cfg.Storage.Badger.Path != "./data/vire-optimizer" {
		t.Errorf("expected default badger path ./data/vire-optimizer, got %s", cfg.Storage.Badger.Path)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
	if issues := cfg.Validate(); len(issues) != 0 {
		t.Errorf("expected default config to validate, got %v", issues)
	}
}

func TestLoadFromFiles_NoFiles(t *testing.T) {
	DotEnvPath = ""
	t.Cleanup(func() { DotEnvPath = ".env" })

	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles with no files should not error: %v", err)
	}
	if cfg.Auth.StorageKey != "jwt" {
		t.Errorf("expected default storage key jwt, got %s", cfg.Auth.StorageKey)
	}
}

func TestLoadFromFiles_ValidTOML(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "test.toml")

	content := `
environment = "development"

[api]
url = "https://optimizer.example.com"
timeout = "5s"
rate_limit = 2.5

[auth]
storage_key = "session-token"

[storage]
backend = "file"

[storage.file]
path = "/tmp/tokens.json"

[logging]
level = "debug"
format = "json"
outputs = ["console", "file"]

[metrics]
textfile_path = "/tmp/vire-optimizer.prom"
`
	if err := os.WriteFile(tomlPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFiles(tomlPath)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	if cfg.API.URL != "https://optimizer.example.com" {
		t.Errorf("expected api url from file, got %s", cfg.API.URL)
	}
	if cfg.API.GetTimeout() != 5*time.Second {
		t.Errorf("expected timeout 5s, got %s", cfg.API.GetTimeout())
	}
	if cfg.API.RateLimit != 2.5 {
		t.Errorf("expected rate limit 2.5, got %v", cfg.API.RateLimit)
	}
	if cfg.Auth.StorageKey != "session-token" {
		t.Errorf("expected storage key session-token, got %s", cfg.Auth.StorageKey)
	}
	if cfg.Storage.Backend != "file" || cfg.Storage.File.Path != "/tmp/tokens.json" {
		t.Errorf("expected file backend at /tmp/tokens.json, got %s %s", cfg.Storage.Backend, cfg.Storage.File.Path)
	}
	if cfg.Environment != "dev" {
		t.Errorf("expected environment normalized to dev, got %s", cfg.Environment)
	}
	if !cfg.IsDevMode() {
		t.Error("expected IsDevMode true")
	}
	if len(cfg.Logging.Outputs) != 2 {
		t.Errorf("expected 2 logging outputs, got %v", cfg.Logging.Outputs)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected json log format, got %s", cfg.Logging.Format)
	}
	if cfg.Metrics.TextfilePath != "/tmp/vire-optimizer.prom" {
		t.Errorf("expected metrics textfile from file, got %s", cfg.Metrics.TextfilePath)
	}
}

func TestLoadFromFiles_MultipleFiles(t *testing.T) {
	dir := t.TempDir()

	base := filepath.Join(dir, "base.toml")
	baseContent := `
[api]
url = "http://base:5000"
timeout = "10s"
`
	if err := os.WriteFile(base, []byte(baseContent), 0644); err != nil {
		t.Fatal(err)
	}

	override := filepath.Join(dir, "override.toml")
	overrideContent := `
[api]
url = "http://override:5000"
`
	if err := os.WriteFile(override, []byte(overrideContent), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFiles(base, override)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	if cfg.API.URL != "http://override:5000" {
		t.Errorf("expected url from override, got %s", cfg.API.URL)
	}
	if cfg.API.Timeout != "10s" {
		t.Errorf("expected timeout from base file, got %s", cfg.API.Timeout)
	}
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles("/nonexistent/path.toml")
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestLoadFromFiles_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "invalid.toml")

	if err := os.WriteFile(tomlPath, []byte("this is not valid {{toml"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFromFiles(tomlPath)
	if err == nil {
		t.Error("expected error for invalid TOML, got nil")
	}
}

func TestLoadFromFiles_DotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("VIRE_API_URL=http://dotenv:5000\n"), 0644); err != nil {
		t.Fatal(err)
	}

	DotEnvPath = envPath
	t.Cleanup(func() {
		DotEnvPath = ".env"
		os.Unsetenv("VIRE_API_URL")
	})

	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}
	if cfg.API.URL != "http://dotenv:5000" {
		t.Errorf("expected api url from .env, got %s", cfg.API.URL)
	}
}

func TestLoadFromFiles_MissingDotEnvIgnored(t *testing.T) {
	DotEnvPath = filepath.Join(t.TempDir(), "absent.env")
	t.Cleanup(func() { DotEnvPath = ".env" })

	if _, err := LoadFromFiles(); err != nil {
		t.Fatalf("missing .env should not error: %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := NewDefaultConfig()

	t.Setenv("VIRE_API_URL", "http://env:5000")
	t.Setenv("VIRE_API_TIMEOUT", "3s")
	t.Setenv("VIRE_API_RATE_LIMIT", "4")
	t.Setenv("VIRE_AUTH_STORAGE_KEY", "env-key")
	t.Setenv("VIRE_STORAGE_BACKEND", "FILE")
	t.Setenv("VIRE_BADGER_PATH", "/env/path")
	t.Setenv("VIRE_LOG_LEVEL", "error")
	t.Setenv("VIRE_LOG_FORMAT", "JSON")
	t.Setenv("VIRE_METRICS_TEXTFILE", "/env/metrics.prom")

	applyEnvOverrides(cfg)

	if cfg.API.URL != "http://env:5000" {
		t.Errorf("expected env api url, got %s", cfg.API.URL)
	}
	if cfg.API.GetTimeout() != 3*time.Second {
		t.Errorf("expected env timeout 3s, got %s", cfg.API.GetTimeout())
	}
	if cfg.API.RateLimit != 4 {
		t.Errorf("expected env rate limit 4, got %v", cfg.API.RateLimit)
	}
	if cfg.Auth.StorageKey != "env-key" {
		t.Errorf("expected env storage key, got %s", cfg.Auth.StorageKey)
	}
	if cfg.Storage.Backend != "file" {
		t.Errorf("expected lowercased backend file, got %s", cfg.Storage.Backend)
	}
	if cfg.Storage.Badger.Path != "/env/path" {
		t.Errorf("expected env badger path /env/path, got %s", cfg.Storage.Badger.Path)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("expected env log level error, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected lowercased env log format json, got %s", cfg.Logging.Format)
	}
	if cfg.Metrics.TextfilePath != "/env/metrics.prom" {
		t.Errorf("expected env metrics textfile, got %s", cfg.Metrics.TextfilePath)
	}
}

func TestApplyEnvOverrides_InvalidRateLimit(t *testing.T) {
	cfg := NewDefaultConfig()

	t.Setenv("VIRE_API_RATE_LIMIT", "not-a-number")

	applyEnvOverrides(cfg)

	if cfg.API.RateLimit != 0 {
		t.Errorf("expected rate limit to stay 0, got %v", cfg.API.RateLimit)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()

	ApplyFlagOverrides(cfg, "http://flag:5000", "debug")
	if cfg.API.URL != "http://flag:5000" {
		t.Errorf("expected flag api url, got %s", cfg.API.URL)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected flag log level debug, got %s", cfg.Logging.Level)
	}

	ApplyFlagOverrides(cfg, "", "")
	if cfg.API.URL != "http://flag:5000" {
		t.Errorf("empty flag should not override, got %s", cfg.API.URL)
	}
}

func TestGetTimeout_InvalidFallsBack(t *testing.T) {
	c := APIConfig{Timeout: "soon"}
	if c.GetTimeout() != 30*time.Second {
		t.Errorf("expected fallback 30s, got %s", c.GetTimeout())
	}
}

func TestValidate_ReportsIssues(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.API.URL = "not a url"
	cfg.API.Timeout = "-1s"
	cfg.API.RateLimit = -1
	cfg.Auth.StorageKey = " "
	cfg.Storage.Backend = "s3"
	cfg.Logging.Format = "xml"

	issues := cfg.Validate()
	if len(issues) != 6 {
		t.Fatalf("expected 6 issues, got %d: %v", len(issues), issues)
	}
	joined := strings.Join(issues, "\n")
	for _, want := range []string{"api.url", "api.timeout", "api.rate_limit", "auth.storage_key", "logging.format", "storage.backend"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected issue mentioning %s, got %v", want, issues)
		}
	}
}

func TestValidate_FileBackendRequiresPath(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Storage.Backend = "file"
	cfg.Storage.File.Path = ""

	issues := cfg.Validate()
	if len(issues) != 1 || !strings.Contains(issues[0], "storage.file.path") {
		t.Errorf("expected storage.file.path issue, got %v", issues)
	}
}
