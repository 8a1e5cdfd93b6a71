package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// DotEnvPath is the .env file merged into the process environment before
// VIRE_* overrides are applied. Existing environment variables win.
var DotEnvPath = ".env"

// Config represents the application configuration.
type Config struct {
	Environment string        `toml:"environment"`
	API         APIConfig     `toml:"api"`
	Auth        AuthConfig    `toml:"auth"`
	Storage     StorageConfig `toml:"storage"`
	Logging     LoggingConfig `toml:"logging"`
	Metrics     MetricsConfig `toml:"metrics"`
}

// APIConfig describes the remote optimization service.
type APIConfig struct {
	URL       string  `toml:"url"`
	Timeout   string  `toml:"timeout"`
	RateLimit float64 `toml:"rate_limit"` // requests per second, 0 disables
}

// GetTimeout parses and returns the request timeout.
func (c *APIConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// AuthConfig contains credential persistence settings.
type AuthConfig struct {
	StorageKey string `toml:"storage_key"`
}

// StorageConfig contains storage layer settings.
// Backend is "badger" (default) or "file".
type StorageConfig struct {
	Backend string       `toml:"backend"`
	Badger  BadgerConfig `toml:"badger"`
	File    FileConfig   `toml:"file"`
}

// BadgerConfig contains BadgerDB-specific settings.
type BadgerConfig struct {
	Path string `toml:"path"`
}

// FileConfig contains settings for the JSON file backend.
type FileConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// MetricsConfig controls the Prometheus textfile export. Submission metrics
// are written to TextfilePath when each command finishes; empty disables it.
type MetricsConfig struct {
	TextfilePath string `toml:"textfile_path"`
}

// LoadFromFile loads configuration with priority: defaults -> file -> .env -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> .env -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	if err := loadDotEnv(DotEnvPath); err != nil {
		return nil, err
	}
	applyEnvOverrides(config)
	config.Environment = normalizeEnvironment(config.Environment)

	return config, nil
}

// loadDotEnv merges a .env file into the environment. A missing file is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies VIRE_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("VIRE_ENV"); env != "" {
		config.Environment = env
	}
	if apiURL := os.Getenv("VIRE_API_URL"); apiURL != "" {
		config.API.URL = apiURL
	}
	if timeout := os.Getenv("VIRE_API_TIMEOUT"); timeout != "" {
		config.API.Timeout = timeout
	}
	if rl := os.Getenv("VIRE_API_RATE_LIMIT"); rl != "" {
		if v, err := strconv.ParseFloat(rl, 64); err == nil {
			config.API.RateLimit = v
		}
	}
	if key := os.Getenv("VIRE_AUTH_STORAGE_KEY"); key != "" {
		config.Auth.StorageKey = key
	}
	if backend := os.Getenv("VIRE_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = strings.ToLower(backend)
	}
	if badgerPath := os.Getenv("VIRE_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if filePath := os.Getenv("VIRE_FILE_STORE_PATH"); filePath != "" {
		config.Storage.File.Path = filePath
	}
	if level := os.Getenv("VIRE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("VIRE_LOG_FORMAT"); format != "" {
		config.Logging.Format = strings.ToLower(format)
	}
	if textfile := os.Getenv("VIRE_METRICS_TEXTFILE"); textfile != "" {
		config.Metrics.TextfilePath = textfile
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, apiURL, logLevel string) {
	if apiURL != "" {
		config.API.URL = apiURL
	}
	if logLevel != "" {
		config.Logging.Level = logLevel
	}
}

// Validate returns a list of human-readable configuration problems.
func (c *Config) Validate() []string {
	var issues []string

	if strings.TrimSpace(c.API.URL) == "" {
		issues = append(issues, "api.url is required (VIRE_API_URL)")
	} else if u, err := url.Parse(c.API.URL); err != nil || u.Scheme == "" || u.Host == "" {
		issues = append(issues, fmt.Sprintf("api.url %q is not an absolute URL", c.API.URL))
	}
	if c.API.Timeout != "" {
		if d, err := time.ParseDuration(c.API.Timeout); err != nil || d <= 0 {
			issues = append(issues, fmt.Sprintf("api.timeout %q is not a positive duration", c.API.Timeout))
		}
	}
	if c.API.RateLimit < 0 {
		issues = append(issues, "api.rate_limit must not be negative")
	}
	if strings.TrimSpace(c.Auth.StorageKey) == "" {
		issues = append(issues, "auth.storage_key is required")
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		issues = append(issues, fmt.Sprintf("logging.format %q must be \"text\" or \"json\"", c.Logging.Format))
	}
	switch c.Storage.Backend {
	case "badger":
		if c.Storage.Badger.Path == "" {
			issues = append(issues, "storage.badger.path is required for the badger backend")
		}
	case "file":
		if c.Storage.File.Path == "" {
			issues = append(issues, "storage.file.path is required for the file backend")
		}
	default:
		issues = append(issues, fmt.Sprintf("storage.backend %q must be \"badger\" or \"file\"", c.Storage.Backend))
	}

	return issues
}

// IsDevMode returns true when running in the dev environment.
func (c *Config) IsDevMode() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "dev"
}

// normalizeEnvironment maps environment aliases to their canonical short forms.
func normalizeEnvironment(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "development":
		return "dev"
	case "production":
		return "prod"
	default:
		return env
	}
}
