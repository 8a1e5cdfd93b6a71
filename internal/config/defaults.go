package config

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "prod",
		API: APIConfig{
			URL:     "http://localhost:5000",
			Timeout: "30s",
		},
		Auth: AuthConfig{
			StorageKey: "jwt",
		},
		Storage: StorageConfig{
			Backend: "badger",
			Badger: BadgerConfig{
				Path: "./data/vire-optimizer",
			},
			File: FileConfig{
				Path: "./data/vire-optimizer.json",
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "text",
			Outputs: []string{"console"},
		},
	}
}
