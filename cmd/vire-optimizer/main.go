package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/bobmcallan/vire-optimizer/internal/app"
	"github.com/bobmcallan/vire-optimizer/internal/common"
	"github.com/bobmcallan/vire-optimizer/internal/config"
	"github.com/spf13/cobra"
)

var (
	configFiles []string
	apiURL      string
	logLevel    string

	application *app.App
)

var rootCmd = &cobra.Command{
	Use:   "vire-optimizer",
	Short: "Client for the vire portfolio optimization service",
	Long: `vire-optimizer submits a portfolio value and ticker list to the
optimization service and renders the optimized allocation.

Values can be set via TOML file, .env, VIRE_* environment variables, or flags.`,
	Version:           config.GetFullVersion(),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVarP(&configFiles, "config", "c", nil, "Configuration file path (can be specified multiple times)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Optimization service URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides config)")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(optimizeCmd)

	// Finalizers run even when a command fails, unlike PersistentPostRunE.
	cobra.OnFinalize(shutdown)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}

// setup loads configuration and initializes the application for every subcommand.
func setup(cmd *cobra.Command, args []string) error {
	// Auto-discover config file if not specified.
	if len(configFiles) == 0 {
		for _, path := range configSearchPaths() {
			if _, err := os.Stat(path); err == nil {
				configFiles = append(configFiles, path)
				break
			}
		}
	}

	cfg, err := config.LoadFromFiles(configFiles...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// CLI flags have the highest priority.
	config.ApplyFlagOverrides(cfg, apiURL, logLevel)

	if issues := cfg.Validate(); len(issues) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(issues, "\n  - "))
	}

	logger := setupLogger(cfg)
	logger.Debug().
		Str("api_url", cfg.API.URL).
		Str("environment", cfg.Environment).
		Str("config_files", fmt.Sprintf("%v", configFiles)).
		Msg("configuration loaded")

	application, err = app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return nil
}

// shutdown exports metrics and releases storage after every command.
func shutdown() {
	if application == nil {
		return
	}
	if err := application.WriteMetrics(); err != nil {
		application.Logger.Warn().Str("error", err.Error()).Msg("failed to export metrics")
	}
	if err := application.Close(); err != nil {
		application.Logger.Warn().Str("error", err.Error()).Msg("failed to close storage")
	}
	application = nil
}

// configSearchPaths returns TOML files to auto-discover (first match wins).
// Binary-relative paths are tried first, then the working directory.
// Paths are deduplicated via filepath.Abs.
func configSearchPaths() []string {
	candidates := []string{
		"vire-optimizer.toml",
		"config/vire-optimizer.toml",
	}

	exe, err := os.Executable()
	if err != nil {
		return candidates
	}
	binDir := filepath.Dir(exe)

	paths := []string{
		filepath.Join(binDir, "vire-optimizer.toml"),
		filepath.Join(binDir, "config", "vire-optimizer.toml"),
	}
	paths = append(paths, candidates...)

	seen := make(map[string]bool, len(paths))
	deduped := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		deduped = append(deduped, p)
	}
	return deduped
}

// setupLogger creates an arbor logger based on config.
func setupLogger(cfg *config.Config) *common.Logger {
	return common.NewLoggerFromConfig(common.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Outputs:    cfg.Logging.Outputs,
		FilePath:   cfg.Logging.FilePath,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
}
