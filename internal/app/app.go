package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bobmcallan/vire-optimizer/internal/client"
	"github.com/bobmcallan/vire-optimizer/internal/common"
	"github.com/bobmcallan/vire-optimizer/internal/config"
	"github.com/bobmcallan/vire-optimizer/internal/interfaces"
	"github.com/bobmcallan/vire-optimizer/internal/models"
	"github.com/bobmcallan/vire-optimizer/internal/orchestrator"
	"github.com/bobmcallan/vire-optimizer/internal/portfolio"
	"github.com/bobmcallan/vire-optimizer/internal/session"
	"github.com/bobmcallan/vire-optimizer/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
)

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger

	Storage      interfaces.StorageManager
	Gateway      *client.Gateway
	Session      *session.Store
	Portfolio    *portfolio.Store
	Orchestrator *orchestrator.Orchestrator

	// Registry holds the submission metrics.
	Registry *prometheus.Registry
}

// New initializes the application with all dependencies and restores any
// persisted credential.
func New(ctx context.Context, cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	env := strings.ToLower(strings.TrimSpace(cfg.Environment))
	if cfg.IsDevMode() {
		logger.Warn().Msg("RUNNING IN DEV MODE")
	} else if env != "prod" && env != "" {
		logger.Warn().
			Str("environment", cfg.Environment).
			Msg("unrecognized environment value, defaulting to prod behavior")
	}

	if err := a.initStorage(); err != nil {
		return nil, err
	}
	if err := a.initServices(); err != nil {
		a.Close()
		return nil, err
	}

	a.Session.Load(ctx)

	logger.Info().
		Str("api_url", a.Gateway.BaseURL()).
		Str("storage", a.Storage.Backend()).
		Bool("credential", a.Session.Present()).
		Msg("application initialization complete")

	return a, nil
}

func (a *App) initStorage() error {
	mgr, err := storage.NewStorageManager(a.Logger, &a.Config.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	a.Storage = mgr
	return nil
}

func (a *App) initServices() error {
	a.Gateway = client.NewGateway(a.Config.API.URL, a.Config.API.GetTimeout(), a.Logger)
	a.Gateway.SetRateLimit(a.Config.API.RateLimit)

	a.Session = session.NewStore(a.Gateway, a.Storage.KeyValueStorage(), a.Config.Auth.StorageKey, a.Logger)
	a.Portfolio = portfolio.NewStore()

	a.Registry = prometheus.NewRegistry()
	metrics, err := orchestrator.NewMetrics(a.Registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	a.Orchestrator = orchestrator.NewOrchestrator(a.Gateway, a.Session, a.Portfolio, a.Logger, metrics)

	a.Session.Subscribe(a.logCredentialChange)
	a.Portfolio.Subscribe(a.logPortfolioChange)

	a.Logger.Debug().Msg("services initialized")
	return nil
}

func (a *App) logCredentialChange(cred models.Credential) {
	if cred.Error != "" {
		a.Logger.Info().Bool("present", false).Str("reason", cred.Error).Msg("credential changed")
		return
	}
	a.Logger.Info().Bool("present", cred.Present()).Msg("credential changed")
}

func (a *App) logPortfolioChange(p *models.PortfolioResult) {
	if p == nil {
		return
	}
	if p.IsError() {
		a.Logger.Info().Str("status", p.Status).Str("reason", p.Error).Msg("portfolio changed")
		return
	}
	a.Logger.Info().Str("status", p.Status).Int("tickers", len(p.Weights)).Msg("portfolio changed")
}

// WriteMetrics exports the submission metrics to metrics.textfile_path in the
// Prometheus text format. It does nothing when no path is configured.
func (a *App) WriteMetrics() error {
	path := a.Config.Metrics.TextfilePath
	if path == "" || a.Registry == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, a.Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	a.Logger.Debug().Str("path", path).Msg("metrics written")
	return nil
}

// Close closes all application resources.
func (a *App) Close() error {
	if a.Storage == nil {
		return nil
	}
	return a.Storage.Close()
}
