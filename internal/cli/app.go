package cli

import (
	"context"
	"fmt"

	"hustleledger/internal/backend"
	"hustleledger/internal/budget"
	"hustleledger/internal/cache"
	"hustleledger/internal/config"
	"hustleledger/internal/log"
	"hustleledger/internal/ports"
	"hustleledger/internal/services"
	"hustleledger/internal/settings"
)

// App is the wired application shared by the binaries.
type App struct {
	Config    *config.Config
	Store     ports.Store
	Prefs     *settings.Preferences
	Ledger    *services.LedgerService
	Processor *services.RecurringProcessor
	Caches    *cache.Manager
	Logger    *log.Logger

	cleanup backend.CleanupFunc
}

// Bootstrap creates the configured backend and wires the services on top.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}
	return NewApp(cfg, res, logger), nil
}

// NewApp wires the services over an existing backend.
func NewApp(cfg *config.Config, res *backend.BackendResult, logger *log.Logger) *App {
	if logger == nil {
		logger = log.Discard()
	}
	prefs := settings.NewPreferences(res.Store, cfg.PreferenceCacheTTL, logger)
	engine := budget.NewEngine(budget.Config{
		Location:        cfg.Location(),
		Thresholds:      cfg.BudgetThresholds,
		RecordWhenMuted: cfg.RecordMutedThresholds,
	}, res.Sink, res.Sink, prefs, logger)
	ledger := services.NewLedgerService(res.Store, engine, res.Sink, prefs, logger)

	caches := cache.NewManager(logger)
	caches.Register(prefs.Cache())

	return &App{
		Config:    cfg,
		Store:     res.Store,
		Prefs:     prefs,
		Ledger:    ledger,
		Processor: services.NewRecurringProcessor(ledger, logger),
		Caches:    caches,
		Logger:    logger,
		cleanup:   res.Cleanup,
	}
}

// Close releases the backend.
func (a *App) Close() error {
	if a.cleanup == nil {
		return nil
	}
	return a.cleanup()
}
