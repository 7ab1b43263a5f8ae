// Package app assembles the egg tracker from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/eggtracker/internal/config"
	"github.com/mamadbah2/eggtracker/internal/domain/models"
	"github.com/mamadbah2/eggtracker/internal/repository"
	"github.com/mamadbah2/eggtracker/internal/repository/mongodb"
	"github.com/mamadbah2/eggtracker/internal/repository/sheets"
	"github.com/mamadbah2/eggtracker/internal/repository/sqlite"
	"github.com/mamadbah2/eggtracker/internal/scheduler"
	"github.com/mamadbah2/eggtracker/internal/server/handlers"
	"github.com/mamadbah2/eggtracker/internal/server/router"
	"github.com/mamadbah2/eggtracker/internal/service/backup"
	"github.com/mamadbah2/eggtracker/internal/service/cartons"
	"github.com/mamadbah2/eggtracker/internal/service/collection"
	"github.com/mamadbah2/eggtracker/internal/service/commands"
	"github.com/mamadbah2/eggtracker/internal/service/export"
	"github.com/mamadbah2/eggtracker/internal/service/ledger"
	"github.com/mamadbah2/eggtracker/internal/service/mode"
	"github.com/mamadbah2/eggtracker/internal/service/packing"
	"github.com/mamadbah2/eggtracker/internal/service/reporting"
	"github.com/mamadbah2/eggtracker/internal/service/settings"
	whatsappsvc "github.com/mamadbah2/eggtracker/internal/service/whatsapp"
	"github.com/mamadbah2/eggtracker/pkg/clients/anthropic"
	whatsappclient "github.com/mamadbah2/eggtracker/pkg/clients/whatsapp"
)

// App holds every wired service.
type App struct {
	Config  *config.Config
	Catalog *models.Catalog
	State   *repository.State

	Ledger      *ledger.Service
	Collections *collection.Service
	Cartons     *cartons.Service
	Mode        *mode.Service
	Settings    *settings.Service
	Packing     *packing.Service
	Backup      *backup.Service
	Export      *export.Service
	Reporting   *reporting.Service
	Commands    *commands.Service

	// Messaging is nil unless WhatsApp is configured.
	Messaging whatsappsvc.MessagingService

	logger *zap.Logger
}

// OpenStore opens the blob store selected by cfg.Storage.Driver.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.BlobStore, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		return sqlite.NewStore(ctx, cfg.Storage.SQLitePath, logger)
	case config.DriverMongoDB:
		return mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

// New opens storage and builds the services. Optional integrations are
// wired only when configured.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	blobs, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}

	var sink export.Sink
	if cfg.Sheets.Enabled() {
		repo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, logger.Named("repo.sheets"))
		if err != nil {
			_ = blobs.Close(ctx)
			return nil, fmt.Errorf("init sheets repository: %w", err)
		}
		sink = repo
		logger.Info("google sheets export enabled")
	}

	loc, err := cfg.Reporting.Location()
	if err != nil {
		_ = blobs.Close(ctx)
		return nil, err
	}

	a := Build(cfg, blobs, sink, loc, logger)

	if cfg.WhatsApp.Enabled() {
		var translator anthropic.Client
		if cfg.AI.AnthropicKey != "" {
			translator = anthropic.NewClient(cfg.AI.AnthropicKey)
			logger.Info("anthropic ai client enabled")
		} else {
			logger.Warn("anthropic api key missing, free-text commands disabled")
		}
		a.Messaging = whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsappclient.NewClient(cfg.WhatsApp), a.Commands, translator, logger)
	}

	return a, nil
}

// Build wires the services over an already opened store. sink may be nil.
func Build(cfg *config.Config, blobs repository.BlobStore, sink export.Sink, loc *time.Location, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	catalog := models.DefaultCatalog()
	defaults := models.DefaultPreferences(models.PriceTable{
		HalfDozen: cfg.Pricing.HalfDozen,
		Dozen:     cfg.Pricing.Dozen,
	})
	state := repository.NewState(blobs, catalog, defaults)

	a := &App{Config: cfg, Catalog: catalog, State: state, logger: logger}
	a.Ledger = ledger.NewService(state, logger)
	a.Collections = collection.NewService(state, a.Ledger, logger)
	a.Cartons = cartons.NewService(state, logger)
	a.Mode = mode.NewService(state, logger)
	a.Settings = settings.NewService(state, logger)
	a.Packing = packing.NewService(catalog, a.Ledger, a.Cartons, a.Mode, logger)
	a.Backup = backup.NewService(state, defaults, logger)
	a.Export = export.NewService(catalog, a.Cartons, a.Ledger, sink, logger)
	a.Reporting = reporting.NewService(catalog, a.Collections, a.Cartons, a.Ledger, a.Settings, loc, logger)
	a.Commands = commands.NewService(commands.Services{
		Catalog:     catalog,
		Collections: a.Collections,
		Packing:     a.Packing,
		Cartons:     a.Cartons,
		Mode:        a.Mode,
		Settings:    a.Settings,
		Reporting:   a.Reporting,
		Publisher:   a.Export,
	}, logger)
	return a
}

// Router builds the HTTP engine.
func (a *App) Router() *gin.Engine {
	api := handlers.NewAPIHandler(handlers.Services{
		Catalog:     a.Catalog,
		Ledger:      a.Ledger,
		Collections: a.Collections,
		Packing:     a.Packing,
		Cartons:     a.Cartons,
		Mode:        a.Mode,
		Settings:    a.Settings,
		Backup:      a.Backup,
		Export:      a.Export,
		Reporting:   a.Reporting,
	}, a.logger)

	var webhook *handlers.WebhookHandler
	if a.Messaging != nil {
		webhook = handlers.NewWebhookHandler(a.Messaging, a.logger)
	}
	return router.New(api, webhook, a.logger)
}

// Scheduler builds the cron jobs for the configured integrations.
func (a *App) Scheduler() (*scheduler.Scheduler, error) {
	jobs := scheduler.Jobs{}
	if a.Messaging != nil {
		jobs.Reports = a.Reporting
		jobs.Notifier = a.Messaging
		jobs.Recipient = a.Config.WhatsApp.ReportRecipient
	}
	if a.Export.SinkEnabled() {
		jobs.Inventory = a.Export
	}
	return scheduler.NewScheduler(a.Config.Reporting, jobs, a.logger)
}

// Close releases the store.
func (a *App) Close(ctx context.Context) error {
	if err := a.State.Close(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}
