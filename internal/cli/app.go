// internal/cli/app.go
package cli

import (
	"fmt"

	"horizon-client/internal/auth"
	"horizon-client/internal/config"
	"horizon-client/internal/inventory"
	"horizon-client/internal/storage"
	"horizon-client/internal/telemetry"

	"go.uber.org/zap"
)

const appVersion = "1.0.0"

// app bundles the wired client services the commands share. Everything is
// constructed explicitly here and passed down; no package-level state.
type app struct {
	cfg    config.AppConfig
	logger *zap.Logger
	store  *storage.FileStore
	sink   *telemetry.Sink
	auth   *auth.Service
	cache  *inventory.Cache
}

func newApp(serverOverride string) (*app, error) {
	cfg := config.Load()
	if serverOverride != "" {
		cfg.ServerURL = serverOverride
	}

	var logger *zap.Logger
	var err error
	if cfg.LogLevel == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	store, err := storage.New(cfg.StorageDir)
	if err != nil {
		return nil, err
	}

	client := auth.NewBearerClient(store, cfg.RequestTimeout)
	sink := telemetry.NewSink(client, cfg.ServerURL, appVersion, logger)
	authService := auth.NewService(cfg.ServerURL, client, store, sink, logger)
	cache := inventory.NewCache(client, cfg.ServerURL, store, sink, logger)

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		sink:   sink,
		auth:   authService,
		cache:  cache,
	}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}
