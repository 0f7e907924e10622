// Package app wires the configuration, hub client, conversation state, and
// catalog cache into one application instance.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/parleychat/parley/src/catalog"
	"github.com/parleychat/parley/src/chat"
	"github.com/parleychat/parley/src/config"
	"github.com/parleychat/parley/src/hubclient"
)

// App holds all services for one run of the client.
type App struct {
	Hub        *hubclient.Client
	Store      *chat.Store
	Controller *chat.Controller
	Catalog    *catalog.Cache
	Config     *config.Config
	Logger     *slog.Logger

	catalogDB *catalog.DB
}

// Options tunes App construction beyond the loaded configuration.
type Options struct {
	// Streaming selects SSE transport for predict requests.
	Streaming bool
	Logger    *slog.Logger
}

// New creates an App from a validated configuration.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	hub, err := hubclient.NewClient(hubclient.Config{
		BaseURL:     cfg.BaseURL,
		BearerToken: cfg.BearerToken,
		Cookie:      cfg.Cookie,
		ProjectID:   cfg.ProjectID,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create hub client: %w", err)
	}

	stateDir := config.StateDir()
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	catalogDB, err := catalog.Open(filepath.Join(stateDir, "catalog.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog cache: %w", err)
	}

	store := chat.NewStore()
	controller := chat.NewController(store, hub, chat.ControllerConfig{
		IntegrationName: cfg.IntegrationName,
		Streaming:       opts.Streaming,
		Logger:          logger,
	})

	return &App{
		Hub:        hub,
		Store:      store,
		Controller: controller,
		Catalog:    catalog.NewCache(catalogDB, hub, 0, logger),
		Config:     cfg,
		Logger:     logger,
		catalogDB:  catalogDB,
	}, nil
}

// Close releases resources held by the app.
func (a *App) Close() error {
	if a.catalogDB != nil {
		return a.catalogDB.Close()
	}
	return nil
}
