// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, the model
// client, the status channel, and tunables) that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/typevault/typevault/internal/config"
	"github.com/typevault/typevault/pkg/database"
	"github.com/typevault/typevault/pkg/events"
	"github.com/typevault/typevault/pkg/genai"
	"github.com/typevault/typevault/pkg/lifecycle"
	"github.com/typevault/typevault/pkg/storage"
	"github.com/typevault/typevault/pkg/tunables"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, database access, blob storage, the model client, the ingest
// status channel, and remote tunables.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Events    events.Publisher
	Model     genai.Client
	Tunables  tunables.Provider
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	publisher, err := events.Connect(&cfg.Events, logger)
	if err != nil {
		return nil, fmt.Errorf("events init failed: %w", err)
	}

	// Environment wins over config-file tunables so operators can flip
	// flags without a redeploy.
	provider := tunables.Layered{
		tunables.Env{Prefix: "TYPEVAULT"},
		tunables.Static(cfg.Tunables),
	}

	model := genai.New(&cfg.Model, tunables.LoadRetry(provider), logger)

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Events:    publisher,
		Model:     model,
		Tunables:  provider,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// Database and storage hooks are registered for startup and shutdown
// coordination; the status channel is drained on shutdown.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	i.Lifecycle.OnShutdown(i.Events.Close)
	return nil
}
