// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, queue, capability)
// that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/arboretica/lore/internal/config"
	"github.com/arboretica/lore/pkg/capability"
	"github.com/arboretica/lore/pkg/database"
	"github.com/arboretica/lore/pkg/lifecycle"
	"github.com/arboretica/lore/pkg/queue"
	"github.com/arboretica/lore/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, database access, file storage, the work queue, and the
// generative capability client.
type Infrastructure struct {
	Lifecycle  *lifecycle.Coordinator
	Logger     *slog.Logger
	Database   database.System
	Storage    storage.System
	Queue      queue.System
	Capability capability.System
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

	q, err := queue.New(&cfg.Queue, logger)
	if err != nil {
		return nil, fmt.Errorf("queue init failed: %w", err)
	}

	capSys, err := capability.New(&cfg.Capability)
	if err != nil {
		return nil, fmt.Errorf("capability init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle:  lc,
		Logger:     logger,
		Database:   db,
		Storage:    store,
		Queue:      q,
		Capability: capSys,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// Database, storage, and queue hooks are registered for startup and shutdown
// coordination. The capability client is stateless and needs no hooks.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if err := i.Queue.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("queue start failed: %w", err)
	}
	return nil
}
