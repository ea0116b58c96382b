package api

import (
	"github.com/arboretica/lore/internal/config"
	"github.com/arboretica/lore/internal/infrastructure"
	"github.com/arboretica/lore/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination       pagination.Config
	EmbeddingVersion int
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle:  infra.Lifecycle,
			Logger:     infra.Logger.With("module", "api"),
			Database:   infra.Database,
			Storage:    infra.Storage,
			Queue:      infra.Queue,
			Capability: infra.Capability,
		},
		Pagination:       cfg.API.Pagination,
		EmbeddingVersion: cfg.Capability.EmbeddingVersion,
	}
}
