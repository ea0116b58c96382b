// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/arboretica/lore/internal/config"
	"github.com/arboretica/lore/internal/infrastructure"
	"github.com/arboretica/lore/pkg/middleware"
	"github.com/arboretica/lore/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, *Domain, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Infrastructure.Logger))

	return m, domain, nil
}
