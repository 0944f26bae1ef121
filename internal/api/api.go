// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/typevault/typevault/internal/config"
	"github.com/typevault/typevault/internal/infrastructure"
	"github.com/typevault/typevault/pkg/middleware"
	"github.com/typevault/typevault/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware,
// and registers the background analysis orchestrator with the lifecycle
// coordinator.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(cfg, runtime)

	domain.Orchestrator.Start(runtime.Lifecycle)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Infrastructure.Logger))

	return m, nil
}
