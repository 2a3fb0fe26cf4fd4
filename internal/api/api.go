// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"context"
	"net/http"

	"github.com/JaimeStill/briefer/internal/config"
	"github.com/JaimeStill/briefer/internal/infrastructure"
	"github.com/JaimeStill/briefer/pkg/middleware"
	"github.com/JaimeStill/briefer/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware
// and starts the deck workers on the infrastructure lifecycle.
func NewModule(ctx context.Context, cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(ctx, runtime)
	if err != nil {
		return nil, err
	}

	if err := domain.Decks.Start(runtime.Lifecycle); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.Recover(runtime.Logger))

	return m, nil
}
