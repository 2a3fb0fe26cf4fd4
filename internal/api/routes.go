package api

import (
	"net/http"

	"github.com/JaimeStill/briefer/internal/config"
	"github.com/JaimeStill/briefer/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) {
	routes.Register(
		mux,
		domain.Auth.Handler().Routes(),
		domain.Prompts.Handler(domain.Auth.Middleware()).Routes(),
		domain.Decks.Handler(domain.Auth.Middleware(), cfg.API.MaxUploadSizeBytes()).Routes(),
	)
}
