package main

import (
	"encoding/json"
	"net/http"

	"github.com/JaimeStill/briefer/internal/api"
	"github.com/JaimeStill/briefer/internal/config"
	"github.com/JaimeStill/briefer/internal/infrastructure"
	"github.com/JaimeStill/briefer/pkg/module"
)

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(infra.Lifecycle.Context(), cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{
		API: apiModule,
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, "ok")
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			respond(w, http.StatusServiceUnavailable, "not ready")
			return
		}
		if err := infra.Database.Ping(r.Context()); err != nil {
			respond(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		respond(w, http.StatusOK, "ready")
	})

	return router
}

func respond(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"status": msg})
}
