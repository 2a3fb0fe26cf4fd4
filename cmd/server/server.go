package main

import (
	"fmt"
	"time"

	"github.com/JaimeStill/briefer/internal/config"
	"github.com/JaimeStill/briefer/internal/infrastructure"
)

// Server owns the process: shared infrastructure, the mounted modules, and
// the HTTP listener.
type Server struct {
	cfg     *config.Config
	infra   *infrastructure.Infrastructure
	modules *Modules
	http    *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("infrastructure: %w", err)
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, fmt.Errorf("modules: %w", err)
	}

	router := buildRouter(infra)
	modules.Mount(router)

	return &Server{
		cfg:     cfg,
		infra:   infra,
		modules: modules,
		http:    newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

func (s *Server) Start() error {
	s.infra.Logger.Info(
		"starting briefer",
		"version", s.cfg.Version,
		"base_path", s.cfg.API.BasePath,
		"workers", s.cfg.Pipeline.Workers,
		"queue_size", s.cfg.Pipeline.QueueSize,
		"knowledge", s.cfg.Knowledge.Source,
	)

	if err := s.infra.Start(); err != nil {
		return fmt.Errorf("infrastructure start: %w", err)
	}
	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("ready to accept uploads")
	}()

	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("shutting down", "timeout", timeout)
	return s.infra.Lifecycle.Shutdown(timeout)
}
