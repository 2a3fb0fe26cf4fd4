package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/JaimeStill/briefer/internal/config"
	"github.com/JaimeStill/briefer/pkg/lifecycle"
)

const readHeaderTimeout = 10 * time.Second

// httpServer binds its listener during Start so port conflicts fail startup
// instead of surfacing later from a background goroutine.
type httpServer struct {
	srv     *http.Server
	addr    string
	logger  *slog.Logger
	drainBy time.Duration
}

func newHTTPServer(cfg *config.ServerConfig, handler http.Handler, logger *slog.Logger) *httpServer {
	logger = logger.With("system", "http")
	return &httpServer{
		srv: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
			ReadTimeout:       cfg.ReadTimeoutDuration(),
			WriteTimeout:      cfg.WriteTimeoutDuration(),
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		addr:    cfg.Addr(),
		logger:  logger,
		drainBy: cfg.ShutdownTimeoutDuration(),
	}
}

func (s *httpServer) Start(lc *lifecycle.Coordinator) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}

	// Request contexts derive from the lifecycle so in-flight handlers see
	// shutdown.
	s.srv.BaseContext = func(net.Listener) context.Context { return lc.Context() }

	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("serve failed", "error", err)
		}
	}()

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.drainBy)
		defer cancel()

		s.logger.Info("draining connections", "timeout", s.drainBy)
		if err := s.srv.Shutdown(ctx); err != nil {
			s.logger.Error("drain incomplete", "error", err)
			return
		}
		s.logger.Info("server stopped")
	})

	return nil
}
