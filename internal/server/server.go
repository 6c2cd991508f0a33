package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rarescolibaba/timethread/internal/config"
	"github.com/rarescolibaba/timethread/internal/monitor"
	"github.com/rarescolibaba/timethread/internal/server/middleware"
	"github.com/rarescolibaba/timethread/internal/store"
	"github.com/rarescolibaba/timethread/internal/uptime"
)

// Server exposes the monitoring core over HTTP for external consumers (a UI
// layer, the CLI client). It only ever reads snapshots and issues store
// queries; tracked state stays owned by the Monitor.
type Server struct {
	httpServer *http.Server
	monitor    *monitor.Monitor
	store      *store.Store
	probe      *uptime.Probe
	logger     *slog.Logger
	version    string
}

func New(cfg *config.Config, m *monitor.Monitor, st *store.Store, probe *uptime.Probe, logger *slog.Logger, version string) *Server {
	s := &Server{
		monitor: m,
		store:   st,
		probe:   probe,
		logger:  logger,
		version: version,
	}

	handler := middleware.Chain(
		s.setupRoutes(),
		middleware.Recovery(logger),
		middleware.Logging(logger),
	)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	s.logger.Info("server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
