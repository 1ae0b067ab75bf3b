// Package web exposes the ingest and analytics services over a JSON HTTP API.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/oselabs/agentsight/internal/analytics"
	"github.com/oselabs/agentsight/internal/ingest"
	"github.com/oselabs/agentsight/internal/ports"
)

type Server struct {
	router    *http.ServeMux
	addr      string
	ingester  *ingest.Service
	analytics *analytics.Service
	logger    ports.Logger

	defaultPageSize int
	maxPageSize     int
}

func NewServer(addr string, ing *ingest.Service, an *analytics.Service, logger ports.Logger, defaultPageSize, maxPageSize int) *Server {
	if defaultPageSize <= 0 {
		defaultPageSize = 50
	}
	if maxPageSize <= 0 {
		maxPageSize = 200
	}
	s := &Server{
		router:          http.NewServeMux(),
		addr:            addr,
		ingester:        ing,
		analytics:       an,
		logger:          logger,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Ingest
	s.router.HandleFunc("POST /api/v1/events", s.withOrg(s.handleIngestEvents))

	// Metrics
	s.router.HandleFunc("GET /api/v1/metrics/overview", s.withOrg(s.handleOverview))
	s.router.HandleFunc("GET /api/v1/metrics/timeseries", s.withOrg(s.handleTimeseries))

	// Sessions
	s.router.HandleFunc("GET /api/v1/sessions", s.withOrg(s.handleListSessions))
	s.router.HandleFunc("GET /api/v1/sessions/{id}", s.withOrg(s.handleSessionDetail))
}

// Handler returns the root handler, used directly by tests.
func (s *Server) Handler() http.Handler {
	return withRequestID(s.router)
}

func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting http server", "addr", s.addr)

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown error", "error", err)
		}
	}()

	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil // Graceful shutdown
	}
	return err
}
