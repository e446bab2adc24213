// Package api is the read-only REST API over a parsed log file.
//
// All routes live under /api/v1 and answer with the APIResponse envelope.
// Prometheus metrics are served at /metrics.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ssargent/monologreader/pkg/logging"
)

const shutdownTimeout = 5 * time.Second

// NewRouter builds the HTTP routes for s
func NewRouter(s *Server) http.Handler {
	metrics := s.metrics

	r := chi.NewRouter()

	// Middleware
	r.Use(requestIDMiddleware)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		// Records
		r.Get("/records", metrics.InstrumentHandler("GET", "/api/v1/records", s.handleListRecords))
		r.Get("/records/{index}", metrics.InstrumentHandler("GET", "/api/v1/records/{index}", s.handleGetRecord))
		r.Put("/records/{index}", metrics.InstrumentHandler("PUT", "/api/v1/records/{index}", s.handleWriteRecord))
		r.Patch("/records/{index}", metrics.InstrumentHandler("PATCH", "/api/v1/records/{index}", s.handleWriteRecord))
		r.Delete("/records/{index}", metrics.InstrumentHandler("DELETE", "/api/v1/records/{index}", s.handleWriteRecord))

		// Diagnostics
		r.Get("/stats", metrics.InstrumentHandler("GET", "/api/v1/stats", s.handleStats))
	})

	return r
}

// StartServer serves src on config.Bind:config.Port until ctx is cancelled,
// then shuts down gracefully.
func StartServer(ctx context.Context, src RecordSource, config ServerConfig, metrics *Metrics, logger *logging.Logger) error {
	if logger == nil {
		logger = logging.NoopLogger()
	}
	server := NewServer(src, config, metrics, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", config.Bind, config.Port),
		Handler:           NewRouter(server),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "starting monolog API server", "addr", httpServer.Addr, "records", src.Count())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.InfoContext(ctx, "shutting down monolog API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
