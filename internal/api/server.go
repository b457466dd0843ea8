// Package api exposes the orchestration engine over HTTP: workflow lifecycle
// endpoints, a read-only execution snapshot, and an SSE stream of engine
// events for the dashboard.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/agentboard/agentboard/internal/core"
	"github.com/agentboard/agentboard/internal/diagnostics"
	"github.com/agentboard/agentboard/internal/events"
	"github.com/agentboard/agentboard/internal/logging"
	"github.com/agentboard/agentboard/internal/service"
)

// Server provides the HTTP boundary over the execution controller.
type Server struct {
	router    chi.Router
	ctrl      *service.ExecutionController
	backend   core.Backend
	bus       *events.Bus
	collector *diagnostics.Collector
	logger    *logging.Logger
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *logging.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// WithCollector sets the system metrics collector used by /health.
func WithCollector(c *diagnostics.Collector) ServerOption {
	return func(s *Server) { s.collector = c }
}

// NewServer creates the API server over a controller and its event bus.
func NewServer(ctrl *service.ExecutionController, backend core.Backend, bus *events.Bus, opts ...ServerOption) *Server {
	s := &Server{
		ctrl:      ctrl,
		backend:   backend,
		bus:       bus,
		collector: diagnostics.NewCollector(),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.setupRouter()
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.loggingMiddleware)

	// CORS for the dashboard frontend
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
		MaxAge:           300,
	})
	r.Use(corsHandler.Handler)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/workflow", func(r chi.Router) {
			r.Get("/", s.handleGetWorkflow)
			r.Post("/start", s.handleStart)
			r.Post("/pause", s.handlePause)
			r.Post("/resume", s.handleResume)
			r.Post("/stop", s.handleStop)
			r.Post("/reset", s.handleReset)
		})

		r.Get("/agents", s.handleListAgents)

		// SSE endpoint for real-time updates
		r.Get("/events", s.handleSSE)
	})

	return r
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"bytes", ww.BytesWritten(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// respondJSON sends a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.Error("failed to encode response", "error", err)
		}
	}
}

// handleHealth reports local health plus the backend's reachability verdict.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if info, err := s.backend.Health(ctx); err != nil {
		resp["backend"] = map[string]interface{}{
			"reachable": false,
			"error":     err.Error(),
		}
	} else {
		resp["backend"] = map[string]interface{}{
			"reachable": true,
			"status":    info.Status,
		}
	}

	if s.collector != nil {
		resp["system"] = s.collector.Collect()
	}

	s.respondJSON(w, http.StatusOK, resp)
}

// ListenAndServe starts the HTTP server and shuts it down gracefully when the
// context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("starting API server", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
