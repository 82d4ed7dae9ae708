// Package http exposes the read-only monitoring surface: latest scan
// decisions, health, and Prometheus metrics.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Server represents the read-only HTTP server
type Server struct {
	router  *mux.Router
	server  *http.Server
	store   *ResultStore
	metrics *MetricsRegistry
	config  ServerConfig
	started time.Time
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "127.0.0.1", // Local-only by default
		Port:         8080,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewServer creates a new HTTP server instance
func NewServer(config ServerConfig, store *ResultStore, metrics *MetricsRegistry) (*Server, error) {
	// Check if port is available
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("port %d is busy or unavailable: %w", config.Port, err)
	}
	listener.Close()

	server := &Server{
		router:  mux.NewRouter(),
		store:   store,
		metrics: metrics,
		config:  config,
		started: time.Now(),
	}
	server.setupRoutes()

	server.server = &http.Server{
		Addr:         addr,
		Handler:      server.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return server, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.loggingMiddleware)

	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/decisions", s.handleDecisions).Methods("GET")
	s.router.HandleFunc("/decisions/{ticker}", s.handleDecision).Methods("GET")
	s.router.HandleFunc("/boards", s.handleBoards).Methods("GET")
	s.router.HandleFunc("/boards/{ticker}", s.handleBoard).Methods("GET")
	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
}

// Start runs the server until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	results, asOf := s.store.All()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "healthy",
		"uptime_sec":   int(time.Since(s.started).Seconds()),
		"last_scan_at": asOf,
		"decisions":    len(results),
	})
}

func (s *Server) handleDecisions(w http.ResponseWriter, r *http.Request) {
	results, asOf := s.store.All()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"as_of":     asOf,
		"decisions": results,
	})
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]
	record, ok := s.store.Get(ticker)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": fmt.Sprintf("no decision for ticker %s", ticker),
		})
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleBoards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"boards": s.store.Boards(),
	})
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]
	b, ok := s.store.Board(ticker)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": fmt.Sprintf("no board for ticker %s", ticker),
		})
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
