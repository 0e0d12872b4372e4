// Package server exposes the miner placement search over HTTP and a
// websocket stream of improvements.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const (
	DefaultAddr         = ":8080"
	DefaultSolveTimeout = 30 * time.Second
	DefaultMaxGridBytes = 64 << 10
	wsIdlePingInterval  = 30 * time.Second
	shutdownTimeout     = 5 * time.Second
)

// Config bounds the work a single request may ask for.
type Config struct {
	// MaxWorkers caps the workers query parameter.
	MaxWorkers int
	// SolveTimeout is the default and the upper bound of a request's search.
	SolveTimeout time.Duration
	// MaxGridBytes limits the size of a submitted grid.
	MaxGridBytes int64
	// PingInterval is the idle time after which a websocket gets a ping.
	PingInterval time.Duration
}

// DefaultConfig returns the configuration used by the serve command.
func DefaultConfig() Config {
	return Config{
		MaxWorkers:   8,
		SolveTimeout: DefaultSolveTimeout,
		MaxGridBytes: DefaultMaxGridBytes,
		PingInterval: wsIdlePingInterval,
	}
}

// Server routes API and websocket requests to the solver.
type Server struct {
	config Config
	log    zerolog.Logger
	router chi.Router
}

// New creates a server with its routes mounted.
func New(config Config, log zerolog.Logger) *Server {
	def := DefaultConfig()
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = def.MaxWorkers
	}
	if config.SolveTimeout <= 0 {
		config.SolveTimeout = def.SolveTimeout
	}
	if config.MaxGridBytes <= 0 {
		config.MaxGridBytes = def.MaxGridBytes
	}
	if config.PingInterval <= 0 {
		config.PingInterval = def.PingInterval
	}

	s := &Server{config: config, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Get("/api/presets", s.handlePresets)
	r.Get("/api/presets/{name}", s.handlePreset)
	r.Get("/api/generate", s.handleGenerate)
	r.Post("/api/solve", s.handleSolve)
	r.Get("/ws/solve", s.serveWS)

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()
	s.log.Info().Str("addr", addr).Msg("listening")

	var runErr error
	select {
	case <-ctx.Done():
		s.log.Info().Msg("shutting down")
	case err := <-serverErrCh:
		runErr = err
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Warn().Err(err).Msg("graceful shutdown failed")
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			s.log.Warn().Err(closeErr).Msg("forced close failed")
		}
	}
	return runErr
}

// requestLogger logs one line per request through zerolog, tagged with the
// chi request id.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info().
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
