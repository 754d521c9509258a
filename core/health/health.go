// Package health serves liveness and readiness endpoints over HTTP.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/m3rciful/espertofit/core/logger"
)

const pingTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatsFunc returns extra fields for the readiness body.
type StatsFunc func() map[string]any

// Server answers /healthz and /readyz.
type Server struct {
	router chi.Router
	pinger Pinger
	stats  StatsFunc
	srv    *http.Server
}

// New builds a Server. pinger and stats may be nil.
func New(pinger Pinger, stats StatsFunc) *Server {
	s := &Server{
		router: chi.NewRouter(),
		pinger: pinger,
		stats:  stats,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Get("/healthz", s.handleLive)
	s.router.Get("/readyz", s.handleReady)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start listens on addr and serves in the background.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.srv = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Health.Info("health listening",
		slog.String("event", "listen"),
		slog.String("addr", ln.Addr().String()),
	)
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Health.Error("health server stopped",
				slog.String("event", "serve"),
				slog.String("err", err.Error()),
			)
		}
	}()
	return nil
}

// Shutdown stops a started server. It is a no-op otherwise.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil || s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}
	if s.stats != nil {
		for k, v := range s.stats() {
			body[k] = v
		}
	}

	status := http.StatusOK
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		err := s.pinger.Ping(ctx)
		cancel()
		if err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "unavailable"
			body["error"] = err.Error()
			logger.Health.Warn("not ready",
				slog.String("event", "readyz"),
				slog.String("err", err.Error()),
			)
		}
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
