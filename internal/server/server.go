package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gtudan/co2monitor/internal/logging"
	"github.com/gtudan/co2monitor/internal/version"
)

// Config holds the server configuration
type Config struct {
	Addr string

	// StaleAfter bounds the age of the newest reading for /healthz
	// (DefaultStaleAfter when zero)
	StaleAfter time.Duration

	// Metrics serves /metrics; nil leaves the route unregistered
	Metrics http.Handler
}

// Server serves the latest readings, health, metrics and the live feed
type Server struct {
	config   Config
	state    *State
	hub      *Hub
	http     *http.Server
	listener net.Listener
}

// New creates a new Server instance
func New(config Config, state *State, hub *Hub) *Server {
	if config.StaleAfter <= 0 {
		config.StaleAfter = DefaultStaleAfter
	}
	s := &Server{
		config: config,
		state:  state,
		hub:    hub,
	}
	s.http = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the route table:
//
//	GET /api/latest  latest reading of each kind (JSON)
//	GET /healthz     200 while readings are fresh, 503 otherwise
//	GET /metrics     Prometheus exposition
//	GET /ws          WebSocket feed of every reading
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/latest", s.state.handleLatest)
	mux.HandleFunc("GET /healthz", s.state.healthHandler(s.config.StaleAfter))
	if s.config.Metrics != nil {
		mux.Handle("GET /metrics", s.config.Metrics)
	}
	mux.Handle("GET /ws", s.hub)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", version.UserAgent())
		mux.ServeHTTP(w, r)
	})
}

// Listen binds the listening socket so Addr is known before Serve.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	s.listener = listener

	logging.Info("HTTP server listening",
		zap.String("addr", listener.Addr().String()),
	)
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Port returns the bound TCP port, or 0 before Listen.
func (s *Server) Port() int {
	if addr, ok := s.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

// Serve accepts connections until Shutdown. It returns nil after a clean
// shutdown.
func (s *Server) Serve() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	if err := s.http.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down HTTP server...")

	// WebSocket connections are hijacked and not tracked by http.Server
	_ = s.hub.Close()

	if err := s.http.Shutdown(ctx); err != nil {
		logging.Warn("Shutdown timeout, forcing close", zap.Error(err))
		return s.http.Close()
	}
	return nil
}
