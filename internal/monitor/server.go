package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/afishnamedqwerty/aime/internal/logging"
)

// Server serves the monitoring snapshot over HTTP in a background
// goroutine: GET /api/state returns the latest snapshot as JSON, and an
// optional static directory is served at the root.
type Server struct {
	state  *State
	srv    *http.Server
	logger *logging.DebugLogger
}

// NewServer creates a monitoring server over the given state.
// staticDir may be empty to disable static serving.
func NewServer(state *State, staticDir string, logger *logging.DebugLogger) *Server {
	mux := http.NewServeMux()
	s := &Server{state: state, logger: logger}

	mux.HandleFunc("/api/state", s.handleState)
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}

	s.srv = &http.Server{Handler: mux}
	return s
}

// Start begins listening on addr and serving in the background.
// It returns once the listener is bound, so a caller immediately knows
// whether the port was available.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("monitor listen on %s: %w", addr, err)
	}
	s.srv.Addr = ln.Addr().String()
	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Log("monitor: server stopped: %v", err)
		}
	}()
	s.logger.Log("monitor: dashboard available at http://%s", s.srv.Addr)
	return nil
}

// Addr returns the bound address after Start.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(s.state.Snapshot()); err != nil {
		s.logger.Log("monitor: encode state: %v", err)
	}
}
