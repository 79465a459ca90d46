package metric

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nationalarchives/dri-data-migration-sub000/errors"
)

// Server serves the registry over HTTP.
type Server struct {
	port     int
	path     string
	server   *http.Server
	registry *MetricsRegistry
	health   http.Handler
	mu       sync.Mutex
	stopped  bool
}

// NewServer creates a metrics server. Zero values default to port 9090 and path /metrics.
func NewServer(port int, path string, registry *MetricsRegistry) *Server {
	if path == "" {
		path = "/metrics"
	}
	if port == 0 {
		port = 9090
	}
	return &Server{port: port, path: path, registry: registry}
}

// SetHealthHandler replaces the default /health handler, which always
// answers OK. Call it before Start.
func (s *Server) SetHealthHandler(h http.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.health = h
}

// Handler returns the mux serving metrics and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(s.path, promhttp.HandlerFor(
		s.registry.PrometheusRegistry(),
		promhttp.HandlerOpts{EnableOpenMetrics: true},
	))
	if s.health != nil {
		mux.Handle("/health", s.health)
	} else {
		mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		})
	}
	return mux
}

// Start serves until Stop is called. It returns nil after a clean stop,
// and at once if Stop has already been called.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	if s.server != nil {
		s.mu.Unlock()
		return errors.WrapInvalid(fmt.Errorf("server already running"),
			"Server", "Start", "cannot start server that is already running")
	}
	if s.registry == nil {
		s.mu.Unlock()
		return errors.WrapFatal(fmt.Errorf("nil registry"),
			"Server", "Start", "metrics registry not provided")
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.server = srv
	s.mu.Unlock()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.WrapFatal(err, "Server", "Start",
			fmt.Sprintf("serve on port %d", s.port))
	}
	return nil
}

// Stop shuts the server down gracefully. A stopped server does not
// start again.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	if s.server == nil {
		return nil
	}
	err := s.server.Shutdown(ctx)
	s.server = nil
	if err != nil {
		return errors.WrapTransient(err, "Server", "Stop", "shutdown HTTP server")
	}
	return nil
}

// Address returns the metrics URL.
func (s *Server) Address() string {
	return fmt.Sprintf("http://localhost:%d%s", s.port, s.path)
}
