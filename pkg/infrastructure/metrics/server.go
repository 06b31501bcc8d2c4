package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes a collector's registry on /metrics for the duration of a
// pipeline run. Long runs can be watched live; short runs rely on the
// textfile dump instead.
type Server struct {
	address string
	server  *http.Server
}

// NewServer creates a metrics server for the given collector.
func NewServer(address string, collector *PrometheusCollector) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(collector.registry, promhttp.HandlerOpts{}))

	return &Server{
		address: address,
		server:  &http.Server{Addr: address, Handler: mux},
	}
}

// Start serves until Stop is called. It blocks; run it on its own goroutine.
func (s *Server) Start() error {
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop stops the metrics server.
func (s *Server) Stop() error {
	return s.server.Close()
}
