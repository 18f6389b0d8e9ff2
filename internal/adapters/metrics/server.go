package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors are the registered collectors of an enabled registry
type Collectors struct {
	Commands    *CommandMetricsCollector
	API         *APIMetricsCollector
	Pricing     *PricingMetricsCollector
	Computation *ComputationMetricsCollector
}

// Enable initializes the registry, registers every collector and installs the
// global pricing and computation recorders
func Enable() (*Collectors, error) {
	InitRegistry()

	c := &Collectors{
		Commands:    NewCommandMetricsCollector(),
		API:         NewAPIMetricsCollector(),
		Pricing:     NewPricingMetricsCollector(),
		Computation: NewComputationMetricsCollector(),
	}
	for _, register := range []func() error{c.Commands.Register, c.API.Register, c.Pricing.Register, c.Computation.Register} {
		if err := register(); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	SetGlobalPricingCollector(c.Pricing)
	SetGlobalComputationCollector(c.Computation)
	return c, nil
}

// Server exposes the registry over HTTP for Prometheus to scrape
type Server struct {
	srv      *http.Server
	listener net.Listener
}

// NewServer creates a server for the global registry on host:port at path
func NewServer(host string, port int, path string) *Server {
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{}))

	return &Server{
		srv: &http.Server{
			Addr:              net.JoinHostPort(host, fmt.Sprintf("%d", port)),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start binds the listener and serves in the background
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.srv.Addr, err)
	}
	s.listener = listener

	go func() {
		if err := s.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Printf("metrics server stopped: %v\n", err)
		}
	}()
	return nil
}

// Addr returns the bound address, useful when port 0 was requested
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.srv.Addr
	}
	return s.listener.Addr().String()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
