// Package apiserver serves the analysis over HTTP.
package apiserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/moolen/faultline/internal/analysis"
	"github.com/moolen/faultline/internal/logging"
)

// Service is the analysis surface the HTTP API exposes.
type Service interface {
	Snapshot() *analysis.Snapshot
	Selection() analysis.Selection
	Select(id string)
	Analyze(ctx context.Context, topic string) (*analysis.Snapshot, error)
	Trigger(topic string) error
	Busy() bool
	Trend() analysis.Trend
}

// Server handles HTTP API requests. It implements lifecycle.Component.
type Server struct {
	port      int
	server    *http.Server
	listener  net.Listener
	logger    *logging.Logger
	router    *http.ServeMux
	svc       Service
	gatherer  prometheus.Gatherer
	mcpServer *server.MCPServer
}

// New creates the API server. gatherer backs /metrics; mcpServer may be nil.
func New(port int, svc Service, gatherer prometheus.Gatherer, mcpServer *server.MCPServer) *Server {
	s := &Server{
		port:      port,
		logger:    logging.GetLogger("apiserver"),
		router:    http.NewServeMux(),
		svc:       svc,
		gatherer:  gatherer,
		mcpServer: mcpServer,
	}

	s.registerHandlers()
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.router)
}

// Start binds the port and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}
	s.listener = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error: %v", err)
		}
	}()

	s.logger.Info("API server listening on %s", ln.Addr())
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.listener == nil {
		return nil
	}
	s.logger.Info("Stopping API server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error: %v", err)
		return err
	}
	s.logger.Info("API server stopped")
	return nil
}

// Name implements lifecycle.Component.
func (s *Server) Name() string { return "api-server" }

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.server.Addr
	}
	return s.listener.Addr().String()
}
