package apiserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/moolen/faultline/internal/api/response"
)

const mcpEndpointPath = "/v1/mcp"

func (s *Server) registerHandlers() {
	s.router.HandleFunc("/health", s.handleHealth)
	s.router.HandleFunc("/ready", s.handleReady)
	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.router.HandleFunc("/v1/snapshot", s.withMethod(s.handleSnapshot, http.MethodGet))
	s.router.HandleFunc("/v1/selection", s.withMethod(s.handleSelection, http.MethodGet, http.MethodPost))
	s.router.HandleFunc("/v1/analyze", s.withMethod(s.handleAnalyze, http.MethodPost))
	s.router.HandleFunc("/v1/trend", s.withMethod(s.handleTrend, http.MethodGet))

	s.registerMCPHandler()
}

func (s *Server) registerMCPHandler() {
	if s.mcpServer == nil {
		s.logger.Debug("MCP server not configured, skipping %s endpoint", mcpEndpointPath)
		return
	}

	streamable := server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithEndpointPath(mcpEndpointPath),
		server.WithStateLess(true),
	)
	s.router.Handle(mcpEndpointPath, streamable)
	s.logger.Info("MCP endpoint registered at %s", mcpEndpointPath)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = response.WriteSuccess(w, map[string]string{"status": "healthy"})
}

// handleReady reports ready once the first snapshot is published.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	ready := s.svc.Snapshot().Published()
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	_ = response.Write(w, status, map[string]bool{"ready": ready})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	_ = response.WriteSuccess(w, s.svc.Snapshot())
}

type selectRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req selectRequest
		if err := decodeBody(r, &req); err != nil {
			response.WriteError(w, http.StatusBadRequest, response.CodeBadRequest, err.Error())
			return
		}
		s.svc.Select(req.ID)
	}
	_ = response.WriteSuccess(w, s.svc.Selection())
}

type analyzeRequest struct {
	Topic string `json:"topic"`
}

// handleAnalyze starts a run. With ?wait=true the run is synchronous and the
// new snapshot is returned.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeBody(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		return
	}

	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait {
		snap, err := s.svc.Analyze(r.Context(), req.Topic)
		if err != nil {
			s.writeRunError(w, err)
			return
		}
		_ = response.WriteSuccess(w, snap)
		return
	}

	if err := s.svc.Trigger(req.Topic); err != nil {
		s.writeRunError(w, err)
		return
	}
	_ = response.WriteAccepted(w, map[string]bool{"started": true})
}

func (s *Server) handleTrend(w http.ResponseWriter, _ *http.Request) {
	_ = response.WriteSuccess(w, s.svc.Trend())
}

// decodeBody decodes an optional JSON body into v.
func decodeBody(r *http.Request, v interface{}) error {
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
