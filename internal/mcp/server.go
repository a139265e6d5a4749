// Package mcp exposes the analysis as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/moolen/faultline/internal/analysis"
	"github.com/moolen/faultline/internal/logging"
)

// Tool executes one MCP tool call on raw JSON arguments.
type Tool interface {
	Execute(ctx context.Context, input json.RawMessage) (interface{}, error)
}

// Service is the analysis surface the tools operate on.
type Service interface {
	Snapshot() *analysis.Snapshot
	Selection() analysis.Selection
	Select(id string)
	Analyze(ctx context.Context, topic string) (*analysis.Snapshot, error)
	Trigger(topic string) error
	Trend() analysis.Trend
}

// Server wraps the mcp-go server with the faultline tools.
type Server struct {
	mcpServer *server.MCPServer
	svc       Service
	tools     map[string]Tool
	logger    *logging.Logger
}

// NewServer creates the MCP server for svc.
func NewServer(svc Service, version string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"faultline",
			version,
			server.WithToolCapabilities(false),
			server.WithLogging(),
		),
		svc:    svc,
		tools:  make(map[string]Tool),
		logger: logging.GetLogger("mcp"),
	}
	s.registerTools()
	s.registerPrompts()
	return s
}

// MCPServer returns the underlying server for transport wiring.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

func (s *Server) registerTools() {
	noArgs := map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}

	s.registerTool(
		"faultline_snapshot",
		"Get the latest analysis snapshot: subjects, scores, statuses, rationale and the node/edge topology",
		&snapshotTool{svc: s.svc},
		noArgs,
	)

	s.registerTool(
		"faultline_select",
		"Select a subject (city or year) by id and return its detail view",
		&selectTool{svc: s.svc},
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Subject id, case-insensitive (e.g. delhi or 2025)",
				},
			},
			"required": []string{"id"},
		},
	)

	s.registerTool(
		"faultline_selection",
		"Get the detail view of the currently selected subject",
		&selectionTool{svc: s.svc},
		noArgs,
	)

	s.registerTool(
		"faultline_analyze",
		"Run a new analysis. Returns the new snapshot when wait is true, otherwise starts it in the background",
		&analyzeTool{svc: s.svc},
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"topic": map[string]interface{}{
					"type":        "string",
					"description": "Market topic such as Gold or Cobalt. Required for the market variant unless a default is configured",
				},
				"wait": map[string]interface{}{
					"type":        "boolean",
					"description": "Optional: block until the run finishes (default false)",
				},
			},
		},
	)

	s.registerTool(
		"faultline_trend",
		"Get the velocity and direction of the mean score over recent runs",
		&trendTool{svc: s.svc},
		noArgs,
	)
}

func (s *Server) registerTool(name, description string, tool Tool, inputSchema map[string]interface{}) {
	s.tools[name] = tool

	schemaJSON, err := json.Marshal(inputSchema)
	if err != nil {
		panic(fmt.Sprintf("Failed to marshal schema for tool %s: %v", name, err))
	}

	s.mcpServer.AddTool(mcp.NewToolWithRawSchema(name, description, schemaJSON), s.createToolHandler(name, tool))
}

func (s *Server) createToolHandler(name string, tool Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(request.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		result, err := tool.Execute(ctx, args)
		if err != nil {
			s.logger.Debug("Tool %s failed: %v", name, err)
			return mcp.NewToolResultError(fmt.Sprintf("Tool execution failed: %v", err)), nil
		}

		resultJSON, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(resultJSON)), nil
	}
}

func (s *Server) registerPrompts() {
	prompt := mcp.Prompt{
		Name:        "fault_review",
		Description: "Review the fault status of one subject and propose remediation",
		Arguments: []mcp.PromptArgument{
			{Name: "id", Description: "Subject id (city or year)", Required: true},
		},
	}

	s.mcpServer.AddPrompt(prompt, func(_ context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		id := request.Params.Arguments["id"]
		text := fmt.Sprintf("Use faultline_select with id %q, then explain its status, "+
			"the leading factors in its rationale and three concrete remediation steps.", id)
		return mcp.NewGetPromptResult(
			"Fault review",
			[]mcp.PromptMessage{mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text))},
		), nil
	})
}
