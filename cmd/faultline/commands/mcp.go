package commands

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/moolen/faultline/internal/logging"
	"github.com/moolen/faultline/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the MCP tools over stdio",
	Long: `Run an in-process analysis and expose it as Model Context Protocol
tools on stdin/stdout, for subprocess-based MCP clients. The HTTP server
exposes the same tools under /v1/mcp.`,
	RunE: runMCP,
}

func init() {
	addSourceFlags(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	if err := setupLog(logLevelFlags, logFormat); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	// stdout carries the protocol.
	logging.SetOutput(os.Stderr)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := logging.GetLogger("mcp")
	logger.Info("Starting faultline MCP server (transport: stdio)")

	ctx := cmd.Context()
	st, err := buildStack(ctx, cfg, nil)
	if err != nil {
		return err
	}
	if err := st.orchestrator.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := st.orchestrator.Stop(ctx); err != nil {
			logger.Error("Error stopping orchestrator: %v", err)
		}
	}()

	return server.ServeStdio(mcp.NewServer(st.orchestrator, Version).MCPServer())
}
