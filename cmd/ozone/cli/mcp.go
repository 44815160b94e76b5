package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	omcp "github.com/leap-ai/ozone/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	var (
		transport string
		port      int
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server for AI agents",
		Long: `Start a Model Context Protocol (MCP) server that exposes the Ozone model
catalog and benchmark data as tools for AI agents. Supports stdio (default)
and HTTP transports.

In stdio mode, the MCP server communicates over stdin/stdout using JSON-RPC,
suitable for direct integration with MCP clients launched as subprocesses.

In HTTP mode, the server listens on the specified port for streamable HTTP
connections.`,
		Example: `  ozone mcp                             # stdio mode
  ozone mcp --transport http --port 3001   # HTTP mode`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(transport, port)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport mode: stdio or http")
	cmd.Flags().IntVar(&port, "port", 3001, "HTTP port (only used with --transport http)")

	return cmd
}

func runMCP(transport string, port int) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	st, err := openConfiguredStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	mcpSrv := omcp.NewMCPServer(st, logger)

	switch transport {
	case "stdio":
		return mcpSrv.ServeStdio()
	case "http":
		return mcpSrv.ServeHTTP(fmt.Sprintf(":%d", port))
	default:
		return fmt.Errorf("unsupported transport %q; use 'stdio' or 'http'", transport)
	}
}
