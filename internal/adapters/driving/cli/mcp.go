package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/critic/internal/adapters/driving/mcp"
	"github.com/custodia-labs/critic/internal/adapters/driving/rest"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server exposes the predict_sentiment and predict_sentiment_batch tools
and the critic://runs, critic://runs/{runId} and critic://artifacts
resources.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead (the next free port is taken
if it is busy), which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Examples:
  # Stdio mode (default, for Claude Desktop)
  critic mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  critic mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "critic": {
        "command": "/path/to/critic",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	if predictionService == nil {
		return errors.New("prediction service not configured")
	}

	ports := &mcp.Ports{
		Prediction: predictionService,
		Runs:       runService,
		Artifacts:  artifactService,
	}

	server, err := mcp.NewServer(ports, mcp.WithVersion(version))
	if err != nil {
		return err
	}

	if port > 0 {
		l, err := rest.Listen("", port, portSpan)
		if err != nil {
			return err
		}
		// stdout stays clean in stdio mode, so HTTP mode may print.
		cmd.Printf("MCP server listening on http://%s\n", l.Addr())
		return server.Serve(cmd.Context(), l)
	}

	return server.Run(cmd.Context())
}
