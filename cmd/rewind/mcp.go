package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/rewind/internal/cli"
	"github.com/aretw0/rewind/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes sessions to AI agents as MCP tools (dispatch, undo, redo, view, list_sessions).

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Ensure logs don't corrupt JSON-RPC on Stdout
		log.SetOutput(os.Stderr)

		stack, _, err := loadStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		srv := mcp.NewServer(stack.Service, mcp.WithLogger(stack.Logger))

		transport, _ := cmd.Flags().GetString("transport")
		switch transport {
		case "stdio":
			stack.Logger.Info("Starting Rewind MCP Server (Stdio)...")
			return srv.ServeStdio()
		case "sse":
			port, _ := cmd.Flags().GetInt("port")
			sigCtx := cli.NewSignalContext(cmd.Context())
			defer sigCtx.Cancel()

			addr := fmt.Sprintf(":%d", port)
			if err := srv.ServeSSE(sigCtx, addr, fmt.Sprintf("http://localhost:%d", port)); err != nil {
				return err
			}
			stack.Logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
