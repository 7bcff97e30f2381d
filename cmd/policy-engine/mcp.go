// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/pdiddy/policy-engine/internal/api"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the engine as MCP tools on stdio",
	Long: `Mcp runs a Model Context Protocol server on stdin/stdout with the
tools lookup_clause, get_policy, list_catalog and search_text. Logs go to
stderr so they never mix with protocol messages.`,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := loadEngine(ctx)
	if err != nil {
		return err
	}
	server := api.NewMCPServer(eng.svc, version)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
