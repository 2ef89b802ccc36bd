package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/danielolaszy/ado-mcp/internal/config"
	"github.com/danielolaszy/ado-mcp/internal/logging"
	"github.com/danielolaszy/ado-mcp/internal/tools"
)

// serveCmd runs the MCP server on stdin and stdout.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the Azure DevOps tools over MCP stdio",
	Long: `Serve the Azure DevOps tools over the MCP stdio transport.

The server reads JSON-RPC messages from stdin and writes responses to stdout
until stdin is closed or the process is interrupted. Logs go to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if missing := config.MissingCredentials(cfg); len(missing) > 0 {
			logging.Warn("default credentials not configured; tool calls must supply them",
				"missing", missing)
		}

		client, err := newClient()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		mcpServer := tools.NewServer(client, rootCmd.Version)
		stdio := server.NewStdioServer(mcpServer)
		stdio.SetErrorLogger(slog.NewLogLogger(logging.GetLogger().Handler(), slog.LevelError))

		logging.Info("serving on stdio",
			"organization", cfg.AzureDevOps.Organization,
			"base_url", cfg.AzureDevOps.BaseURL)

		if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("mcp server stopped: %w", err)
		}

		logging.Info("server stopped")
		return nil
	},
}
