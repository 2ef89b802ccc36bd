// Package cmd provides the command-line interface for ado-mcp.
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/ado-mcp/internal/azuredevops"
	"github.com/danielolaszy/ado-mcp/internal/config"
	"github.com/danielolaszy/ado-mcp/internal/logging"
)

const appName = "ado-mcp"

var (
	// cfg is loaded before any subcommand runs.
	cfg *config.Config

	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Azure DevOps tools for MCP clients",
	Long: `ado-mcp exposes Azure DevOps projects, work items and pull requests as
Model Context Protocol tools over stdio.

Credentials come from ADO_TOKEN and ADO_ORGANIZATION unless a tool call
supplies its own "token" and "organization" arguments.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, err := cmd.Flags().GetString("config")
		if err != nil {
			return err
		}

		loaded, err := config.Load(configFile, cmd.Flags())
		if err != nil {
			return err
		}

		closer, err := logging.Configure(loaded.Log.Level, loaded.Log.File, appName)
		if err != nil {
			return err
		}

		cfg = loaded
		logCloser = closer
		return nil
	},
}

// Execute runs the root command with the given build version.
func Execute(version string) error {
	rootCmd.Version = version
	defer func() {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	}()
	return rootCmd.Execute()
}

// newClient builds the Azure DevOps client from the loaded configuration.
func newClient() (*azuredevops.Client, error) {
	client, err := azuredevops.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize azure devops client: %w", err)
	}
	return client, nil
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Configuration file (yaml, json or toml)")
	flags.StringP("organization", "o", "", "Default Azure DevOps organization (overrides ADO_ORGANIZATION)")
	flags.String("base-url", "", "Azure DevOps base URL (overrides ADO_BASE_URL)")
	flags.String("auth-scheme", "", "Authorization scheme: basic or bearer (overrides ADO_AUTH_SCHEME)")
	flags.String("log-level", "", "Log level: debug, info, warn or error (overrides LOG_LEVEL)")
	flags.String("log-file", "", "Also append logs to this file; \"auto\" picks ~/.ado-mcp/logs")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(callCmd)
}
