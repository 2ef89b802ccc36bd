package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/ado-mcp/internal/tools"
)

// toolsCmd prints the tool catalog.
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the available tools",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, tool := range tools.Catalog(client) {
			if _, err := fmt.Fprintf(out, "%-20s %s\n", tool.Name(), tool.Definition().Description); err != nil {
				return err
			}
		}
		return nil
	},
}
