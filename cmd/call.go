package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/danielolaszy/ado-mcp/internal/tools"
)

// callCmd runs a single tool from the shell.
var callCmd = &cobra.Command{
	Use:   "call <tool>",
	Short: "Run one tool and print its result",
	Long: `Run one tool through the same handler the MCP server uses and print the
JSON result. Arguments are a JSON object given inline or read from a file;
"-" reads them from stdin. Object keys keep their order, so fields are
written in the order given.

Example:
  ado-mcp call getWorkItem --args '{"id": 42, "expand": "Relations"}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inline, err := cmd.Flags().GetString("args")
		if err != nil {
			return err
		}
		file, err := cmd.Flags().GetString("args-file")
		if err != nil {
			return err
		}

		raw, err := readArguments(inline, file, cmd.InOrStdin())
		if err != nil {
			return err
		}

		client, err := newClient()
		if err != nil {
			return err
		}

		return runCall(cmd.Context(), tools.Catalog(client), args[0], raw, cmd.OutOrStdout())
	},
}

// readArguments returns the call arguments from at most one source.
func readArguments(inline, file string, stdin io.Reader) ([]byte, error) {
	switch {
	case inline != "" && file != "":
		return nil, fmt.Errorf("use either --args or --args-file, not both")
	case inline != "":
		return []byte(inline), nil
	case file == "-":
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read arguments from stdin: %w", err)
		}
		return raw, nil
	case file != "":
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read arguments file: %w", err)
		}
		return raw, nil
	default:
		return []byte("{}"), nil
	}
}

// runCall invokes the named tool and writes its text result to out. An error
// result is returned as an error.
func runCall(ctx context.Context, catalog []*tools.Tool, name string, raw []byte, out io.Writer) error {
	tool, ok := tools.Find(catalog, name)
	if !ok {
		return fmt.Errorf("unknown tool %q; run \"%s tools\" for the list", name, appName)
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = json.RawMessage(raw)

	result, err := tool.Handle(ctx, req)
	if err != nil {
		return err
	}

	text := resultText(result)
	if result.IsError {
		return errors.New(text)
	}

	_, err = fmt.Fprintln(out, text)
	return err
}

func resultText(result *mcp.CallToolResult) string {
	for _, content := range result.Content {
		if text, ok := content.(mcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}

func init() {
	callCmd.Flags().String("args", "", "Tool arguments as a JSON object")
	callCmd.Flags().String("args-file", "", "File holding the tool arguments, or - for stdin")
}
