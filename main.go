// Package main is the entry point for ado-mcp.
package main

import (
	"fmt"
	"os"

	"github.com/danielolaszy/ado-mcp/cmd"
	"github.com/danielolaszy/ado-mcp/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cmd.Execute(version); err != nil {
		logging.Error("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
