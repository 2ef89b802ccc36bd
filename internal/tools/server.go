package tools

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/danielolaszy/ado-mcp/internal/azuredevops"
	"github.com/danielolaszy/ado-mcp/internal/logging"
)

// ServerName is the name the server reports during MCP initialization.
const ServerName = "ado-mcp"

// Catalog returns every tool bound to client, in catalog order.
func Catalog(client *azuredevops.Client) []*Tool {
	var catalog []*Tool
	catalog = append(catalog, projectTools(client)...)
	catalog = append(catalog, workItemTools(client)...)
	catalog = append(catalog, pullRequestTools(client)...)
	return catalog
}

// Find returns the tool with the given name.
func Find(catalog []*Tool, name string) (*Tool, bool) {
	for _, t := range catalog {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

// Register adds the tools to s.
func Register(s *server.MCPServer, catalog []*Tool) {
	for _, t := range catalog {
		s.AddTool(t.Definition(), t.Handle)
		logging.Debug("registered tool", "tool", t.Name())
	}
}

// NewServer builds an MCP server exposing the full catalog.
func NewServer(client *azuredevops.Client, version string) *server.MCPServer {
	s := server.NewMCPServer(ServerName, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	catalog := Catalog(client)
	Register(s, catalog)
	logging.Info("mcp server ready", "tools", len(catalog), "version", version)

	return s
}
