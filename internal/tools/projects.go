package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/danielolaszy/ado-mcp/internal/azuredevops"
)

func projectTools(client *azuredevops.Client) []*Tool {
	return []*Tool{
		newTool(define("listProjects",
			"List the projects of an Azure DevOps organization. The continuation token of a partial page is returned in the x-ms-continuationtoken header.",
			mcp.WithReadOnlyHintAnnotation(true),
			integerProperty("$skip", "Number of projects to skip"),
			integerProperty("$top", "Maximum number of projects to return"),
			mcp.WithString("continuationToken", mcp.Description("Token from a previous partial page")),
			mcp.WithBoolean("getDefaultTeamImageUrl", mcp.Description("Include the default team image URL")),
			mcp.WithString("stateFilter", mcp.Description("Project state, e.g. wellFormed or all")),
		), client.ListProjects),

		newTool(define("listWorkItemTypes",
			"List the work item types defined in a project.",
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("project", mcp.Required(), mcp.Description("Project name or id")),
		), client.ListWorkItemTypes),
	}
}
