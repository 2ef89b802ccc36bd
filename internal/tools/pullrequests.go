package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/danielolaszy/ado-mcp/internal/azuredevops"
)

func repositoryOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name or id")),
		mcp.WithString("repoId", mcp.Required(), mcp.Description("Repository name or id")),
	}
}

func pullRequestTools(client *azuredevops.Client) []*Tool {
	return []*Tool{
		newTool(define("listPullRequests",
			"List the pull requests of a repository.",
			append(repositoryOptions(),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithString("status", mcp.Description("active, completed, abandoned or all")),
				mcp.WithString("creatorId", mcp.Description("Id of the pull request creator")),
				mcp.WithString("targetRefName", mcp.Description("Target branch, e.g. refs/heads/main")),
				mcp.WithString("sourceRefName", mcp.Description("Source branch")),
			)...,
		), client.ListPullRequests),

		newTool(define("getPullRequest",
			"Get a single pull request.",
			append(repositoryOptions(),
				mcp.WithReadOnlyHintAnnotation(true),
				idProperty("pullRequestId", "Pull request id", true),
			)...,
		), client.GetPullRequest),

		newTool(define("createPullRequest",
			"Open a pull request. Branch names without a refs/ prefix are taken as refs/heads/<name>.",
			append(repositoryOptions(),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithString("sourceRefName", mcp.Required(), mcp.Description("Branch to merge from")),
				mcp.WithString("targetRefName", mcp.Required(), mcp.Description("Branch to merge into")),
				mcp.WithString("title", mcp.Required(), mcp.Description("Pull request title")),
				mcp.WithString("description", mcp.Description("Pull request description")),
				property("reviewers", map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":       "object",
						"properties": map[string]any{"id": map[string]any{"type": "string"}},
						"required":   []string{"id"},
					},
					"description": "Reviewer identities",
				}, false),
			)...,
		), client.CreatePullRequest),

		newTool(define("updatePullRequest",
			"Change the title, description or status of a pull request. Only the given values are sent.",
			append(repositoryOptions(),
				mcp.WithDestructiveHintAnnotation(false),
				idProperty("pullRequestId", "Pull request id", true),
				mcp.WithString("title", mcp.Description("New title")),
				mcp.WithString("description", mcp.Description("New description")),
				mcp.WithString("status", mcp.Description("active, completed or abandoned")),
			)...,
		), client.UpdatePullRequest),
	}
}
