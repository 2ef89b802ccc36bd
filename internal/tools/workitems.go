package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/danielolaszy/ado-mcp/internal/azuredevops"
)

func fieldsProperty(required bool) mcp.ToolOption {
	return property("fields", map[string]any{
		"type":        "object",
		"description": "Field reference names mapped to values, e.g. {\"System.Title\": \"Login fails\"}",
	}, required)
}

func filterProperty() mcp.ToolOption {
	return property("filter", map[string]any{
		"type":        "object",
		"description": "Conditions combined with AND",
		"properties": map[string]any{
			"assignedTo": map[string]any{
				"type":        []string{"string", "null"},
				"description": "Assignee; null or an empty string matches unassigned items",
			},
			"workItemTypes": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"states": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"top": map[string]any{
				"type":        "number",
				"description": "Accepted for compatibility; not applied",
			},
		},
	}, true)
}

func workItemTools(client *azuredevops.Client) []*Tool {
	return []*Tool{
		newTool(define("createWorkItem",
			"Create a work item of the given type. Each field becomes one add operation. MCP clients' argument maps do not keep key order, so the operations are sorted by field name; ado-mcp call keeps the order given.",
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithString("project", mcp.Required(), mcp.Description("Project name or id")),
			mcp.WithString("type", mcp.Required(), mcp.Description("Work item type, e.g. Bug or Task")),
			fieldsProperty(true),
		), client.CreateWorkItem),

		newTool(define("getWorkItem",
			"Get a single work item.",
			mcp.WithReadOnlyHintAnnotation(true),
			idProperty("id", "Work item id", true),
			mcp.WithString("expand", mcp.Description("None, Relations, Fields, Links or All")),
		), client.GetWorkItem),

		newTool(define("updateWorkItem",
			"Set fields on a work item. Each field becomes one add operation. MCP clients' argument maps do not keep key order, so the operations are sorted by field name; ado-mcp call keeps the order given.",
			mcp.WithDestructiveHintAnnotation(false),
			idProperty("id", "Work item id", true),
			fieldsProperty(true),
			integerProperty("revision", "Expected revision of the work item; 0 is the same as omitting it"),
		), client.UpdateWorkItem),

		newTool(define("deleteWorkItem",
			"Delete a work item.",
			mcp.WithDestructiveHintAnnotation(true),
			idProperty("id", "Work item id", true),
		), client.DeleteWorkItem),

		newTool(define("listWorkItems",
			"Get several work items in one request.",
			mcp.WithReadOnlyHintAnnotation(true),
			property("ids", map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": []string{"string", "integer"}},
				"description": "Work item ids",
			}, true),
			stringList("fields", "Field reference names to return", false),
			mcp.WithString("asOf", mcp.Description("Return the items as of this date and time")),
			mcp.WithString("expand", mcp.Description("None, Relations, Fields, Links or All")),
		), client.ListWorkItems),

		newTool(define("queryWorkItems",
			"Find work items of a project changed in the last 180 days, narrowed by assignee, type and state.",
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
			filterProperty(),
		), client.QueryWorkItems),

		newTool(define("linkWorkItems",
			"Add a link of the given type from the source work item to the target.",
			mcp.WithDestructiveHintAnnotation(false),
			idProperty("sourceId", "Work item that receives the link", true),
			idProperty("targetId", "Work item the link points to", true),
			mcp.WithString("linkType", mcp.Required(), mcp.Description("Link type reference name, e.g. System.LinkTypes.Related")),
			mcp.WithString("comment", mcp.Description("Comment stored on the link")),
		), client.LinkWorkItems),

		newTool(define("unlinkWorkItems",
			"Remove the first link of the given type from the source work item to the target.",
			mcp.WithDestructiveHintAnnotation(true),
			idProperty("sourceId", "Work item that holds the link", true),
			idProperty("targetId", "Work item the link points to", true),
			mcp.WithString("linkType", mcp.Required(), mcp.Description("Link type reference name")),
		), client.UnlinkWorkItems),
	}
}
