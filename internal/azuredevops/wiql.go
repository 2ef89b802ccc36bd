package azuredevops

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/danielolaszy/ado-mcp/pkg/models"
)

// wiqlSelect is the column list of every work item query.
const wiqlSelect = "SELECT [System.Id],[System.WorkItemType],[System.Title],[System.AssignedTo],[System.State],[System.Tags] FROM WorkItems"

// WorkItemFilter narrows a work item query.
type WorkItemFilter struct {
	// AssignedTo: explicit null or "" matches unassigned items, a value matches
	// that assignee, omitted adds no condition.
	AssignedTo models.NullableString `json:"assignedTo"`

	WorkItemTypes []string `json:"workItemTypes,omitempty"`
	States        []string `json:"states,omitempty"`

	// Top (documented default 100) is accepted for compatibility but is not
	// applied to the query. Any JSON number is accepted.
	Top *float64 `json:"top,omitempty"`
}

// QueryWorkItemsOptions selects the project and filter of a query.
type QueryWorkItemsOptions struct {
	Project string         `json:"project"`
	Filter  WorkItemFilter `json:"filter"`

	Credentials
}

type wiqlRequest struct {
	Query string `json:"query"`
}

// BuildWIQL returns the WIQL query text for a project and filter.
func BuildWIQL(project string, filter WorkItemFilter) string {
	clauses := []string{
		"[System.TeamProject] = " + wiqlQuote(project),
		"[System.ChangedDate] > @today - 180",
		"[System.WorkItemType] <> ''",
		"[System.State] <> ''",
	}

	switch {
	case filter.AssignedTo.IsEmpty():
		clauses = append(clauses, "[System.AssignedTo] = ''")
	case filter.AssignedTo.Set:
		clauses = append(clauses, "[System.AssignedTo] = "+wiqlQuote(filter.AssignedTo.Value))
	}

	if len(filter.WorkItemTypes) > 0 {
		clauses = append(clauses, "[System.WorkItemType] IN ("+wiqlList(filter.WorkItemTypes)+")")
	}
	if len(filter.States) > 0 {
		clauses = append(clauses, "[System.State] IN ("+wiqlList(filter.States)+")")
	}

	return wiqlSelect + " WHERE " + strings.Join(clauses, " AND ")
}

// wiqlQuote renders a WIQL string literal.
func wiqlQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func wiqlList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = wiqlQuote(v)
	}
	return strings.Join(quoted, ", ")
}

// QueryWorkItems runs a WIQL query built from the filter. The response holds
// work item references, not full work items.
func (c *Client) QueryWorkItems(ctx context.Context, opts QueryWorkItemsOptions) (*Response, error) {
	if opts.Project == "" {
		return nil, fmt.Errorf("project is required")
	}

	endpoint, err := withQuery(projectPath(opts.Project, "_apis/wit/wiql"), apiVersionWIQL, nil)
	if err != nil {
		return nil, err
	}

	return c.Do(ctx, Request{
		Endpoint:    endpoint,
		Method:      http.MethodPost,
		Body:        wiqlRequest{Query: BuildWIQL(opts.Project, opts.Filter)},
		Credentials: opts.Credentials,
	})
}
