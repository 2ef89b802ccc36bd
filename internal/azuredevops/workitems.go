package azuredevops

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/danielolaszy/ado-mcp/internal/logging"
	"github.com/danielolaszy/ado-mcp/pkg/models"
)

// CreateWorkItemOptions describes a new work item.
type CreateWorkItemOptions struct {
	Project string        `json:"project"`
	Type    string        `json:"type"`
	Fields  models.Fields `json:"fields"`

	Credentials
}

// GetWorkItemOptions selects a work item and what to expand.
type GetWorkItemOptions struct {
	ID     models.ID `json:"id"`
	Expand string    `json:"expand,omitempty"`

	Credentials
}

// UpdateWorkItemOptions describes a field update.
type UpdateWorkItemOptions struct {
	ID       models.ID     `json:"id"`
	Fields   models.Fields `json:"fields"`
	Revision *int          `json:"revision,omitempty"`

	Credentials
}

// DeleteWorkItemOptions selects the work item to delete.
type DeleteWorkItemOptions struct {
	ID models.ID `json:"id"`

	Credentials
}

// ListWorkItemsOptions selects several work items by id.
type ListWorkItemsOptions struct {
	IDs    []models.ID `json:"ids"`
	Fields []string    `json:"fields,omitempty"`
	AsOf   string      `json:"asOf,omitempty"`
	Expand string      `json:"expand,omitempty"`

	Credentials
}

// workItemsBatchRequest is the body of the workitemsbatch endpoint.
type workItemsBatchRequest struct {
	IDs    []models.ID `json:"ids"`
	Fields []string    `json:"fields,omitempty"`
	AsOf   string      `json:"asOf,omitempty"`
	Expand string      `json:"$expand,omitempty"`
}

type workItemQuery struct {
	Expand string `url:"$expand,omitempty"`

	// Revision 0 is omitted, the same as no revision.
	Revision int `url:"revision,omitempty"`
}

// FieldPatch expands fields into one "add" operation per field at
// /fields/<name>, in the order of fields.
func FieldPatch(fields models.Fields) []models.PatchOperation {
	ops := make([]models.PatchOperation, 0, len(fields))
	for _, field := range fields {
		ops = append(ops, models.PatchOperation{
			Op:    "add",
			Path:  "/fields/" + field.Name,
			Value: field.Value,
		})
	}
	return ops
}

func workItemPath(id models.ID) string {
	return "_apis/wit/workitems/" + url.PathEscape(id.String())
}

// CreateWorkItem creates a work item of the given type in a project.
func (c *Client) CreateWorkItem(ctx context.Context, opts CreateWorkItemOptions) (*Response, error) {
	if opts.Project == "" {
		return nil, fmt.Errorf("project is required")
	}
	if opts.Type == "" {
		return nil, fmt.Errorf("type is required")
	}

	logging.Debug("creating work item", "project", opts.Project, "type", opts.Type, "fields", opts.Fields.Names())

	endpoint, err := withQuery(projectPath(opts.Project, "_apis/wit/workitems/$"+url.PathEscape(opts.Type)), apiVersionWorkItems, nil)
	if err != nil {
		return nil, err
	}

	return c.Do(ctx, Request{
		Endpoint:    endpoint,
		Method:      http.MethodPost,
		Body:        FieldPatch(opts.Fields),
		ContentType: ContentTypeJSONPatch,
		Credentials: opts.Credentials,
	})
}

// GetWorkItem reads a single work item.
func (c *Client) GetWorkItem(ctx context.Context, opts GetWorkItemOptions) (*Response, error) {
	if opts.ID == "" {
		return nil, fmt.Errorf("id is required")
	}

	endpoint, err := withQuery(workItemPath(opts.ID), apiVersionWorkItems, workItemQuery{Expand: opts.Expand})
	if err != nil {
		return nil, err
	}

	return c.Do(ctx, Request{
		Endpoint:    endpoint,
		Method:      http.MethodGet,
		Credentials: opts.Credentials,
	})
}

// UpdateWorkItem sets fields on an existing work item.
func (c *Client) UpdateWorkItem(ctx context.Context, opts UpdateWorkItemOptions) (*Response, error) {
	if opts.ID == "" {
		return nil, fmt.Errorf("id is required")
	}

	query := workItemQuery{}
	if opts.Revision != nil {
		query.Revision = *opts.Revision
	}

	logging.Debug("updating work item", "id", opts.ID, "fields", opts.Fields.Names(), "revision", query.Revision)

	endpoint, err := withQuery(workItemPath(opts.ID), apiVersionWorkItems, query)
	if err != nil {
		return nil, err
	}

	return c.Do(ctx, Request{
		Endpoint:    endpoint,
		Method:      http.MethodPatch,
		Body:        FieldPatch(opts.Fields),
		ContentType: ContentTypeJSONPatch,
		Credentials: opts.Credentials,
	})
}

// DeleteWorkItem moves a work item to the recycle bin.
func (c *Client) DeleteWorkItem(ctx context.Context, opts DeleteWorkItemOptions) (*Response, error) {
	if opts.ID == "" {
		return nil, fmt.Errorf("id is required")
	}

	endpoint, err := withQuery(workItemPath(opts.ID), apiVersionWorkItems, nil)
	if err != nil {
		return nil, err
	}

	return c.Do(ctx, Request{
		Endpoint:    endpoint,
		Method:      http.MethodDelete,
		Credentials: opts.Credentials,
	})
}

// ListWorkItems reads several work items in one batch call.
func (c *Client) ListWorkItems(ctx context.Context, opts ListWorkItemsOptions) (*Response, error) {
	if len(opts.IDs) == 0 {
		return nil, fmt.Errorf("at least one id is required")
	}

	endpoint, err := withQuery("_apis/wit/workitemsbatch", apiVersionWorkItems, nil)
	if err != nil {
		return nil, err
	}

	return c.Do(ctx, Request{
		Endpoint: endpoint,
		Method:   http.MethodPost,
		Body: workItemsBatchRequest{
			IDs:    opts.IDs,
			Fields: opts.Fields,
			AsOf:   opts.AsOf,
			Expand: opts.Expand,
		},
		Credentials: opts.Credentials,
	})
}
