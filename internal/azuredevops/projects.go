package azuredevops

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/go-querystring/query"
)

// API versions per endpoint family.
const (
	apiVersionProjects      = "7.2-preview"
	apiVersionWorkItems     = "7.2-preview"
	apiVersionWIQL          = "7.2-preview.2"
	apiVersionWorkItemTypes = "7.2-preview.2"
	apiVersionPullRequests  = "7.2-preview.1"
)

// ListProjectsOptions filters the project listing. Nil fields are not sent.
type ListProjectsOptions struct {
	Skip                   *int    `json:"$skip,omitempty" url:"$skip,omitempty"`
	Top                    *int    `json:"$top,omitempty" url:"$top,omitempty"`
	ContinuationToken      *string `json:"continuationToken,omitempty" url:"continuationToken,omitempty"`
	GetDefaultTeamImageURL *bool   `json:"getDefaultTeamImageUrl,omitempty" url:"getDefaultTeamImageUrl,omitempty"`
	StateFilter            *string `json:"stateFilter,omitempty" url:"stateFilter,omitempty"`

	Credentials `url:"-"`
}

// ListWorkItemTypesOptions selects the project whose work item types are listed.
type ListWorkItemTypesOptions struct {
	Project string `json:"project"`

	Credentials
}

// ListProjects lists the projects of the organization.
func (c *Client) ListProjects(ctx context.Context, opts ListProjectsOptions) (*Response, error) {
	endpoint, err := withQuery("_apis/projects", apiVersionProjects, opts)
	if err != nil {
		return nil, err
	}

	return c.Do(ctx, Request{
		Endpoint:    endpoint,
		Method:      http.MethodGet,
		Credentials: opts.Credentials,
	})
}

// ListWorkItemTypes lists the work item types defined for a project.
func (c *Client) ListWorkItemTypes(ctx context.Context, opts ListWorkItemTypesOptions) (*Response, error) {
	if opts.Project == "" {
		return nil, fmt.Errorf("project is required")
	}

	endpoint, err := withQuery(projectPath(opts.Project, "_apis/wit/workitemtypes"), apiVersionWorkItemTypes, nil)
	if err != nil {
		return nil, err
	}

	return c.Do(ctx, Request{
		Endpoint:    endpoint,
		Method:      http.MethodGet,
		Credentials: opts.Credentials,
	})
}

// projectPath prefixes a relative path with an escaped project segment.
func projectPath(project, path string) string {
	return url.PathEscape(project) + "/" + path
}

// withQuery appends api-version and the url-tagged fields of opts to path.
// opts may be nil.
func withQuery(path, apiVersion string, opts any) (string, error) {
	values := url.Values{}
	if opts != nil {
		v, err := query.Values(opts)
		if err != nil {
			return "", fmt.Errorf("failed to encode query parameters: %w", err)
		}
		values = v
	}
	values.Set("api-version", apiVersion)

	return path + "?" + values.Encode(), nil
}
