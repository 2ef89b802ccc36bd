package azuredevops

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/danielolaszy/ado-mcp/pkg/models"
)

// ListPullRequestsOptions filters the pull requests of a repository.
type ListPullRequestsOptions struct {
	Project string `json:"project" url:"-"`
	RepoID  string `json:"repoId" url:"-"`

	// Status is one of active, completed, abandoned or all.
	Status        string `json:"status,omitempty" url:"searchCriteria.status,omitempty"`
	CreatorID     string `json:"creatorId,omitempty" url:"searchCriteria.creatorId,omitempty"`
	TargetRefName string `json:"targetRefName,omitempty" url:"searchCriteria.targetRefName,omitempty"`
	SourceRefName string `json:"sourceRefName,omitempty" url:"searchCriteria.sourceRefName,omitempty"`

	Credentials `url:"-"`
}

// GetPullRequestOptions selects a pull request.
type GetPullRequestOptions struct {
	Project       string    `json:"project"`
	RepoID        string    `json:"repoId"`
	PullRequestID models.ID `json:"pullRequestId"`

	Credentials
}

// CreatePullRequestOptions describes a new pull request.
type CreatePullRequestOptions struct {
	Project       string            `json:"project"`
	RepoID        string            `json:"repoId"`
	SourceRefName string            `json:"sourceRefName"`
	TargetRefName string            `json:"targetRefName"`
	Title         string            `json:"title"`
	Description   string            `json:"description,omitempty"`
	Reviewers     []models.Reviewer `json:"reviewers,omitempty"`

	Credentials
}

// UpdatePullRequestOptions changes a pull request. Nil fields are left as they are.
type UpdatePullRequestOptions struct {
	Project       string    `json:"project"`
	RepoID        string    `json:"repoId"`
	PullRequestID models.ID `json:"pullRequestId"`

	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`

	Credentials
}

type createPullRequestBody struct {
	SourceRefName string            `json:"sourceRefName"`
	TargetRefName string            `json:"targetRefName"`
	Title         string            `json:"title"`
	Description   string            `json:"description,omitempty"`
	Reviewers     []models.Reviewer `json:"reviewers,omitempty"`
}

type updatePullRequestBody struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// BranchRef returns name as a full ref, adding refs/heads/ when name does not
// already start with refs/.
func BranchRef(name string) string {
	if strings.HasPrefix(name, "refs/") {
		return name
	}
	return "refs/heads/" + name
}

func pullRequestsPath(project, repoID string) string {
	return projectPath(project, "_apis/git/repositories/"+url.PathEscape(repoID)+"/pullrequests")
}

func requireRepository(project, repoID string) error {
	if project == "" {
		return fmt.Errorf("project is required")
	}
	if repoID == "" {
		return fmt.Errorf("repoId is required")
	}
	return nil
}

// ListPullRequests lists the pull requests of a repository.
func (c *Client) ListPullRequests(ctx context.Context, opts ListPullRequestsOptions) (*Response, error) {
	if err := requireRepository(opts.Project, opts.RepoID); err != nil {
		return nil, err
	}

	endpoint, err := withQuery(pullRequestsPath(opts.Project, opts.RepoID), apiVersionPullRequests, opts)
	if err != nil {
		return nil, err
	}

	return c.Do(ctx, Request{
		Endpoint:    endpoint,
		Method:      http.MethodGet,
		Credentials: opts.Credentials,
	})
}

// GetPullRequest reads a single pull request.
func (c *Client) GetPullRequest(ctx context.Context, opts GetPullRequestOptions) (*Response, error) {
	if err := requireRepository(opts.Project, opts.RepoID); err != nil {
		return nil, err
	}
	if opts.PullRequestID == "" {
		return nil, fmt.Errorf("pullRequestId is required")
	}

	path := pullRequestsPath(opts.Project, opts.RepoID) + "/" + url.PathEscape(opts.PullRequestID.String())
	endpoint, err := withQuery(path, apiVersionPullRequests, nil)
	if err != nil {
		return nil, err
	}

	return c.Do(ctx, Request{
		Endpoint:    endpoint,
		Method:      http.MethodGet,
		Credentials: opts.Credentials,
	})
}

// CreatePullRequest opens a pull request from SourceRefName into TargetRefName.
func (c *Client) CreatePullRequest(ctx context.Context, opts CreatePullRequestOptions) (*Response, error) {
	if err := requireRepository(opts.Project, opts.RepoID); err != nil {
		return nil, err
	}
	if opts.SourceRefName == "" || opts.TargetRefName == "" {
		return nil, fmt.Errorf("sourceRefName and targetRefName are required")
	}

	endpoint, err := withQuery(pullRequestsPath(opts.Project, opts.RepoID), apiVersionPullRequests, nil)
	if err != nil {
		return nil, err
	}

	return c.Do(ctx, Request{
		Endpoint: endpoint,
		Method:   http.MethodPost,
		Body: createPullRequestBody{
			SourceRefName: BranchRef(opts.SourceRefName),
			TargetRefName: BranchRef(opts.TargetRefName),
			Title:         opts.Title,
			Description:   opts.Description,
			Reviewers:     opts.Reviewers,
		},
		Credentials: opts.Credentials,
	})
}

// UpdatePullRequest changes the title, description or status of a pull request.
func (c *Client) UpdatePullRequest(ctx context.Context, opts UpdatePullRequestOptions) (*Response, error) {
	if err := requireRepository(opts.Project, opts.RepoID); err != nil {
		return nil, err
	}
	if opts.PullRequestID == "" {
		return nil, fmt.Errorf("pullRequestId is required")
	}

	path := pullRequestsPath(opts.Project, opts.RepoID) + "/" + url.PathEscape(opts.PullRequestID.String())
	endpoint, err := withQuery(path, apiVersionPullRequests, nil)
	if err != nil {
		return nil, err
	}

	return c.Do(ctx, Request{
		Endpoint: endpoint,
		Method:   http.MethodPatch,
		Body: updatePullRequestBody{
			Title:       opts.Title,
			Description: opts.Description,
			Status:      opts.Status,
		},
		Credentials: opts.Credentials,
	})
}
