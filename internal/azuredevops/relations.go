package azuredevops

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielolaszy/ado-mcp/internal/logging"
	"github.com/danielolaszy/ado-mcp/pkg/models"
)

// LinkWorkItemsOptions describes a link from SourceID to TargetID.
type LinkWorkItemsOptions struct {
	SourceID models.ID `json:"sourceId"`
	TargetID models.ID `json:"targetId"`

	// LinkType is the relation reference name, e.g. "System.LinkTypes.Hierarchy-Forward".
	LinkType string `json:"linkType"`
	Comment  string `json:"comment,omitempty"`

	Credentials
}

// UnlinkWorkItemsOptions describes the link to remove.
type UnlinkWorkItemsOptions struct {
	SourceID models.ID `json:"sourceId"`
	TargetID models.ID `json:"targetId"`
	LinkType string    `json:"linkType"`

	Credentials
}

// LinkWorkItems adds a relation of LinkType from the source to the target work item.
func (c *Client) LinkWorkItems(ctx context.Context, opts LinkWorkItemsOptions) (*Response, error) {
	if err := requireLink(opts.SourceID, opts.TargetID, opts.LinkType); err != nil {
		return nil, err
	}

	creds, err := c.ResolveCredentials(opts.Credentials)
	if err != nil {
		return nil, err
	}

	relation := models.Relation{
		Rel: opts.LinkType,
		URL: c.WorkItemURL(creds.Organization, opts.TargetID.String()),
	}
	if opts.Comment != "" {
		relation.Attributes = map[string]any{"comment": opts.Comment}
	}

	endpoint, err := withQuery(workItemPath(opts.SourceID), apiVersionWorkItems, nil)
	if err != nil {
		return nil, err
	}

	return c.Do(ctx, Request{
		Endpoint: endpoint,
		Method:   http.MethodPatch,
		Body: []models.PatchOperation{{
			Op:    "add",
			Path:  "/relations/-",
			Value: relation,
		}},
		ContentType: ContentTypeJSONPatch,
		Credentials: creds,
	})
}

// UnlinkWorkItems removes the first relation of LinkType from the source work
// item that points at the target. It reads the relations and then removes the
// match by position; a concurrent change to the relations between the two
// requests can make it remove the wrong one.
func (c *Client) UnlinkWorkItems(ctx context.Context, opts UnlinkWorkItemsOptions) (*Response, error) {
	if err := requireLink(opts.SourceID, opts.TargetID, opts.LinkType); err != nil {
		return nil, err
	}

	endpoint, err := withQuery(workItemPath(opts.SourceID), apiVersionWorkItems, workItemQuery{Expand: "relations"})
	if err != nil {
		return nil, err
	}

	current, err := c.Do(ctx, Request{
		Endpoint:    endpoint,
		Method:      http.MethodGet,
		Credentials: opts.Credentials,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read work item %s: %w", opts.SourceID, err)
	}

	var workItem models.WorkItem
	if len(current.Body) > 0 {
		if err := json.Unmarshal(current.Body, &workItem); err != nil {
			return nil, fmt.Errorf("failed to decode work item %s: %w", opts.SourceID, err)
		}
	}
	if len(workItem.Relations) == 0 {
		return nil, fmt.Errorf("%w: work item %s", ErrNoRelations, opts.SourceID)
	}

	index := FindRelation(workItem.Relations, opts.LinkType, opts.TargetID)
	if index < 0 {
		return nil, fmt.Errorf("%w: no %s link from work item %s to work item %s",
			ErrRelationNotFound, opts.LinkType, opts.SourceID, opts.TargetID)
	}

	logging.Debug("removing work item relation",
		"source_id", opts.SourceID,
		"target_id", opts.TargetID,
		"link_type", opts.LinkType,
		"index", index)

	endpoint, err = withQuery(workItemPath(opts.SourceID), apiVersionWorkItems, nil)
	if err != nil {
		return nil, err
	}

	return c.Do(ctx, Request{
		Endpoint:    endpoint,
		Method:      http.MethodPatch,
		Body:        RemoveRelationPatch(index),
		ContentType: ContentTypeJSONPatch,
		Credentials: opts.Credentials,
	})
}

// FindRelation returns the index of the first relation of linkType whose URL
// ends in "/<targetID>", or -1.
func FindRelation(relations []models.Relation, linkType string, targetID models.ID) int {
	suffix := "/" + targetID.String()
	for i, relation := range relations {
		if relation.Rel == linkType && strings.HasSuffix(relation.URL, suffix) {
			return i
		}
	}
	return -1
}

// RemoveRelationPatch returns the patch that removes the relation at index.
func RemoveRelationPatch(index int) []models.PatchOperation {
	return []models.PatchOperation{{
		Op:   "remove",
		Path: "/relations/" + strconv.Itoa(index),
	}}
}

func requireLink(sourceID, targetID models.ID, linkType string) error {
	if sourceID == "" {
		return fmt.Errorf("sourceId is required")
	}
	if targetID == "" {
		return fmt.Errorf("targetId is required")
	}
	if linkType == "" {
		return fmt.Errorf("linkType is required")
	}
	return nil
}
