package azuredevops

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/ado-mcp/pkg/models"
)

const relatedLink = "System.LinkTypes.Related"

func TestFindRelation(t *testing.T) {
	relations := []models.Relation{
		{Rel: "AttachedFile", URL: "https://dev.azure.com/contoso/_apis/wit/attachments/5"},
		{Rel: relatedLink, URL: "https://dev.azure.com/contoso/_apis/wit/workItems/15"},
		{Rel: relatedLink, URL: "https://dev.azure.com/contoso/_apis/wit/workItems/5"},
		{Rel: "System.LinkTypes.Hierarchy-Forward", URL: "https://dev.azure.com/contoso/_apis/wit/workItems/7"},
	}

	testCases := []struct {
		name     string
		linkType string
		targetID models.ID
		want     int
	}{
		{name: "Matches type and exact id", linkType: relatedLink, targetID: "5", want: 2},
		{name: "Suffix does not match longer id", linkType: relatedLink, targetID: "15", want: 1},
		{name: "Wrong link type", linkType: relatedLink, targetID: "7", want: -1},
		{name: "Unknown target", linkType: relatedLink, targetID: "99", want: -1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FindRelation(relations, tc.linkType, tc.targetID))
		})
	}
}

// unlinkServer answers the relations read with workItem and records the patch.
func unlinkServer(t *testing.T, workItem string) (*Client, *[]recordedRequest) {
	t.Helper()

	server, requests := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			_, _ = io.WriteString(w, workItem)
			return
		}
		_, _ = io.WriteString(w, `{"id":1,"rev":3}`)
	})

	return newTestClient(t, server.URL, "secret", "contoso"), requests
}

func TestUnlinkWorkItems(t *testing.T) {
	client, requests := unlinkServer(t, `{"id":1,"rev":2,"relations":[{"rel":"A","url":"https://dev.azure.com/contoso/_apis/wit/workItems/5"}]}`)

	resp, err := client.UnlinkWorkItems(context.Background(), UnlinkWorkItemsOptions{
		SourceID: "1",
		TargetID: "5",
		LinkType: "A",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"rev":3}`, string(resp.Body))

	require.Len(t, *requests, 2)

	read := (*requests)[0]
	assert.Equal(t, http.MethodGet, read.Method)
	assert.Equal(t, "/contoso/_apis/wit/workitems/1", read.Path)
	assert.Contains(t, read.Query, "expand=relations")

	write := (*requests)[1]
	assert.Equal(t, http.MethodPatch, write.Method)
	assert.Equal(t, "/contoso/_apis/wit/workitems/1", write.Path)
	assert.Equal(t, ContentTypeJSONPatch, write.ContentType)
	assert.JSONEq(t, `[{"op":"remove","path":"/relations/0"}]`, write.Body)
}

func TestUnlinkWorkItemsFailures(t *testing.T) {
	testCases := []struct {
		name     string
		workItem string
		targetID models.ID
		linkType string
		wantErr  error
	}{
		{
			name:     "Target not linked",
			workItem: `{"id":1,"relations":[{"rel":"A","url":"https://dev.azure.com/contoso/_apis/wit/workItems/5"}]}`,
			targetID: "99",
			linkType: "A",
			wantErr:  ErrRelationNotFound,
		},
		{
			name:     "Link type differs",
			workItem: `{"id":1,"relations":[{"rel":"A","url":"https://dev.azure.com/contoso/_apis/wit/workItems/5"}]}`,
			targetID: "5",
			linkType: "B",
			wantErr:  ErrRelationNotFound,
		},
		{
			name:     "No relations field",
			workItem: `{"id":1,"fields":{"System.Title":"t"}}`,
			targetID: "5",
			linkType: "A",
			wantErr:  ErrNoRelations,
		},
		{
			name:     "Empty relations list",
			workItem: `{"id":1,"relations":[]}`,
			targetID: "5",
			linkType: "A",
			wantErr:  ErrNoRelations,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, requests := unlinkServer(t, tc.workItem)

			_, err := client.UnlinkWorkItems(context.Background(), UnlinkWorkItemsOptions{
				SourceID: "1",
				TargetID: tc.targetID,
				LinkType: tc.linkType,
			})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)

			// Only the read happened.
			assert.Len(t, *requests, 1)
		})
	}
}

func TestUnlinkWorkItemsReadFailure(t *testing.T) {
	server, requests := newStubServer(t, jsonHandler(http.StatusNotFound, `{"message":"work item 1 does not exist"}`))
	client := newTestClient(t, server.URL, "secret", "contoso")

	_, err := client.UnlinkWorkItems(context.Background(), UnlinkWorkItemsOptions{SourceID: "1", TargetID: "5", LinkType: "A"})

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
	assert.Len(t, *requests, 1)
}

func TestLinkWorkItems(t *testing.T) {
	server, requests := newStubServer(t, jsonHandler(http.StatusOK, `{"id":1}`))
	client := newTestClient(t, server.URL, "secret", "contoso")

	_, err := client.LinkWorkItems(context.Background(), LinkWorkItemsOptions{
		SourceID: "1",
		TargetID: "5",
		LinkType: relatedLink,
		Comment:  "duplicate report",
		Credentials: Credentials{
			Organization: "fabrikam",
		},
	})
	require.NoError(t, err)

	got := (*requests)[0]
	assert.Equal(t, http.MethodPatch, got.Method)
	assert.Equal(t, "/fabrikam/_apis/wit/workitems/1", got.Path)
	assert.Equal(t, ContentTypeJSONPatch, got.ContentType)
	assert.JSONEq(t, `[{
		"op":"add",
		"path":"/relations/-",
		"value":{
			"rel":"System.LinkTypes.Related",
			"url":"`+server.URL+`/fabrikam/_apis/wit/workItems/5",
			"attributes":{"comment":"duplicate report"}
		}
	}]`, got.Body)
}

func TestLinkWorkItemsValidation(t *testing.T) {
	client := newTestClient(t, "https://dev.azure.com", "secret", "contoso")

	_, err := client.LinkWorkItems(context.Background(), LinkWorkItemsOptions{SourceID: "1", TargetID: "2"})
	assert.ErrorContains(t, err, "linkType is required")

	_, err = client.UnlinkWorkItems(context.Background(), UnlinkWorkItemsOptions{TargetID: "2", LinkType: "A"})
	assert.ErrorContains(t, err, "sourceId is required")
}
