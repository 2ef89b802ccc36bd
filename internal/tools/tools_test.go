package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/ado-mcp/internal/azuredevops"
	"github.com/danielolaszy/ado-mcp/internal/config"
	"github.com/danielolaszy/ado-mcp/pkg/models"
)

// fakeBoards is a tiny in-memory stand-in for the work item endpoints.
type fakeBoards struct {
	mu       sync.Mutex
	nextID   int
	items    map[string]json.RawMessage
	requests []*http.Request
	bodies   []string
}

func (f *fakeBoards) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	f.requests = append(f.requests, r)
	f.bodies = append(f.bodies, string(body))

	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.Contains(r.URL.Path, "/_apis/wit/workitems/$"):
		var ops []models.PatchOperation
		if err := json.Unmarshal(body, &ops); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"message":"invalid patch document"}`)
			return
		}

		fields := map[string]any{}
		for _, op := range ops {
			fields[strings.TrimPrefix(op.Path, "/fields/")] = op.Value
		}

		f.nextID++
		item := encodeItem(map[string]any{"id": f.nextID, "rev": 1, "fields": fields})
		f.items[strconv.Itoa(f.nextID)] = item
		w.Header().Set("X-Ms-Continuationtoken", "none")
		_, _ = w.Write(item)

	case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/_apis/wit/workitems/"):
		id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		item, ok := f.items[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"TF401232: Work item `+id+` does not exist."}`)
			return
		}
		_, _ = w.Write(item)

	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/_apis/wit/wiql"):
		_, _ = io.WriteString(w, `{"queryType":"flat","workItems":[]}`)

	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func (f *fakeBoards) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// encodeItem marshals like the service does, without HTML escaping.
func encodeItem(v any) json.RawMessage {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
	return bytes.TrimSpace(buf.Bytes())
}

func newFakeCatalog(t *testing.T, token string) ([]*Tool, *fakeBoards) {
	t.Helper()

	boards := &fakeBoards{items: map[string]json.RawMessage{}}
	server := httptest.NewServer(boards)
	t.Cleanup(server.Close)

	client, err := azuredevops.NewClient(&config.Config{
		AzureDevOps: config.AzureDevOpsConfig{
			Token:        token,
			Organization: "contoso",
			BaseURL:      server.URL,
			AuthScheme:   config.AuthSchemeBasic,
		},
	})
	require.NoError(t, err)

	return Catalog(client), boards
}

func callTool(t *testing.T, catalog []*Tool, name string, args any) *mcp.CallToolResult {
	t.Helper()

	tool, ok := Find(catalog, name)
	require.True(t, ok, "tool %s not found", name)

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := tool.Handle(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestCatalog(t *testing.T) {
	catalog, _ := newFakeCatalog(t, "secret")

	var names []string
	for _, tool := range catalog {
		names = append(names, tool.Name())

		props := tool.Definition().InputSchema.Properties
		assert.Contains(t, props, "token", tool.Name())
		assert.Contains(t, props, "organization", tool.Name())
		assert.NotContains(t, tool.Definition().InputSchema.Required, "token", tool.Name())
	}

	assert.Equal(t, []string{
		"listProjects",
		"listWorkItemTypes",
		"createWorkItem",
		"getWorkItem",
		"updateWorkItem",
		"deleteWorkItem",
		"listWorkItems",
		"queryWorkItems",
		"linkWorkItems",
		"unlinkWorkItems",
		"listPullRequests",
		"getPullRequest",
		"createPullRequest",
		"updatePullRequest",
	}, names)

	create, ok := Find(catalog, "createWorkItem")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"project", "type", "fields"}, create.Definition().InputSchema.Required)
	assert.Contains(t, create.Definition().Description, "sorted by field name")

	_, ok = Find(catalog, "deleteProject")
	assert.False(t, ok)
}

func TestHandleRejectsInvalidArguments(t *testing.T) {
	testCases := []struct {
		name     string
		tool     string
		args     any
		wantText string
	}{
		{
			name:     "Missing required fields",
			tool:     "createWorkItem",
			args:     map[string]any{"project": "Fabrikam", "type": "Task"},
			wantText: "fields",
		},
		{
			name:     "No arguments at all",
			tool:     "getWorkItem",
			args:     nil,
			wantText: "id",
		},
		{
			name:     "Identifier of the wrong type",
			tool:     "getWorkItem",
			args:     map[string]any{"id": true},
			wantText: "invalid arguments for getWorkItem",
		},
		{
			name:     "Assignee must be a string or null",
			tool:     "queryWorkItems",
			args:     map[string]any{"project": "Fabrikam", "filter": map[string]any{"assignedTo": 5}},
			wantText: "assignedTo",
		},
		{
			name:     "Top must be a number",
			tool:     "queryWorkItems",
			args:     map[string]any{"project": "Fabrikam", "filter": map[string]any{"top": "ten"}},
			wantText: "top",
		},
		{
			name:     "Reviewer without id",
			tool:     "createPullRequest",
			args: map[string]any{
				"project": "Fabrikam", "repoId": "web", "sourceRefName": "a", "targetRefName": "b", "title": "t",
				"reviewers": []any{map[string]any{"name": "ana"}},
			},
			wantText: "reviewers",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			catalog, boards := newFakeCatalog(t, "secret")

			result := callTool(t, catalog, tc.tool, tc.args)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tc.wantText)
			assert.Zero(t, boards.requestCount())
		})
	}
}

func TestHandleNumericArguments(t *testing.T) {
	testCases := []struct {
		name         string
		tool         string
		args         map[string]any
		wantRequests int
		wantErr      string
	}{
		{
			name:         "Fractional top is accepted and ignored",
			tool:         "queryWorkItems",
			args:         map[string]any{"project": "Fabrikam", "filter": map[string]any{"top": 1.5}},
			wantRequests: 1,
		},
		{
			name:         "Whole top",
			tool:         "queryWorkItems",
			args:         map[string]any{"project": "Fabrikam", "filter": map[string]any{"top": 10}},
			wantRequests: 1,
		},
		{
			name:    "Fractional page size is rejected by the schema",
			tool:    "listProjects",
			args:    map[string]any{"$top": 2.5},
			wantErr: "/$top",
		},
		{
			name:    "Fractional revision is rejected by the schema",
			tool:    "updateWorkItem",
			args:    map[string]any{"id": 42, "fields": map[string]any{"System.State": "Active"}, "revision": 3.5},
			wantErr: "/revision",
		},
		{
			name:         "Whole revision reaches the API",
			tool:         "updateWorkItem",
			args:         map[string]any{"id": 42, "fields": map[string]any{"System.State": "Active"}, "revision": 3},
			wantRequests: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			catalog, boards := newFakeCatalog(t, "secret")

			result := callTool(t, catalog, tc.tool, tc.args)
			text := resultText(t, result)
			if tc.wantErr != "" {
				assert.True(t, result.IsError)
				assert.Contains(t, text, tc.wantErr)
				assert.NotContains(t, text, "cannot unmarshal")
			} else {
				assert.NotContains(t, text, "invalid arguments")
			}
			assert.Equal(t, tc.wantRequests, boards.requestCount())
		})
	}

	t.Run("Query result", func(t *testing.T) {
		catalog, _ := newFakeCatalog(t, "secret")

		result := callTool(t, catalog, "queryWorkItems", map[string]any{"project": "Fabrikam", "filter": map[string]any{"top": 1.5}})
		require.False(t, result.IsError, resultText(t, result))
		assert.Contains(t, resultText(t, result), `"queryType": "flat"`)
	})
}

func TestHandleMissingCredential(t *testing.T) {
	catalog, boards := newFakeCatalog(t, "")

	result := callTool(t, catalog, "listProjects", map[string]any{})
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "ADO_TOKEN")
	assert.Zero(t, boards.requestCount())

	// A per-call token is enough.
	result = callTool(t, catalog, "getWorkItem", map[string]any{"id": 1, "token": "call-token"})
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "API request failed with status 404")
	assert.Equal(t, 1, boards.requestCount())
}

func TestCreateThenGetWorkItem(t *testing.T) {
	catalog, _ := newFakeCatalog(t, "secret")

	created := callTool(t, catalog, "createWorkItem", map[string]any{
		"project": "Fabrikam",
		"type":    "Task",
		"fields":  map[string]any{"System.Title": "Write release notes <v2>"},
	})
	require.False(t, created.IsError, resultText(t, created))

	createdText := resultText(t, created)
	assert.True(t, strings.HasPrefix(createdText, "{\n  \"body\": {"), createdText)
	assert.Contains(t, createdText, "Write release notes <v2>")

	var createdPayload struct {
		Body struct {
			ID int `json:"id"`
		} `json:"body"`
		Headers map[string]string `json:"headers"`
	}
	require.NoError(t, json.Unmarshal([]byte(createdText), &createdPayload))
	assert.Equal(t, map[string]string{"x-ms-continuationtoken": "none"}, createdPayload.Headers)

	// Identifiers may be strings.
	fetched := callTool(t, catalog, "getWorkItem", map[string]any{"id": strconv.Itoa(createdPayload.Body.ID)})
	require.False(t, fetched.IsError, resultText(t, fetched))

	var fetchedPayload struct {
		Body struct {
			ID     int               `json:"id"`
			Fields map[string]string `json:"fields"`
		} `json:"body"`
		Headers map[string]string `json:"headers"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, fetched)), &fetchedPayload))
	assert.Equal(t, createdPayload.Body.ID, fetchedPayload.Body.ID)
	assert.Equal(t, "Write release notes <v2>", fetchedPayload.Body.Fields["System.Title"])
	assert.Empty(t, fetchedPayload.Headers)
}

func TestRawArgumentsKeepFieldOrder(t *testing.T) {
	catalog, boards := newFakeCatalog(t, "secret")

	args := json.RawMessage(`{
		"project": "Fabrikam",
		"type": "Bug",
		"fields": {"System.Title": "t", "System.AreaPath": "Web", "Microsoft.VSTS.Common.Priority": 2}
	}`)
	result := callTool(t, catalog, "createWorkItem", args)
	require.False(t, result.IsError, resultText(t, result))

	var ops []models.PatchOperation
	require.NoError(t, json.Unmarshal([]byte(boards.bodies[0]), &ops))

	var paths []string
	for _, op := range ops {
		assert.Equal(t, "add", op.Op)
		paths = append(paths, op.Path)
	}
	assert.Equal(t, []string{
		"/fields/System.Title",
		"/fields/System.AreaPath",
		"/fields/Microsoft.VSTS.Common.Priority",
	}, paths)
}

func TestServerListsTools(t *testing.T) {
	client, err := azuredevops.NewClient(&config.Config{})
	require.NoError(t, err)

	s := NewServer(client, "test")
	response := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	require.NotNil(t, response)

	encoded, err := json.Marshal(response)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"name":"queryWorkItems"`)
	assert.Contains(t, string(encoded), `"name":"unlinkWorkItems"`)
}
