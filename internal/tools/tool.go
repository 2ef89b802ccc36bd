// Package tools exposes the Azure DevOps operations as MCP tools.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/danielolaszy/ado-mcp/internal/azuredevops"
	"github.com/danielolaszy/ado-mcp/internal/logging"
)

// Tool pairs an MCP tool definition with its handler.
type Tool struct {
	definition mcp.Tool
	schema     *jsonschema.Schema
	call       func(ctx context.Context, args []byte) (*azuredevops.Response, error)
}

// newTool builds a tool whose arguments decode into In and are passed to call.
// The input schema is compiled once here; an invalid schema is a programming
// error and panics.
func newTool[In any](definition mcp.Tool, call func(context.Context, In) (*azuredevops.Response, error)) *Tool {
	return &Tool{
		definition: definition,
		schema:     compileSchema(definition),
		call: func(ctx context.Context, args []byte) (*azuredevops.Response, error) {
			var in In
			if err := json.Unmarshal(args, &in); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}
			return call(ctx, in)
		},
	}
}

// Name returns the tool name.
func (t *Tool) Name() string {
	return t.definition.Name
}

// Definition returns the MCP tool definition.
func (t *Tool) Definition() mcp.Tool {
	return t.definition
}

// Handle validates the arguments, runs the operation and returns the response
// as pretty-printed JSON text. Failures become error results, not Go errors.
func (t *Tool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logging.Debug("tool call received", "tool", t.Name())

	text, err := t.Run(ctx, req)
	if err != nil {
		logging.Error("tool call failed", "tool", t.Name(), "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(text), nil
}

// Run is Handle without the MCP result wrapping.
func (t *Tool) Run(ctx context.Context, req mcp.CallToolRequest) (string, error) {
	args, err := t.arguments(req)
	if err != nil {
		return "", err
	}

	resp, err := t.call(ctx, args)
	if err != nil {
		return "", err
	}

	return formatResponse(resp)
}

// arguments normalizes the call arguments to JSON and validates them against
// the input schema. Raw JSON arguments keep their key order.
func (t *Tool) arguments(req mcp.CallToolRequest) ([]byte, error) {
	var args []byte
	switch raw := req.Params.Arguments.(type) {
	case nil:
		args = []byte("{}")
	case json.RawMessage:
		args = raw
	default:
		encoded, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid arguments for %s: %w", t.Name(), err)
		}
		args = encoded
	}

	if trimmed := bytes.TrimSpace(args); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		args = []byte("{}")
	}

	var value any
	if err := json.Unmarshal(args, &value); err != nil {
		return nil, fmt.Errorf("invalid arguments for %s: %w", t.Name(), err)
	}
	if err := t.schema.Validate(value); err != nil {
		return nil, fmt.Errorf("invalid arguments for %s: %s", t.Name(), validationMessage(err))
	}

	return args, nil
}

// formatResponse renders a response the way callers receive it: indented by
// two spaces, with no HTML escaping of the remote text.
func formatResponse(resp *azuredevops.Response) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return "", fmt.Errorf("failed to encode response: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// validationMessage flattens a schema validation error into one line per cause.
func validationMessage(err error) string {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}

	var causes []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			location := e.InstanceLocation
			if location == "" {
				location = "/"
			}
			causes = append(causes, location+": "+e.Message)
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(verr)

	return strings.Join(causes, "; ")
}

func compileSchema(definition mcp.Tool) *jsonschema.Schema {
	raw, err := json.Marshal(definition.InputSchema)
	if err != nil {
		panic(fmt.Sprintf("tool %s: encoding input schema: %v", definition.Name, err))
	}
	return jsonschema.MustCompileString("mem://tools/"+definition.Name+".json", string(raw))
}

// property adds a property with a hand-written JSON schema.
func property(name string, schema map[string]any, required bool) mcp.ToolOption {
	return func(t *mcp.Tool) {
		if t.InputSchema.Properties == nil {
			t.InputSchema.Properties = make(map[string]any)
		}
		t.InputSchema.Properties[name] = schema
		if required {
			t.InputSchema.Required = append(t.InputSchema.Required, name)
		}
	}
}

// idProperty adds an identifier that may be given as a string or an integer.
func idProperty(name, description string, required bool) mcp.ToolOption {
	return property(name, map[string]any{
		"type":        []string{"string", "integer"},
		"description": description,
	}, required)
}

// integerProperty adds an optional whole-number property.
func integerProperty(name, description string) mcp.ToolOption {
	return property(name, map[string]any{
		"type":        "integer",
		"description": description,
	}, false)
}

// stringList adds an array of strings.
func stringList(name, description string, required bool) mcp.ToolOption {
	return property(name, map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": description,
	}, required)
}

// credentialOptions adds the per-call credential overrides every tool accepts.
func credentialOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("organization",
			mcp.Description("Azure DevOps organization. Defaults to ADO_ORGANIZATION."),
		),
		mcp.WithString("token",
			mcp.Description("Personal access token. Defaults to ADO_TOKEN."),
		),
	}
}

// define builds a tool definition with the credential overrides appended.
func define(name, description string, opts ...mcp.ToolOption) mcp.Tool {
	all := append([]mcp.ToolOption{mcp.WithDescription(description)}, opts...)
	all = append(all, credentialOptions()...)
	return mcp.NewTool(name, all...)
}
