// Package models defines data structures shared across the application.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an Azure DevOps identifier (work item id, pull request id) that callers
// may send either as a JSON string or as a JSON number.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid id: %w", err)
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %s", string(data))
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON encodes canonical decimal ids as JSON numbers and anything else,
// including "007", as a string.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsNumeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// IsNumeric reports whether the id is an unsigned integer written without
// leading zeros or sign.
func (id ID) IsNumeric() bool {
	n, err := strconv.ParseUint(string(id), 10, 64)
	return err == nil && strconv.FormatUint(n, 10) == string(id)
}

func (id ID) String() string {
	return string(id)
}

// Field is a single work item field name and its raw JSON value.
type Field struct {
	Name  string
	Value json.RawMessage
}

// Fields is an ordered set of work item fields. It decodes from a JSON object
// and keeps the object's key order.
type Fields []Field

// UnmarshalJSON decodes a JSON object, preserving key order.
func (f *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("invalid fields: %w", err)
	}
	if tok == nil {
		*f = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("fields must be a JSON object")
	}

	out := Fields{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("invalid fields: %w", err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("invalid field name: %v", keyTok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("invalid value for field %s: %w", name, err)
		}
		out = append(out, Field{Name: name, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("invalid fields: %w", err)
	}

	*f = out
	return nil
}

// MarshalJSON encodes the fields as a JSON object in their stored order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(field.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		if len(field.Value) == 0 {
			buf.WriteString("null")
		} else {
			buf.Write(field.Value)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Names returns the field names in order.
func (f Fields) Names() []string {
	names := make([]string, len(f))
	for i, field := range f {
		names[i] = field.Name
	}
	return names
}

// NullableString tells apart an omitted value, an explicit JSON null and a string.
type NullableString struct {
	// Set is true when the key was present in the input, including as null.
	Set bool

	// Null is true when the input was an explicit JSON null.
	Null bool

	Value string
}

// UnmarshalJSON records presence and nullness along with the value.
func (s *NullableString) UnmarshalJSON(data []byte) error {
	s.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		s.Null = true
		s.Value = ""
		return nil
	}
	s.Null = false
	return json.Unmarshal(data, &s.Value)
}

// MarshalJSON encodes null when unset or null, and the string otherwise.
func (s NullableString) MarshalJSON() ([]byte, error) {
	if !s.Set || s.Null {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// IsEmpty reports whether the value was given explicitly as null or as an empty string.
func (s NullableString) IsEmpty() bool {
	return s.Set && (s.Null || s.Value == "")
}

// PatchOperation is one JSON-Patch operation.
type PatchOperation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

// Relation is a link from a work item to another resource.
type Relation struct {
	// Rel is the link type reference name (e.g., "System.LinkTypes.Related")
	Rel string `json:"rel"`

	// URL is the API URL of the linked resource
	URL string `json:"url"`

	Attributes map[string]any `json:"attributes,omitempty"`
}

// WorkItem is the subset of an Azure DevOps work item the server reads back.
type WorkItem struct {
	ID        int            `json:"id"`
	Rev       int            `json:"rev"`
	Fields    map[string]any `json:"fields,omitempty"`
	Relations []Relation     `json:"relations,omitempty"`
	URL       string         `json:"url,omitempty"`
}

// Reviewer identifies a pull request reviewer.
type Reviewer struct {
	ID string `json:"id"`
}
