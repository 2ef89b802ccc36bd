package azuredevops

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential is matched by every MissingCredentialError.
	ErrMissingCredential = errors.New("missing credential")

	// ErrNoRelations is returned by UnlinkWorkItems when the source work item has no relations.
	ErrNoRelations = errors.New("work item has no relations")

	// ErrRelationNotFound is returned by UnlinkWorkItems when no relation matches.
	ErrRelationNotFound = errors.New("relation not found")
)

// MissingCredentialError reports a token or organization that was neither
// passed with the call nor configured.
type MissingCredentialError struct {
	// Field is "token" or "organization".
	Field string

	// EnvVar is the environment variable that provides the default.
	EnvVar string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s is required but was not provided: pass %q with the call or set %s",
		e.Field, e.Field, e.EnvVar)
}

func (e *MissingCredentialError) Unwrap() error {
	return ErrMissingCredential
}

// RequestError is returned for any non-2xx response. Body holds the response
// text exactly as received.
type RequestError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// ParseError describes a 2xx response whose body was not valid JSON. It is
// logged and recorded on Response.ParseErr, never returned.
type ParseError struct {
	StatusCode  int
	ContentType string
	Size        int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse response JSON (status %d, content type %q, %d bytes)",
		e.StatusCode, e.ContentType, e.Size)
}
