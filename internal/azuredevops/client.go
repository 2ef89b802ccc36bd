// Package azuredevops forwards operations to the Azure DevOps REST API.
//
// Every operation is one blocking HTTP round trip through Client.Do, except
// UnlinkWorkItems which reads the work item before writing it. There is no
// retry, backoff or client-side timeout; cancellation comes from the caller's
// context only.
package azuredevops

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/danielolaszy/ado-mcp/internal/config"
	"github.com/danielolaszy/ado-mcp/internal/logging"
)

// Content types accepted by the API.
const (
	ContentTypeJSON      = "application/json"
	ContentTypeJSONPatch = "application/json-patch+json"
)

// HeaderContinuationToken carries the token for the next page of a listing.
const HeaderContinuationToken = "x-ms-continuationtoken"

// headerWhitelist lists the response headers passed back to the caller.
var headerWhitelist = []string{HeaderContinuationToken}

// Credentials are the token and organization used for a call. Empty values
// fall back to the client's configuration.
type Credentials struct {
	Token        string `json:"token,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// Request describes one call to the API.
type Request struct {
	// Endpoint is relative to the organization, e.g. "_apis/projects?api-version=7.2-preview".
	Endpoint string
	Method   string

	// Body is JSON-encoded when not nil.
	Body any

	// ContentType defaults to ContentTypeJSON.
	ContentType string

	Credentials Credentials
}

// Response is the parsed result of a successful call.
type Response struct {
	// Body is the response JSON, or null when the response was empty or not JSON.
	Body json.RawMessage `json:"body"`

	// Headers holds the whitelisted response headers, keyed in lower case.
	Headers map[string]string `json:"headers"`

	// ParseErr is set when a non-empty body could not be parsed as JSON.
	ParseErr error `json:"-"`
}

// Client encapsulates access to the Azure DevOps REST API.
type Client struct {
	httpClient *http.Client
	config     config.AzureDevOpsConfig
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client from the given configuration. Default
// credentials may be empty; calls then have to supply their own.
func NewClient(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	adoConfig := cfg.AzureDevOps
	if adoConfig.BaseURL == "" {
		adoConfig.BaseURL = config.DefaultBaseURL
	}
	if adoConfig.AuthScheme == "" {
		adoConfig.AuthScheme = config.AuthSchemeBasic
	}
	adoConfig.BaseURL = strings.TrimRight(adoConfig.BaseURL, "/")

	c := &Client{
		httpClient: http.DefaultClient,
		config:     adoConfig,
	}
	for _, opt := range opts {
		opt(c)
	}

	logging.Debug("azure devops configuration",
		"base_url", adoConfig.BaseURL,
		"auth_scheme", adoConfig.AuthScheme,
		"organization", adoConfig.Organization,
		"token", logging.MaskSensitive(adoConfig.Token))

	return c, nil
}

// ResolveCredentials layers non-empty overrides on top of the configured
// defaults. The token is checked before the organization.
func (c *Client) ResolveCredentials(override Credentials) (Credentials, error) {
	resolved := Credentials{
		Token:        c.config.Token,
		Organization: c.config.Organization,
	}
	if strings.TrimSpace(override.Token) != "" {
		resolved.Token = override.Token
	}
	if strings.TrimSpace(override.Organization) != "" {
		resolved.Organization = override.Organization
	}

	if strings.TrimSpace(resolved.Token) == "" {
		logging.Error("no token provided",
			"detail", "call arguments did not include a token and "+config.EnvToken+" is unset")
		return Credentials{}, &MissingCredentialError{Field: "token", EnvVar: config.EnvToken}
	}
	if strings.TrimSpace(resolved.Organization) == "" {
		logging.Error("no organization provided",
			"detail", "call arguments did not include an organization and "+config.EnvOrganization+" is unset")
		return Credentials{}, &MissingCredentialError{Field: "organization", EnvVar: config.EnvOrganization}
	}

	return resolved, nil
}

// OrganizationURL returns the API root of an organization.
func (c *Client) OrganizationURL(organization string) string {
	return c.config.BaseURL + "/" + url.PathEscape(organization)
}

// endpointURL joins the organization root and a relative endpoint.
func (c *Client) endpointURL(organization, endpoint string) string {
	return c.OrganizationURL(organization) + "/" + strings.TrimPrefix(endpoint, "/")
}

// WorkItemURL returns the API URL of a work item, the form used in relations.
func (c *Client) WorkItemURL(organization, id string) string {
	return c.OrganizationURL(organization) + "/_apis/wit/workItems/" + url.PathEscape(id)
}

// authorize sets the Authorization header for the configured scheme.
func (c *Client) authorize(req *http.Request, token string) {
	if c.config.AuthScheme == config.AuthSchemeBearer {
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
		return
	}
	req.SetBasicAuth("", token)
}

// Do performs a single request and parses the response.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	creds, err := c.ResolveCredentials(r.Credentials)
	if err != nil {
		return nil, err
	}

	apiURL := c.endpointURL(creds.Organization, r.Endpoint)

	var body io.Reader
	if r.Body != nil {
		payload, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, apiURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request %s %s: %w", r.Method, r.Endpoint, err)
	}

	contentType := r.ContentType
	if contentType == "" {
		contentType = ContentTypeJSON
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", ContentTypeJSON)
	c.authorize(req, creds.Token)

	logging.Debug("sending azure devops request",
		"method", r.Method,
		"endpoint", r.Endpoint,
		"organization", creds.Organization,
		"token", logging.MaskSensitive(creds.Token))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Error("azure devops request failed",
			"method", r.Method,
			"endpoint", r.Endpoint,
			"error", err)
		return nil, fmt.Errorf("request %s %s failed: %w", r.Method, r.Endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response of %s %s: %w", r.Method, r.Endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.Error("azure devops returned an error status",
			"method", r.Method,
			"endpoint", r.Endpoint,
			"status_code", resp.StatusCode)
		return nil, &RequestError{
			Method:     r.Method,
			Endpoint:   r.Endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
	}

	logging.Debug("received azure devops response",
		"method", r.Method,
		"endpoint", r.Endpoint,
		"status_code", resp.StatusCode,
		"bytes", len(raw))

	return parseResponse(resp, raw), nil
}

// parseResponse turns a successful response into a Response. An empty body
// gives a null Body. A non-empty body that is not JSON, such as an HTML page
// from a proxy, also gives a null Body: the failure is logged and kept on
// ParseErr instead of failing the call.
func parseResponse(resp *http.Response, raw []byte) *Response {
	out := &Response{
		Headers: whitelistedHeaders(resp.Header),
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return out
	}

	if !json.Valid(raw) {
		out.ParseErr = &ParseError{
			StatusCode:  resp.StatusCode,
			ContentType: resp.Header.Get("Content-Type"),
			Size:        len(raw),
		}
		logging.Warn("returning empty body for unparsable response", "error", out.ParseErr)
		return out
	}

	out.Body = json.RawMessage(raw)
	return out
}

func whitelistedHeaders(h http.Header) map[string]string {
	headers := make(map[string]string)
	for _, name := range headerWhitelist {
		if value := h.Get(name); value != "" {
			headers[name] = value
		}
	}
	return headers
}
