// Package jira is a minimal Jira Cloud REST client: one authenticated GET
// with JSON decoding and structured error bodies. Timeouts, connection
// pooling and cancellation live here; callers never retry.
package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jiratools/internal/logging"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 8 << 20

// Getter is what tools depend on: a single JSON GET against the Jira API.
type Getter interface {
	Get(ctx context.Context, path string, params url.Values, out any) error
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	Email     string
	APIToken  string
	Timeout   time.Duration
	UserAgent string

	// HTTPClient overrides the default client (Timeout is then ignored).
	HTTPClient *http.Client
}

// Client talks to one Jira site.
type Client struct {
	baseURL   *url.URL
	email     string
	apiToken  string
	userAgent string
	client    *http.Client
}

// NewClient creates a Client for the site at opts.BaseURL.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, ErrNoBaseURL
	}
	u, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid jira base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid jira base URL: %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:   u,
		email:     opts.Email,
		apiToken:  opts.APIToken,
		userAgent: opts.UserAgent,
		client:    httpClient,
	}, nil
}

// BaseURL returns the site URL the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Get issues GET path?params and decodes the JSON body into out.
// Non-2xx responses come back as *APIError.
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.resolve(path, params)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.email != "" && c.apiToken != "" {
		req.SetBasicAuth(c.email, c.apiToken)
	}

	logging.JiraDebug("GET %s", reqURL)

	resp, err := c.client.Do(req)
	if err != nil {
		logging.JiraWarn("GET %s failed after %v: %v", path, time.Since(start), err)
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", ErrTransport, err)
	}

	logging.Jira("GET %s -> %d in %v (%d bytes)", path, resp.StatusCode, time.Since(start), len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, body)
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}

func (c *Client) resolve(path string, params url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	return u.String()
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		logging.JiraDebug("error body for status %d is not a Jira error payload: %v", status, err)
		return apiErr
	}
	for _, raw := range eb.ErrorMessages {
		var msg string
		if err := json.Unmarshal(raw, &msg); err != nil {
			msg = string(raw)
		}
		if msg != "" {
			apiErr.ErrorMessages = append(apiErr.ErrorMessages, msg)
		}
	}
	if len(eb.Errors) > 0 {
		if err := json.Unmarshal(eb.Errors, &apiErr.Errors); err != nil {
			logging.JiraDebug("ignoring malformed errors member: %v", err)
		}
	}
	return apiErr
}
