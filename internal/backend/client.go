// Package backend implements the REST client for the remote agent-execution
// service. The service's internal planning logic is opaque; this client only
// speaks the lifecycle protocol and the status feed.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agentboard/agentboard/internal/core"
	"github.com/agentboard/agentboard/internal/logging"
)

const defaultTimeout = 15 * time.Second

// Client talks to the agent-execution backend over HTTP. It implements
// core.Backend.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logging.Logger
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil || baseURL == "" {
		return nil, core.ErrValidation("INVALID_BACKEND_URL", "backend base URL is invalid: "+baseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Health checks backend connectivity.
func (c *Client) Health(ctx context.Context) (*core.HealthInfo, error) {
	body, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	var info core.HealthInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, core.ErrRemoteCall(core.CodeBackendStatus, "health payload failed to decode").WithCause(err)
	}
	return &info, nil
}

// ExecuteWorkflow starts a session carrying the full agent graph.
func (c *Client) ExecuteWorkflow(ctx context.Context, req core.ExecuteWorkflowRequest) (*core.ExecuteWorkflowResponse, error) {
	body, err := c.do(ctx, http.MethodPost, "/workflow/execute", req)
	if err != nil {
		return nil, err
	}
	var resp core.ExecuteWorkflowResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, core.ErrRemoteCall(core.CodeBackendStatus, "execute payload failed to decode").WithCause(err)
	}
	return &resp, nil
}

// Status fetches the authoritative snapshot for a session.
func (c *Client) Status(ctx context.Context, sessionID string) (*core.StatusSnapshot, error) {
	body, err := c.do(ctx, http.MethodGet, "/execution/"+url.PathEscape(sessionID)+"/status", nil)
	if err != nil {
		return nil, err
	}
	snap, unknown, err := core.DecodeStatusSnapshot(body)
	if err != nil {
		return nil, err
	}
	if len(unknown) > 0 {
		c.logger.Warn("backend snapshot carried unrecognized fields",
			"session_id", sessionID, "fields", strings.Join(unknown, ","))
	}
	return snap, nil
}

// Pause suspends execution for a session.
func (c *Client) Pause(ctx context.Context, sessionID string) error {
	_, err := c.do(ctx, http.MethodPost, "/execution/"+url.PathEscape(sessionID)+"/pause", nil)
	return err
}

// Resume continues a paused session.
func (c *Client) Resume(ctx context.Context, sessionID string) error {
	_, err := c.do(ctx, http.MethodPost, "/execution/"+url.PathEscape(sessionID)+"/resume", nil)
	return err
}

// Stop aborts a session.
func (c *Client) Stop(ctx context.Context, sessionID string) error {
	_, err := c.do(ctx, http.MethodPost, "/execution/"+url.PathEscape(sessionID)+"/stop", nil)
	return err
}

// do issues one request and maps failures onto the RemoteCallError taxonomy:
// transport errors become BACKEND_UNAVAILABLE, non-2xx responses become
// BACKEND_STATUS.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, core.ErrValidation("MARSHAL_FAILED", "request payload failed to marshal").WithCause(err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, core.ErrRemoteCall(core.CodeBackendUnavailable, "building request failed").WithCause(err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, core.ErrRemoteCall(core.CodeBackendUnavailable,
			fmt.Sprintf("%s %s failed", method, path)).WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, core.ErrRemoteCall(core.CodeBackendUnavailable, "reading response failed").WithCause(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, core.ErrRemoteCall(core.CodeBackendStatus,
			fmt.Sprintf("%s %s returned %d", method, path, resp.StatusCode)).
			WithDetail("status_code", resp.StatusCode).
			WithDetail("body", strings.TrimSpace(string(body)))
	}
	return body, nil
}
