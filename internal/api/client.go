package api

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
)

// DefaultTimeout bounds every request. There is no retry and no abort
// wiring beyond this deadline.
const DefaultTimeout = 10 * time.Second

// TokenSource supplies the bearer credential attached to authenticated
// requests. An empty token means no Authorization header is sent.
type TokenSource interface {
	Token() string
}

// Client implements Service against the TaskFlow REST backend.
type Client struct {
	baseURL string
	httpc   *http.Client
	tokens  TokenSource
	timeout time.Duration
}

// NewClient creates a client for the backend at baseURL. tokens may be
// nil for an unauthenticated client.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{},
		tokens:  tokens,
		timeout: DefaultTimeout,
	}
}

// SetTimeout overrides the per-request deadline.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// SetHTTPClient swaps the underlying HTTP client, mainly for tests.
func (c *Client) SetHTTPClient(h *http.Client) {
	if h != nil {
		c.httpc = h
	}
}

// ListTasks implements Service.
func (c *Client) ListTasks(ctx context.Context, filter ListFilter) ([]Task, error) {
	var tasks []Task
	if err := c.do(ctx, http.MethodGet, "/tasks", filter.Query(), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask implements Service.
func (c *Client) CreateTask(ctx context.Context, req TaskCreate) (Task, error) {
	var t Task
	err := c.do(ctx, http.MethodPost, "/tasks", nil, req, &t)
	return t, err
}

// UpdateTask implements Service.
func (c *Client) UpdateTask(ctx context.Context, id string, req TaskUpdate) (Task, error) {
	var t Task
	err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), nil, req, &t)
	return t, err
}

// DeleteTask implements Service.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil, nil)
}

// ToggleTask implements Service.
func (c *Client) ToggleTask(ctx context.Context, id string) (Task, error) {
	var t Task
	err := c.do(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id)+"/complete", nil, nil, &t)
	return t, err
}

// Login implements Service.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	var resp TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, creds, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// Register implements Service.
func (c *Client) Register(ctx context.Context, creds Credentials) (string, error) {
	var resp TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, creds, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// Chat implements Service.
func (c *Client) Chat(ctx context.Context, message string, agent AgentType) (ChatResponse, error) {
	if agent == "" {
		agent = AgentChat
	}
	body := map[string]any{"message": message, "agent_type": agent}
	var resp ChatResponse
	err := c.do(ctx, http.MethodPost, "/agents/chat", nil, body, &resp)
	return resp, err
}

// Prioritize implements Service.
func (c *Client) Prioritize(ctx context.Context, taskIDs []string, hint string) (PrioritizeResponse, error) {
	body := map[string]any{"task_ids": taskIDs}
	if hint != "" {
		body["context"] = hint
	}
	var resp PrioritizeResponse
	err := c.do(ctx, http.MethodPost, "/agents/prioritize", nil, body, &resp)
	return resp, err
}

// Decompose implements Service.
func (c *Client) Decompose(ctx context.Context, taskID string, maxSubtasks int) (DecomposeResponse, error) {
	if maxSubtasks <= 0 {
		maxSubtasks = 10
	}
	body := map[string]any{"task_id": taskID, "max_subtasks": maxSubtasks}
	var resp DecomposeResponse
	err := c.do(ctx, http.MethodPost, "/agents/decompose", nil, body, &resp)
	return resp, err
}

// AgentHealth implements Service.
func (c *Client) AgentHealth(ctx context.Context) (HealthCheck, error) {
	var resp HealthCheck
	err := c.do(ctx, http.MethodGet, "/agents/health", nil, nil, &resp)
	return resp, err
}

// do performs one request/response cycle. out may be nil for calls that
// discard the body (delete returns 204).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("request timed out")
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeError extracts the server's detail message when the body is the
// backend's standard {"detail": ...} shape.
func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Detail = body.Detail
	}
	return apiErr
}
