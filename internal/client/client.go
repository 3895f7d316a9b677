// ABOUTME: HTTP client for the cab-booking REST API
// ABOUTME: Wraps auth and role-specific calls with Bearer auth and error classification

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout is applied when no timeout option is given
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a failed response is read for its message
const maxErrorBody = 4096

// ErrNetwork marks failures where the backend could not be reached
var ErrNetwork = errors.New("network failure")

// APIError is returned when the backend answers with a non-2xx status
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend error: %s", e.Message)
}

// TokenSource returns the bearer token to attach, or "" for none
type TokenSource func() string

// Client is the API client for the cab-booking backend
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokenSource TokenSource
}

// Option configures a Client
type Option func(*Client)

// WithTimeout overrides the HTTP timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithTokenSource sets where authenticated calls read their bearer token from
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokenSource = ts
	}
}

// New creates a new API client with the given base URL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTokenSource replaces the token source after construction
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokenSource = ts
}

// BaseURL returns the configured API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body returned by a successful login
type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Login calls POST /auth/login
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/auth/login", nil, req, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var login LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		return nil, fmt.Errorf("invalid response from backend: %w", err)
	}
	if login.Token == "" {
		return nil, fmt.Errorf("invalid response from backend: missing token")
	}
	return &login, nil
}

// Register calls POST /auth/register and returns the acknowledgement text
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/auth/register", nil, req, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	return readText(resp.Body)
}

// do builds and sends a request, returning the response only for 2xx statuses
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, authenticated bool) (*http.Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal input: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json, text/plain")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if authenticated && c.tokenSource != nil {
		if token := c.tokenSource(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, c.handleErrorResponse(resp)
	}
	return resp, nil
}

// handleRequestError converts transport errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%w: request canceled", ErrNetwork)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out", ErrNetwork)
	}
	return fmt.Errorf("%w: cannot connect to backend at %s: %w", ErrNetwork, c.baseURL, err)
}

// handleErrorResponse extracts the server's message from a failed response.
// The backend answers with plain text bodies; JSON error objects are also accepted.
func (c *Client) handleErrorResponse(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    extractMessage(data),
	}
}

func extractMessage(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return ""
	}

	switch trimmed[0] {
	case '{':
		var obj struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(trimmed, &obj); err == nil {
			if obj.Message != "" {
				return obj.Message
			}
			return obj.Error
		}
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return strings.TrimSpace(s)
		}
	}
	return string(trimmed)
}

// readText reads an acknowledgement body that may be plain text or a JSON string
func readText(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("invalid response from backend: %w", err)
	}
	return extractMessage(data), nil
}
