// Package api is the typed HTTP adapter for the matching service. It owns
// the outbound transport, the session cookie, and error normalization; no
// other package talks to the network or reads the credential store.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"devmatch/internal/models"
	"devmatch/internal/observability"
)

// tokenCookieName is the session credential the server sets on login and
// signup. It travels implicitly on every request via the cookie jar.
const tokenCookieName = "token"

// maxResponseBytes caps how much of a response body is read when decoding.
const maxResponseBytes = 1 << 20

// Client is the HTTP adapter: one operation per server capability. All
// operations take plain data arguments and return decoded typed responses;
// failures are normalized into *RequestError.
type Client struct {
	baseURL       *url.URL
	httpClient    *http.Client
	log           *observability.APILogger
	onAuthFailure func()
}

// New creates a Client for the given base URL. The transport timeout is the
// only deadline the adapter itself imposes; callers pass contexts for
// anything stricter.
func New(baseURL string, timeout time.Duration, logger *observability.Logger) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base URL %q is not absolute", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &Client{
		baseURL: parsed,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
		log: observability.NewAPILogger(logger),
	}, nil
}

// SetAuthFailureHook installs the last-resort safeguard invoked whenever a
// request fails with 401, independent of the caller's own error handling.
// The hook fires on every auth failure, so it must be idempotent.
func (c *Client) SetAuthFailureHook(hook func()) {
	c.onAuthFailure = hook
}

// HasToken reports whether the credential store holds a session token. It
// is the persisted-token artifact the route guard trusts optimistically.
func (c *Client) HasToken() bool {
	for _, cookie := range c.httpClient.Jar.Cookies(c.baseURL) {
		if cookie.Name == tokenCookieName && cookie.Value != "" {
			return true
		}
	}
	return false
}

// Login authenticates with email and password. The session cookie is
// captured by the jar as a side effect.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	body := map[string]string{"email": email, "password": password}
	var out struct {
		Data models.User `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/login", body, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Signup registers a new account and, like Login, leaves the session cookie
// in the jar.
func (c *Client) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	var out struct {
		Data models.User `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/signup", req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Logout invalidates the server session. The expired cookie returned by the
// server evicts the local token artifact.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, nil)
}

// GetUser fetches the authenticated profile.
func (c *Client) GetUser(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/profile/view", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile applies a partial profile update and returns the updated
// profile.
func (c *Client) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodPatch, "/profile/edit", patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetFeed fetches the candidate feed.
func (c *Client) GetFeed(ctx context.Context) ([]models.User, error) {
	var out struct {
		Data []models.User `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/user/feed", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetConnections fetches the viewer's accepted connections.
func (c *Client) GetConnections(ctx context.Context) ([]models.User, error) {
	var out struct {
		Data []models.User `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/user/connections", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetRequests fetches pending connection requests addressed to the viewer.
func (c *Client) GetRequests(ctx context.Context) ([]models.ConnectionRequest, error) {
	var out struct {
		Data []models.ConnectionRequest `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/user/requests", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// AcceptRequest accepts the pending request with the given id.
func (c *Client) AcceptRequest(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/request/review/accepted/"+url.PathEscape(id), nil, nil)
}

// RejectRequest rejects the pending request with the given id.
func (c *Client) RejectRequest(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/user/requests/"+url.PathEscape(id)+"/reject", nil, nil)
}

// SendInterest expresses interest in the candidate with the given id.
func (c *Client) SendInterest(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/request/send/interested/"+url.PathEscape(id), nil, nil)
}

// Ignore passes on the candidate with the given id.
func (c *Client) Ignore(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/request/send/ignored/"+url.PathEscape(id), nil, nil)
}

// do performs a request against the base URL, decodes a 2xx body into out
// when out is non-nil, and normalizes everything else into *RequestError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	target := c.baseURL.ResolveReference(&url.URL{Path: path})

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.LogRequest(ctx, method, path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		reqErr := &RequestError{Kind: KindNetworkFailure, Message: err.Error()}
		c.log.LogError(ctx, method, path, reqErr)
		return reqErr
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		reqErr := &RequestError{Kind: KindNetworkFailure, Message: "read response: " + err.Error()}
		c.log.LogError(ctx, method, path, reqErr)
		return reqErr
	}

	c.log.LogResponse(ctx, method, path, resp.StatusCode)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
		return nil
	}

	reqErr := &RequestError{
		Kind:    kindForStatus(resp.StatusCode),
		Status:  resp.StatusCode,
		Message: errorMessage(raw, resp.StatusCode),
	}
	c.log.LogError(ctx, method, path, reqErr)

	if reqErr.Kind == KindAuthFailure && c.onAuthFailure != nil {
		c.onAuthFailure()
	}
	return reqErr
}

// errorMessage extracts a human-readable message from an error body,
// falling back to the HTTP status text.
func errorMessage(raw []byte, status int) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return http.StatusText(status)
}
