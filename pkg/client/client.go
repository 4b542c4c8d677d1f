// Package client is a Go client for the blog API. It keeps the access token
// in memory, carries the refresh cookie in a cookie jar and transparently
// reissues the access token when the server rejects it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

const tokenPath = "/token"

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("blog api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("blog api: %d %s", e.StatusCode, e.Message)
}

// IsAuthRejection reports whether err is a 401 or 403 from the server.
func IsAuthRejection(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && isAuthStatus(apiErr.StatusCode)
}

func isAuthStatus(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

type Client struct {
	baseURL string
	http    *http.Client
	cache   *TokenCache

	refresher refresher
}

type Option func(*Client)

// WithHTTPClient replaces the default client. Its Jar must be set for the
// refresh cookie to survive between calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTokenCache(cache *TokenCache) Option {
	return func(c *Client) { c.cache = cache }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar, Timeout: 30 * time.Second},
		cache:   &TokenCache{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Cache exposes the token cache, e.g. to inspect the logged-in user.
func (c *Client) Cache() *TokenCache {
	return c.cache
}

// Do sends a JSON request and decodes the response into out (which may be
// nil). A 401 or 403 triggers one token reissue and one replay, except for
// the /token call itself.
func (c *Client) Do(ctx context.Context, method, path string, in, out interface{}) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	token := c.cache.Token()
	resp, err := c.send(ctx, method, path, payload, token)
	if err != nil {
		return err
	}
	if !isAuthStatus(resp.status) || isTokenPath(path) {
		return resp.decode(out)
	}

	fresh, led, err := c.reissue(ctx, token)
	if err != nil {
		// the caller that ran the flight reports the flight's failure,
		// everyone parked on it reports their own rejection
		if !led && ctx.Err() == nil {
			return resp.decode(out)
		}
		return err
	}

	resp, err = c.send(ctx, method, path, payload, fresh)
	if err != nil {
		return err
	}
	return resp.decode(out)
}

func isTokenPath(path string) bool {
	p, _, _ := strings.Cut(path, "?")
	return p == tokenPath
}

type response struct {
	status int
	body   []byte
}

func (r *response) decode(out interface{}) error {
	if r.status < 200 || r.status >= 300 {
		apiErr := &APIError{StatusCode: r.status}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(r.body, &msg) == nil {
			apiErr.Message = msg.Message
		}
		return apiErr
	}
	if out == nil || len(r.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string) (*response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return &response{status: res.StatusCode, body: data}, nil
}
