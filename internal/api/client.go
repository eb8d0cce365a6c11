// Package api is the REST client for the task manager backend. Every
// mutating call goes through one gateway path: acquire a CSRF token, send
// the request with cookie credentials, and turn any failure into an *Error
// the UI can display. Nothing in this package panics across that boundary.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/mglenn/ttm/internal/cookies"
)

// listPageSize is the per_page requested when walking paginated list
// endpoints. The server caps per_page at 100.
const listPageSize = 100

// Error is a failed API call: the HTTP status and the message a caller can
// show the user verbatim.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// ErrorMessage resolves an arbitrary failure value to a displayable string.
// Values that are not errors at all yield "Unknown error"; the message
// field is never assumed to exist.
func ErrorMessage(v any) string {
	switch err := v.(type) {
	case *Error:
		return err.Message
	case error:
		return err.Error()
	default:
		return "Unknown error"
	}
}

// Client talks to the backend. The cookie jar carries both the session
// cookie and the CSRF cookie; the client only ever reads them or asks the
// server to refresh them, never writes them directly.
type Client struct {
	base    *url.URL
	http    *http.Client
	log     *slog.Logger
	cookies cookies.Store
}

// New creates a client for the backend at baseURL.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url %q: %w", baseURL, err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Client{
		base: base,
		http: &http.Client{Jar: jar, Timeout: timeout},
		log:  logger,
		cookies: cookies.JarStore{
			Jar: jar,
			URL: base,
		},
	}, nil
}

// get issues a credentialed GET and decodes the 2xx body into dest. A body
// that fails to decode leaves dest at its zero value rather than erroring.
func (c *Client) get(ctx context.Context, path string, dest any, fallback string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.String()+path, nil)
	if err != nil {
		return err
	}
	return c.send(req, dest, fallback)
}

// mutate is the gateway for every state-changing call. The CSRF fetch
// completes (or is skipped because the cookie already holds a token) before
// the request is dispatched; an empty token means the header is omitted and
// the server decides.
func (c *Client) mutate(ctx context.Context, method, path string, payload, dest any, fallback string) error {
	token := c.ensureCSRFToken(ctx)

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("X-CSRF-Token", token)
	}
	return c.send(req, dest, fallback)
}

func (c *Client) send(req *http.Request, dest any, fallback string) error {
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", "method", req.Method, "path", req.URL.Path, "error", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.readError(resp, fallback)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		// Malformed success body: degrade to the zero value, keep the UI usable.
		c.log.Warn("malformed response body", "path", req.URL.Path, "error", err)
	}
	return nil
}

// readError extracts the server's error message from a non-2xx response,
// falling back to the operation's generic message when the body does not
// parse or carries no error field.
func (c *Client) readError(resp *http.Response, fallback string) error {
	apiErr := &Error{StatusCode: resp.StatusCode, Message: fallback}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		apiErr.Message = payload.Error
	}
	return apiErr
}
