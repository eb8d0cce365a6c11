package api

import (
	"context"
	"encoding/json"
	"net/http"
)

const csrfCookieName = "_csrf_token"

// ensureCSRFToken returns an anti-forgery token, reading the CSRF cookie
// first and asking the backend for a fresh one only when the cookie is
// absent. The cookie is the cache; nothing is memoized here. An empty
// return means "send no header" and is never an error: the server is the
// one that rejects unprotected mutations.
func (c *Client) ensureCSRFToken(ctx context.Context) string {
	if token, ok := c.cookies.Get(csrfCookieName); ok && token != "" {
		return token
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.String()+"/api/csrf-token", nil)
	if err != nil {
		c.log.Warn("csrf token request", "error", err)
		return ""
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("csrf token fetch failed", "error", err)
		return ""
	}
	defer resp.Body.Close()

	var body struct {
		// The backend may answer with an explicit null token.
		Token *string `json:"csrf_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.log.Warn("csrf token response malformed", "error", err)
		return ""
	}
	if body.Token == nil {
		return ""
	}
	return *body.Token
}
