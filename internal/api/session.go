package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/mglenn/ttm/internal/models"
)

// SessionState is a point-in-time view of the authentication state.
// Loading is true only while an auth check is in flight; once it clears the
// state is exactly one of authenticated-with-user or unauthenticated.
type SessionState struct {
	Loading       bool
	Authenticated bool
	User          *models.User
}

// Session owns tab-lifetime authentication state. Methods are safe for
// concurrent use; bubbletea commands run in their own goroutines.
type Session struct {
	client *Client

	mu            sync.Mutex
	loading       bool
	authenticated bool
	user          *models.User
}

func NewSession(client *Client) *Session {
	return &Session{client: client, loading: true}
}

// State returns a snapshot of the current session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionState{
		Loading:       s.loading,
		Authenticated: s.authenticated,
		User:          s.user,
	}
}

type authCheckResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *models.User `json:"user"`
}

// CheckAuth re-derives the session state from the backend. Every failure
// shape (authenticated:false, non-2xx, network error, unparseable body)
// converges to unauthenticated; only network and parse failures are logged.
func (s *Session) CheckAuth(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	// Network and parse failures are logged by the client; an explicit
	// authenticated:false is a normal answer, not an error.
	var body authCheckResponse
	err := s.client.get(ctx, "/api/auth/check", &body, "Failed to check authentication")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err == nil && body.Authenticated {
		// A missing user payload still counts as authenticated, just with
		// an unknown identity.
		s.authenticated = true
		s.user = body.User
		return
	}
	s.authenticated = false
	s.user = nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates with the backend and then re-derives the session via
// a full CheckAuth. Local state is never set from the login call itself, so
// a forged or stale response cannot fabricate an authenticated UI.
func (s *Session) Login(ctx context.Context, usernameOrEmail, password string) error {
	err := s.client.mutate(ctx, http.MethodPost, "/api/login",
		loginRequest{Username: usernameOrEmail, Password: password}, nil, "Failed to log in")
	if err != nil {
		return err
	}
	s.CheckAuth(ctx)
	return nil
}

// Logout signs the user out. Local state clears immediately, before any
// network traffic, and is never re-armed by what the backend reports. The
// returned boolean is advisory: true when a verification check confirms the
// server no longer considers the session authenticated. A network failure
// during verification counts as logged out rather than trapping the user in
// a zombie signed-in view.
func (s *Session) Logout(ctx context.Context) bool {
	s.mu.Lock()
	s.authenticated = false
	s.user = nil
	s.mu.Unlock()

	err := s.client.mutate(ctx, http.MethodPost, "/api/logout", nil, nil, "Failed to log out")
	if err != nil {
		s.client.log.Warn("logout request failed", "error", err)
	}

	// Verification always runs, even when the POST failed.
	var body authCheckResponse
	if err := s.client.get(ctx, "/api/auth/check", &body, "Failed to check authentication"); err != nil {
		return true
	}
	return !body.Authenticated
}
