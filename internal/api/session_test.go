package api

import (
	"context"
	"net/http"
	"testing"
)

func TestCheckAuthAuthenticated(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"authenticated":true,"user":{"id":1,"username":"ada","email":"ada@example.test"}}`))
	}))
	session := NewSession(client)

	session.CheckAuth(context.Background())

	state := session.State()
	if state.Loading {
		t.Fatal("loading flag not cleared")
	}
	if !state.Authenticated {
		t.Fatal("expected authenticated")
	}
	if state.User == nil || state.User.Username != "ada" {
		t.Fatalf("expected user ada, got %+v", state.User)
	}
}

func TestCheckAuthAuthenticatedWithoutUser(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"authenticated":true}`))
	}))
	session := NewSession(client)

	session.CheckAuth(context.Background())

	state := session.State()
	if !state.Authenticated {
		t.Fatal("authenticated without a user payload is still authenticated")
	}
	if state.User != nil {
		t.Fatalf("expected absent user, got %+v", state.User)
	}
}

func TestCheckAuthFailureShapesConverge(t *testing.T) {
	t.Parallel()

	handlers := map[string]http.HandlerFunc{
		"authenticated false": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"authenticated":false,"user":null}`))
		},
		"non-2xx": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"malformed body": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<!doctype html>"))
		},
	}
	for name, handler := range handlers {
		t.Run(name, func(t *testing.T) {
			client, _ := newTestClient(t, handler)
			session := NewSession(client)

			session.CheckAuth(context.Background())

			state := session.State()
			if state.Loading {
				t.Fatal("loading flag not cleared")
			}
			if state.Authenticated || state.User != nil {
				t.Fatalf("expected unauthenticated, got %+v", state)
			}
		})
	}
}

func TestCheckAuthNetworkError(t *testing.T) {
	t.Parallel()

	client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	session := NewSession(client)

	session.CheckAuth(context.Background())

	state := session.State()
	if state.Loading || state.Authenticated || state.User != nil {
		t.Fatalf("expected settled unauthenticated state, got %+v", state)
	}
}

func TestLoginRederivesFromServer(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/csrf-token":
			w.Write([]byte(`{"csrf_token":"tok"}`))
		case "/api/login":
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "s1"})
			w.Write([]byte(`{"message":"Login successful"}`))
		case "/api/auth/check":
			if c, err := r.Cookie("session"); err == nil && c.Value == "s1" {
				w.Write([]byte(`{"authenticated":true,"user":{"id":1,"username":"ada","email":"a@e.test"}}`))
				return
			}
			w.Write([]byte(`{"authenticated":false}`))
		}
	}))
	session := NewSession(client)

	if err := session.Login(context.Background(), "ada", "hunter2"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	state := session.State()
	if !state.Authenticated || state.User == nil {
		t.Fatalf("expected authenticated state derived from auth check, got %+v", state)
	}
}

func TestLoginRejected(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/csrf-token" {
			w.Write([]byte(`{"csrf_token":"tok"}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Invalid username/email or password"}`))
	}))
	session := NewSession(client)

	err := session.Login(context.Background(), "ada", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := ErrorMessage(err); got != "Invalid username/email or password" {
		t.Fatalf("expected server message, got %q", got)
	}
	if session.State().Authenticated {
		t.Fatal("rejected login must not authenticate")
	}
}

// authenticatedSession returns a session already in the authenticated state.
func authenticatedSession(t *testing.T, handler http.Handler) *Session {
	t.Helper()
	client, _ := newTestClient(t, handler)
	session := NewSession(client)
	session.mu.Lock()
	session.loading = false
	session.authenticated = true
	session.user = nil
	session.mu.Unlock()
	return session
}

func TestLogoutAlwaysClearsLocalState(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		logout       http.HandlerFunc
		wantVerified bool
	}{
		"post succeeds": {
			logout: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"message":"Logout successful"}`))
			},
			wantVerified: true,
		},
		"post fails with body": {
			logout: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"session backend unavailable"}`))
			},
			wantVerified: true,
		},
		"post fails with malformed body": {
			logout: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte("<html>"))
			},
			wantVerified: true,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			session := authenticatedSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/api/csrf-token":
					w.Write([]byte(`{"csrf_token":"tok"}`))
				case "/api/logout":
					tc.logout(w, r)
				case "/api/auth/check":
					w.Write([]byte(`{"authenticated":false}`))
				}
			}))

			verified := session.Logout(context.Background())

			if verified != tc.wantVerified {
				t.Fatalf("verified = %v, want %v", verified, tc.wantVerified)
			}
			state := session.State()
			if state.Authenticated || state.User != nil {
				t.Fatalf("local state must clear regardless of outcome, got %+v", state)
			}
		})
	}
}

func TestLogoutNetworkErrorStillClearsAndFailsOpen(t *testing.T) {
	t.Parallel()

	client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	session := NewSession(client)
	session.mu.Lock()
	session.authenticated = true
	session.mu.Unlock()

	verified := session.Logout(context.Background())

	if !verified {
		t.Fatal("verification network failure must count as logged out")
	}
	if session.State().Authenticated {
		t.Fatal("local state must clear before any network call")
	}
}

func TestLogoutVerificationStillAuthenticated(t *testing.T) {
	t.Parallel()

	session := authenticatedSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/csrf-token":
			w.Write([]byte(`{"csrf_token":"tok"}`))
		case "/api/logout":
			w.WriteHeader(http.StatusInternalServerError)
		case "/api/auth/check":
			w.Write([]byte(`{"authenticated":true}`))
		}
	}))

	verified := session.Logout(context.Background())

	if verified {
		t.Fatal("server still reports authenticated, verification must be false")
	}
	// The advisory false result never re-arms local state.
	if session.State().Authenticated {
		t.Fatal("local state stays cleared")
	}
}

func TestLogoutOrdering(t *testing.T) {
	t.Parallel()

	var session *Session
	order := make([]string, 0, 3)
	sawClearedState := false

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, r.URL.Path)
		if r.URL.Path == "/api/csrf-token" {
			// Local state must already be cleared by the time any network
			// traffic happens.
			sawClearedState = !session.State().Authenticated
			w.Write([]byte(`{"csrf_token":"tok"}`))
			return
		}
		if r.URL.Path == "/api/auth/check" {
			w.Write([]byte(`{"authenticated":false}`))
			return
		}
		w.Write([]byte(`{"message":"ok"}`))
	}))
	session = NewSession(client)
	session.mu.Lock()
	session.authenticated = true
	session.mu.Unlock()

	session.Logout(context.Background())

	want := []string{"/api/csrf-token", "/api/logout", "/api/auth/check"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
	if !sawClearedState {
		t.Fatal("local state was not cleared before the first network call")
	}
}
