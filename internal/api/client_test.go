package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(srv.URL, 5*time.Second, testLogger())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client, srv
}

// seedCSRFCookie plants a CSRF cookie in the client's jar, as if a previous
// response had set it.
func seedCSRFCookie(t *testing.T, c *Client, srv *httptest.Server, value string) {
	t.Helper()
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	c.http.Jar.SetCookies(u, []*http.Cookie{{Name: csrfCookieName, Value: value}})
}

// recorder counts requests per method+path and remembers headers.
type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

type recordedRequest struct {
	Method string
	Path   string
	CSRF   string
	Cookie string
}

func (r *recorder) record(req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, recordedRequest{
		Method: req.Method,
		Path:   req.URL.Path,
		CSRF:   req.Header.Get("X-CSRF-Token"),
		Cookie: req.Header.Get("Cookie"),
	})
}

func (r *recorder) count(method, path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, req := range r.requests {
		if req.Method == method && req.Path == path {
			n++
		}
	}
	return n
}

func (r *recorder) last() recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[len(r.requests)-1]
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"api error", &Error{StatusCode: 400, Message: "Project name already exists"}, "Project name already exists"},
		{"plain error", errors.New("connection refused"), "connection refused"},
		{"bare string", "Network failure", "Unknown error"},
		{"nil", nil, "Unknown error"},
		{"integer", 42, "Unknown error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage(tt.in); got != tt.want {
				t.Fatalf("ErrorMessage(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUpdateProjectReturnsCanonicalRecord(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.Write([]byte(`{"id":7,"name":"Renamed","description":"new words"}`))
	}))
	seedCSRFCookie(t, client, srv, "tok")

	project, err := client.UpdateProject(context.Background(), 7, "Renamed", "new words")
	if err != nil {
		t.Fatalf("UpdateProject returned error: %v", err)
	}
	if project.Name != "Renamed" {
		t.Fatalf("expected canonical record from server, got %+v", project)
	}
	if n := rec.count(http.MethodPut, "/api/projects/7"); n != 1 {
		t.Fatalf("expected exactly one PUT to /api/projects/7, got %d", n)
	}
}

func TestMutationSurfacesServerError(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/csrf-token" {
			w.Write([]byte(`{"csrf_token":"tok"}`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Project name already exists"}`))
	}))

	_, err := client.CreateProject(context.Background(), "Test Project", "...")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.Message != "Project name already exists" {
		t.Fatalf("expected verbatim server message, got %q", apiErr.Message)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", apiErr.StatusCode)
	}
}

func TestMutationFallbackMessage(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/csrf-token" {
			w.Write([]byte(`{"csrf_token":"tok"}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>gateway exploded</html>"))
	}))

	_, err := client.CreateProject(context.Background(), "Test Project", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := ErrorMessage(err); got != "Failed to create project" {
		t.Fatalf("expected generic fallback, got %q", got)
	}
}

func TestMalformedListDegradesToEmpty(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))

	projects, err := client.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("expected degraded empty list, got error: %v", err)
	}
	if len(projects) != 0 {
		t.Fatalf("expected empty list, got %d entries", len(projects))
	}

	tasks, err := client.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("expected degraded empty list, got error: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected empty list, got %d entries", len(tasks))
	}
}

func TestCSRFCookieFastPathSkipsNetwork(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.Write([]byte(`{"message":"ok"}`))
	}))
	seedCSRFCookie(t, client, srv, "cookie-token")

	if err := client.DeleteTask(context.Background(), 7); err != nil {
		t.Fatalf("DeleteTask returned error: %v", err)
	}

	if n := rec.count(http.MethodGet, "/api/csrf-token"); n != 0 {
		t.Fatalf("expected no csrf fetch when cookie is present, got %d", n)
	}
	if got := rec.last().CSRF; got != "cookie-token" {
		t.Fatalf("expected header from cookie, got %q", got)
	}
}

func TestCSRFFetchedOnceWhenCookieMissing(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		if r.URL.Path == "/api/csrf-token" {
			http.SetCookie(w, &http.Cookie{Name: csrfCookieName, Value: "fresh"})
			w.Write([]byte(`{"csrf_token":"fresh"}`))
			return
		}
		w.Write([]byte(`{"message":"ok"}`))
	}))

	if err := client.DeleteTask(context.Background(), 1); err != nil {
		t.Fatalf("DeleteTask returned error: %v", err)
	}
	if err := client.DeleteTask(context.Background(), 2); err != nil {
		t.Fatalf("DeleteTask returned error: %v", err)
	}

	// First mutation fetches the token; the set cookie is the cache for the
	// second.
	if n := rec.count(http.MethodGet, "/api/csrf-token"); n != 1 {
		t.Fatalf("expected one csrf fetch, got %d", n)
	}
	if got := rec.last().CSRF; got != "fresh" {
		t.Fatalf("expected cached token on second mutation, got %q", got)
	}
}

func TestCSRFNullTokenOmitsHeader(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		if r.URL.Path == "/api/csrf-token" {
			w.Write([]byte(`{"csrf_token":null}`))
			return
		}
		w.Write([]byte(`{"message":"ok"}`))
	}))

	if err := client.DeleteTask(context.Background(), 1); err != nil {
		t.Fatalf("DeleteTask returned error: %v", err)
	}
	if got := rec.last().CSRF; got != "" {
		t.Fatalf("expected no csrf header for null token, got %q", got)
	}
}

func TestCSRFFetchFailureStillDispatchesMutation(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		if r.URL.Path == "/api/csrf-token" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"Invalid or missing CSRF token"}`))
	}))

	err := client.DeleteTask(context.Background(), 1)
	if err == nil {
		t.Fatal("expected the server rejection to surface")
	}
	if got := ErrorMessage(err); got != "Invalid or missing CSRF token" {
		t.Fatalf("expected server rejection message, got %q", got)
	}
	if n := rec.count(http.MethodDelete, "/api/tasks/1"); n != 1 {
		t.Fatalf("mutation should still have been dispatched once, got %d", n)
	}
}
