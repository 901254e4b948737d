package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/splax/quill/internal/repository/memory"
	"github.com/splax/quill/internal/service/auth"
	"github.com/splax/quill/internal/service/comment"
	"github.com/splax/quill/internal/service/post"
	"github.com/splax/quill/pkg/config"
	jwtpkg "github.com/splax/quill/pkg/jwt"
	"github.com/splax/quill/pkg/logger"
	"github.com/splax/quill/pkg/sanitize"
)

func newTestRouter(t *testing.T, dbHealth func(context.Context) error) *Router {
	t.Helper()
	store := memory.New()
	tokens, err := jwtpkg.NewManager("router-test-secret")
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	log := logger.Discard()
	clean := sanitize.New()
	authSvc := auth.New(store, tokens, log, config.APIConfig{AccessTokenTTL: time.Hour})
	return NewRouter(log, authSvc, post.New(store, clean, log), comment.New(store, store, clean, log), true, dbHealth)
}

func do(t *testing.T, h http.Handler, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	t.Fatalf("response did not set %s cookie", sessionCookieName)
	return nil
}

func register(t *testing.T, h http.Handler, email, name, password string) *http.Cookie {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/users/signup", map[string]string{
		"email": email, "user_name": name, "password": password, "password_check": password,
	}, nil)
	expectStatus(t, rec, http.StatusCreated)
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("signup must not set a session cookie")
	}
	rec = do(t, h, http.MethodPost, "/api/users/login", map[string]string{"email": email, "password": password}, nil)
	expectStatus(t, rec, http.StatusOK)
	return sessionCookie(t, rec)
}

func TestPostLifecycleScenario(t *testing.T) {
	h := newTestRouter(t, nil)
	alice := register(t, h, "a@x.com", "alice", "pw1")

	rec := do(t, h, http.MethodPost, "/api/posts", map[string]string{"title": "T", "content": "C"}, alice)
	expectStatus(t, rec, http.StatusCreated)
	created := decode[map[string]any](t, rec)
	if created["user_name"] != "alice" || created["title"] != "T" {
		t.Fatalf("unexpected created post: %v", created)
	}
	id := int64(created["id"].(float64))
	path := "/api/posts/" + jsonInt(id)

	bob := register(t, h, "b@x.com", "bob", "pw2")
	expectStatus(t, do(t, h, http.MethodPatch, path, map[string]string{"title": "X"}, bob), http.StatusForbidden)
	expectStatus(t, do(t, h, http.MethodDelete, path, nil, bob), http.StatusForbidden)
	expectStatus(t, do(t, h, http.MethodGet, path, nil, bob), http.StatusOK)

	rec = do(t, h, http.MethodPatch, path, map[string]string{"content": "C2"}, alice)
	expectStatus(t, rec, http.StatusOK)
	patched := decode[map[string]any](t, rec)
	if patched["title"] != "T" || patched["content"] != "C2" {
		t.Fatalf("unexpected patch result: %v", patched)
	}

	expectStatus(t, do(t, h, http.MethodDelete, path, nil, alice), http.StatusNoContent)
	expectStatus(t, do(t, h, http.MethodGet, path, nil, nil), http.StatusNotFound)
	expectStatus(t, do(t, h, http.MethodDelete, path, nil, alice), http.StatusNotFound)

	rec = do(t, h, http.MethodGet, "/api/posts", nil, nil)
	expectStatus(t, rec, http.StatusOK)
	if listed := decode[[]map[string]any](t, rec); len(listed) != 0 {
		t.Fatalf("deleted post still listed: %v", listed)
	}
}

func jsonInt(id int64) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}

func TestSignupValidation(t *testing.T) {
	h := newTestRouter(t, nil)
	register(t, h, "a@x.com", "alice", "pw1")

	cases := []struct {
		name string
		body map[string]string
		want int
	}{
		{name: "mismatch", body: map[string]string{"email": "c@x.com", "user_name": "c", "password": "one", "password_check": "two"}, want: http.StatusBadRequest},
		{name: "bad email", body: map[string]string{"email": "nope", "user_name": "c", "password": "one", "password_check": "one"}, want: http.StatusBadRequest},
		{name: "missing name", body: map[string]string{"email": "c@x.com", "password": "one", "password_check": "one"}, want: http.StatusBadRequest},
		{name: "blank name", body: map[string]string{"email": "d@x.com", "user_name": "   ", "password": "one", "password_check": "one"}, want: http.StatusBadRequest},
		{name: "duplicate", body: map[string]string{"email": "a@x.com", "user_name": "again", "password": "one", "password_check": "one"}, want: http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectStatus(t, do(t, h, http.MethodPost, "/api/users/signup", tc.body, nil), tc.want)
		})
	}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	h := newTestRouter(t, nil)
	do(t, h, http.MethodPost, "/api/users/signup", map[string]string{
		"email": "a@x.com", "user_name": "alice", "password": "pw1", "password_check": "pw1",
	}, nil)

	rec := do(t, h, http.MethodPost, "/api/users/login", map[string]string{"email": "a@x.com", "password": "pw1"}, nil)
	expectStatus(t, rec, http.StatusOK)
	cookie := sessionCookie(t, rec)
	body := decode[map[string]any](t, rec)
	if body["user_name"] != "alice" {
		t.Fatalf("unexpected login body: %v", body)
	}
	if cookie.Value != "Bearer "+body["access_token"].(string) {
		t.Fatalf("cookie %q does not carry the issued token", cookie.Value)
	}
	if !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteLaxMode || cookie.MaxAge != 3600 || cookie.Path != "/" {
		t.Fatalf("unexpected cookie attributes: %+v", cookie)
	}

	rec = do(t, h, http.MethodGet, "/api/users/me", nil, cookie)
	expectStatus(t, rec, http.StatusOK)
	if me := decode[map[string]string](t, rec); me["email"] != "a@x.com" || me["user_name"] != "alice" {
		t.Fatalf("unexpected me body: %v", me)
	}

	expectStatus(t, do(t, h, http.MethodPost, "/api/users/login", map[string]string{"email": "a@x.com", "password": "bad"}, nil), http.StatusUnauthorized)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	h := newTestRouter(t, nil)
	forged := &http.Cookie{Name: sessionCookieName, Value: "Bearer forged.token.value"}
	bare := &http.Cookie{Name: sessionCookieName, Value: "no-prefix"}

	cases := []struct {
		method string
		path   string
		cookie *http.Cookie
	}{
		{http.MethodGet, "/api/users/me", nil},
		{http.MethodGet, "/api/users/me", forged},
		{http.MethodPost, "/api/posts", bare},
		{http.MethodPatch, "/api/posts/1", nil},
		{http.MethodDelete, "/api/posts/1", forged},
		{http.MethodPost, "/api/comments?post_id=1", nil},
		{http.MethodDelete, "/api/comments/1?post_id=1", nil},
	}
	for _, tc := range cases {
		rec := do(t, h, tc.method, tc.path, map[string]string{"title": "T", "content": "C"}, tc.cookie)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestSignoutAlwaysSucceeds(t *testing.T) {
	h := newTestRouter(t, nil)
	rec := do(t, h, http.MethodPost, "/api/users/signout", nil, nil)
	expectStatus(t, rec, http.StatusOK)
	cookie := sessionCookie(t, rec)
	if cookie.MaxAge >= 0 || cookie.Value != "" {
		t.Fatalf("expected expired cookie, got %+v", cookie)
	}
}

func TestCommentFlow(t *testing.T) {
	h := newTestRouter(t, nil)
	alice := register(t, h, "a@x.com", "alice", "pw1")
	bob := register(t, h, "b@x.com", "bob", "pw2")

	rec := do(t, h, http.MethodPost, "/api/posts", map[string]string{"title": "T", "content": "C"}, alice)
	expectStatus(t, rec, http.StatusCreated)
	postID := jsonInt(int64(decode[map[string]any](t, rec)["id"].(float64)))

	expectStatus(t, do(t, h, http.MethodPost, "/api/comments?post_id=999", map[string]string{"content": "hi"}, bob), http.StatusNotFound)
	expectStatus(t, do(t, h, http.MethodGet, "/api/comments", nil, nil), http.StatusBadRequest)

	rec = do(t, h, http.MethodPost, "/api/comments?post_id="+postID, map[string]string{"content": "hi"}, bob)
	expectStatus(t, rec, http.StatusCreated)
	created := decode[map[string]any](t, rec)
	if created["user_name"] != "bob" || jsonInt(int64(created["post_id"].(float64))) != postID {
		t.Fatalf("unexpected comment: %v", created)
	}
	commentPath := "/api/comments/" + jsonInt(int64(created["id"].(float64))) + "?post_id=" + postID

	expectStatus(t, do(t, h, http.MethodPatch, commentPath, map[string]string{"content": "edited"}, alice), http.StatusForbidden)
	rec = do(t, h, http.MethodPatch, commentPath, map[string]string{"content": "edited"}, bob)
	expectStatus(t, rec, http.StatusOK)
	if decode[map[string]any](t, rec)["content"] != "edited" {
		t.Fatalf("comment not updated: %s", rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/api/comments?post_id="+postID, nil, nil)
	expectStatus(t, rec, http.StatusOK)
	if listed := decode[[]map[string]any](t, rec); len(listed) != 1 {
		t.Fatalf("expected one comment, got %v", listed)
	}

	expectStatus(t, do(t, h, http.MethodDelete, commentPath, nil, bob), http.StatusNoContent)
	expectStatus(t, do(t, h, http.MethodDelete, commentPath, nil, bob), http.StatusNotFound)
}

func TestListPostsRejectsBadPaging(t *testing.T) {
	h := newTestRouter(t, nil)
	expectStatus(t, do(t, h, http.MethodGet, "/api/posts?limit=ten", nil, nil), http.StatusBadRequest)
	expectStatus(t, do(t, h, http.MethodGet, "/api/posts?skip=-3&limit=500", nil, nil), http.StatusOK)
}

func TestRootHealthAndMetrics(t *testing.T) {
	h := newTestRouter(t, func(context.Context) error { return errors.New("db down") })

	rec := do(t, h, http.MethodGet, "/", nil, nil)
	expectStatus(t, rec, http.StatusOK)
	if decode[map[string]string](t, rec)["message"] != "Hello, World!" {
		t.Fatalf("unexpected root body: %s", rec.Body.String())
	}
	expectStatus(t, do(t, h, http.MethodGet, "/nope", nil, nil), http.StatusNotFound)

	rec = do(t, h, http.MethodGet, "/healthz", nil, nil)
	expectStatus(t, rec, http.StatusServiceUnavailable)
	if strings.Contains(rec.Body.String(), "db down") {
		t.Fatalf("health response leaked error detail: %s", rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/metrics", nil, nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `quill_api_http_requests_total{method="GET",route="/healthz",status="503"} 1`) {
		t.Fatalf("metrics missing healthz sample:\n%s", rec.Body.String())
	}
}

func TestPostTextRoundTripsUnchanged(t *testing.T) {
	h := newTestRouter(t, nil)
	alice := register(t, h, "a@x.com", "alice", "pw1")

	rec := do(t, h, http.MethodPost, "/api/posts", map[string]string{"title": "Tom & Jerry", "content": "if a < b && c > d"}, alice)
	expectStatus(t, rec, http.StatusCreated)
	created := decode[map[string]any](t, rec)
	if created["title"] != "Tom & Jerry" || created["content"] != "if a < b && c > d" {
		t.Fatalf("text changed: %v", created)
	}

	title := strings.Repeat("&", 200)
	rec = do(t, h, http.MethodPost, "/api/posts", map[string]string{"title": title, "content": "c"}, alice)
	expectStatus(t, rec, http.StatusCreated)
	if got := decode[map[string]any](t, rec)["title"]; got != title {
		t.Fatalf("max length title changed to %v", got)
	}
	expectStatus(t, do(t, h, http.MethodPost, "/api/posts", map[string]string{"title": title + "&", "content": "c"}, alice), http.StatusBadRequest)
}
