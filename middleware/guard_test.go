package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goRevoke "github.com/MrEthical07/goRevoke"
)

type stubDirectory struct {
	users map[string]goRevoke.User
}

func (d stubDirectory) LookupByUsername(_ context.Context, username string) (*goRevoke.User, error) {
	for _, user := range d.users {
		if user.Username == username {
			out := user
			return &out, nil
		}
	}
	return nil, goRevoke.ErrUserNotFound
}

func (d stubDirectory) LookupByID(_ context.Context, id string) (*goRevoke.User, error) {
	user, ok := d.users[id]
	if !ok {
		return nil, goRevoke.ErrUserNotFound
	}
	out := user
	return &out, nil
}

func newGuardTest(t *testing.T) (*goRevoke.Engine, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	dir := stubDirectory{users: map[string]goRevoke.User{
		"u-member": {ID: "u-member", Username: "member", Active: true, Roles: []string{"member"}},
		"u-admin":  {ID: "u-admin", Username: "admin", Active: true, Roles: []string{goRevoke.RoleAdmin}},
	}}

	engine, err := goRevoke.New().
		WithConfig(goRevoke.Config{
			JWT: goRevoke.JWTConfig{
				AccessTTL:  10 * time.Minute,
				RefreshTTL: time.Hour,
				PrivateKey: []byte("guard-test-secret-0123456789"),
			},
		}).
		WithRedis(rdb).
		WithUserDirectory(dir).
		Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}

	return engine, func() {
		rdb.Close()
		mr.Close()
	}
}

func issueAccess(t *testing.T, engine *goRevoke.Engine, userID string, roles []string) string {
	t.Helper()
	pair, err := engine.Issue(context.Background(), &goRevoke.User{ID: userID, Active: true, Roles: roles})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return pair.AccessToken
}

func protectedEcho(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, ok := AuthResultFromContext(r.Context())
		if !ok {
			t.Error("guard passed a request without an auth result in context")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("X-User-ID", res.UserID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestGuardRejectsMissingOrMalformedHeader(t *testing.T) {
	engine, done := newGuardTest(t)
	defer done()

	handler := Guard(engine)(protectedEcho(t))

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not-a-jwt"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestGuardPassesVerifiedResultToHandler(t *testing.T) {
	engine, done := newGuardTest(t)
	defer done()

	token := issueAccess(t, engine, "u-member", []string{"member"})
	handler := Guard(engine)(protectedEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("X-User-ID"); got != "u-member" {
		t.Fatalf("user id = %q, want u-member", got)
	}
}

func TestGuardRejectsRevokedToken(t *testing.T) {
	engine, done := newGuardTest(t)
	defer done()

	token := issueAccess(t, engine, "u-member", []string{"member"})
	handler := Guard(engine)(protectedEcho(t))

	caller, err := engine.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if err := engine.RevokeUser(context.Background(), caller, "u-member"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	engine, done := newGuardTest(t)
	defer done()

	memberToken := issueAccess(t, engine, "u-member", []string{"member"})
	adminToken := issueAccess(t, engine, "u-admin", []string{goRevoke.RoleAdmin})
	handler := RequireAdmin(engine)(protectedEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+memberToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("member status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", rec.Code)
	}
}
