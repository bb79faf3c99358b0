package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/trapziu/forum/internal/auth"
	"github.com/trapziu/forum/internal/sessions"
)

func newAuthenticated(t *testing.T) (*Authenticator, string) {
	t.Helper()
	issuer := auth.NewTokenIssuer("secret", time.Hour)
	store := sessions.NewMemoryStore()

	token, err := issuer.Generate("user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := store.Save(context.Background(), auth.HashToken(token), "user-1", time.Hour); err != nil {
		t.Fatalf("save session: %v", err)
	}
	return NewAuthenticator(issuer, store, nil), token
}

func TestRequireAcceptsValidSession(t *testing.T) {
	authn, token := newAuthenticated(t)

	var got string
	handler := authn.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = UserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got != "user-1" {
		t.Fatalf("expected user-1 in context, got %q", got)
	}
}

func TestRequireRejectsMissingToken(t *testing.T) {
	authn, _ := newAuthenticated(t)

	handler := authn.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireRejectsRevokedSession(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret", time.Hour)
	store := sessions.NewMemoryStore()
	authn := NewAuthenticator(issuer, store, nil)

	token, err := issuer.Generate("user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	// Valid token, but no live session.
	handler := authn.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestOptionalAllowsAnonymous(t *testing.T) {
	authn, token := newAuthenticated(t)

	var got string
	handler := authn.Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = UserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || got != "" {
		t.Fatalf("expected anonymous pass-through, code=%d user=%q", rec.Code, got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if got != "user-1" {
		t.Fatalf("expected user-1 in context, got %q", got)
	}
}
