// Package middleware provides the HTTP middleware for the forum API.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/trapziu/forum/internal/auth"
	"github.com/trapziu/forum/internal/sessions"
	"github.com/trapziu/forum/pkg/logger"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserID returns the authenticated user ID from the context, or "" for an
// anonymous request.
func UserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// WithUserID returns a context carrying the authenticated user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Authenticator validates bearer tokens against the issuer and the session
// store.
type Authenticator struct {
	tokens   *auth.TokenIssuer
	sessions sessions.Store
	log      *logger.Logger
}

// NewAuthenticator creates an authenticator.
func NewAuthenticator(tokens *auth.TokenIssuer, store sessions.Store, log *logger.Logger) *Authenticator {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	return &Authenticator{tokens: tokens, sessions: store, log: log}
}

// Require rejects requests without a valid session with 401.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := a.authenticate(r)
		if err != nil {
			a.log.WithError(err).WithField("path", r.URL.Path).Debug("authentication failed")
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// Optional attaches the user ID when a valid session is presented and lets
// anonymous requests through.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, err := a.authenticate(r); err == nil {
			r = r.WithContext(WithUserID(r.Context(), userID))
		}
		next.ServeHTTP(w, r)
	})
}

var errNoToken = &authError{"missing bearer token"}
var errSessionMismatch = &authError{"session does not match token"}

type authError struct{ msg string }

func (e *authError) Error() string { return e.msg }

func (a *Authenticator) authenticate(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errNoToken
	}
	token := parts[1]

	userID, err := a.tokens.Validate(token)
	if err != nil {
		return "", err
	}

	sessionUser, err := a.sessions.Get(r.Context(), auth.HashToken(token))
	if err != nil {
		return "", err
	}
	if sessionUser != userID {
		return "", errSessionMismatch
	}
	return userID, nil
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
