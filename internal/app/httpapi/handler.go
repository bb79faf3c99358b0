// Package httpapi exposes the forum REST API.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	app "github.com/trapziu/forum/internal/app"
	"github.com/trapziu/forum/internal/auth"
	"github.com/trapziu/forum/internal/middleware"
	"github.com/trapziu/forum/internal/sessions"
	"github.com/trapziu/forum/pkg/logger"
)

// Handler bundles the HTTP endpoints for the application services.
type Handler struct {
	app      *app.Application
	tokens   *auth.TokenIssuer
	sessions sessions.Store
	log      *logger.Logger
	loc      *time.Location
	upgrader websocket.Upgrader
}

// Config carries the handler dependencies.
type Config struct {
	App           *app.Application
	Tokens        *auth.TokenIssuer
	Sessions      sessions.Store
	Authenticator *middleware.Authenticator
	Location      *time.Location
	Log           *logger.Logger
}

// NewRouter returns the API router. Routes under /api follow the public wire
// format; /healthz and /events sit at the root.
func NewRouter(cfg Config) *mux.Router {
	log := cfg.Log
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	h := &Handler{
		app:      cfg.App,
		tokens:   cfg.Tokens,
		sessions: cfg.Sessions,
		log:      log,
		loc:      loc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	authn := cfg.Authenticator
	require := func(fn http.HandlerFunc) http.Handler { return authn.Require(fn) }
	optional := func(fn http.HandlerFunc) http.Handler { return authn.Optional(fn) }

	r := mux.NewRouter()
	r.HandleFunc("/", h.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/events", h.handleEvents).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.Handle("/users/create", http.HandlerFunc(h.handleRegister)).Methods(http.MethodPost)
	api.Handle("/users", http.HandlerFunc(h.handleLogin)).Methods(http.MethodPost)
	api.Handle("/users", require(h.handleCurrentUser)).Methods(http.MethodGet)
	api.Handle("/users", require(h.handleUpdateUser)).Methods(http.MethodPut)
	api.Handle("/users", require(h.handleDeleteUser)).Methods(http.MethodDelete)
	api.Handle("/users/history", require(h.handleHistory)).Methods(http.MethodGet)

	api.Handle("/profiles/{username}", optional(h.handleFetchProfile)).Methods(http.MethodGet)
	api.Handle("/profiles/{username}/follow", require(h.handleFollow)).Methods(http.MethodPost)
	api.Handle("/profiles/{username}/follow", require(h.handleUnfollow)).Methods(http.MethodDelete)
	api.Handle("/profiles/{username}/block", require(h.handleBlock)).Methods(http.MethodPost)
	api.Handle("/profiles/{username}/block", require(h.handleUnblock)).Methods(http.MethodDelete)

	api.Handle("/posts", optional(h.handleListPosts)).Methods(http.MethodGet)
	api.Handle("/posts", require(h.handleCreatePost)).Methods(http.MethodPost)
	api.Handle("/posts/{post_id}", optional(h.handleFetchPost)).Methods(http.MethodGet)
	api.Handle("/posts/{post_id}", require(h.handleUpdatePost)).Methods(http.MethodPut)
	api.Handle("/posts/{post_id}", require(h.handleDeletePost)).Methods(http.MethodDelete)
	api.Handle("/posts/{post_id}/like", require(h.handleLikePost)).Methods(http.MethodPost)
	api.Handle("/posts/{post_id}/like", require(h.handleUnlikePost)).Methods(http.MethodDelete)
	api.Handle("/posts/{post_id}/comments", optional(h.handleListComments)).Methods(http.MethodGet)
	api.Handle("/posts/{post_id}/comments", require(h.handleCreateComment)).Methods(http.MethodPost)
	api.Handle("/posts/{post_id}/comments/{comment_id}", require(h.handleDeleteComment)).Methods(http.MethodDelete)

	return r
}

func (h *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Hello Go!"))
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// issueToken signs a token for the user and registers the session backing it.
func (h *Handler) issueToken(r *http.Request, userID string) (string, error) {
	token, err := h.tokens.Generate(userID)
	if err != nil {
		return "", err
	}
	if err := h.sessions.Save(r.Context(), auth.HashToken(token), userID, h.tokens.TTL()); err != nil {
		return "", err
	}
	return token, nil
}
