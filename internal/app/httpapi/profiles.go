package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/trapziu/forum/internal/app/domain/user"
	"github.com/trapziu/forum/internal/middleware"
)

type profileOp func(r *http.Request, viewerID, username string) (user.Profile, error)

func (h *Handler) profileEndpoint(w http.ResponseWriter, r *http.Request, op profileOp) {
	viewerID := middleware.UserID(r.Context())
	username := mux.Vars(r)["username"]

	profile, err := op(r, viewerID, username)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profileBody{Profile: renderProfile(profile)})
}

func (h *Handler) handleFetchProfile(w http.ResponseWriter, r *http.Request) {
	h.profileEndpoint(w, r, func(r *http.Request, viewerID, username string) (user.Profile, error) {
		return h.app.Profiles.Fetch(r.Context(), viewerID, username)
	})
}

func (h *Handler) handleFollow(w http.ResponseWriter, r *http.Request) {
	h.profileEndpoint(w, r, func(r *http.Request, viewerID, username string) (user.Profile, error) {
		return h.app.Profiles.Follow(r.Context(), viewerID, username)
	})
}

func (h *Handler) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	h.profileEndpoint(w, r, func(r *http.Request, viewerID, username string) (user.Profile, error) {
		return h.app.Profiles.Unfollow(r.Context(), viewerID, username)
	})
}

func (h *Handler) handleBlock(w http.ResponseWriter, r *http.Request) {
	h.profileEndpoint(w, r, func(r *http.Request, viewerID, username string) (user.Profile, error) {
		return h.app.Profiles.Block(r.Context(), viewerID, username)
	})
}

func (h *Handler) handleUnblock(w http.ResponseWriter, r *http.Request) {
	h.profileEndpoint(w, r, func(r *http.Request, viewerID, username string) (user.Profile, error) {
		return h.app.Profiles.Unblock(r.Context(), viewerID, username)
	})
}
