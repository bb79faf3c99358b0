package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/trapziu/forum/internal/app/domain/post"
	"github.com/trapziu/forum/internal/app/services/users"
	"github.com/trapziu/forum/internal/middleware"
)

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		User struct {
			Email    string `json:"email"`
			Username string `json:"username"`
			Password string `json:"password"`
		} `json:"user"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	u, err := h.app.Users.Register(r.Context(), users.RegisterInput{
		Username: payload.User.Username,
		Email:    payload.User.Email,
		Password: payload.User.Password,
	})
	if err != nil {
		h.serviceError(w, err)
		return
	}

	token, err := h.issueToken(r, u.ID)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userBody{User: h.renderUser(u, token)})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		User struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		} `json:"user"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	u, err := h.app.Users.Login(r.Context(), payload.User.Email, payload.User.Password)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	token, err := h.issueToken(r, u.ID)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userBody{User: h.renderUser(u, token)})
}

func (h *Handler) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	u, err := h.app.Users.Get(r.Context(), userID)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	token, err := h.issueToken(r, u.ID)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userBody{User: h.renderUser(u, token)})
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var payload struct {
		User struct {
			Email    *string `json:"email"`
			Intro    *string `json:"intro"`
			Avatar   *string `json:"avatar"`
			Username *string `json:"username"`
			Password *string `json:"password"`
		} `json:"user"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	u, err := h.app.Users.Update(r.Context(), userID, users.UpdateInput{
		Username: payload.User.Username,
		Email:    payload.User.Email,
		Password: payload.User.Password,
		Avatar:   payload.User.Avatar,
		Intro:    payload.User.Intro,
	})
	if err != nil {
		h.serviceError(w, err)
		return
	}

	token, err := h.issueToken(r, u.ID)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userBody{User: h.renderUser(u, token)})
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	if err := h.app.Users.Delete(r.Context(), userID); err != nil {
		h.serviceError(w, err)
		return
	}
	// Every session of the account is revoked, not just the one presenting
	// this request.
	if err := h.sessions.DeleteAllForUser(r.Context(), userID); err != nil {
		h.log.WithError(err).WithField("user_id", userID).Warn("failed to revoke sessions")
	}
	writeJSON(w, http.StatusOK, "User deleted")
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	entries, total, err := h.app.Users.History(r.Context(), userID, limit, offset)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	body := historyBody{
		Posts:     make([]postPayload, 0, len(entries)),
		TimeVec:   make([]time.Time, 0, len(entries)),
		PostCount: total,
	}
	for _, entry := range entries {
		payload, err := h.historyPost(r, userID, entry.Post)
		if err != nil {
			h.serviceError(w, err)
			return
		}
		body.Posts = append(body.Posts, payload)
		body.TimeVec = append(body.TimeVec, entry.ViewedAt.In(h.loc))
	}
	writeJSON(w, http.StatusOK, body)
}

// historyPost renders a history entry's post with the viewer's relationship
// flags, without recording another view.
func (h *Handler) historyPost(r *http.Request, viewerID string, p post.Post) (postPayload, error) {
	ctx := r.Context()

	author, err := h.app.Users.Get(ctx, p.AuthorID)
	if err != nil {
		return postPayload{}, err
	}
	flags, err := h.app.Guard.Flags(ctx, viewerID, author.ID)
	if err != nil {
		return postPayload{}, err
	}
	liked, err := h.app.Guard.Liked(ctx, viewerID, p.ID)
	if err != nil {
		return postPayload{}, err
	}

	return postPayload{
		PostID:      p.ID,
		Title:       p.Title,
		Description: p.Description,
		Content:     p.Content,
		CreatedAt:   p.CreatedAt.In(h.loc),
		Liked:       liked,
		LikedCount:  p.LikeCount,
		Author:      renderProfile(author.Profile(flags.Followed, flags.Following, flags.Blocked, flags.Blocking)),
	}, nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
