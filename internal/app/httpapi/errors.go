package httpapi

import (
	"errors"
	"net/http"

	"github.com/trapziu/forum/internal/app/guard"
	"github.com/trapziu/forum/internal/app/services/posts"
	"github.com/trapziu/forum/internal/app/services/profiles"
	"github.com/trapziu/forum/internal/app/services/users"
	"github.com/trapziu/forum/internal/app/storage"
)

// statusFor maps service errors onto HTTP status codes. Ownership,
// validation and relationship-state violations are 400, block-based denials
// 403, missing identity 401, missing records 404, unique violations 409.
// Anything unrecognized is an internal failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, users.ErrInvalidCredentials),
		errors.Is(err, posts.ErrLoginRequired):
		return http.StatusUnauthorized
	case errors.Is(err, guard.ErrBlockedByAuthor):
		return http.StatusForbidden
	case errors.Is(err, guard.ErrNotAuthor),
		errors.Is(err, users.ErrInvalidInput),
		errors.Is(err, posts.ErrInvalidInput),
		errors.Is(err, posts.ErrAlreadyLiked),
		errors.Is(err, posts.ErrNotLiked),
		errors.Is(err, profiles.ErrOwnProfile),
		errors.Is(err, profiles.ErrAlreadyFollowing),
		errors.Is(err, profiles.ErrNotFollowing),
		errors.Is(err, profiles.ErrAlreadyBlocked),
		errors.Is(err, profiles.ErrNotBlocked),
		errors.Is(err, profiles.ErrBlocked):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) serviceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).Error("request failed")
	}
	writeError(w, status, err)
}
