package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/trapziu/forum/internal/app/guard"
	"github.com/trapziu/forum/internal/app/services/posts"
	"github.com/trapziu/forum/internal/app/services/profiles"
	"github.com/trapziu/forum/internal/app/services/users"
	"github.com/trapziu/forum/internal/app/storage"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", storage.ErrNotFound, http.StatusNotFound},
		{"duplicate", storage.ErrDuplicate, http.StatusConflict},
		{"bad credentials", users.ErrInvalidCredentials, http.StatusUnauthorized},
		{"login required", posts.ErrLoginRequired, http.StatusUnauthorized},
		{"blocked by author", guard.ErrBlockedByAuthor, http.StatusForbidden},
		{"not author", guard.ErrNotAuthor, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("%w: title is required", posts.ErrInvalidInput), http.StatusBadRequest},
		{"already following", profiles.ErrAlreadyFollowing, http.StatusBadRequest},
		{"own profile", profiles.ErrOwnProfile, http.StatusBadRequest},
		{"infrastructure failure", errors.New("dial tcp: connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := statusFor(tc.err); got != tc.want {
				t.Fatalf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}
