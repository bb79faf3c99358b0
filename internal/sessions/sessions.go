// Package sessions tracks which issued tokens are still live, keyed by the
// token hash so raw tokens are never stored.
package sessions

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no live session matches the token hash.
var ErrNotFound = errors.New("session not found")

// Store persists sessions. A user may hold several sessions at once, one per
// issued token; DeleteAllForUser revokes every one of them.
type Store interface {
	Save(ctx context.Context, tokenHash, userID string, ttl time.Duration) error
	Get(ctx context.Context, tokenHash string) (string, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}
