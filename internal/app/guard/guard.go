// Package guard enforces ownership and relationship rules between users,
// posts and comments.
package guard

import (
	"context"
	"errors"

	"github.com/trapziu/forum/internal/app/domain/post"
	"github.com/trapziu/forum/internal/app/domain/user"
	"github.com/trapziu/forum/internal/app/storage"
)

// ErrNotAuthor is returned when the actor does not own the target resource.
var ErrNotAuthor = errors.New("not the author")

// ErrBlockedByAuthor is returned when the target's author has blocked the
// actor.
var ErrBlockedByAuthor = errors.New("blocked by author")

// Guard answers authorization questions over the relation and like stores.
type Guard struct {
	relations storage.RelationStore
	likes     storage.LikeStore
}

// New creates a Guard backed by the given stores.
func New(relations storage.RelationStore, likes storage.LikeStore) *Guard {
	return &Guard{relations: relations, likes: likes}
}

// Following reports whether follower follows followed.
func (g *Guard) Following(ctx context.Context, followerID, followedID string) (bool, error) {
	return g.relations.Following(ctx, followerID, followedID)
}

// Blocked reports whether blocker blocks blocked.
func (g *Guard) Blocked(ctx context.Context, blockerID, blockedID string) (bool, error) {
	return g.relations.Blocked(ctx, blockerID, blockedID)
}

// Liked reports whether the user has liked the post.
func (g *Guard) Liked(ctx context.Context, userID, postID string) (bool, error) {
	return g.likes.Liked(ctx, userID, postID)
}

// RequireAuthor fails with ErrNotAuthor unless the actor wrote the post.
func (g *Guard) RequireAuthor(actorID string, p post.Post) error {
	if p.AuthorID != actorID {
		return ErrNotAuthor
	}
	return nil
}

// RequireCommentAuthor fails with ErrNotAuthor unless the actor wrote the
// comment.
func (g *Guard) RequireCommentAuthor(actorID string, c post.Comment) error {
	if c.AuthorID != actorID {
		return ErrNotAuthor
	}
	return nil
}

// CanInteract fails with ErrBlockedByAuthor when the author has blocked the
// actor. Authors may always interact with their own content.
func (g *Guard) CanInteract(ctx context.Context, actorID, authorID string) error {
	if actorID == authorID {
		return nil
	}
	blocked, err := g.relations.Blocked(ctx, authorID, actorID)
	if err != nil {
		return err
	}
	if blocked {
		return ErrBlockedByAuthor
	}
	return nil
}

// Flags resolves the four relationship booleans of a profile as seen by the
// viewer. A missing or anonymous viewer yields all-false flags.
func (g *Guard) Flags(ctx context.Context, viewerID, targetID string) (user.Profile, error) {
	var flags user.Profile
	if viewerID == "" || viewerID == targetID {
		return flags, nil
	}

	var err error
	if flags.Followed, err = g.relations.Following(ctx, targetID, viewerID); err != nil {
		return user.Profile{}, err
	}
	if flags.Following, err = g.relations.Following(ctx, viewerID, targetID); err != nil {
		return user.Profile{}, err
	}
	if flags.Blocked, err = g.relations.Blocked(ctx, targetID, viewerID); err != nil {
		return user.Profile{}, err
	}
	if flags.Blocking, err = g.relations.Blocked(ctx, viewerID, targetID); err != nil {
		return user.Profile{}, err
	}
	return flags, nil
}
