// Package storage defines the persistence interfaces for the forum backend.
package storage

import (
	"context"
	"errors"

	"github.com/trapziu/forum/internal/app/domain/post"
	"github.com/trapziu/forum/internal/app/domain/relation"
	"github.com/trapziu/forum/internal/app/domain/user"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a unique constraint would be violated.
var ErrDuplicate = errors.New("record already exists")

// UserStore persists user accounts and password hashes.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	UpdateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	GetUserByUsername(ctx context.Context, username string) (user.User, error)
	DeleteUser(ctx context.Context, id string) error

	SetPassword(ctx context.Context, userID, hash string) error
	GetPassword(ctx context.Context, userID string) (string, error)
}

// RelationStore persists the follow and block graphs.
type RelationStore interface {
	CreateFollow(ctx context.Context, followerID, followedID string) error
	DeleteFollow(ctx context.Context, followerID, followedID string) error
	Following(ctx context.Context, followerID, followedID string) (bool, error)
	ListFollowing(ctx context.Context, followerID string) ([]string, error)
	DeleteFollowsFor(ctx context.Context, userID string) error

	CreateBlock(ctx context.Context, blockerID, blockedID string) error
	DeleteBlock(ctx context.Context, blockerID, blockedID string) error
	Blocked(ctx context.Context, blockerID, blockedID string) (bool, error)
	DeleteBlocksFor(ctx context.Context, userID string) error
}

// PostFilter narrows a post listing. ID fields must already be resolved from
// usernames by the caller. An empty FollowedIDs slice matches nothing when
// FilterFollowed is set.
type PostFilter struct {
	AuthorID       string
	LikedByID      string
	FilterFollowed bool
	FollowedIDs    []string
	Limit          int
	Offset         int
}

// PostStore persists posts.
type PostStore interface {
	CreatePost(ctx context.Context, p post.Post) (post.Post, error)
	UpdatePost(ctx context.Context, p post.Post) (post.Post, error)
	GetPost(ctx context.Context, id string) (post.Post, error)
	ListPosts(ctx context.Context, filter PostFilter) ([]post.Post, int, error)
	AdjustLikeCount(ctx context.Context, id string, delta int) (post.Post, error)
	DeletePost(ctx context.Context, id string) error
	DeletePostsByAuthor(ctx context.Context, authorID string) ([]string, error)
}

// LikeStore persists post likes.
type LikeStore interface {
	CreateLike(ctx context.Context, userID, postID string) error
	DeleteLike(ctx context.Context, userID, postID string) error
	Liked(ctx context.Context, userID, postID string) (bool, error)
	DeleteLikesFor(ctx context.Context, userID string) error
	DeleteLikesForPost(ctx context.Context, postID string) error
}

// CommentStore persists comments.
type CommentStore interface {
	CreateComment(ctx context.Context, c post.Comment) (post.Comment, error)
	GetComment(ctx context.Context, id string) (post.Comment, error)
	ListComments(ctx context.Context, postID string) ([]post.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	DeleteCommentsByAuthor(ctx context.Context, userID string) error
	DeleteCommentsForPost(ctx context.Context, postID string) error
}

// HistoryStore persists post viewing history.
type HistoryStore interface {
	RecordView(ctx context.Context, entry relation.HistoryEntry) error
	ListHistory(ctx context.Context, userID string, limit, offset int) ([]relation.HistoryEntry, int, error)
	DeleteHistoryFor(ctx context.Context, userID string) error
}
