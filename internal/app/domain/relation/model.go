// Package relation defines the social-graph and activity domain types.
package relation

import "time"

// Follow links a follower to the user they follow.
type Follow struct {
	FollowerID string
	FollowedID string
	CreatedAt  time.Time
}

// Block links a blocker to the user they block.
type Block struct {
	BlockerID string
	BlockedID string
	CreatedAt time.Time
}

// Like links a user to a post they liked.
type Like struct {
	UserID    string
	PostID    string
	CreatedAt time.Time
}

// HistoryEntry records that a user viewed a post.
type HistoryEntry struct {
	UserID   string
	PostID   string
	ViewedAt time.Time
}
