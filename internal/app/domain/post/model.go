// Package post defines the post and comment domain types.
package post

import "time"

// Post is a published forum entry.
type Post struct {
	ID          string
	AuthorID    string
	Title       string
	Description string
	Content     string
	LikeCount   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Comment is a reply attached to a post.
type Comment struct {
	ID        string
	PostID    string
	AuthorID  string
	Content   string
	CreatedAt time.Time
}
