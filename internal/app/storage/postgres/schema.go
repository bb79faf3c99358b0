package postgres

import (
	"context"
	"database/sql"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS forum_users (
		id         TEXT PRIMARY KEY,
		username   TEXT NOT NULL UNIQUE,
		email      TEXT NOT NULL UNIQUE,
		avatar     TEXT NOT NULL DEFAULT '',
		intro      TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS forum_passwords (
		user_id TEXT PRIMARY KEY REFERENCES forum_users(id) ON DELETE CASCADE,
		hash    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS forum_follows (
		follower_id TEXT NOT NULL,
		followed_id TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (follower_id, followed_id)
	)`,
	`CREATE TABLE IF NOT EXISTS forum_blocks (
		blocker_id TEXT NOT NULL,
		blocked_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (blocker_id, blocked_id)
	)`,
	`CREATE TABLE IF NOT EXISTS forum_posts (
		id          TEXT PRIMARY KEY,
		author_id   TEXT NOT NULL,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		content     TEXT NOT NULL DEFAULT '',
		like_count  INTEGER NOT NULL DEFAULT 0,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS forum_posts_author_idx ON forum_posts (author_id)`,
	`CREATE TABLE IF NOT EXISTS forum_likes (
		user_id    TEXT NOT NULL,
		post_id    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, post_id)
	)`,
	`CREATE INDEX IF NOT EXISTS forum_likes_post_idx ON forum_likes (post_id)`,
	`CREATE TABLE IF NOT EXISTS forum_comments (
		id         TEXT PRIMARY KEY,
		post_id    TEXT NOT NULL,
		author_id  TEXT NOT NULL,
		content    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS forum_comments_post_idx ON forum_comments (post_id)`,
	`CREATE TABLE IF NOT EXISTS forum_history (
		user_id   TEXT NOT NULL,
		post_id   TEXT NOT NULL,
		viewed_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, post_id)
	)`,
}

// EnsureSchema creates the forum tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
