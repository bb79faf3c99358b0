// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/trapziu/forum/internal/app/domain/post"
	"github.com/trapziu/forum/internal/app/domain/relation"
	"github.com/trapziu/forum/internal/app/domain/user"
	"github.com/trapziu/forum/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.RelationStore = (*Store)(nil)
var _ storage.PostStore = (*Store)(nil)
var _ storage.LikeStore = (*Store)(nil)
var _ storage.CommentStore = (*Store)(nil)
var _ storage.HistoryStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// translateErr maps driver errors onto the storage sentinels.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return storage.ErrDuplicate
	}
	return err
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO forum_users (id, username, email, avatar, intro, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.Username, u.Email, u.Avatar, u.Intro, u.CreatedAt)
	if err != nil {
		return user.User{}, translateErr(err)
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u user.User) (user.User, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE forum_users
		SET username = $2, email = $3, avatar = $4, intro = $5
		WHERE id = $1
	`, u.ID, u.Username, u.Email, u.Avatar, u.Intro)
	if err != nil {
		return user.User{}, translateErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return user.User{}, storage.ErrNotFound
	}
	return s.GetUser(ctx, u.ID)
}

func (s *Store) getUser(ctx context.Context, where string, arg interface{}) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, avatar, intro, created_at
		FROM forum_users
		WHERE `+where, arg)

	var u user.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Avatar, &u.Intro, &u.CreatedAt); err != nil {
		return user.User{}, translateErr(err)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	return s.getUser(ctx, "id = $1", id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return s.getUser(ctx, "lower(email) = lower($1)", email)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return s.getUser(ctx, "username = $1", username)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM forum_users WHERE id = $1
	`, id)
	if err != nil {
		return translateErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) SetPassword(ctx context.Context, userID, hash string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO forum_passwords (user_id, hash)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET hash = EXCLUDED.hash
	`, userID, hash)
	return translateErr(err)
}

func (s *Store) GetPassword(ctx context.Context, userID string) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT hash FROM forum_passwords WHERE user_id = $1
	`, userID).Scan(&hash)
	if err != nil {
		return "", translateErr(err)
	}
	return hash, nil
}

// --- RelationStore ----------------------------------------------------------

func (s *Store) CreateFollow(ctx context.Context, followerID, followedID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO forum_follows (follower_id, followed_id, created_at)
		VALUES ($1, $2, $3)
	`, followerID, followedID, time.Now().UTC())
	return translateErr(err)
}

func (s *Store) DeleteFollow(ctx context.Context, followerID, followedID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM forum_follows WHERE follower_id = $1 AND followed_id = $2
	`, followerID, followedID)
	if err != nil {
		return translateErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) Following(ctx context.Context, followerID, followedID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM forum_follows WHERE follower_id = $1 AND followed_id = $2
		)
	`, followerID, followedID).Scan(&exists)
	if err != nil {
		return false, translateErr(err)
	}
	return exists, nil
}

func (s *Store) ListFollowing(ctx context.Context, followerID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT followed_id FROM forum_follows WHERE follower_id = $1 ORDER BY followed_id
	`, followerID)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) DeleteFollowsFor(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM forum_follows WHERE follower_id = $1 OR followed_id = $1
	`, userID)
	return translateErr(err)
}

func (s *Store) CreateBlock(ctx context.Context, blockerID, blockedID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO forum_blocks (blocker_id, blocked_id, created_at)
		VALUES ($1, $2, $3)
	`, blockerID, blockedID, time.Now().UTC())
	return translateErr(err)
}

func (s *Store) DeleteBlock(ctx context.Context, blockerID, blockedID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM forum_blocks WHERE blocker_id = $1 AND blocked_id = $2
	`, blockerID, blockedID)
	if err != nil {
		return translateErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) Blocked(ctx context.Context, blockerID, blockedID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM forum_blocks WHERE blocker_id = $1 AND blocked_id = $2
		)
	`, blockerID, blockedID).Scan(&exists)
	if err != nil {
		return false, translateErr(err)
	}
	return exists, nil
}

func (s *Store) DeleteBlocksFor(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM forum_blocks WHERE blocker_id = $1 OR blocked_id = $1
	`, userID)
	return translateErr(err)
}

// --- PostStore --------------------------------------------------------------

func (s *Store) CreatePost(ctx context.Context, p post.Post) (post.Post, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.LikeCount = 0

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO forum_posts (id, author_id, title, description, content, like_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.AuthorID, p.Title, p.Description, p.Content, p.LikeCount, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return post.Post{}, translateErr(err)
	}
	return p, nil
}

func (s *Store) UpdatePost(ctx context.Context, p post.Post) (post.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE forum_posts
		SET title = $2, description = $3, content = $4, updated_at = $5
		WHERE id = $1
		RETURNING id, author_id, title, description, content, like_count, created_at, updated_at
	`, p.ID, p.Title, p.Description, p.Content, time.Now().UTC())
	return scanPost(row)
}

func scanPost(row *sql.Row) (post.Post, error) {
	var p post.Post
	err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Description, &p.Content, &p.LikeCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return post.Post{}, translateErr(err)
	}
	return p, nil
}

func (s *Store) GetPost(ctx context.Context, id string) (post.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, author_id, title, description, content, like_count, created_at, updated_at
		FROM forum_posts
		WHERE id = $1
	`, id)
	return scanPost(row)
}

func (s *Store) ListPosts(ctx context.Context, filter storage.PostFilter) ([]post.Post, int, error) {
	var (
		clauses []string
		args    []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.AuthorID != "" {
		clauses = append(clauses, "author_id = "+arg(filter.AuthorID))
	}
	if filter.FilterFollowed {
		clauses = append(clauses, "author_id = ANY("+arg(pq.Array(filter.FollowedIDs))+")")
	}
	if filter.LikedByID != "" {
		clauses = append(clauses, `EXISTS (
			SELECT 1 FROM forum_likes
			WHERE forum_likes.post_id = forum_posts.id AND forum_likes.user_id = `+arg(filter.LikedByID)+`
		)`)
	}

	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM forum_posts `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, translateErr(err)
	}

	query := `
		SELECT id, author_id, title, description, content, like_count, created_at, updated_at
		FROM forum_posts ` + where + `
		ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, translateErr(err)
	}
	defer rows.Close()

	var result []post.Post
	for rows.Next() {
		var p post.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Description, &p.Content, &p.LikeCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, p)
	}
	return result, total, rows.Err()
}

func (s *Store) AdjustLikeCount(ctx context.Context, id string, delta int) (post.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE forum_posts
		SET like_count = GREATEST(like_count + $2, 0)
		WHERE id = $1
		RETURNING id, author_id, title, description, content, like_count, created_at, updated_at
	`, id, delta)
	return scanPost(row)
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM forum_posts WHERE id = $1
	`, id)
	if err != nil {
		return translateErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) DeletePostsByAuthor(ctx context.Context, authorID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		DELETE FROM forum_posts WHERE author_id = $1 RETURNING id
	`, authorID)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- LikeStore --------------------------------------------------------------

func (s *Store) CreateLike(ctx context.Context, userID, postID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO forum_likes (user_id, post_id, created_at)
		VALUES ($1, $2, $3)
	`, userID, postID, time.Now().UTC())
	return translateErr(err)
}

func (s *Store) DeleteLike(ctx context.Context, userID, postID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM forum_likes WHERE user_id = $1 AND post_id = $2
	`, userID, postID)
	if err != nil {
		return translateErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) Liked(ctx context.Context, userID, postID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM forum_likes WHERE user_id = $1 AND post_id = $2
		)
	`, userID, postID).Scan(&exists)
	if err != nil {
		return false, translateErr(err)
	}
	return exists, nil
}

func (s *Store) DeleteLikesFor(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM forum_likes WHERE user_id = $1
	`, userID)
	return translateErr(err)
}

func (s *Store) DeleteLikesForPost(ctx context.Context, postID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM forum_likes WHERE post_id = $1
	`, postID)
	return translateErr(err)
}

// --- CommentStore -----------------------------------------------------------

func (s *Store) CreateComment(ctx context.Context, c post.Comment) (post.Comment, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO forum_comments (id, post_id, author_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.PostID, c.AuthorID, c.Content, c.CreatedAt)
	if err != nil {
		return post.Comment{}, translateErr(err)
	}
	return c, nil
}

func (s *Store) GetComment(ctx context.Context, id string) (post.Comment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, post_id, author_id, content, created_at
		FROM forum_comments
		WHERE id = $1
	`, id)

	var c post.Comment
	if err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt); err != nil {
		return post.Comment{}, translateErr(err)
	}
	return c, nil
}

func (s *Store) ListComments(ctx context.Context, postID string) ([]post.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, post_id, author_id, content, created_at
		FROM forum_comments
		WHERE post_id = $1
		ORDER BY created_at, id
	`, postID)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var result []post.Comment
	for rows.Next() {
		var c post.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM forum_comments WHERE id = $1
	`, id)
	if err != nil {
		return translateErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteCommentsByAuthor(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM forum_comments WHERE author_id = $1
	`, userID)
	return translateErr(err)
}

func (s *Store) DeleteCommentsForPost(ctx context.Context, postID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM forum_comments WHERE post_id = $1
	`, postID)
	return translateErr(err)
}

// --- HistoryStore -----------------------------------------------------------

func (s *Store) RecordView(ctx context.Context, entry relation.HistoryEntry) error {
	if entry.ViewedAt.IsZero() {
		entry.ViewedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO forum_history (user_id, post_id, viewed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, post_id) DO UPDATE SET viewed_at = EXCLUDED.viewed_at
	`, entry.UserID, entry.PostID, entry.ViewedAt)
	return translateErr(err)
}

func (s *Store) ListHistory(ctx context.Context, userID string, limit, offset int) ([]relation.HistoryEntry, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM forum_history WHERE user_id = $1
	`, userID).Scan(&total)
	if err != nil {
		return nil, 0, translateErr(err)
	}

	query := `
		SELECT user_id, post_id, viewed_at
		FROM forum_history
		WHERE user_id = $1
		ORDER BY viewed_at DESC`
	args := []interface{}{userID}
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, translateErr(err)
	}
	defer rows.Close()

	var entries []relation.HistoryEntry
	for rows.Next() {
		var e relation.HistoryEntry
		if err := rows.Scan(&e.UserID, &e.PostID, &e.ViewedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

func (s *Store) DeleteHistoryFor(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM forum_history WHERE user_id = $1
	`, userID)
	return translateErr(err)
}
