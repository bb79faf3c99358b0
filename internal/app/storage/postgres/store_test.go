package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/trapziu/forum/internal/app/domain/user"
	"github.com/trapziu/forum/internal/app/storage"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestCreateUserDuplicate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO forum_users").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := store.CreateUser(context.Background(), user.User{Username: "alice", Email: "alice@example.com"})
	require.ErrorIs(t, err, storage.ErrDuplicate)
}

func TestGetUserNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, username, email, avatar, intro, created_at").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetUser(context.Background(), "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteFollowNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM forum_follows").
		WithArgs("a", "b").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteFollow(context.Background(), "a", "b")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAdjustLikeCount(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "author_id", "title", "description", "content", "like_count", "created_at", "updated_at",
	}).AddRow("p1", "u1", "title", "desc", "content", 3, now, now)

	mock.ExpectQuery("UPDATE forum_posts").
		WithArgs("p1", 1).
		WillReturnRows(rows)

	p, err := store.AdjustLikeCount(context.Background(), "p1", 1)
	require.NoError(t, err)
	require.Equal(t, 3, p.LikeCount)
}

func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, EnsureSchema(ctx, db))

	store := New(db)

	alice, err := store.CreateUser(ctx, user.User{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	require.NoError(t, store.SetPassword(ctx, alice.ID, "hash"))

	fetched, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, alice.ID, fetched.ID)

	require.NoError(t, store.DeleteUser(ctx, alice.ID))
}
