package posts

import (
	"context"
	"errors"
	"testing"

	"github.com/trapziu/forum/internal/app/domain/post"
	"github.com/trapziu/forum/internal/app/domain/user"
	"github.com/trapziu/forum/internal/app/guard"
	"github.com/trapziu/forum/internal/app/storage"
	"github.com/trapziu/forum/internal/app/storage/memory"
)

func newFixture(t *testing.T) (*Service, *memory.Store, user.User, user.User) {
	t.Helper()
	store := memory.New()
	svc := New(store, store, store, store, store, store, guard.New(store, store), nil, nil)
	ctx := context.Background()

	alice, err := store.CreateUser(ctx, user.User{Username: "alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	bob, err := store.CreateUser(ctx, user.User{Username: "bob", Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}
	return svc, store, alice, bob
}

func TestCreateUpdateDelete(t *testing.T) {
	svc, _, alice, bob := newFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, alice.ID, CreateInput{Title: "hello", Content: "world"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Author.Username != "alice" {
		t.Fatalf("expected author alice, got %s", created.Author.Username)
	}

	if _, err := svc.Create(ctx, alice.ID, CreateInput{Title: "  "}); err == nil {
		t.Fatalf("expected empty title to fail")
	}

	title := "edited"
	if _, err := svc.Update(ctx, bob.ID, created.Post.ID, UpdateInput{Title: &title}); !errors.Is(err, guard.ErrNotAuthor) {
		t.Fatalf("expected ErrNotAuthor, got %v", err)
	}
	updated, err := svc.Update(ctx, alice.ID, created.Post.ID, UpdateInput{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Post.Title != "edited" || updated.Post.Content != "world" {
		t.Fatalf("unexpected post %+v", updated.Post)
	}

	if err := svc.Delete(ctx, bob.ID, created.Post.ID); !errors.Is(err, guard.ErrNotAuthor) {
		t.Fatalf("expected ErrNotAuthor, got %v", err)
	}
	if err := svc.Delete(ctx, alice.ID, created.Post.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, "", created.Post.ID); err == nil {
		t.Fatalf("expected deleted post to be gone")
	}
}

func TestCreateRejectsMissingAuthor(t *testing.T) {
	svc, _, _, _ := newFixture(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "ghost", CreateInput{Title: "hello"}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing author, got %v", err)
	}
}

func TestListSkipsPostsWithMissingAuthor(t *testing.T) {
	svc, store, alice, _ := newFixture(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, alice.ID, CreateInput{Title: "kept"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	// A post whose author record is gone, e.g. left behind by a partial
	// account deletion.
	if _, err := store.CreatePost(ctx, post.Post{AuthorID: "ghost", Title: "orphan"}); err != nil {
		t.Fatalf("create orphan: %v", err)
	}

	views, _, err := svc.List(ctx, ListInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 || views[0].Post.Title != "kept" {
		t.Fatalf("expected orphan post to be skipped, got %+v", views)
	}
}

func TestLikeUnlike(t *testing.T) {
	svc, _, alice, bob := newFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, alice.ID, CreateInput{Title: "hello"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	liked, err := svc.Like(ctx, bob.ID, created.Post.ID)
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if !liked.Liked || liked.Post.LikeCount != 1 {
		t.Fatalf("unexpected like state %+v", liked)
	}

	if _, err := svc.Like(ctx, bob.ID, created.Post.ID); !errors.Is(err, ErrAlreadyLiked) {
		t.Fatalf("expected ErrAlreadyLiked, got %v", err)
	}

	unliked, err := svc.Unlike(ctx, bob.ID, created.Post.ID)
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if unliked.Liked || unliked.Post.LikeCount != 0 {
		t.Fatalf("unexpected unlike state %+v", unliked)
	}
	if _, err := svc.Unlike(ctx, bob.ID, created.Post.ID); !errors.Is(err, ErrNotLiked) {
		t.Fatalf("expected ErrNotLiked, got %v", err)
	}
}

func TestLikeBlockedByAuthor(t *testing.T) {
	svc, store, alice, bob := newFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, alice.ID, CreateInput{Title: "hello"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.CreateBlock(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("create block: %v", err)
	}

	if _, err := svc.Like(ctx, bob.ID, created.Post.ID); !errors.Is(err, guard.ErrBlockedByAuthor) {
		t.Fatalf("expected ErrBlockedByAuthor, got %v", err)
	}
	if _, err := svc.Comment(ctx, bob.ID, created.Post.ID, "hi"); !errors.Is(err, guard.ErrBlockedByAuthor) {
		t.Fatalf("expected ErrBlockedByAuthor, got %v", err)
	}
}

func TestComments(t *testing.T) {
	svc, _, alice, bob := newFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, alice.ID, CreateInput{Title: "hello"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	comment, err := svc.Comment(ctx, bob.ID, created.Post.ID, "first")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if comment.Author.Username != "bob" {
		t.Fatalf("expected author bob, got %s", comment.Author.Username)
	}

	list, err := svc.Comments(ctx, "", created.Post.ID)
	if err != nil {
		t.Fatalf("comments: %v", err)
	}
	if len(list) != 1 || list[0].Comment.Content != "first" {
		t.Fatalf("unexpected comments %+v", list)
	}

	if err := svc.DeleteComment(ctx, alice.ID, comment.Comment.ID); !errors.Is(err, guard.ErrNotAuthor) {
		t.Fatalf("expected ErrNotAuthor, got %v", err)
	}
	if err := svc.DeleteComment(ctx, bob.ID, comment.Comment.ID); err != nil {
		t.Fatalf("delete comment: %v", err)
	}

	list, err = svc.Comments(ctx, "", created.Post.ID)
	if err != nil {
		t.Fatalf("comments: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no comments, got %d", len(list))
	}
}

func TestListFilters(t *testing.T) {
	svc, store, alice, bob := newFixture(t)
	ctx := context.Background()

	p1, err := svc.Create(ctx, alice.ID, CreateInput{Title: "a1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, bob.ID, CreateInput{Title: "b1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Like(ctx, bob.ID, p1.Post.ID); err != nil {
		t.Fatalf("like: %v", err)
	}

	byAuthor, total, err := svc.List(ctx, ListInput{Author: "alice"})
	if err != nil {
		t.Fatalf("list by author: %v", err)
	}
	if total != 1 || len(byAuthor) != 1 || byAuthor[0].Post.ID != p1.Post.ID {
		t.Fatalf("unexpected author feed %+v", byAuthor)
	}

	missing, total, err := svc.List(ctx, ListInput{Author: "nobody"})
	if err != nil {
		t.Fatalf("list missing author: %v", err)
	}
	if total != 0 || len(missing) != 0 {
		t.Fatalf("expected empty feed for unknown author")
	}

	liked, total, err := svc.List(ctx, ListInput{LikedBy: "bob"})
	if err != nil {
		t.Fatalf("list liked: %v", err)
	}
	if total != 1 || len(liked) != 1 || liked[0].Post.ID != p1.Post.ID {
		t.Fatalf("unexpected liked feed %+v", liked)
	}

	if _, _, err := svc.List(ctx, ListInput{Followed: true}); !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("expected ErrLoginRequired, got %v", err)
	}

	if err := store.CreateFollow(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("create follow: %v", err)
	}
	feed, total, err := svc.List(ctx, ListInput{ViewerID: bob.ID, Followed: true})
	if err != nil {
		t.Fatalf("list followed: %v", err)
	}
	if total != 1 || len(feed) != 1 || feed[0].Post.ID != p1.Post.ID {
		t.Fatalf("unexpected followed feed %+v", feed)
	}
}

func TestGetRecordsHistory(t *testing.T) {
	svc, store, alice, bob := newFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, alice.ID, CreateInput{Title: "hello"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(ctx, bob.ID, created.Post.ID); err != nil {
		t.Fatalf("get: %v", err)
	}
	entries, total, err := store.ListHistory(ctx, bob.ID, 10, 0)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if total != 1 || len(entries) != 1 || entries[0].PostID != created.Post.ID {
		t.Fatalf("expected view to be recorded, got %+v", entries)
	}

	// Anonymous views leave no trace.
	if _, err := svc.Get(ctx, "", created.Post.ID); err != nil {
		t.Fatalf("get anonymous: %v", err)
	}
	if _, total, _ := store.ListHistory(ctx, "", 10, 0); total != 0 {
		t.Fatalf("expected no history for anonymous viewer")
	}
}
