package guard

import (
	"context"
	"errors"
	"testing"

	"github.com/trapziu/forum/internal/app/domain/post"
	"github.com/trapziu/forum/internal/app/storage/memory"
)

func TestRequireAuthor(t *testing.T) {
	g := New(memory.New(), memory.New())

	p := post.Post{ID: "p1", AuthorID: "alice"}
	if err := g.RequireAuthor("alice", p); err != nil {
		t.Fatalf("expected author to pass, got %v", err)
	}
	if err := g.RequireAuthor("bob", p); !errors.Is(err, ErrNotAuthor) {
		t.Fatalf("expected ErrNotAuthor, got %v", err)
	}
}

func TestCanInteract(t *testing.T) {
	store := memory.New()
	g := New(store, store)
	ctx := context.Background()

	if err := g.CanInteract(ctx, "bob", "alice"); err != nil {
		t.Fatalf("expected interaction to be allowed, got %v", err)
	}

	if err := store.CreateBlock(ctx, "alice", "bob"); err != nil {
		t.Fatalf("create block: %v", err)
	}
	if err := g.CanInteract(ctx, "bob", "alice"); !errors.Is(err, ErrBlockedByAuthor) {
		t.Fatalf("expected ErrBlockedByAuthor, got %v", err)
	}

	// Blocking runs one way only.
	if err := g.CanInteract(ctx, "alice", "bob"); err != nil {
		t.Fatalf("expected blocker to keep access, got %v", err)
	}
	// Authors always interact with their own content.
	if err := g.CanInteract(ctx, "alice", "alice"); err != nil {
		t.Fatalf("expected self interaction to pass, got %v", err)
	}
}

func TestFlags(t *testing.T) {
	store := memory.New()
	g := New(store, store)
	ctx := context.Background()

	if err := store.CreateFollow(ctx, "viewer", "target"); err != nil {
		t.Fatalf("create follow: %v", err)
	}
	if err := store.CreateBlock(ctx, "target", "viewer"); err != nil {
		t.Fatalf("create block: %v", err)
	}

	flags, err := g.Flags(ctx, "viewer", "target")
	if err != nil {
		t.Fatalf("flags: %v", err)
	}
	if !flags.Following {
		t.Fatalf("expected viewer to be following target")
	}
	if flags.Followed {
		t.Fatalf("expected target not to follow viewer")
	}
	if !flags.Blocked {
		t.Fatalf("expected viewer to be blocked by target")
	}
	if flags.Blocking {
		t.Fatalf("expected viewer not to block target")
	}

	anon, err := g.Flags(ctx, "", "target")
	if err != nil {
		t.Fatalf("flags anonymous: %v", err)
	}
	if anon.Followed || anon.Following || anon.Blocked || anon.Blocking {
		t.Fatalf("expected all-false flags for anonymous viewer")
	}
}
