package profiles

import (
	"context"
	"errors"
	"testing"

	"github.com/trapziu/forum/internal/app/domain/user"
	"github.com/trapziu/forum/internal/app/guard"
	"github.com/trapziu/forum/internal/app/storage/memory"
)

func newFixture(t *testing.T) (*Service, *memory.Store, user.User, user.User) {
	t.Helper()
	store := memory.New()
	svc := New(store, store, guard.New(store, store), nil, nil)
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

func TestFollowAndFetch(t *testing.T) {
	svc, _, alice, _ := newFixture(t)
	ctx := context.Background()

	profile, err := svc.Follow(ctx, alice.ID, "bob")
	if err != nil {
		t.Fatalf("follow: %v", err)
	}
	if !profile.Following {
		t.Fatalf("expected following flag to be set")
	}

	if _, err := svc.Follow(ctx, alice.ID, "bob"); !errors.Is(err, ErrAlreadyFollowing) {
		t.Fatalf("expected ErrAlreadyFollowing, got %v", err)
	}
	if _, err := svc.Follow(ctx, alice.ID, "alice"); !errors.Is(err, ErrOwnProfile) {
		t.Fatalf("expected ErrOwnProfile, got %v", err)
	}

	fetched, err := svc.Fetch(ctx, alice.ID, "bob")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !fetched.Following || fetched.Followed {
		t.Fatalf("unexpected flags %+v", fetched)
	}

	anon, err := svc.Fetch(ctx, "", "bob")
	if err != nil {
		t.Fatalf("fetch anonymous: %v", err)
	}
	if anon.Following || anon.Followed || anon.Blocked || anon.Blocking {
		t.Fatalf("expected all-false flags for anonymous viewer, got %+v", anon)
	}
}

func TestUnfollow(t *testing.T) {
	svc, _, alice, _ := newFixture(t)
	ctx := context.Background()

	if _, err := svc.Unfollow(ctx, alice.ID, "bob"); !errors.Is(err, ErrNotFollowing) {
		t.Fatalf("expected ErrNotFollowing, got %v", err)
	}

	if _, err := svc.Follow(ctx, alice.ID, "bob"); err != nil {
		t.Fatalf("follow: %v", err)
	}
	profile, err := svc.Unfollow(ctx, alice.ID, "bob")
	if err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	if profile.Following {
		t.Fatalf("expected following flag to be cleared")
	}
}

func TestFollowBlockedFails(t *testing.T) {
	svc, store, alice, bob := newFixture(t)
	ctx := context.Background()

	if err := store.CreateBlock(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("create block: %v", err)
	}
	if _, err := svc.Follow(ctx, alice.ID, "bob"); !errors.Is(err, ErrBlocked) {
		t.Fatalf("expected ErrBlocked, got %v", err)
	}
}

func TestBlockRemovesFollows(t *testing.T) {
	svc, store, alice, bob := newFixture(t)
	ctx := context.Background()

	if _, err := svc.Follow(ctx, alice.ID, "bob"); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := store.CreateFollow(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("create follow: %v", err)
	}

	profile, err := svc.Block(ctx, alice.ID, "bob")
	if err != nil {
		t.Fatalf("block: %v", err)
	}
	if !profile.Blocking {
		t.Fatalf("expected blocking flag to be set")
	}

	if following, _ := store.Following(ctx, alice.ID, bob.ID); following {
		t.Fatalf("expected follow alice->bob to be removed")
	}
	if following, _ := store.Following(ctx, bob.ID, alice.ID); following {
		t.Fatalf("expected follow bob->alice to be removed")
	}

	if _, err := svc.Block(ctx, alice.ID, "bob"); !errors.Is(err, ErrAlreadyBlocked) {
		t.Fatalf("expected ErrAlreadyBlocked, got %v", err)
	}
}

func TestUnblock(t *testing.T) {
	svc, _, alice, _ := newFixture(t)
	ctx := context.Background()

	if _, err := svc.Unblock(ctx, alice.ID, "bob"); !errors.Is(err, ErrNotBlocked) {
		t.Fatalf("expected ErrNotBlocked, got %v", err)
	}

	if _, err := svc.Block(ctx, alice.ID, "bob"); err != nil {
		t.Fatalf("block: %v", err)
	}
	profile, err := svc.Unblock(ctx, alice.ID, "bob")
	if err != nil {
		t.Fatalf("unblock: %v", err)
	}
	if profile.Blocking {
		t.Fatalf("expected blocking flag to be cleared")
	}
}
