package events

import (
	"context"
	"testing"
)

func TestPublishSubscribe(t *testing.T) {
	hub := NewHub(nil)

	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Publish(Event{Type: TypePostCreated, PostID: "p1"})

	e := <-ch
	if e.Type != TypePostCreated || e.PostID != "p1" {
		t.Fatalf("unexpected event %+v", e)
	}
	if e.At.IsZero() {
		t.Fatalf("expected timestamp to be set")
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	hub := NewHub(nil)

	ch, cancel := hub.Subscribe()
	cancel()

	hub.Publish(Event{Type: TypePostDeleted})
	if _, open := <-ch; open {
		t.Fatalf("expected channel to be closed after cancel")
	}
}

func TestStopClosesSubscribers(t *testing.T) {
	hub := NewHub(nil)

	ch, cancel := hub.Subscribe()
	defer cancel()

	if err := hub.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if _, open := <-ch; open {
		t.Fatalf("expected channel to be closed after stop")
	}
	// Publishing after stop is a no-op.
	hub.Publish(Event{Type: TypePostLiked})
}
