// Package events provides a small in-process pub/sub hub used to stream
// forum activity to connected clients.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/trapziu/forum/pkg/logger"
)

// Event describes a single piece of forum activity.
type Event struct {
	Type     string    `json:"type"`
	Username string    `json:"username,omitempty"`
	PostID   string    `json:"postId,omitempty"`
	At       time.Time `json:"at"`
}

// Event types published by the services.
const (
	TypePostCreated    = "post.created"
	TypePostDeleted    = "post.deleted"
	TypePostLiked      = "post.liked"
	TypeCommentCreated = "comment.created"
	TypeUserFollowed   = "user.followed"
)

const subscriberBuffer = 16

// Hub fans events out to subscribers. Slow subscribers drop events rather
// than blocking publishers.
type Hub struct {
	mu          sync.Mutex
	subscribers map[chan Event]struct{}
	closed      bool
	log         *logger.Logger
}

// NewHub creates an empty hub.
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.NewDefault("events")
	}
	return &Hub{subscribers: make(map[chan Event]struct{}), log: log}
}

// Publish delivers the event to every current subscriber.
func (h *Hub) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for ch := range h.subscribers {
		select {
		case ch <- e:
		default:
			h.log.WithField("type", e.Type).Debug("subscriber buffer full, event dropped")
		}
	}
}

// Subscribe registers a new subscriber. The returned cancel function must be
// called when the subscriber goes away.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if _, ok := h.subscribers[ch]; ok {
				delete(h.subscribers, ch)
				close(ch)
			}
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

// Name implements the system service interface.
func (h *Hub) Name() string { return "events" }

// Start implements the system service interface.
func (h *Hub) Start(context.Context) error { return nil }

// Stop closes the hub and disconnects all subscribers.
func (h *Hub) Stop(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for ch := range h.subscribers {
		delete(h.subscribers, ch)
		close(ch)
	}
	return nil
}
