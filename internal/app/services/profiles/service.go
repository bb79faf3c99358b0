// Package profiles implements profile viewing and the follow/block graph.
package profiles

import (
	"context"
	"errors"

	"github.com/trapziu/forum/internal/app/domain/user"
	"github.com/trapziu/forum/internal/app/events"
	"github.com/trapziu/forum/internal/app/guard"
	"github.com/trapziu/forum/internal/app/storage"
	"github.com/trapziu/forum/pkg/logger"
)

// Relationship-state errors returned by the mutation operations.
var (
	ErrOwnProfile       = errors.New("cannot target own profile")
	ErrAlreadyFollowing = errors.New("already following")
	ErrNotFollowing     = errors.New("not following")
	ErrAlreadyBlocked   = errors.New("already blocked")
	ErrNotBlocked       = errors.New("not blocked")
	ErrBlocked          = errors.New("blocked relationship exists")
)

// Service manages profiles and the relationships between users.
type Service struct {
	users     storage.UserStore
	relations storage.RelationStore
	guard     *guard.Guard
	hub       *events.Hub
	log       *logger.Logger
}

// New constructs a profile service. The hub may be nil.
func New(users storage.UserStore, relations storage.RelationStore, g *guard.Guard, hub *events.Hub, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("profiles")
	}
	return &Service{users: users, relations: relations, guard: g, hub: hub, log: log}
}

// Fetch returns the profile of the named user as seen by the viewer. An
// empty viewer ID yields all-false relationship flags.
func (s *Service) Fetch(ctx context.Context, viewerID, username string) (user.Profile, error) {
	target, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return user.Profile{}, err
	}
	return s.profileFor(ctx, viewerID, target)
}

func (s *Service) profileFor(ctx context.Context, viewerID string, target user.User) (user.Profile, error) {
	flags, err := s.guard.Flags(ctx, viewerID, target.ID)
	if err != nil {
		return user.Profile{}, err
	}
	return target.Profile(flags.Followed, flags.Following, flags.Blocked, flags.Blocking), nil
}

// Follow makes the viewer follow the named user. Following yourself, a user
// you already follow, or a user with a block in either direction fails.
func (s *Service) Follow(ctx context.Context, viewerID, username string) (user.Profile, error) {
	target, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return user.Profile{}, err
	}
	if target.ID == viewerID {
		return user.Profile{}, ErrOwnProfile
	}

	following, err := s.relations.Following(ctx, viewerID, target.ID)
	if err != nil {
		return user.Profile{}, err
	}
	if following {
		return user.Profile{}, ErrAlreadyFollowing
	}

	for _, pair := range [][2]string{{viewerID, target.ID}, {target.ID, viewerID}} {
		blocked, err := s.relations.Blocked(ctx, pair[0], pair[1])
		if err != nil {
			return user.Profile{}, err
		}
		if blocked {
			return user.Profile{}, ErrBlocked
		}
	}

	if err := s.relations.CreateFollow(ctx, viewerID, target.ID); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return user.Profile{}, ErrAlreadyFollowing
		}
		return user.Profile{}, err
	}

	if s.hub != nil {
		s.hub.Publish(events.Event{Type: events.TypeUserFollowed, Username: target.Username})
	}
	s.log.WithField("follower_id", viewerID).
		WithField("followed_id", target.ID).
		Info("follow created")
	return s.profileFor(ctx, viewerID, target)
}

// Unfollow removes the viewer's follow of the named user.
func (s *Service) Unfollow(ctx context.Context, viewerID, username string) (user.Profile, error) {
	target, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return user.Profile{}, err
	}
	if target.ID == viewerID {
		return user.Profile{}, ErrOwnProfile
	}

	if err := s.relations.DeleteFollow(ctx, viewerID, target.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return user.Profile{}, ErrNotFollowing
		}
		return user.Profile{}, err
	}
	return s.profileFor(ctx, viewerID, target)
}

// Block makes the viewer block the named user. Any follow in either
// direction is removed.
func (s *Service) Block(ctx context.Context, viewerID, username string) (user.Profile, error) {
	target, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return user.Profile{}, err
	}
	if target.ID == viewerID {
		return user.Profile{}, ErrOwnProfile
	}

	if err := s.relations.CreateBlock(ctx, viewerID, target.ID); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return user.Profile{}, ErrAlreadyBlocked
		}
		return user.Profile{}, err
	}

	for _, pair := range [][2]string{{viewerID, target.ID}, {target.ID, viewerID}} {
		if err := s.relations.DeleteFollow(ctx, pair[0], pair[1]); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return user.Profile{}, err
		}
	}

	s.log.WithField("blocker_id", viewerID).
		WithField("blocked_id", target.ID).
		Info("block created")
	return s.profileFor(ctx, viewerID, target)
}

// Unblock removes the viewer's block of the named user.
func (s *Service) Unblock(ctx context.Context, viewerID, username string) (user.Profile, error) {
	target, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return user.Profile{}, err
	}
	if target.ID == viewerID {
		return user.Profile{}, ErrOwnProfile
	}

	if err := s.relations.DeleteBlock(ctx, viewerID, target.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return user.Profile{}, ErrNotBlocked
		}
		return user.Profile{}, err
	}
	return s.profileFor(ctx, viewerID, target)
}
