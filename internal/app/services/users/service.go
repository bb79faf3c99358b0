// Package users implements account registration, authentication and account
// lifecycle.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trapziu/forum/internal/app/domain/post"
	"github.com/trapziu/forum/internal/app/domain/user"
	"github.com/trapziu/forum/internal/app/storage"
	"github.com/trapziu/forum/pkg/logger"
)

// ErrInvalidCredentials is returned when the email or password does not
// match a registered account.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrInvalidInput is returned when a request field fails validation.
var ErrInvalidInput = errors.New("invalid input")

// Service manages user accounts.
type Service struct {
	users     storage.UserStore
	relations storage.RelationStore
	posts     storage.PostStore
	likes     storage.LikeStore
	comments  storage.CommentStore
	history   storage.HistoryStore
	log       *logger.Logger
}

// New constructs a user service.
func New(users storage.UserStore, relations storage.RelationStore, posts storage.PostStore, likes storage.LikeStore, comments storage.CommentStore, history storage.HistoryStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("users")
	}
	return &Service{
		users:     users,
		relations: relations,
		posts:     posts,
		likes:     likes,
		comments:  comments,
		history:   history,
		log:       log,
	}
}

// RegisterInput carries the fields of a signup request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates an account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, in RegisterInput) (user.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return user.User{}, fmt.Errorf("%w: username, email and password are required", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, err
	}

	created, err := s.users.CreateUser(ctx, user.User{Username: in.Username, Email: in.Email})
	if err != nil {
		return user.User{}, err
	}
	if err := s.users.SetPassword(ctx, created.ID, string(hash)); err != nil {
		_ = s.users.DeleteUser(ctx, created.ID)
		return user.User{}, err
	}

	s.log.WithField("user_id", created.ID).
		WithField("username", created.Username).
		Info("user registered")
	return created, nil
}

// Login verifies the credentials and returns the matching account.
func (s *Service) Login(ctx context.Context, email, password string) (user.User, error) {
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return user.User{}, err
	}

	hash, err := s.users.GetPassword(ctx, u.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return user.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Get returns the account with the given ID.
func (s *Service) Get(ctx context.Context, id string) (user.User, error) {
	return s.users.GetUser(ctx, id)
}

// UpdateInput carries the optional fields of an account update. Nil fields
// are left unchanged.
type UpdateInput struct {
	Username *string
	Email    *string
	Password *string
	Avatar   *string
	Intro    *string
}

// Update applies the non-nil fields to the account.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (user.User, error) {
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	if in.Username != nil {
		if strings.TrimSpace(*in.Username) == "" {
			return user.User{}, fmt.Errorf("%w: username must not be empty", ErrInvalidInput)
		}
		u.Username = strings.TrimSpace(*in.Username)
	}
	if in.Email != nil {
		if strings.TrimSpace(*in.Email) == "" {
			return user.User{}, fmt.Errorf("%w: email must not be empty", ErrInvalidInput)
		}
		u.Email = strings.TrimSpace(*in.Email)
	}
	if in.Avatar != nil {
		u.Avatar = *in.Avatar
	}
	if in.Intro != nil {
		u.Intro = *in.Intro
	}

	updated, err := s.users.UpdateUser(ctx, u)
	if err != nil {
		return user.User{}, err
	}

	if in.Password != nil {
		if *in.Password == "" {
			return user.User{}, fmt.Errorf("%w: password must not be empty", ErrInvalidInput)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return user.User{}, err
		}
		if err := s.users.SetPassword(ctx, id, string(hash)); err != nil {
			return user.User{}, err
		}
	}
	return updated, nil
}

// Delete removes the account and everything it owns: follows and blocks in
// both directions, its comments and likes, its viewing history, its posts
// together with their likes and comments, and finally the account itself.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.users.GetUser(ctx, id); err != nil {
		return err
	}

	if err := s.relations.DeleteFollowsFor(ctx, id); err != nil {
		return err
	}
	if err := s.relations.DeleteBlocksFor(ctx, id); err != nil {
		return err
	}
	if err := s.comments.DeleteCommentsByAuthor(ctx, id); err != nil {
		return err
	}
	if err := s.likes.DeleteLikesFor(ctx, id); err != nil {
		return err
	}
	if err := s.history.DeleteHistoryFor(ctx, id); err != nil {
		return err
	}

	postIDs, err := s.posts.DeletePostsByAuthor(ctx, id)
	if err != nil {
		return err
	}
	for _, postID := range postIDs {
		if err := s.likes.DeleteLikesForPost(ctx, postID); err != nil {
			return err
		}
		if err := s.comments.DeleteCommentsForPost(ctx, postID); err != nil {
			return err
		}
	}

	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}

	s.log.WithField("user_id", id).
		WithField("posts_removed", len(postIDs)).
		Info("user deleted")
	return nil
}

// HistoryEntryView pairs a viewed post with the time it was viewed.
type HistoryEntryView struct {
	Post     post.Post
	ViewedAt time.Time
}

// History lists the posts the user viewed, most recent first. Posts deleted
// since the view are skipped.
func (s *Service) History(ctx context.Context, userID string, limit, offset int) ([]HistoryEntryView, int, error) {
	entries, total, err := s.history.ListHistory(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	views := make([]HistoryEntryView, 0, len(entries))
	for _, entry := range entries {
		p, err := s.posts.GetPost(ctx, entry.PostID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, 0, err
		}
		views = append(views, HistoryEntryView{Post: p, ViewedAt: entry.ViewedAt})
	}
	return views, total, nil
}
