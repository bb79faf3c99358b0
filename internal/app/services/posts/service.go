// Package posts implements the post, like and comment operations.
package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/trapziu/forum/internal/app/domain/post"
	"github.com/trapziu/forum/internal/app/domain/relation"
	"github.com/trapziu/forum/internal/app/domain/user"
	"github.com/trapziu/forum/internal/app/events"
	"github.com/trapziu/forum/internal/app/guard"
	"github.com/trapziu/forum/internal/app/storage"
	"github.com/trapziu/forum/pkg/logger"
)

// State errors returned by the like and feed operations.
var (
	ErrAlreadyLiked  = errors.New("already liked")
	ErrNotLiked      = errors.New("not liked")
	ErrLoginRequired = errors.New("login required")
	ErrInvalidInput  = errors.New("invalid input")
)

// DefaultListLimit applies when a listing request gives no limit.
const DefaultListLimit = 20

// Service manages posts, likes and comments.
type Service struct {
	users     storage.UserStore
	relations storage.RelationStore
	posts     storage.PostStore
	likes     storage.LikeStore
	comments  storage.CommentStore
	history   storage.HistoryStore
	guard     *guard.Guard
	hub       *events.Hub
	log       *logger.Logger
}

// New constructs a post service. The hub may be nil.
func New(users storage.UserStore, relations storage.RelationStore, posts storage.PostStore, likes storage.LikeStore, comments storage.CommentStore, history storage.HistoryStore, g *guard.Guard, hub *events.Hub, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("posts")
	}
	return &Service{
		users:     users,
		relations: relations,
		posts:     posts,
		likes:     likes,
		comments:  comments,
		history:   history,
		guard:     g,
		hub:       hub,
		log:       log,
	}
}

// View is a post together with its author profile and whether the viewer
// liked it.
type View struct {
	Post   post.Post
	Author user.Profile
	Liked  bool
}

// CommentView is a comment together with its author profile.
type CommentView struct {
	Comment post.Comment
	Author  user.Profile
}

func (s *Service) view(ctx context.Context, viewerID string, p post.Post) (View, error) {
	author, err := s.users.GetUser(ctx, p.AuthorID)
	if err != nil {
		return View{}, err
	}
	flags, err := s.guard.Flags(ctx, viewerID, author.ID)
	if err != nil {
		return View{}, err
	}

	liked := false
	if viewerID != "" {
		if liked, err = s.guard.Liked(ctx, viewerID, p.ID); err != nil {
			return View{}, err
		}
	}

	return View{
		Post:   p,
		Author: author.Profile(flags.Followed, flags.Following, flags.Blocked, flags.Blocking),
		Liked:  liked,
	}, nil
}

// ListInput narrows a feed request. Author and LikedBy are usernames.
type ListInput struct {
	ViewerID string
	Author   string
	LikedBy  string
	Followed bool
	Limit    int
	Offset   int
}

// List returns a page of posts plus the total match count. Filtering on an
// unknown username yields an empty feed rather than an error. The followed
// filter requires an authenticated viewer.
func (s *Service) List(ctx context.Context, in ListInput) ([]View, int, error) {
	filter := storage.PostFilter{Limit: in.Limit, Offset: in.Offset}
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}

	if in.Author != "" {
		author, err := s.users.GetUserByUsername(ctx, in.Author)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, 0, nil
			}
			return nil, 0, err
		}
		filter.AuthorID = author.ID
	}
	if in.LikedBy != "" {
		liker, err := s.users.GetUserByUsername(ctx, in.LikedBy)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, 0, nil
			}
			return nil, 0, err
		}
		filter.LikedByID = liker.ID
	}
	if in.Followed {
		if in.ViewerID == "" {
			return nil, 0, ErrLoginRequired
		}
		followed, err := s.relations.ListFollowing(ctx, in.ViewerID)
		if err != nil {
			return nil, 0, err
		}
		filter.FilterFollowed = true
		filter.FollowedIDs = followed
	}

	page, total, err := s.posts.ListPosts(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	views := make([]View, 0, len(page))
	for _, p := range page {
		v, err := s.view(ctx, in.ViewerID, p)
		if err != nil {
			// A post whose author record is gone must not poison the feed.
			if errors.Is(err, storage.ErrNotFound) {
				s.log.WithField("post_id", p.ID).Warn("skipping post with missing author")
				continue
			}
			return nil, 0, err
		}
		views = append(views, v)
	}
	return views, total, nil
}

// Get returns a single post. An authenticated viewer's visit is recorded in
// their viewing history.
func (s *Service) Get(ctx context.Context, viewerID, postID string) (View, error) {
	p, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		return View{}, err
	}

	if viewerID != "" {
		entry := relation.HistoryEntry{UserID: viewerID, PostID: p.ID}
		if err := s.history.RecordView(ctx, entry); err != nil {
			s.log.WithError(err).WithField("post_id", p.ID).Warn("failed to record view")
		}
	}
	return s.view(ctx, viewerID, p)
}

// CreateInput carries the fields of a new post.
type CreateInput struct {
	Title       string
	Description string
	Content     string
}

// Create publishes a post by the author. The author account must still
// exist.
func (s *Service) Create(ctx context.Context, authorID string, in CreateInput) (View, error) {
	if strings.TrimSpace(in.Title) == "" {
		return View{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if _, err := s.users.GetUser(ctx, authorID); err != nil {
		return View{}, err
	}

	created, err := s.posts.CreatePost(ctx, post.Post{
		AuthorID:    authorID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Content:     in.Content,
	})
	if err != nil {
		return View{}, err
	}

	if s.hub != nil {
		s.hub.Publish(events.Event{Type: events.TypePostCreated, PostID: created.ID})
	}
	s.log.WithField("post_id", created.ID).
		WithField("author_id", authorID).
		Info("post created")
	return s.view(ctx, authorID, created)
}

// UpdateInput carries the optional fields of a post update. Nil fields are
// left unchanged.
type UpdateInput struct {
	Title       *string
	Description *string
	Content     *string
}

// Update edits a post. Only the author may edit it.
func (s *Service) Update(ctx context.Context, actorID, postID string, in UpdateInput) (View, error) {
	p, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		return View{}, err
	}
	if err := s.guard.RequireAuthor(actorID, p); err != nil {
		return View{}, err
	}

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return View{}, fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
		}
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Content != nil {
		p.Content = *in.Content
	}

	updated, err := s.posts.UpdatePost(ctx, p)
	if err != nil {
		return View{}, err
	}
	return s.view(ctx, actorID, updated)
}

// Delete removes a post together with its likes and comments. Only the
// author may delete it.
func (s *Service) Delete(ctx context.Context, actorID, postID string) error {
	p, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.guard.RequireAuthor(actorID, p); err != nil {
		return err
	}

	if err := s.likes.DeleteLikesForPost(ctx, p.ID); err != nil {
		return err
	}
	if err := s.comments.DeleteCommentsForPost(ctx, p.ID); err != nil {
		return err
	}
	if err := s.posts.DeletePost(ctx, p.ID); err != nil {
		return err
	}

	if s.hub != nil {
		s.hub.Publish(events.Event{Type: events.TypePostDeleted, PostID: p.ID})
	}
	s.log.WithField("post_id", p.ID).
		WithField("author_id", actorID).
		Info("post deleted")
	return nil
}

// Like adds the actor's like to a post. The post author must not have
// blocked the actor, and liking twice fails.
func (s *Service) Like(ctx context.Context, actorID, postID string) (View, error) {
	p, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		return View{}, err
	}
	if err := s.guard.CanInteract(ctx, actorID, p.AuthorID); err != nil {
		return View{}, err
	}

	if err := s.likes.CreateLike(ctx, actorID, p.ID); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return View{}, ErrAlreadyLiked
		}
		return View{}, err
	}
	updated, err := s.posts.AdjustLikeCount(ctx, p.ID, 1)
	if err != nil {
		return View{}, err
	}

	if s.hub != nil {
		s.hub.Publish(events.Event{Type: events.TypePostLiked, PostID: p.ID})
	}
	return s.view(ctx, actorID, updated)
}

// Unlike removes the actor's like from a post. Unliking a post the actor
// never liked fails.
func (s *Service) Unlike(ctx context.Context, actorID, postID string) (View, error) {
	p, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		return View{}, err
	}
	if err := s.guard.CanInteract(ctx, actorID, p.AuthorID); err != nil {
		return View{}, err
	}

	if err := s.likes.DeleteLike(ctx, actorID, p.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return View{}, ErrNotLiked
		}
		return View{}, err
	}
	updated, err := s.posts.AdjustLikeCount(ctx, p.ID, -1)
	if err != nil {
		return View{}, err
	}
	return s.view(ctx, actorID, updated)
}

// Comments lists the comments of a post, oldest first.
func (s *Service) Comments(ctx context.Context, viewerID, postID string) ([]CommentView, error) {
	if _, err := s.posts.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	list, err := s.comments.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}

	views := make([]CommentView, 0, len(list))
	for _, c := range list {
		author, err := s.users.GetUser(ctx, c.AuthorID)
		if err != nil {
			return nil, err
		}
		flags, err := s.guard.Flags(ctx, viewerID, author.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, CommentView{
			Comment: c,
			Author:  author.Profile(flags.Followed, flags.Following, flags.Blocked, flags.Blocking),
		})
	}
	return views, nil
}

// Comment adds the actor's comment to a post. The post author must not have
// blocked the actor.
func (s *Service) Comment(ctx context.Context, actorID, postID, content string) (CommentView, error) {
	if strings.TrimSpace(content) == "" {
		return CommentView{}, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}

	p, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		return CommentView{}, err
	}
	if err := s.guard.CanInteract(ctx, actorID, p.AuthorID); err != nil {
		return CommentView{}, err
	}

	created, err := s.comments.CreateComment(ctx, post.Comment{
		PostID:   p.ID,
		AuthorID: actorID,
		Content:  content,
	})
	if err != nil {
		return CommentView{}, err
	}

	if s.hub != nil {
		s.hub.Publish(events.Event{Type: events.TypeCommentCreated, PostID: p.ID})
	}

	author, err := s.users.GetUser(ctx, actorID)
	if err != nil {
		return CommentView{}, err
	}
	return CommentView{Comment: created, Author: author.Profile(false, false, false, false)}, nil
}

// DeleteComment removes a comment. Only the comment author may delete it.
func (s *Service) DeleteComment(ctx context.Context, actorID, commentID string) error {
	c, err := s.comments.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if err := s.guard.RequireCommentAuthor(actorID, c); err != nil {
		return err
	}
	return s.comments.DeleteComment(ctx, c.ID)
}
