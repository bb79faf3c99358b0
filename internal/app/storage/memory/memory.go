// Package memory provides an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is primarily intended for
// tests and local development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/trapziu/forum/internal/app/domain/post"
	"github.com/trapziu/forum/internal/app/domain/relation"
	"github.com/trapziu/forum/internal/app/domain/user"
	"github.com/trapziu/forum/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces.
type Store struct {
	mu              sync.RWMutex
	nextID          int64
	users           map[string]user.User
	usersByEmail    map[string]string
	usersByUsername map[string]string
	passwords       map[string]string
	follows         map[string]relation.Follow
	blocks          map[string]relation.Block
	posts           map[string]post.Post
	likes           map[string]relation.Like
	comments        map[string]post.Comment
	history         map[string][]relation.HistoryEntry
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.RelationStore = (*Store)(nil)
var _ storage.PostStore = (*Store)(nil)
var _ storage.LikeStore = (*Store)(nil)
var _ storage.CommentStore = (*Store)(nil)
var _ storage.HistoryStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:          1,
		users:           make(map[string]user.User),
		usersByEmail:    make(map[string]string),
		usersByUsername: make(map[string]string),
		passwords:       make(map[string]string),
		follows:         make(map[string]relation.Follow),
		blocks:          make(map[string]relation.Block),
		posts:           make(map[string]post.Post),
		likes:           make(map[string]relation.Like),
		comments:        make(map[string]post.Comment),
		history:         make(map[string][]relation.HistoryEntry),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

func pairKey(a, b string) string {
	return a + "|" + b
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[strings.ToLower(u.Email)]; exists {
		return user.User{}, storage.ErrDuplicate
	}
	if _, exists := s.usersByUsername[u.Username]; exists {
		return user.User{}, storage.ErrDuplicate
	}

	if u.ID == "" {
		u.ID = s.nextIDLocked()
	} else if _, exists := s.users[u.ID]; exists {
		return user.User{}, storage.ErrDuplicate
	}
	u.CreatedAt = time.Now().UTC()

	s.users[u.ID] = u
	s.usersByEmail[strings.ToLower(u.Email)] = u.ID
	s.usersByUsername[u.Username] = u.ID
	return u, nil
}

func (s *Store) UpdateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.users[u.ID]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}

	if u.Email != original.Email {
		if owner, exists := s.usersByEmail[strings.ToLower(u.Email)]; exists && owner != u.ID {
			return user.User{}, storage.ErrDuplicate
		}
		delete(s.usersByEmail, strings.ToLower(original.Email))
		s.usersByEmail[strings.ToLower(u.Email)] = u.ID
	}
	if u.Username != original.Username {
		if owner, exists := s.usersByUsername[u.Username]; exists && owner != u.ID {
			return user.User{}, storage.ErrDuplicate
		}
		delete(s.usersByUsername, original.Username)
		s.usersByUsername[u.Username] = u.ID
	}

	u.CreatedAt = original.CreatedAt
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[strings.ToLower(email)]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByUsername[username]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}

	delete(s.users, id)
	delete(s.usersByEmail, strings.ToLower(u.Email))
	delete(s.usersByUsername, u.Username)
	delete(s.passwords, id)
	return nil
}

func (s *Store) SetPassword(_ context.Context, userID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return storage.ErrNotFound
	}
	s.passwords[userID] = hash
	return nil
}

func (s *Store) GetPassword(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hash, ok := s.passwords[userID]
	if !ok {
		return "", storage.ErrNotFound
	}
	return hash, nil
}

// RelationStore implementation ------------------------------------------------

func (s *Store) CreateFollow(_ context.Context, followerID, followedID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(followerID, followedID)
	if _, exists := s.follows[key]; exists {
		return storage.ErrDuplicate
	}
	s.follows[key] = relation.Follow{
		FollowerID: followerID,
		FollowedID: followedID,
		CreatedAt:  time.Now().UTC(),
	}
	return nil
}

func (s *Store) DeleteFollow(_ context.Context, followerID, followedID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(followerID, followedID)
	if _, exists := s.follows[key]; !exists {
		return storage.ErrNotFound
	}
	delete(s.follows, key)
	return nil
}

func (s *Store) Following(_ context.Context, followerID, followedID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.follows[pairKey(followerID, followedID)]
	return exists, nil
}

func (s *Store) ListFollowing(_ context.Context, followerID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for _, f := range s.follows {
		if f.FollowerID == followerID {
			ids = append(ids, f.FollowedID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) DeleteFollowsFor(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, f := range s.follows {
		if f.FollowerID == userID || f.FollowedID == userID {
			delete(s.follows, key)
		}
	}
	return nil
}

func (s *Store) CreateBlock(_ context.Context, blockerID, blockedID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(blockerID, blockedID)
	if _, exists := s.blocks[key]; exists {
		return storage.ErrDuplicate
	}
	s.blocks[key] = relation.Block{
		BlockerID: blockerID,
		BlockedID: blockedID,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (s *Store) DeleteBlock(_ context.Context, blockerID, blockedID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(blockerID, blockedID)
	if _, exists := s.blocks[key]; !exists {
		return storage.ErrNotFound
	}
	delete(s.blocks, key)
	return nil
}

func (s *Store) Blocked(_ context.Context, blockerID, blockedID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.blocks[pairKey(blockerID, blockedID)]
	return exists, nil
}

func (s *Store) DeleteBlocksFor(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, b := range s.blocks {
		if b.BlockerID == userID || b.BlockedID == userID {
			delete(s.blocks, key)
		}
	}
	return nil
}

// PostStore implementation ----------------------------------------------------

func (s *Store) CreatePost(_ context.Context, p post.Post) (post.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = s.nextIDLocked()
	} else if _, exists := s.posts[p.ID]; exists {
		return post.Post{}, storage.ErrDuplicate
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.LikeCount = 0

	s.posts[p.ID] = p
	return p, nil
}

func (s *Store) UpdatePost(_ context.Context, p post.Post) (post.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.posts[p.ID]
	if !ok {
		return post.Post{}, storage.ErrNotFound
	}

	p.AuthorID = original.AuthorID
	p.LikeCount = original.LikeCount
	p.CreatedAt = original.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	s.posts[p.ID] = p
	return p, nil
}

func (s *Store) GetPost(_ context.Context, id string) (post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return post.Post{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) ListPosts(_ context.Context, filter storage.PostFilter) ([]post.Post, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	followed := make(map[string]bool, len(filter.FollowedIDs))
	for _, id := range filter.FollowedIDs {
		followed[id] = true
	}

	var matched []post.Post
	for _, p := range s.posts {
		if filter.AuthorID != "" && p.AuthorID != filter.AuthorID {
			continue
		}
		if filter.FilterFollowed && !followed[p.AuthorID] {
			continue
		}
		if filter.LikedByID != "" {
			if _, liked := s.likes[pairKey(filter.LikedByID, p.ID)]; !liked {
				continue
			}
		}
		matched = append(matched, p)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (s *Store) AdjustLikeCount(_ context.Context, id string, delta int) (post.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return post.Post{}, storage.ErrNotFound
	}

	p.LikeCount += delta
	if p.LikeCount < 0 {
		p.LikeCount = 0
	}
	s.posts[id] = p
	return p, nil
}

func (s *Store) DeletePost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *Store) DeletePostsByAuthor(_ context.Context, authorID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted []string
	for id, p := range s.posts {
		if p.AuthorID == authorID {
			delete(s.posts, id)
			deleted = append(deleted, id)
		}
	}
	sort.Strings(deleted)
	return deleted, nil
}

// LikeStore implementation ----------------------------------------------------

func (s *Store) CreateLike(_ context.Context, userID, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(userID, postID)
	if _, exists := s.likes[key]; exists {
		return storage.ErrDuplicate
	}
	s.likes[key] = relation.Like{
		UserID:    userID,
		PostID:    postID,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (s *Store) DeleteLike(_ context.Context, userID, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(userID, postID)
	if _, exists := s.likes[key]; !exists {
		return storage.ErrNotFound
	}
	delete(s.likes, key)
	return nil
}

func (s *Store) Liked(_ context.Context, userID, postID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.likes[pairKey(userID, postID)]
	return exists, nil
}

func (s *Store) DeleteLikesFor(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, l := range s.likes {
		if l.UserID == userID {
			delete(s.likes, key)
		}
	}
	return nil
}

func (s *Store) DeleteLikesForPost(_ context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, l := range s.likes {
		if l.PostID == postID {
			delete(s.likes, key)
		}
	}
	return nil
}

// CommentStore implementation -------------------------------------------------

func (s *Store) CreateComment(_ context.Context, c post.Comment) (post.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = s.nextIDLocked()
	} else if _, exists := s.comments[c.ID]; exists {
		return post.Comment{}, storage.ErrDuplicate
	}
	c.CreatedAt = time.Now().UTC()

	s.comments[c.ID] = c
	return c, nil
}

func (s *Store) GetComment(_ context.Context, id string) (post.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return post.Comment{}, storage.ErrNotFound
	}
	return c, nil
}

func (s *Store) ListComments(_ context.Context, postID string) ([]post.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []post.Comment
	for _, c := range s.comments {
		if c.PostID == postID {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) DeleteComment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

func (s *Store) DeleteCommentsByAuthor(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, c := range s.comments {
		if c.AuthorID == userID {
			delete(s.comments, id)
		}
	}
	return nil
}

func (s *Store) DeleteCommentsForPost(_ context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, c := range s.comments {
		if c.PostID == postID {
			delete(s.comments, id)
		}
	}
	return nil
}

// HistoryStore implementation -------------------------------------------------

func (s *Store) RecordView(_ context.Context, entry relation.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ViewedAt.IsZero() {
		entry.ViewedAt = time.Now().UTC()
	}

	entries := s.history[entry.UserID]
	for i, existing := range entries {
		if existing.PostID == entry.PostID {
			entries = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	s.history[entry.UserID] = append(entries, entry)
	return nil
}

func (s *Store) ListHistory(_ context.Context, userID string, limit, offset int) ([]relation.HistoryEntry, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := append([]relation.HistoryEntry(nil), s.history[userID]...)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ViewedAt.After(entries[j].ViewedAt)
	})

	total := len(entries)
	if offset > 0 {
		if offset >= len(entries) {
			entries = nil
		} else {
			entries = entries[offset:]
		}
	}
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, total, nil
}

func (s *Store) DeleteHistoryFor(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.history, userID)
	return nil
}
