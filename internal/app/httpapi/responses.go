package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/trapziu/forum/internal/app/domain/user"
	"github.com/trapziu/forum/internal/app/services/posts"
)

// Response envelopes. Field names follow the public wire format: camelCase,
// with every body wrapped in a single-key envelope.

type userPayload struct {
	UserID    string    `json:"userId"`
	Intro     string    `json:"intro"`
	Avatar    string    `json:"avatar"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	Token     string    `json:"token,omitempty"`
}

type userBody struct {
	User userPayload `json:"user"`
}

type profilePayload struct {
	Username  string `json:"username"`
	Avatar    string `json:"avatar"`
	Intro     string `json:"intro"`
	Followed  bool   `json:"followed"`
	Following bool   `json:"following"`
	Blocked   bool   `json:"blocked"`
	Blocking  bool   `json:"blocking"`
}

type profileBody struct {
	Profile profilePayload `json:"profile"`
}

type postPayload struct {
	PostID      string         `json:"postId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Content     string         `json:"content"`
	CreatedAt   time.Time      `json:"createdAt"`
	Liked       bool           `json:"liked"`
	LikedCount  int            `json:"likedCount"`
	Author      profilePayload `json:"author"`
}

type postBody struct {
	Post postPayload `json:"post"`
}

type postsBody struct {
	Posts     []postPayload `json:"posts"`
	PostCount int           `json:"postCount"`
}

type historyBody struct {
	Posts     []postPayload `json:"posts"`
	TimeVec   []time.Time   `json:"timeVec"`
	PostCount int           `json:"postCount"`
}

type commentPayload struct {
	CommentID string         `json:"commentId"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"createdAt"`
	User      profilePayload `json:"user"`
}

type commentBody struct {
	Comment commentPayload `json:"comment"`
}

type commentsBody struct {
	Comments []commentPayload `json:"comments"`
}

func (h *Handler) renderUser(u user.User, token string) userPayload {
	return userPayload{
		UserID:    u.ID,
		Intro:     u.Intro,
		Avatar:    u.Avatar,
		Email:     u.Email,
		Username:  u.Username,
		CreatedAt: u.CreatedAt.In(h.loc),
		Token:     token,
	}
}

func renderProfile(p user.Profile) profilePayload {
	return profilePayload{
		Username:  p.Username,
		Avatar:    p.Avatar,
		Intro:     p.Intro,
		Followed:  p.Followed,
		Following: p.Following,
		Blocked:   p.Blocked,
		Blocking:  p.Blocking,
	}
}

func (h *Handler) renderPost(v posts.View) postPayload {
	return postPayload{
		PostID:      v.Post.ID,
		Title:       v.Post.Title,
		Description: v.Post.Description,
		Content:     v.Post.Content,
		CreatedAt:   v.Post.CreatedAt.In(h.loc),
		Liked:       v.Liked,
		LikedCount:  v.Post.LikeCount,
		Author:      renderProfile(v.Author),
	}
}

func (h *Handler) renderComment(v posts.CommentView) commentPayload {
	return commentPayload{
		CommentID: v.Comment.ID,
		Content:   v.Comment.Content,
		CreatedAt: v.Comment.CreatedAt.In(h.loc),
		User:      renderProfile(v.Author),
	}
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
