package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/trapziu/forum/internal/app/services/posts"
	"github.com/trapziu/forum/internal/middleware"
)

func (h *Handler) handleListPosts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	views, total, err := h.app.Posts.List(r.Context(), posts.ListInput{
		ViewerID: middleware.UserID(r.Context()),
		Author:   query.Get("author"),
		LikedBy:  query.Get("likedBy"),
		Followed: query.Get("following") == "true",
		Limit:    queryInt(r, "limit", 0),
		Offset:   queryInt(r, "offset", 0),
	})
	if err != nil {
		h.serviceError(w, err)
		return
	}

	body := postsBody{Posts: make([]postPayload, 0, len(views)), PostCount: total}
	for _, v := range views {
		body.Posts = append(body.Posts, h.renderPost(v))
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Post struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Content     string `json:"content"`
		} `json:"post"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	view, err := h.app.Posts.Create(r.Context(), middleware.UserID(r.Context()), posts.CreateInput{
		Title:       payload.Post.Title,
		Description: payload.Post.Description,
		Content:     payload.Post.Content,
	})
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, postBody{Post: h.renderPost(view)})
}

func (h *Handler) handleFetchPost(w http.ResponseWriter, r *http.Request) {
	view, err := h.app.Posts.Get(r.Context(), middleware.UserID(r.Context()), mux.Vars(r)["post_id"])
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, postBody{Post: h.renderPost(view)})
}

func (h *Handler) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Post struct {
			Title       *string `json:"title"`
			Description *string `json:"description"`
			Content     *string `json:"content"`
		} `json:"post"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	view, err := h.app.Posts.Update(r.Context(), middleware.UserID(r.Context()), mux.Vars(r)["post_id"], posts.UpdateInput{
		Title:       payload.Post.Title,
		Description: payload.Post.Description,
		Content:     payload.Post.Content,
	})
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, postBody{Post: h.renderPost(view)})
}

func (h *Handler) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Posts.Delete(r.Context(), middleware.UserID(r.Context()), mux.Vars(r)["post_id"]); err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Post deleted")
}

func (h *Handler) handleLikePost(w http.ResponseWriter, r *http.Request) {
	view, err := h.app.Posts.Like(r.Context(), middleware.UserID(r.Context()), mux.Vars(r)["post_id"])
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, postBody{Post: h.renderPost(view)})
}

func (h *Handler) handleUnlikePost(w http.ResponseWriter, r *http.Request) {
	view, err := h.app.Posts.Unlike(r.Context(), middleware.UserID(r.Context()), mux.Vars(r)["post_id"])
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, postBody{Post: h.renderPost(view)})
}

func (h *Handler) handleListComments(w http.ResponseWriter, r *http.Request) {
	views, err := h.app.Posts.Comments(r.Context(), middleware.UserID(r.Context()), mux.Vars(r)["post_id"])
	if err != nil {
		h.serviceError(w, err)
		return
	}

	body := commentsBody{Comments: make([]commentPayload, 0, len(views))}
	for _, v := range views {
		body.Comments = append(body.Comments, h.renderComment(v))
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Comment struct {
			Content string `json:"content"`
		} `json:"comment"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	view, err := h.app.Posts.Comment(r.Context(), middleware.UserID(r.Context()), mux.Vars(r)["post_id"], payload.Comment.Content)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commentBody{Comment: h.renderComment(view)})
}

func (h *Handler) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Posts.DeleteComment(r.Context(), middleware.UserID(r.Context()), mux.Vars(r)["comment_id"]); err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Comment deleted")
}
