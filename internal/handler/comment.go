package handler

import (
	"net/http"

	"twii/internal/httputil"
	"twii/internal/model"
	"twii/internal/service"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// Create handles POST /posts/{id}/comments.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request, id model.Identity) {
	postID, err := pathID(r, model.ErrPostNotFound)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	var req model.CommentRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	comment, err := h.commentService.Create(r.Context(), id, postID, req)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, comment)
}

// List handles GET /posts/{id}/comments.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, model.ErrPostNotFound)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	comments, err := h.commentService.ListByPost(r.Context(), postID)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, comments)
}

// Update handles PATCH /posts/comments/{id}.
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request, id model.Identity) {
	commentID, err := pathID(r, model.ErrCommentNotFound)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	var req model.CommentRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	comment, err := h.commentService.Update(r.Context(), id, commentID, req)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, comment)
}

// Delete handles DELETE /posts/comments/{id}.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request, id model.Identity) {
	commentID, err := pathID(r, model.ErrCommentNotFound)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	if err := h.commentService.Delete(r.Context(), id, commentID); err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "Comment deleted successfully.")
}
