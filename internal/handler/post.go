package handler

import (
	"mime/multipart"
	"net/http"

	"twii/internal/httputil"
	"twii/internal/model"
	"twii/internal/service"
)

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// Create handles POST /posts. Accepts JSON, or multipart with "content" and an optional "image".
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request, id model.Identity) {
	var (
		req  model.CreatePostRequest
		img  *model.ImageUpload
		file multipart.File
	)

	if isMultipart(r) {
		if err := parseUploadForm(w, r); err != nil {
			httputil.WriteAppError(w, r, err)
			return
		}
		req.Content = r.FormValue("content")

		var err error
		img, file, err = imagePart(r, "image")
		if err != nil {
			httputil.WriteAppError(w, r, err)
			return
		}
		defer closeFile(file)
	} else if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	post, err := h.postService.Create(r.Context(), id, req, img)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, post)
}

// List handles GET /posts?authorId=&cursor=&limit=
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request, viewer *model.Identity) {
	var authorID *string
	if a := r.URL.Query().Get("authorId"); a != "" {
		if !isUUID(a) {
			httputil.WriteBadRequest(w, "Invalid authorId")
			return
		}
		authorID = &a
	}

	resp, err := h.postService.List(r.Context(), viewer, authorID, r.URL.Query().Get("cursor"), httputil.QueryInt(r, "limit"))
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// GetByID handles GET /posts/{id}, including the comment thread.
func (h *PostHandler) GetByID(w http.ResponseWriter, r *http.Request, viewer *model.Identity) {
	postID, err := pathID(r, model.ErrPostNotFound)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	post, err := h.postService.Get(r.Context(), postID, viewer)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, post)
}

// Update handles PATCH /posts/{id}. Accepts JSON, or multipart with "content" and/or "image".
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request, id model.Identity) {
	postID, err := pathID(r, model.ErrPostNotFound)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	var (
		req  model.UpdatePostRequest
		img  *model.ImageUpload
		file multipart.File
	)

	if isMultipart(r) {
		if err := parseUploadForm(w, r); err != nil {
			httputil.WriteAppError(w, r, err)
			return
		}
		req.Content = formString(r, "content")

		img, file, err = imagePart(r, "image")
		if err != nil {
			httputil.WriteAppError(w, r, err)
			return
		}
		defer closeFile(file)
	} else if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	post, err := h.postService.Update(r.Context(), id, postID, req, img)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, post)
}

// Delete handles DELETE /posts/{id}.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request, id model.Identity) {
	postID, err := pathID(r, model.ErrPostNotFound)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	if err := h.postService.Delete(r.Context(), id, postID); err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "Post deleted successfully.")
}

// Like handles POST /posts/{id}/like.
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request, id model.Identity) {
	postID, err := pathID(r, model.ErrPostNotFound)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	if err := h.postService.Like(r.Context(), id, postID); err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteMessage(w, http.StatusCreated, "Post liked successfully.")
}

// Unlike handles POST /posts/{id}/unlike.
func (h *PostHandler) Unlike(w http.ResponseWriter, r *http.Request, id model.Identity) {
	postID, err := pathID(r, model.ErrPostNotFound)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	if err := h.postService.Unlike(r.Context(), id, postID); err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "Post unliked successfully.")
}
