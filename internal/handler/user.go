package handler

import (
	"mime/multipart"
	"net/http"

	"twii/internal/httputil"
	"twii/internal/model"
	"twii/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, users)
}

// GetProfile handles GET /users/{id}.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request, viewer *model.Identity) {
	userID, err := pathID(r, model.ErrUserNotFound)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), userID, viewer)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

// Update handles PATCH /users/{id}. Accepts JSON, or multipart with
// name/username/bio fields and an optional "avatar" file.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request, id model.Identity) {
	userID, err := pathID(r, model.ErrUserNotFound)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	var (
		req    model.UpdateUserRequest
		avatar *model.ImageUpload
		file   multipart.File
	)

	if isMultipart(r) {
		if err := parseUploadForm(w, r); err != nil {
			httputil.WriteAppError(w, r, err)
			return
		}
		req.Name = formString(r, "name")
		req.Username = formString(r, "username")
		req.Bio = formString(r, "bio")

		avatar, file, err = imagePart(r, "avatar")
		if err != nil {
			httputil.WriteAppError(w, r, err)
			return
		}
		defer closeFile(file)
	} else if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	user, err := h.userService.Update(r.Context(), id, userID, req, avatar)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

// RemoveAvatar handles DELETE /users/{id}/avatar.
func (h *UserHandler) RemoveAvatar(w http.ResponseWriter, r *http.Request, id model.Identity) {
	userID, err := pathID(r, model.ErrUserNotFound)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	user, err := h.userService.RemoveAvatar(r.Context(), id, userID)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request, id model.Identity) {
	userID, err := pathID(r, model.ErrUserNotFound)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	if err := h.userService.Delete(r.Context(), id, userID); err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "Account deleted successfully.")
}
