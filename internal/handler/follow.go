package handler

import (
	"net/http"

	"twii/internal/httputil"
	"twii/internal/model"
	"twii/internal/service"
)

type FollowHandler struct {
	followService *service.FollowService
}

func NewFollowHandler(followService *service.FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

// Follow handles POST /users/{id}/follow.
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request, id model.Identity) {
	userID, err := pathID(r, model.ErrUserNotFound)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	if err := h.followService.Follow(r.Context(), id, userID); err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteMessage(w, http.StatusCreated, "Followed successfully.")
}

// Unfollow handles POST /users/{id}/unfollow.
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request, id model.Identity) {
	userID, err := pathID(r, model.ErrUserNotFound)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	if err := h.followService.Unfollow(r.Context(), id, userID); err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "Unfollowed successfully.")
}

// GetFollowers handles GET /users/{id}/followers?cursor=&limit=
func (h *FollowHandler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, model.ErrUserNotFound)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	resp, err := h.followService.Followers(r.Context(), userID, r.URL.Query().Get("cursor"), httputil.QueryInt(r, "limit"))
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// GetFollowing handles GET /users/{id}/following?cursor=&limit=
func (h *FollowHandler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, model.ErrUserNotFound)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	resp, err := h.followService.Following(r.Context(), userID, r.URL.Query().Get("cursor"), httputil.QueryInt(r, "limit"))
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
