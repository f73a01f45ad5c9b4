package handler

import (
	"net/http"

	"twii/internal/httputil"
	"twii/internal/model"
	"twii/internal/service"
)

type FeedHandler struct {
	postService *service.PostService
}

func NewFeedHandler(postService *service.PostService) *FeedHandler {
	return &FeedHandler{postService: postService}
}

// GetFeed handles GET /posts/feed?onlyFollowing=&cursor=&limit=
// onlyFollowing defaults to true.
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request, id model.Identity) {
	onlyFollowing := httputil.QueryBool(r, "onlyFollowing", true)

	resp, err := h.postService.Feed(r.Context(), id, onlyFollowing, r.URL.Query().Get("cursor"), httputil.QueryInt(r, "limit"))
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
