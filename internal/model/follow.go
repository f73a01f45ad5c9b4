package model

import (
	"time"

	"twii/internal/apperror"
)

type Follow struct {
	ID          string    `db:"id" json:"id"`
	FollowerID  string    `db:"follower_id" json:"followerId"`
	FollowingID string    `db:"following_id" json:"followingId"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// FollowEntry is one row of a followers/following list; FollowedAt drives the cursor.
type FollowEntry struct {
	UserSummary
	FollowedAt time.Time `db:"followed_at" json:"followedAt"`
}

type FollowListResponse struct {
	Users      []FollowEntry `json:"users"`
	NextCursor *string       `json:"nextCursor,omitempty"`
	HasMore    bool          `json:"hasMore"`
}

var (
	ErrCannotFollowSelf = apperror.New(apperror.Forbidden, "You cannot follow yourself.")
	ErrAlreadyFollowing = apperror.New(apperror.Conflict, "You are already following this user.")
	ErrNotFollowing     = apperror.New(apperror.NotFound, "You are not following this user.")
)
