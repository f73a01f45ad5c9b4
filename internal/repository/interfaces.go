package repository

import (
	"context"
	"time"

	"twii/internal/model"
)

// Repositories own their own atomicity, so services never see a transaction
// and the in-memory implementations can stand in for Postgres in tests.

type UserRepository interface {
	// Create inserts the user. Duplicate email or username yields model.ErrUserIdentityConflict.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByVerifyToken(ctx context.Context, token string) (*model.User, error)
	// MarkEmailVerified sets email_verified and clears the token pair in one
	// statement, matching on both id and token so a rotated token cannot be consumed.
	MarkEmailVerified(ctx context.Context, id, token string) error
	SetVerifyToken(ctx context.Context, id, token string, expiry time.Time) error
	List(ctx context.Context) ([]model.UserSummary, error)
	GetProfile(ctx context.Context, id string) (*model.UserProfile, error)
	Update(ctx context.Context, id string, update model.UserUpdate) (*model.User, error)
	ClearAvatar(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	Exists(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id string) error
	// GetView returns the post with author, counts and the viewer's like state.
	GetView(ctx context.Context, id string, viewerID *string) (*model.PostView, error)
	// List returns a page ordered newest first plus the cursor for the next page.
	List(ctx context.Context, q model.PostQuery) ([]model.PostView, *model.Cursor, error)
	ImageKeysByAuthor(ctx context.Context, authorID string) ([]string, error)
	// Like fails with model.ErrAlreadyLiked on a duplicate pair.
	Like(ctx context.Context, userID, postID string) error
	// Unlike fails with model.ErrNotLiked when no row was removed.
	Unlike(ctx context.Context, userID, postID string) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	UpdateContent(ctx context.Context, id, content string) (*model.Comment, error)
	Delete(ctx context.Context, id string) error
	ListByPost(ctx context.Context, postID string) ([]model.CommentView, error)
}

type FollowRepository interface {
	// Create fails with model.ErrAlreadyFollowing on a duplicate pair.
	Create(ctx context.Context, followerID, followingID string) error
	// Delete fails with model.ErrNotFollowing when no row was removed.
	Delete(ctx context.Context, followerID, followingID string) error
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	GetFollowers(ctx context.Context, userID string, cursor *model.Cursor, limit int) ([]model.FollowEntry, *model.Cursor, error)
	GetFollowing(ctx context.Context, userID string, cursor *model.Cursor, limit int) ([]model.FollowEntry, *model.Cursor, error)
}
