package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"twii/internal/model"
)

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, followerID, followingID string) error {
	query := `
		INSERT INTO follows (id, follower_id, following_id, created_at)
		VALUES ($1, $2, $3, NOW())
	`
	_, err := r.db.ExecContext(ctx, query, uuid.NewString(), followerID, followingID)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return model.ErrAlreadyFollowing
		case isCheckViolation(err):
			return model.ErrCannotFollowSelf
		case isForeignKeyViolation(err):
			return model.ErrUserNotFound
		}
		return fmt.Errorf("create follow: %w", err)
	}
	return nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID string) error {
	query := `DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`
	result, err := r.db.ExecContext(ctx, query, followerID, followingID)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotFollowing
	}

	return nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, followerID, followingID); err != nil {
		return false, fmt.Errorf("check follow existence: %w", err)
	}
	return exists, nil
}

// GetFollowers lists users following userID, most recent follow first.
func (r *followRepository) GetFollowers(ctx context.Context, userID string, cursor *model.Cursor, limit int) ([]model.FollowEntry, *model.Cursor, error) {
	return r.page(ctx, "f.following_id", "f.follower_id", userID, cursor, limit)
}

// GetFollowing lists users that userID follows, most recent follow first.
func (r *followRepository) GetFollowing(ctx context.Context, userID string, cursor *model.Cursor, limit int) ([]model.FollowEntry, *model.Cursor, error) {
	return r.page(ctx, "f.follower_id", "f.following_id", userID, cursor, limit)
}

// page runs the keyset query shared by both directions. The cursor is the
// (follow.created_at, user.id) of the last row of the previous page.
func (r *followRepository) page(ctx context.Context, matchCol, joinCol, userID string, cursor *model.Cursor, limit int) ([]model.FollowEntry, *model.Cursor, error) {
	limit = model.ClampLimit(limit)

	var query string
	var args []interface{}

	if cursor == nil {
		query = fmt.Sprintf(`
			SELECT u.id, u.name, u.username, u.bio, u.avatar_url, u.created_at, f.created_at AS followed_at
			FROM follows f
			JOIN users u ON u.id = %s
			WHERE %s = $1
			ORDER BY f.created_at DESC, u.id DESC
			LIMIT $2
		`, joinCol, matchCol)
		args = []interface{}{userID, limit + 1}
	} else {
		query = fmt.Sprintf(`
			SELECT u.id, u.name, u.username, u.bio, u.avatar_url, u.created_at, f.created_at AS followed_at
			FROM follows f
			JOIN users u ON u.id = %s
			WHERE %s = $1 AND (f.created_at, u.id) < ($2, $3::uuid)
			ORDER BY f.created_at DESC, u.id DESC
			LIMIT $4
		`, joinCol, matchCol)
		args = []interface{}{userID, cursor.CreatedAt, cursor.ID, limit + 1}
	}

	entries := []model.FollowEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, nil, fmt.Errorf("list follows: %w", err)
	}

	var next *model.Cursor
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		next = model.NewCursor(last.ID, last.FollowedAt)
	}
	return entries, next, nil
}
