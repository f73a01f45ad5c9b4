package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"twii/internal/model"
)

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, username, email, password, email_verified, email_verify_token,
		       email_verify_expiry, bio, avatar_url, avatar_key, created_at, updated_at`

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (id, name, username, email, password, email_verified,
		                   email_verify_token, email_verify_expiry, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		u.ID,
		u.Name,
		u.Username,
		u.Email,
		u.Password,
		u.EmailVerified,
		u.EmailVerifyToken,
		u.EmailVerifyExpiry,
	)

	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return model.ErrUserIdentityConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (r *userRepository) getOne(ctx context.Context, where string, arg interface{}) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	var u model.User
	err := r.db.GetContext(ctx, &u, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `email = $1`, email)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, `username = $1`, username)
}

func (r *userRepository) GetByVerifyToken(ctx context.Context, token string) (*model.User, error) {
	return r.getOne(ctx, `email_verify_token = $1`, token)
}

func (r *userRepository) MarkEmailVerified(ctx context.Context, id, token string) error {
	query := `
		UPDATE users
		SET email_verified = TRUE, email_verify_token = NULL, email_verify_expiry = NULL, updated_at = NOW()
		WHERE id = $1 AND email_verify_token = $2
	`
	result, err := r.db.ExecContext(ctx, query, id, token)
	if err != nil {
		return fmt.Errorf("verify email: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrInvalidVerifyToken
	}
	return nil
}

func (r *userRepository) SetVerifyToken(ctx context.Context, id, token string, expiry time.Time) error {
	query := `
		UPDATE users
		SET email_verify_token = $2, email_verify_expiry = $3, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, token, expiry)
	if err != nil {
		return fmt.Errorf("set verify token: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]model.UserSummary, error) {
	query := `
		SELECT id, name, username, bio, avatar_url, created_at
		FROM users
		ORDER BY created_at DESC
	`

	users := []model.UserSummary{}
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) GetProfile(ctx context.Context, id string) (*model.UserProfile, error) {
	query := `
		SELECT u.id, u.name, u.username, u.bio, u.avatar_url, u.created_at,
		       (SELECT COUNT(*) FROM follows f WHERE f.following_id = u.id) AS follower_count,
		       (SELECT COUNT(*) FROM follows f WHERE f.follower_id = u.id) AS following_count,
		       (SELECT COUNT(*) FROM posts p WHERE p.author_id = u.id) AS post_count
		FROM users u
		WHERE u.id = $1
	`

	var p model.UserProfile
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// Update writes only the non-nil fields of the update.
func (r *userRepository) Update(ctx context.Context, id string, update model.UserUpdate) (*model.User, error) {
	sets := []string{}
	args := []interface{}{id}

	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("name", update.Name)
	add("username", update.Username)
	add("bio", update.Bio)
	add("avatar_url", update.AvatarURL)
	add("avatar_key", update.AvatarKey)

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	sets = append(sets, "updated_at = NOW()")

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + userColumns

	var u model.User
	err := r.db.GetContext(ctx, &u, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return nil, model.ErrUserIdentityConflict
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &u, nil
}

func (r *userRepository) ClearAvatar(ctx context.Context, id string) error {
	query := `UPDATE users SET avatar_url = NULL, avatar_key = NULL, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("clear avatar: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// Delete removes the user; posts, comments, likes and follows cascade.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrUserNotFound
	}
	return nil
}
