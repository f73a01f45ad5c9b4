package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"twii/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// postViewSelect joins the author and derives counts and the viewer's like state.
// $1 is the viewer id (NULL for anonymous).
const postViewSelect = `
	SELECT p.id, p.author_id, p.content, p.image_url, p.image_key, p.created_at, p.updated_at,
	       u.id AS "author.id", u.name AS "author.name", u.username AS "author.username",
	       u.bio AS "author.bio", u.avatar_url AS "author.avatar_url", u.created_at AS "author.created_at",
	       (SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS like_count,
	       (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comment_count,
	       EXISTS(SELECT 1 FROM likes l WHERE l.post_id = p.id AND l.user_id = $1::uuid) AS is_liked_by_me
	FROM posts p
	JOIN users u ON u.id = p.author_id
`

func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	query := `
		INSERT INTO posts (id, author_id, content, image_url, image_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, p.ID, p.AuthorID, p.Content, p.ImageURL, p.ImageKey).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.ErrUserNotFound
		}
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	query := `
		SELECT id, author_id, content, image_url, image_key, created_at, updated_at
		FROM posts
		WHERE id = $1
	`
	var p model.Post
	err := r.db.GetContext(ctx, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &p, nil
}

func (r *postRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("check post existence: %w", err)
	}
	return exists, nil
}

func (r *postRepository) Update(ctx context.Context, p *model.Post) error {
	query := `
		UPDATE posts
		SET content = $2, image_url = $3, image_key = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, p.ID, p.Content, p.ImageURL, p.ImageKey).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrPostNotFound
	}
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes the post; its likes and comments cascade.
func (r *postRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

func (r *postRepository) GetView(ctx context.Context, id string, viewerID *string) (*model.PostView, error) {
	query := postViewSelect + ` WHERE p.id = $2`

	var v model.PostView
	err := r.db.GetContext(ctx, &v, query, viewerID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post view: %w", err)
	}
	return &v, nil
}

// List pages posts newest first using the compound (created_at, id) keyset.
// It fetches limit+1 rows; an extra row means there is a next page.
func (r *postRepository) List(ctx context.Context, q model.PostQuery) ([]model.PostView, *model.Cursor, error) {
	limit := model.ClampLimit(q.Limit)
	args := []interface{}{q.ViewerID}
	conds := []string{}

	if q.OnlyFollowing {
		conds = append(conds, `p.author_id IN (SELECT following_id FROM follows WHERE follower_id = $1::uuid)`)
	}
	if q.AuthorID != nil {
		args = append(args, *q.AuthorID)
		conds = append(conds, fmt.Sprintf(`p.author_id = $%d`, len(args)))
	}
	if q.Cursor != nil {
		args = append(args, q.Cursor.CreatedAt, q.Cursor.ID)
		conds = append(conds, fmt.Sprintf(`(p.created_at, p.id) < ($%d, $%d::uuid)`, len(args)-1, len(args)))
	}

	query := postViewSelect
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(` ORDER BY p.created_at DESC, p.id DESC LIMIT $%d`, len(args))

	posts := []model.PostView{}
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, nil, fmt.Errorf("list posts: %w", err)
	}

	var next *model.Cursor
	if len(posts) > limit {
		posts = posts[:limit]
		last := posts[len(posts)-1]
		next = model.NewCursor(last.ID, last.CreatedAt)
	}
	return posts, next, nil
}

func (r *postRepository) ImageKeysByAuthor(ctx context.Context, authorID string) ([]string, error) {
	keys := []string{}
	err := r.db.SelectContext(ctx, &keys,
		`SELECT image_key FROM posts WHERE author_id = $1 AND image_key IS NOT NULL`, authorID)
	if err != nil {
		return nil, fmt.Errorf("list post image keys: %w", err)
	}
	return keys, nil
}

func (r *postRepository) Like(ctx context.Context, userID, postID string) error {
	query := `INSERT INTO likes (id, user_id, post_id, created_at) VALUES ($1, $2, $3, NOW())`
	_, err := r.db.ExecContext(ctx, query, uuid.NewString(), userID, postID)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrAlreadyLiked
		}
		if isForeignKeyViolation(err) {
			return model.ErrPostNotFound
		}
		return fmt.Errorf("insert like: %w", err)
	}
	return nil
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM likes WHERE user_id = $1 AND post_id = $2`, userID, postID)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotLiked
	}
	return nil
}
