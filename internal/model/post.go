package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"twii/internal/apperror"
)

// Post is a user's post. Counts and like state are derived per query.
type Post struct {
	ID        string    `db:"id" json:"id"`
	AuthorID  string    `db:"author_id" json:"authorId"`
	Content   string    `db:"content" json:"content"`
	ImageURL  *string   `db:"image_url" json:"imageUrl"`
	ImageKey  *string   `db:"image_key" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// PostView is a post annotated for display.
type PostView struct {
	Post
	Author       UserSummary `db:"author" json:"author"`
	LikeCount    int         `db:"like_count" json:"likeCount"`
	CommentCount int         `db:"comment_count" json:"commentCount"`
	IsLikedByMe  bool        `db:"is_liked_by_me" json:"isLikedByMe"`
}

// PostDetail is a single post with its comment thread.
type PostDetail struct {
	PostView
	Comments []CommentView `json:"comments"`
}

// PostListResponse is a page of posts.
type PostListResponse struct {
	Posts      []PostView `json:"posts"`
	NextCursor *string    `json:"nextCursor,omitempty"`
	HasMore    bool       `json:"hasMore"`
}

// PostQuery selects a page of posts. Nil ViewerID means anonymous.
type PostQuery struct {
	ViewerID      *string
	OnlyFollowing bool
	AuthorID      *string
	Cursor        *Cursor
	Limit         int
}

// Like is a (user, post) pair.
type Like struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	PostID    string    `db:"post_id" json:"postId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type CreatePostRequest struct {
	Content string `json:"content"`
}

func (r *CreatePostRequest) Normalize() {
	r.Content = strings.TrimSpace(r.Content)
}

func (r CreatePostRequest) Validate() error {
	return validationError(validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required, validation.RuneLength(1, MaxPostContentLength)),
	))
}

// UpdatePostRequest changes the content. The image is replaced via the multipart "image" part.
type UpdatePostRequest struct {
	Content *string `json:"content"`
}

func (r *UpdatePostRequest) Normalize() {
	if r.Content != nil {
		c := strings.TrimSpace(*r.Content)
		r.Content = &c
	}
}

func (r UpdatePostRequest) Validate() error {
	return validationError(validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.NilOrNotEmpty, validation.RuneLength(1, MaxPostContentLength)),
	))
}

const (
	MaxPostContentLength = 2200
	PostImageFolder      = "posts"
)

var (
	ErrPostNotFound = apperror.New(apperror.NotFound, "Post not found")
	ErrAlreadyLiked = apperror.New(apperror.Conflict, "You already liked this post.")
	ErrNotLiked     = apperror.New(apperror.NotFound, "You have not liked this post.")
)
