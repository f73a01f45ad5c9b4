package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"twii/internal/apperror"
)

// Comment is a comment on a post.
type Comment struct {
	ID        string    `db:"id" json:"id"`
	PostID    string    `db:"post_id" json:"postId"`
	AuthorID  string    `db:"author_id" json:"authorId"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// CommentView is a comment with its author.
type CommentView struct {
	Comment
	Author UserSummary `db:"author" json:"author"`
}

type CommentRequest struct {
	Content string `json:"content"`
}

func (r *CommentRequest) Normalize() {
	r.Content = strings.TrimSpace(r.Content)
}

func (r CommentRequest) Validate() error {
	return validationError(validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required, validation.RuneLength(1, MaxCommentLength)),
	))
}

const MaxCommentLength = 2200

var ErrCommentNotFound = apperror.New(apperror.NotFound, "Comment not found.")
