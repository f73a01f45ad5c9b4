package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"twii/internal/apperror"
	"twii/internal/model"
	"twii/internal/repository"
)

type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	users    repository.UserRepository
	logger   zerolog.Logger

	generateID func() string
}

func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	users repository.UserRepository,
) *CommentService {
	return &CommentService{
		comments:   comments,
		posts:      posts,
		users:      users,
		logger:     log.With().Str("component", "comment_service").Logger(),
		generateID: uuid.NewString,
	}
}

// Create adds a comment to a post.
func (s *CommentService) Create(ctx context.Context, id model.Identity, postID string, req model.CommentRequest) (*model.CommentView, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ID:       s.generateID(),
		PostID:   postID,
		AuthorID: id.ID,
		Content:  req.Content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperror.Wrap(err, "Failed to create comment")
	}

	s.logger.Info().Str("user_id", id.ID).Str("post_id", postID).Str("comment_id", comment.ID).Msg("comment created")
	return s.withAuthor(ctx, comment), nil
}

// ListByPost returns a post's comments, oldest first.
func (s *CommentService) ListByPost(ctx context.Context, postID string) ([]model.CommentView, error) {
	exists, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to load post")
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to load comments")
	}
	return comments, nil
}

// Update edits an owned comment.
func (s *CommentService) Update(ctx context.Context, id model.Identity, commentID string, req model.CommentRequest) (*model.CommentView, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to load comment")
	}
	if err := Authorize(comment.AuthorID, id.ID, "comments"); err != nil {
		return nil, err
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.comments.UpdateContent(ctx, commentID, req.Content)
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to update comment")
	}

	s.logger.Info().Str("user_id", id.ID).Str("comment_id", commentID).Msg("comment updated")
	return s.withAuthor(ctx, updated), nil
}

// Delete removes an owned comment.
func (s *CommentService) Delete(ctx context.Context, id model.Identity, commentID string) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return apperror.Wrap(err, "Failed to load comment")
	}
	if err := Authorize(comment.AuthorID, id.ID, "comments"); err != nil {
		return err
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return apperror.Wrap(err, "Failed to delete comment")
	}

	s.logger.Info().Str("user_id", id.ID).Str("comment_id", commentID).Msg("comment deleted")
	return nil
}

// withAuthor attaches the author card. A lookup failure leaves it empty.
func (s *CommentService) withAuthor(ctx context.Context, c *model.Comment) *model.CommentView {
	view := &model.CommentView{Comment: *c}
	author, err := s.users.GetByID(ctx, c.AuthorID)
	if err != nil {
		s.logger.Warn().Err(err).Str("comment_id", c.ID).Msg("failed to load comment author")
		return view
	}
	view.Author = author.Summary()
	return view
}
