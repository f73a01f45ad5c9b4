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

var ErrEmptyPostUpdate = apperror.New(apperror.BadRequest, "Provide new content or an image to update the post.")

type PostService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	images   ImageStore
	cleaner  *ImageCleaner
	logger   zerolog.Logger

	generateID func() string
}

func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	images ImageStore,
	cleaner *ImageCleaner,
) *PostService {
	return &PostService{
		posts:      posts,
		comments:   comments,
		images:     images,
		cleaner:    cleaner,
		logger:     log.With().Str("component", "post_service").Logger(),
		generateID: uuid.NewString,
	}
}

// Create stores a post with an optional image. The uploaded image is removed
// again if the post cannot be saved.
func (s *PostService) Create(ctx context.Context, id model.Identity, req model.CreatePostRequest, img *model.ImageUpload) (*model.PostView, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	post := &model.Post{
		ID:       s.generateID(),
		AuthorID: id.ID,
		Content:  req.Content,
	}

	if img != nil {
		uploaded, err := s.images.UploadPostImage(ctx, *img)
		if err != nil {
			return nil, apperror.Wrap(err, "Failed to upload image")
		}
		post.ImageURL = &uploaded.URL
		post.ImageKey = &uploaded.Key
	}

	if err := s.posts.Create(ctx, post); err != nil {
		s.cleaner.Cleanup(ctx, "post_create_failed", derefString(post.ImageKey))
		return nil, apperror.Wrap(err, "Failed to create post")
	}

	s.logger.Info().Str("user_id", id.ID).Str("post_id", post.ID).Bool("image", img != nil).Msg("post created")
	return s.view(ctx, post.ID, &id.ID)
}

// Get returns one post with its comment thread. viewer may be nil.
func (s *PostService) Get(ctx context.Context, postID string, viewer *model.Identity) (*model.PostDetail, error) {
	view, err := s.view(ctx, postID, viewerID(viewer))
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to load comments")
	}
	return &model.PostDetail{PostView: *view, Comments: comments}, nil
}

// List returns all posts, or one author's posts, newest first.
func (s *PostService) List(ctx context.Context, viewer *model.Identity, authorID *string, cursor string, limit int) (*model.PostListResponse, error) {
	c, err := model.ParseCursor(cursor)
	if err != nil {
		return nil, err
	}
	return s.page(ctx, model.PostQuery{
		ViewerID: viewerID(viewer),
		AuthorID: authorID,
		Cursor:   c,
		Limit:    model.ClampLimit(limit),
	})
}

// Feed returns posts for the caller. With onlyFollowing it is limited to
// authors the caller follows.
func (s *PostService) Feed(ctx context.Context, viewer model.Identity, onlyFollowing bool, cursor string, limit int) (*model.PostListResponse, error) {
	c, err := model.ParseCursor(cursor)
	if err != nil {
		return nil, err
	}
	return s.page(ctx, model.PostQuery{
		ViewerID:      &viewer.ID,
		OnlyFollowing: onlyFollowing,
		Cursor:        c,
		Limit:         model.ClampLimit(limit),
	})
}

// Update changes the content and/or replaces the image of an owned post.
func (s *PostService) Update(ctx context.Context, id model.Identity, postID string, req model.UpdatePostRequest, img *model.ImageUpload) (*model.PostView, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to load post")
	}
	if err := Authorize(post.AuthorID, id.ID, "posts"); err != nil {
		return nil, err
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Content == nil && img == nil {
		return nil, ErrEmptyPostUpdate
	}

	if req.Content != nil {
		post.Content = *req.Content
	}

	oldKey := derefString(post.ImageKey)
	if img != nil {
		uploaded, err := s.images.UploadPostImage(ctx, *img)
		if err != nil {
			return nil, apperror.Wrap(err, "Failed to upload image")
		}
		post.ImageURL = &uploaded.URL
		post.ImageKey = &uploaded.Key
	}

	if err := s.posts.Update(ctx, post); err != nil {
		if img != nil {
			s.cleaner.Cleanup(ctx, "post_update_failed", derefString(post.ImageKey))
		}
		return nil, apperror.Wrap(err, "Failed to update post")
	}

	if img != nil {
		s.cleaner.Cleanup(ctx, "post_image_replaced", oldKey)
	}

	s.logger.Info().Str("user_id", id.ID).Str("post_id", postID).Msg("post updated")
	return s.view(ctx, postID, &id.ID)
}

// Delete removes an owned post; its image is cleaned up afterwards.
func (s *PostService) Delete(ctx context.Context, id model.Identity, postID string) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return apperror.Wrap(err, "Failed to load post")
	}
	if err := Authorize(post.AuthorID, id.ID, "posts"); err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return apperror.Wrap(err, "Failed to delete post")
	}
	s.cleaner.Cleanup(ctx, "post_deleted", derefString(post.ImageKey))

	s.logger.Info().Str("user_id", id.ID).Str("post_id", postID).Msg("post deleted")
	return nil
}

// Like fails with Conflict when the caller already liked the post.
func (s *PostService) Like(ctx context.Context, id model.Identity, postID string) error {
	if err := s.posts.Like(ctx, id.ID, postID); err != nil {
		return apperror.Wrap(err, "Failed to like post")
	}
	return nil
}

// Unlike fails with NotFound when the caller had not liked the post.
func (s *PostService) Unlike(ctx context.Context, id model.Identity, postID string) error {
	if err := s.posts.Unlike(ctx, id.ID, postID); err != nil {
		return apperror.Wrap(err, "Failed to unlike post")
	}
	return nil
}

func (s *PostService) view(ctx context.Context, postID string, viewerID *string) (*model.PostView, error) {
	view, err := s.posts.GetView(ctx, postID, viewerID)
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to load post")
	}
	return view, nil
}

func (s *PostService) page(ctx context.Context, q model.PostQuery) (*model.PostListResponse, error) {
	posts, next, err := s.posts.List(ctx, q)
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to list posts")
	}

	resp := &model.PostListResponse{Posts: posts, HasMore: next != nil}
	if next != nil {
		c := next.String()
		resp.NextCursor = &c
	}
	return resp, nil
}

func viewerID(viewer *model.Identity) *string {
	if viewer == nil {
		return nil
	}
	return &viewer.ID
}
