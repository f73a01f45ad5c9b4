package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"twii/internal/apperror"
	"twii/internal/model"
	"twii/internal/repository"
)

type FollowService struct {
	follows repository.FollowRepository
	users   repository.UserRepository
	logger  zerolog.Logger
}

func NewFollowService(follows repository.FollowRepository, users repository.UserRepository) *FollowService {
	return &FollowService{
		follows: follows,
		users:   users,
		logger:  log.With().Str("component", "follow_service").Logger(),
	}
}

func (s *FollowService) Follow(ctx context.Context, id model.Identity, targetID string) error {
	if id.ID == targetID {
		return model.ErrCannotFollowSelf
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return apperror.Wrap(err, "Failed to load user")
	}

	if err := s.follows.Create(ctx, id.ID, targetID); err != nil {
		return apperror.Wrap(err, "Failed to follow user")
	}

	s.logger.Info().Str("follower_id", id.ID).Str("following_id", targetID).Msg("user followed")
	return nil
}

func (s *FollowService) Unfollow(ctx context.Context, id model.Identity, targetID string) error {
	if err := s.follows.Delete(ctx, id.ID, targetID); err != nil {
		return apperror.Wrap(err, "Failed to unfollow user")
	}

	s.logger.Info().Str("follower_id", id.ID).Str("following_id", targetID).Msg("user unfollowed")
	return nil
}

// Followers lists who follows userID, most recent first.
func (s *FollowService) Followers(ctx context.Context, userID, cursor string, limit int) (*model.FollowListResponse, error) {
	return s.list(ctx, userID, cursor, limit, s.follows.GetFollowers)
}

// Following lists whom userID follows, most recent first.
func (s *FollowService) Following(ctx context.Context, userID, cursor string, limit int) (*model.FollowListResponse, error) {
	return s.list(ctx, userID, cursor, limit, s.follows.GetFollowing)
}

type followPager func(ctx context.Context, userID string, cursor *model.Cursor, limit int) ([]model.FollowEntry, *model.Cursor, error)

func (s *FollowService) list(ctx context.Context, userID, cursor string, limit int, fetch followPager) (*model.FollowListResponse, error) {
	c, err := model.ParseCursor(cursor)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, apperror.Wrap(err, "Failed to load user")
	}

	users, next, err := fetch(ctx, userID, c, model.ClampLimit(limit))
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to list follows")
	}

	resp := &model.FollowListResponse{Users: users, HasMore: next != nil}
	if next != nil {
		n := next.String()
		resp.NextCursor = &n
	}
	return resp, nil
}
