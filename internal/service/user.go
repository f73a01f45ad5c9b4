package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"twii/internal/apperror"
	"twii/internal/model"
	"twii/internal/repository"
)

// UserService handles profile reads, edits and account removal.
type UserService struct {
	users   repository.UserRepository
	posts   repository.PostRepository
	follows repository.FollowRepository
	images  ImageStore
	cleaner *ImageCleaner
	logger  zerolog.Logger
}

func NewUserService(
	users repository.UserRepository,
	posts repository.PostRepository,
	follows repository.FollowRepository,
	images ImageStore,
	cleaner *ImageCleaner,
) *UserService {
	return &UserService{
		users:   users,
		posts:   posts,
		follows: follows,
		images:  images,
		cleaner: cleaner,
		logger:  log.With().Str("component", "user_service").Logger(),
	}
}

func (s *UserService) List(ctx context.Context) ([]model.UserSummary, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to list users")
	}
	return users, nil
}

// GetProfile returns the public profile with counts. For an authenticated
// viewer it also reports whether they follow the user; a failed follow check
// degrades to false instead of failing the request.
func (s *UserService) GetProfile(ctx context.Context, userID string, viewer *model.Identity) (*model.UserProfile, error) {
	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to load user")
	}

	if viewer == nil {
		return profile, nil
	}
	if viewer.ID == userID {
		profile.IsMe = true
		return profile, nil
	}

	following, err := s.follows.Exists(ctx, viewer.ID, userID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("follow check failed")
		return profile, nil
	}
	profile.IsFollowing = following
	return profile, nil
}

// Update edits the caller's own profile. A new avatar replaces the old one,
// which is then cleaned up.
func (s *UserService) Update(ctx context.Context, id model.Identity, userID string, req model.UpdateUserRequest, avatar *model.ImageUpload) (*model.UserSummary, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to load user")
	}
	if err := Authorize(user.ID, id.ID, "profile"); err != nil {
		return nil, err
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	update := model.UserUpdate{
		Name:     req.Name,
		Username: req.Username,
		Bio:      req.Bio,
	}

	if avatar != nil {
		uploaded, err := s.images.UploadAvatar(ctx, *avatar)
		if err != nil {
			return nil, apperror.Wrap(err, "Failed to upload avatar")
		}
		update.AvatarURL = &uploaded.URL
		update.AvatarKey = &uploaded.Key
	}

	updated, err := s.users.Update(ctx, userID, update)
	if err != nil {
		if update.AvatarKey != nil {
			s.cleaner.Cleanup(ctx, "avatar_update_failed", *update.AvatarKey)
		}
		return nil, apperror.Wrap(err, "Failed to update user")
	}

	if avatar != nil {
		s.cleaner.Cleanup(ctx, "avatar_replaced", derefString(user.AvatarKey))
	}

	s.logger.Info().Str("user_id", userID).Bool("avatar", avatar != nil).Msg("profile updated")
	summary := updated.Summary()
	return &summary, nil
}

// RemoveAvatar clears the caller's avatar.
func (s *UserService) RemoveAvatar(ctx context.Context, id model.Identity, userID string) (*model.UserSummary, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to load user")
	}
	if err := Authorize(user.ID, id.ID, "profile"); err != nil {
		return nil, err
	}

	if user.AvatarURL != nil || user.AvatarKey != nil {
		if err := s.users.ClearAvatar(ctx, userID); err != nil {
			return nil, apperror.Wrap(err, "Failed to remove avatar")
		}
		s.cleaner.Cleanup(ctx, "avatar_removed", derefString(user.AvatarKey))
	}

	user.AvatarURL = nil
	user.AvatarKey = nil
	summary := user.Summary()
	return &summary, nil
}

// Delete removes the caller's account. Posts, comments, likes and follows go
// with it in the store; stored images are cleaned up afterwards.
func (s *UserService) Delete(ctx context.Context, id model.Identity, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return apperror.Wrap(err, "Failed to load user")
	}
	if err := Authorize(user.ID, id.ID, "account"); err != nil {
		return err
	}

	keys, err := s.posts.ImageKeysByAuthor(ctx, userID)
	if err != nil {
		return apperror.Wrap(err, "Failed to delete user")
	}
	keys = append(keys, derefString(user.AvatarKey))

	if err := s.users.Delete(ctx, userID); err != nil {
		return apperror.Wrap(err, "Failed to delete user")
	}
	s.cleaner.Cleanup(ctx, "account_deleted", keys...)

	s.logger.Info().Str("user_id", userID).Int("images", len(keys)).Msg("account deleted")
	return nil
}
