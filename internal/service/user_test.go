package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twii/internal/apperror"
	"twii/internal/model"
)

func TestGetProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.register(t, "ana")
	bob := f.register(t, "bob")
	f.post(t, ana, "hi", nil)
	require.NoError(t, f.follows.Follow(ctx, bob, ana.ID))

	profile, err := f.users.GetProfile(ctx, ana.ID, &bob)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.FollowerCount)
	assert.Equal(t, 0, profile.FollowingCount)
	assert.Equal(t, 1, profile.PostCount)
	assert.True(t, profile.IsFollowing)
	assert.False(t, profile.IsMe)

	self, err := f.users.GetProfile(ctx, ana.ID, &ana)
	require.NoError(t, err)
	assert.True(t, self.IsMe)
	assert.False(t, self.IsFollowing)

	anon, err := f.users.GetProfile(ctx, ana.ID, nil)
	require.NoError(t, err)
	assert.False(t, anon.IsFollowing)

	_, err = f.users.GetProfile(ctx, "missing", nil)
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.register(t, "ana")
	bob := f.register(t, "bob")

	_, err := f.users.Update(ctx, bob, ana.ID, model.UpdateUserRequest{Name: strPtr("x")}, nil)
	assert.Equal(t, apperror.Forbidden, apperror.KindOf(err))

	_, err = f.users.Update(ctx, ana, "missing", model.UpdateUserRequest{Name: strPtr("x")}, nil)
	assert.Equal(t, apperror.NotFound, apperror.KindOf(err))

	_, err = f.users.Update(ctx, ana, ana.ID, model.UpdateUserRequest{Username: strPtr("bob")}, nil)
	assert.Equal(t, apperror.Conflict, apperror.KindOf(err))

	_, err = f.users.Update(ctx, ana, ana.ID, model.UpdateUserRequest{Username: strPtr("settings")}, nil)
	assert.Equal(t, apperror.BadRequest, apperror.KindOf(err))

	updated, err := f.users.Update(ctx, ana, ana.ID, model.UpdateUserRequest{Name: strPtr("Ana Lima"), Bio: strPtr("hello")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", updated.Name)
	require.NotNil(t, updated.Bio)
	assert.Equal(t, "hello", *updated.Bio)
	assert.Equal(t, "ana", updated.Username)
}

func TestUpdateUser_AvatarReplacement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.register(t, "ana")

	first, err := f.users.Update(ctx, ana, ana.ID, model.UpdateUserRequest{}, testImage())
	require.NoError(t, err)
	require.NotNil(t, first.AvatarURL)
	assert.Empty(t, f.images.Deleted())

	_, err = f.users.Update(ctx, ana, ana.ID, model.UpdateUserRequest{}, testImage())
	require.NoError(t, err)
	assert.Equal(t, []string{"avatars/img1"}, f.images.Deleted())
}

func TestRemoveAvatar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.register(t, "ana")
	bob := f.register(t, "bob")
	_, err := f.users.Update(ctx, ana, ana.ID, model.UpdateUserRequest{}, testImage())
	require.NoError(t, err)

	_, err = f.users.RemoveAvatar(ctx, bob, ana.ID)
	assert.Equal(t, apperror.Forbidden, apperror.KindOf(err))

	summary, err := f.users.RemoveAvatar(ctx, ana, ana.ID)
	require.NoError(t, err)
	assert.Nil(t, summary.AvatarURL)
	assert.Equal(t, []string{"avatars/img1"}, f.images.Deleted())

	stored, err := f.store.Users().GetByID(ctx, ana.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AvatarURL)
	assert.Nil(t, stored.AvatarKey)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.register(t, "ana")
	bob := f.register(t, "bob")
	f.post(t, ana, "with image", testImage())
	f.post(t, ana, "no image", nil)

	err := f.users.Delete(ctx, bob, ana.ID)
	assert.Equal(t, apperror.Forbidden, apperror.KindOf(err))

	require.NoError(t, f.users.Delete(ctx, ana, ana.ID))
	assert.Equal(t, []string{"posts/img1"}, f.images.Deleted())

	_, err = f.users.GetProfile(ctx, ana.ID, nil)
	assert.ErrorIs(t, err, model.ErrUserNotFound)

	list, err := f.posts.List(ctx, nil, nil, "", 0)
	require.NoError(t, err)
	assert.Empty(t, list.Posts)
}

func TestFollowRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.register(t, "ana")
	bob := f.register(t, "bob")

	err := f.follows.Follow(ctx, ana, ana.ID)
	assert.Equal(t, apperror.Forbidden, apperror.KindOf(err))

	err = f.follows.Follow(ctx, ana, "missing")
	assert.ErrorIs(t, err, model.ErrUserNotFound)

	require.NoError(t, f.follows.Follow(ctx, ana, bob.ID))
	err = f.follows.Follow(ctx, ana, bob.ID)
	assert.Equal(t, apperror.Conflict, apperror.KindOf(err))

	followers, err := f.follows.Followers(ctx, bob.ID, "", 0)
	require.NoError(t, err)
	require.Len(t, followers.Users, 1)
	assert.Equal(t, "ana", followers.Users[0].Username)

	following, err := f.follows.Following(ctx, ana.ID, "", 0)
	require.NoError(t, err)
	require.Len(t, following.Users, 1)
	assert.Equal(t, "bob", following.Users[0].Username)

	require.NoError(t, f.follows.Unfollow(ctx, ana, bob.ID))
	err = f.follows.Unfollow(ctx, ana, bob.ID)
	assert.Equal(t, apperror.NotFound, apperror.KindOf(err))

	_, err = f.follows.Followers(ctx, "missing", "", 0)
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}
