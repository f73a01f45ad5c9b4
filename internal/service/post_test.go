package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twii/internal/apperror"
	"twii/internal/model"
)

func TestCreatePost(t *testing.T) {
	f := newFixture(t)
	ana := f.register(t, "ana")

	p := f.post(t, ana, "  hi  ", nil)
	assert.Equal(t, "hi", p.Content)
	assert.Equal(t, ana.ID, p.AuthorID)
	assert.Equal(t, "ana", p.Author.Username)
	assert.Equal(t, 0, p.LikeCount)
	assert.Equal(t, 0, p.CommentCount)
	assert.False(t, p.IsLikedByMe)
	assert.Nil(t, p.ImageURL)

	_, err := f.posts.Create(context.Background(), ana, model.CreatePostRequest{Content: "   "}, nil)
	assert.Equal(t, apperror.BadRequest, apperror.KindOf(err))
}

func TestCreatePost_WithImage(t *testing.T) {
	f := newFixture(t)
	ana := f.register(t, "ana")

	p := f.post(t, ana, "look", testImage())
	require.NotNil(t, p.ImageURL)
	assert.Contains(t, *p.ImageURL, "posts/")

	f.images.uploadErr = model.ErrInvalidImageType
	_, err := f.posts.Create(context.Background(), ana, model.CreatePostRequest{Content: "x"}, testImage())
	assert.ErrorIs(t, err, model.ErrInvalidImageType)

	f.images.uploadErr = errors.New("r2 timeout")
	_, err = f.posts.Create(context.Background(), ana, model.CreatePostRequest{Content: "x"}, testImage())
	assert.Equal(t, apperror.Internal, apperror.KindOf(err))
}

func TestLikeUnlike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.register(t, "ana")
	bob := f.register(t, "bob")
	p := f.post(t, ana, "hi", nil)

	require.NoError(t, f.posts.Like(ctx, bob, p.ID))

	err := f.posts.Like(ctx, bob, p.ID)
	assert.ErrorIs(t, err, model.ErrAlreadyLiked)
	assert.Equal(t, apperror.Conflict, apperror.KindOf(err))

	detail, err := f.posts.Get(ctx, p.ID, &bob)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.LikeCount)
	assert.True(t, detail.IsLikedByMe)

	anon, err := f.posts.Get(ctx, p.ID, nil)
	require.NoError(t, err)
	assert.False(t, anon.IsLikedByMe)

	require.NoError(t, f.posts.Unlike(ctx, bob, p.ID))
	err = f.posts.Unlike(ctx, bob, p.ID)
	assert.Equal(t, apperror.NotFound, apperror.KindOf(err))

	err = f.posts.Like(ctx, bob, "missing")
	assert.ErrorIs(t, err, model.ErrPostNotFound)
}

func TestUpdatePost_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.register(t, "ana")
	bob := f.register(t, "bob")
	p := f.post(t, ana, "hi", nil)

	_, err := f.posts.Update(ctx, bob, p.ID, model.UpdatePostRequest{Content: strPtr("hacked")}, nil)
	assert.Equal(t, apperror.Forbidden, apperror.KindOf(err))
	assert.Equal(t, "You can only modify your own posts", apperror.Message(err))

	_, err = f.posts.Update(ctx, ana, "missing", model.UpdatePostRequest{Content: strPtr("x")}, nil)
	assert.ErrorIs(t, err, model.ErrPostNotFound)

	_, err = f.posts.Update(ctx, ana, p.ID, model.UpdatePostRequest{}, nil)
	assert.ErrorIs(t, err, ErrEmptyPostUpdate)

	updated, err := f.posts.Update(ctx, ana, p.ID, model.UpdatePostRequest{Content: strPtr("edited")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
}

func TestUpdatePost_ReplacesImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.register(t, "ana")
	p := f.post(t, ana, "hi", testImage())
	oldKey := "posts/img1"

	updated, err := f.posts.Update(ctx, ana, p.ID, model.UpdatePostRequest{}, testImage())
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/posts/img2", *updated.ImageURL)
	assert.Equal(t, "hi", updated.Content)
	assert.Equal(t, []string{oldKey}, f.images.Deleted())
}

func TestDeletePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.register(t, "ana")
	bob := f.register(t, "bob")
	p := f.post(t, ana, "hi", testImage())

	err := f.posts.Delete(ctx, bob, p.ID)
	assert.Equal(t, apperror.Forbidden, apperror.KindOf(err))

	require.NoError(t, f.posts.Delete(ctx, ana, p.ID))
	assert.Equal(t, []string{"posts/img1"}, f.images.Deleted())

	_, err = f.posts.Get(ctx, p.ID, nil)
	assert.ErrorIs(t, err, model.ErrPostNotFound)

	err = f.posts.Delete(ctx, ana, p.ID)
	assert.Equal(t, apperror.NotFound, apperror.KindOf(err))
}

func TestDeletePost_ImageCleanupFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	ana := f.register(t, "ana")
	p := f.post(t, ana, "hi", testImage())
	f.images.deleteErr = errors.New("bucket gone")

	assert.NoError(t, f.posts.Delete(context.Background(), ana, p.ID))
}

func TestFeed_OnlyFollowing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.register(t, "ana")
	bob := f.register(t, "bob")
	cat := f.register(t, "cat")

	bobPost := f.post(t, bob, "from bob", nil)
	f.post(t, cat, "from cat", nil)
	require.NoError(t, f.follows.Follow(ctx, ana, bob.ID))
	require.NoError(t, f.posts.Like(ctx, ana, bobPost.ID))

	feed, err := f.posts.Feed(ctx, ana, true, "", 0)
	require.NoError(t, err)
	require.Len(t, feed.Posts, 1)
	assert.Equal(t, bobPost.ID, feed.Posts[0].ID)
	assert.True(t, feed.Posts[0].IsLikedByMe)
	assert.Equal(t, 1, feed.Posts[0].LikeCount)
	assert.False(t, feed.HasMore)

	all, err := f.posts.Feed(ctx, ana, false, "", 0)
	require.NoError(t, err)
	assert.Len(t, all.Posts, 2)
}

func TestListPosts_Pagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.register(t, "ana")
	for _, c := range []string{"one", "two", "three"} {
		f.post(t, ana, c, nil)
	}

	page1, err := f.posts.List(ctx, nil, nil, "", 2)
	require.NoError(t, err)
	require.Len(t, page1.Posts, 2)
	assert.Equal(t, "three", page1.Posts[0].Content)
	require.True(t, page1.HasMore)
	require.NotNil(t, page1.NextCursor)

	page2, err := f.posts.List(ctx, nil, nil, *page1.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, page2.Posts, 1)
	assert.Equal(t, "one", page2.Posts[0].Content)
	assert.False(t, page2.HasMore)

	_, err = f.posts.List(ctx, nil, nil, "not-a-cursor", 2)
	assert.Equal(t, apperror.BadRequest, apperror.KindOf(err))

	byAuthor, err := f.posts.List(ctx, nil, &ana.ID, "", 0)
	require.NoError(t, err)
	assert.Len(t, byAuthor.Posts, 3)
}

func TestGetPost_IncludesComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.register(t, "ana")
	bob := f.register(t, "bob")
	p := f.post(t, ana, "hi", nil)

	_, err := f.comments.Create(ctx, bob, p.ID, model.CommentRequest{Content: "first"})
	require.NoError(t, err)
	_, err = f.comments.Create(ctx, ana, p.ID, model.CommentRequest{Content: "second"})
	require.NoError(t, err)

	detail, err := f.posts.Get(ctx, p.ID, &ana)
	require.NoError(t, err)
	assert.Equal(t, 2, detail.CommentCount)
	require.Len(t, detail.Comments, 2)
	assert.Equal(t, "first", detail.Comments[0].Content)
	assert.Equal(t, "bob", detail.Comments[0].Author.Username)
}
