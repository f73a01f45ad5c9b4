package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twii/internal/model"
)

type fakeObjects struct {
	puts    []*s3.PutObjectInput
	bodies  [][]byte
	deletes []string
	putErr  error
}

func (f *fakeObjects) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, _ := io.ReadAll(in.Body)
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func upload(data []byte, contentType string) model.ImageUpload {
	return model.ImageUpload{Data: bytes.NewReader(data), Size: int64(len(data)), ContentType: contentType, Filename: "x"}
}

func TestUploadPostImage(t *testing.T) {
	fake := &fakeObjects{}
	store := newR2Store(fake, "bucket", "https://cdn.example.com/")

	res, err := store.UploadPostImage(context.Background(), upload(pngBytes(t, 10, 10), "image/png"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.Key, "posts/"))
	assert.True(t, strings.HasSuffix(res.Key, ".png"))
	assert.Equal(t, "https://cdn.example.com/"+res.Key, res.URL)
	require.Len(t, fake.puts, 1)
	assert.Equal(t, "bucket", aws.ToString(fake.puts[0].Bucket))
	assert.Equal(t, "image/png", aws.ToString(fake.puts[0].ContentType))
}

func TestUploadPostImage_DetectsContentType(t *testing.T) {
	fake := &fakeObjects{}
	store := newR2Store(fake, "bucket", "https://cdn.example.com")

	res, err := store.UploadPostImage(context.Background(), upload(pngBytes(t, 4, 4), ""))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(res.Key, ".png"))
}

func TestUploadPostImage_Rejections(t *testing.T) {
	store := newR2Store(&fakeObjects{}, "bucket", "https://cdn.example.com")

	_, err := store.UploadPostImage(context.Background(), upload([]byte("hello"), "text/plain"))
	assert.ErrorIs(t, err, model.ErrInvalidImageType)

	big := model.ImageUpload{Data: bytes.NewReader(nil), Size: model.MaxImageSizeBytes + 1, ContentType: "image/png"}
	_, err = store.UploadPostImage(context.Background(), big)
	assert.ErrorIs(t, err, model.ErrFileTooLarge)
}

func TestUploadAvatar_ResizesToJPEG(t *testing.T) {
	fake := &fakeObjects{}
	store := newR2Store(fake, "bucket", "https://cdn.example.com")

	res, err := store.UploadAvatar(context.Background(), upload(pngBytes(t, 400, 300), "image/png"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Key, "avatars/"))
	assert.True(t, strings.HasSuffix(res.Key, ".jpg"))

	require.Len(t, fake.bodies, 1)
	img, err := imaging.Decode(bytes.NewReader(fake.bodies[0]))
	require.NoError(t, err)
	assert.Equal(t, model.AvatarWidth, img.Bounds().Dx())
	assert.Equal(t, model.AvatarHeight, img.Bounds().Dy())
	assert.Equal(t, "image/jpeg", aws.ToString(fake.puts[0].ContentType))
}

func TestUploadAvatar_PutError(t *testing.T) {
	store := newR2Store(&fakeObjects{putErr: errors.New("boom")}, "bucket", "https://cdn.example.com")
	_, err := store.UploadAvatar(context.Background(), upload(pngBytes(t, 20, 20), "image/png"))
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	fake := &fakeObjects{}
	store := newR2Store(fake, "bucket", "https://cdn.example.com")

	require.NoError(t, store.Delete(context.Background(), ""))
	assert.Empty(t, fake.deletes)

	require.NoError(t, store.Delete(context.Background(), "posts/a.png"))
	assert.Equal(t, []string{"posts/a.png"}, fake.deletes)
}

func TestDisabled(t *testing.T) {
	var d Disabled
	_, err := d.UploadPostImage(context.Background(), upload([]byte("x"), "image/png"))
	assert.ErrorIs(t, err, ErrStorageDisabled)
	_, err = d.UploadAvatar(context.Background(), upload([]byte("x"), "image/png"))
	assert.ErrorIs(t, err, ErrStorageDisabled)
	assert.NoError(t, d.Delete(context.Background(), "posts/a.png"))
}
