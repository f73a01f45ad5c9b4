package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"twii/internal/model"
	"twii/internal/queue"
)

// ImageStore uploads and removes images. storage.R2Store implements it.
type ImageStore interface {
	UploadPostImage(ctx context.Context, img model.ImageUpload) (*model.UploadResult, error)
	UploadAvatar(ctx context.Context, img model.ImageUpload) (*model.UploadResult, error)
	Delete(ctx context.Context, key string) error
}

// ImageCleaner removes images that are no longer referenced. Cleanup is
// best-effort: failures are logged and never returned to the caller.
type ImageCleaner struct {
	store     ImageStore
	publisher queue.Publisher
	logger    zerolog.Logger
}

// NewImageCleaner deletes through the queue when publisher is non-nil and
// inline otherwise.
func NewImageCleaner(store ImageStore, publisher queue.Publisher) *ImageCleaner {
	return &ImageCleaner{
		store:     store,
		publisher: publisher,
		logger:    log.With().Str("component", "image_cleaner").Logger(),
	}
}

// Cleanup schedules deletion of keys. Empty keys are ignored.
func (c *ImageCleaner) Cleanup(ctx context.Context, reason string, keys ...string) {
	keys = nonEmpty(keys)
	if len(keys) == 0 {
		return
	}
	// The request may be finishing; cleanup must not be cancelled with it.
	ctx = context.WithoutCancel(ctx)

	if c.publisher != nil {
		msgID, err := c.publisher.Publish(ctx, queue.StreamMedia, queue.NewMediaDeleteEvent(reason, keys...))
		if err == nil {
			c.logger.Debug().Str("reason", reason).Str("msg_id", msgID).Int("keys", len(keys)).Msg("cleanup queued")
			return
		}
		c.logger.Warn().Err(err).Str("reason", reason).Msg("queue unavailable, deleting inline")
	}

	for _, key := range keys {
		if err := c.store.Delete(ctx, key); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Str("reason", reason).Msg("failed to delete image")
		}
	}
}

func nonEmpty(keys []string) []string {
	out := keys[:0:0]
	for _, k := range keys {
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
