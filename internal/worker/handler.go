package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"twii/internal/queue"
)

// ObjectDeleter removes a stored object by key.
type ObjectDeleter interface {
	Delete(ctx context.Context, key string) error
}

// Handler processes media events from the queue.
type Handler struct {
	objects ObjectDeleter
}

func NewHandler(objects ObjectDeleter) *Handler {
	return &Handler{objects: objects}
}

// HandleEvent routes an event by type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.MediaEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventMediaDelete:
		err = h.handleMediaDelete(ctx, event)
	default:
		log.Warn().Str("component", "handler").Str("type", event.Type).Msg("unknown event type, skipping")
		return nil
	}

	logger := log.With().
		Str("component", "handler").
		Str("type", event.Type).
		Str("reason", event.Reason).
		Dur("duration", time.Since(startTime)).
		Logger()
	if err != nil {
		logger.Error().Err(err).Msg("event failed")
		return err
	}
	logger.Debug().Msg("event handled")
	return nil
}

// handleMediaDelete tries every key and reports the failures together.
func (h *Handler) handleMediaDelete(ctx context.Context, event queue.MediaEvent) error {
	var errs []error
	for _, key := range event.Keys {
		if err := h.objects.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
