package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the media stream
const (
	EventMediaDelete = "media_delete"
)

const (
	StreamMedia        = "stream:media"
	ConsumerGroupMedia = "media_workers"
)

// MediaEvent asks a worker to remove stored objects that are no longer referenced.
type MediaEvent struct {
	Type      string   `json:"type"`
	Timestamp int64    `json:"timestamp"`
	Keys      []string `json:"keys"`
	// Reason is informational, e.g. "post_updated" or "account_deleted".
	Reason string `json:"reason,omitempty"`
}

func NewMediaDeleteEvent(reason string, keys ...string) MediaEvent {
	return MediaEvent{
		Type:      EventMediaDelete,
		Timestamp: time.Now().Unix(),
		Keys:      keys,
		Reason:    reason,
	}
}

// ToMap converts the event to field-value pairs for XADD. The payload is
// carried as JSON in the "data" field.
func (e MediaEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseMediaEvent parses a MediaEvent from Redis stream message values.
func ParseMediaEvent(values map[string]interface{}) (MediaEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return MediaEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event MediaEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return MediaEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
