package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_KeepsKnownKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"bad request", BadRequestf("bad"), BadRequest},
		{"unauthorized", Unauthorizedf("nope"), Unauthorized},
		{"forbidden", Forbiddenf("mine"), Forbidden},
		{"not found", NotFoundf("gone"), NotFound},
		{"conflict", Conflictf("dup"), Conflict},
		{"wrapped conflict", fmt.Errorf("insert: %w", Conflictf("dup")), Conflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := Wrap(tt.err, "something failed")
			assert.Equal(t, tt.want, KindOf(wrapped))
			assert.Same(t, tt.err, wrapped)
		})
	}
}

func TestWrap_UnknownBecomesInternal(t *testing.T) {
	cause := errors.New("connection reset")

	err := Wrap(cause, "Failed to create user")

	assert.Equal(t, Internal, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, "Failed to create user", Message(err))
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "unused"))
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, Internal, KindOf(errors.New("boom")))
	assert.Equal(t, "Internal server error", Message(errors.New("boom")))
}

func TestIs_MatchesSentinelByKindAndMessage(t *testing.T) {
	sentinel := NotFoundf("post not found")
	err := fmt.Errorf("get post: %w", sentinel)

	assert.ErrorIs(t, err, sentinel)
	assert.NotErrorIs(t, err, NotFoundf("user not found"))
}
