package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"twii/internal/apperror"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Cursor is a compound keyset position: "id:unixMicro".
type Cursor struct {
	ID        string
	CreatedAt time.Time
}

func NewCursor(id string, createdAt time.Time) *Cursor {
	return &Cursor{ID: id, CreatedAt: createdAt}
}

func (c Cursor) String() string {
	return fmt.Sprintf("%s:%d", c.ID, c.CreatedAt.UnixMicro())
}

var ErrInvalidCursor = apperror.New(apperror.BadRequest, "Invalid cursor")

func ParseCursor(s string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}
	idx := strings.LastIndex(s, ":")
	if idx <= 0 || idx == len(s)-1 {
		return nil, ErrInvalidCursor
	}
	id := s[:idx]
	if len(id) != 36 {
		return nil, ErrInvalidCursor
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidCursor
	}
	micros, err := strconv.ParseInt(s[idx+1:], 10, 64)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	return &Cursor{ID: id, CreatedAt: time.UnixMicro(micros).UTC()}, nil
}

// ClampLimit applies the default page size and the upper bound.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
