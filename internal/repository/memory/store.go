// Package memory is an in-process implementation of the repository
// interfaces. It enforces the same uniqueness and cascade rules as the
// Postgres schema and backs service and router tests.
package memory

import (
	"sort"
	"sync"
	"time"

	"twii/internal/model"
	"twii/internal/repository"
)

type followKey struct{ follower, following string }
type likeKey struct{ user, post string }

// Store holds every table behind one lock.
type Store struct {
	mu       sync.RWMutex
	users    map[string]*model.User
	posts    map[string]*model.Post
	comments map[string]*model.Comment
	likes    map[likeKey]time.Time
	follows  map[followKey]time.Time
	last     time.Time
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]*model.User),
		posts:    make(map[string]*model.Post),
		comments: make(map[string]*model.Comment),
		likes:    make(map[likeKey]time.Time),
		follows:  make(map[followKey]time.Time),
	}
}

func (s *Store) Users() repository.UserRepository       { return &userRepo{s} }
func (s *Store) Posts() repository.PostRepository       { return &postRepo{s} }
func (s *Store) Comments() repository.CommentRepository { return &commentRepo{s} }
func (s *Store) Follows() repository.FollowRepository   { return &followRepo{s} }

// now returns a strictly increasing microsecond timestamp so keyset order
// is deterministic. Callers hold the write lock.
func (s *Store) now() time.Time {
	t := time.Now().UTC().Truncate(time.Microsecond)
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

func (s *Store) summary(id string) model.UserSummary {
	if u, ok := s.users[id]; ok {
		return u.Summary()
	}
	return model.UserSummary{ID: id}
}

// page applies the (createdAt, id) DESC keyset to already sorted rows.
func page[T any](rows []T, key func(T) (time.Time, string), cursor *model.Cursor, limit int) ([]T, *model.Cursor) {
	limit = model.ClampLimit(limit)
	sort.SliceStable(rows, func(i, j int) bool {
		ti, idi := key(rows[i])
		tj, idj := key(rows[j])
		if ti.Equal(tj) {
			return idi > idj
		}
		return ti.After(tj)
	})

	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if cursor != nil {
			t, id := key(r)
			if t.After(cursor.CreatedAt) || (t.Equal(cursor.CreatedAt) && id >= cursor.ID) {
				continue
			}
		}
		out = append(out, r)
	}

	var next *model.Cursor
	if len(out) > limit {
		out = out[:limit]
		t, id := key(out[len(out)-1])
		next = model.NewCursor(id, t)
	}
	return out, next
}

func cloneUser(u *model.User) *model.User {
	c := *u
	return &c
}
