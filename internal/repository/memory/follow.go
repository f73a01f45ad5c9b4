package memory

import (
	"context"
	"time"

	"twii/internal/model"
)

type followRepo struct{ s *Store }

func (r *followRepo) Create(ctx context.Context, followerID, followingID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if followerID == followingID {
		return model.ErrCannotFollowSelf
	}
	if _, ok := r.s.users[followingID]; !ok {
		return model.ErrUserNotFound
	}
	if _, ok := r.s.users[followerID]; !ok {
		return model.ErrUserNotFound
	}
	k := followKey{followerID, followingID}
	if _, ok := r.s.follows[k]; ok {
		return model.ErrAlreadyFollowing
	}
	r.s.follows[k] = r.s.now()
	return nil
}

func (r *followRepo) Delete(ctx context.Context, followerID, followingID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := followKey{followerID, followingID}
	if _, ok := r.s.follows[k]; !ok {
		return model.ErrNotFollowing
	}
	delete(r.s.follows, k)
	return nil
}

func (r *followRepo) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.follows[followKey{followerID, followingID}]
	return ok, nil
}

func (r *followRepo) GetFollowers(ctx context.Context, userID string, cursor *model.Cursor, limit int) ([]model.FollowEntry, *model.Cursor, error) {
	return r.list(func(k followKey) (string, bool) { return k.follower, k.following == userID }, cursor, limit)
}

func (r *followRepo) GetFollowing(ctx context.Context, userID string, cursor *model.Cursor, limit int) ([]model.FollowEntry, *model.Cursor, error) {
	return r.list(func(k followKey) (string, bool) { return k.following, k.follower == userID }, cursor, limit)
}

func (r *followRepo) list(pick func(followKey) (string, bool), cursor *model.Cursor, limit int) ([]model.FollowEntry, *model.Cursor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	entries := []model.FollowEntry{}
	for k, at := range r.s.follows {
		other, ok := pick(k)
		if !ok {
			continue
		}
		entries = append(entries, model.FollowEntry{UserSummary: r.s.summary(other), FollowedAt: at})
	}

	out, next := page(entries, func(e model.FollowEntry) (time.Time, string) { return e.FollowedAt, e.ID }, cursor, limit)
	return out, next, nil
}
