package memory

import (
	"context"
	"sort"
	"time"

	"twii/internal/model"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return model.ErrUserIdentityConflict
		}
		if u.EmailVerifyToken != nil && existing.EmailVerifyToken != nil && *existing.EmailVerifyToken == *u.EmailVerifyToken {
			return model.ErrUserIdentityConflict
		}
	}

	now := r.s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users[u.ID] = cloneUser(u)
	return nil
}

func (r *userRepo) find(match func(*model.User) bool) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.ID == id })
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email == email })
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Username == username })
}

func (r *userRepo) GetByVerifyToken(ctx context.Context, token string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.EmailVerifyToken != nil && *u.EmailVerifyToken == token })
}

func (r *userRepo) MarkEmailVerified(ctx context.Context, id, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok || u.EmailVerifyToken == nil || *u.EmailVerifyToken != token {
		return model.ErrInvalidVerifyToken
	}
	u.EmailVerified = true
	u.EmailVerifyToken = nil
	u.EmailVerifyExpiry = nil
	u.UpdatedAt = r.s.now()
	return nil
}

func (r *userRepo) SetVerifyToken(ctx context.Context, id, token string, expiry time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.EmailVerifyToken = &token
	u.EmailVerifyExpiry = &expiry
	u.UpdatedAt = r.s.now()
	return nil
}

func (r *userRepo) List(ctx context.Context) ([]model.UserSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]model.UserSummary, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, u.Summary())
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (r *userRepo) GetProfile(ctx context.Context, id string) (*model.UserProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	p := &model.UserProfile{UserSummary: u.Summary()}
	for k := range r.s.follows {
		if k.following == id {
			p.FollowerCount++
		}
		if k.follower == id {
			p.FollowingCount++
		}
	}
	for _, post := range r.s.posts {
		if post.AuthorID == id {
			p.PostCount++
		}
	}
	return p, nil
}

func (r *userRepo) Update(ctx context.Context, id string, update model.UserUpdate) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	if update.Username != nil {
		for _, other := range r.s.users {
			if other.ID != id && other.Username == *update.Username {
				return nil, model.ErrUserIdentityConflict
			}
		}
		u.Username = *update.Username
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Bio != nil {
		u.Bio = update.Bio
	}
	if update.AvatarURL != nil {
		u.AvatarURL = update.AvatarURL
	}
	if update.AvatarKey != nil {
		u.AvatarKey = update.AvatarKey
	}
	u.UpdatedAt = r.s.now()
	return cloneUser(u), nil
}

func (r *userRepo) ClearAvatar(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.AvatarURL, u.AvatarKey = nil, nil
	u.UpdatedAt = r.s.now()
	return nil
}

// Delete cascades to the user's posts, comments, likes and follows.
func (r *userRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return model.ErrUserNotFound
	}
	delete(r.s.users, id)

	for postID, p := range r.s.posts {
		if p.AuthorID == id {
			r.s.deletePostLocked(postID)
		}
	}
	for cid, c := range r.s.comments {
		if c.AuthorID == id {
			delete(r.s.comments, cid)
		}
	}
	for k := range r.s.likes {
		if k.user == id {
			delete(r.s.likes, k)
		}
	}
	for k := range r.s.follows {
		if k.follower == id || k.following == id {
			delete(r.s.follows, k)
		}
	}
	return nil
}
