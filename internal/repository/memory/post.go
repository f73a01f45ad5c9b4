package memory

import (
	"context"
	"time"

	"twii/internal/model"
)

type postRepo struct{ s *Store }

func (r *postRepo) Create(ctx context.Context, p *model.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[p.AuthorID]; !ok {
		return model.ErrUserNotFound
	}
	now := r.s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	c := *p
	r.s.posts[p.ID] = &c
	return nil
}

func (r *postRepo) GetByID(ctx context.Context, id string) (*model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	c := *p
	return &c, nil
}

func (r *postRepo) Exists(ctx context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.posts[id]
	return ok, nil
}

func (r *postRepo) Update(ctx context.Context, p *model.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.posts[p.ID]
	if !ok {
		return model.ErrPostNotFound
	}
	existing.Content = p.Content
	existing.ImageURL = p.ImageURL
	existing.ImageKey = p.ImageKey
	existing.UpdatedAt = r.s.now()
	p.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *postRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[id]; !ok {
		return model.ErrPostNotFound
	}
	r.s.deletePostLocked(id)
	return nil
}

// deletePostLocked removes a post with its likes and comments.
func (s *Store) deletePostLocked(id string) {
	delete(s.posts, id)
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
	for k := range s.likes {
		if k.post == id {
			delete(s.likes, k)
		}
	}
}

func (s *Store) viewLocked(p *model.Post, viewerID *string) model.PostView {
	v := model.PostView{Post: *p, Author: s.summary(p.AuthorID)}
	for k := range s.likes {
		if k.post == p.ID {
			v.LikeCount++
			if viewerID != nil && k.user == *viewerID {
				v.IsLikedByMe = true
			}
		}
	}
	for _, c := range s.comments {
		if c.PostID == p.ID {
			v.CommentCount++
		}
	}
	return v
}

func (r *postRepo) GetView(ctx context.Context, id string, viewerID *string) (*model.PostView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	v := r.s.viewLocked(p, viewerID)
	return &v, nil
}

func (r *postRepo) List(ctx context.Context, q model.PostQuery) ([]model.PostView, *model.Cursor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	views := []model.PostView{}
	for _, p := range r.s.posts {
		if q.AuthorID != nil && p.AuthorID != *q.AuthorID {
			continue
		}
		if q.OnlyFollowing {
			if q.ViewerID == nil {
				continue
			}
			if _, ok := r.s.follows[followKey{*q.ViewerID, p.AuthorID}]; !ok {
				continue
			}
		}
		views = append(views, r.s.viewLocked(p, q.ViewerID))
	}

	out, next := page(views, func(v model.PostView) (time.Time, string) { return v.CreatedAt, v.ID }, q.Cursor, q.Limit)
	return out, next, nil
}

func (r *postRepo) ImageKeysByAuthor(ctx context.Context, authorID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	keys := []string{}
	for _, p := range r.s.posts {
		if p.AuthorID == authorID && p.ImageKey != nil {
			keys = append(keys, *p.ImageKey)
		}
	}
	return keys, nil
}

func (r *postRepo) Like(ctx context.Context, userID, postID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[postID]; !ok {
		return model.ErrPostNotFound
	}
	k := likeKey{userID, postID}
	if _, ok := r.s.likes[k]; ok {
		return model.ErrAlreadyLiked
	}
	r.s.likes[k] = r.s.now()
	return nil
}

func (r *postRepo) Unlike(ctx context.Context, userID, postID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := likeKey{userID, postID}
	if _, ok := r.s.likes[k]; !ok {
		return model.ErrNotLiked
	}
	delete(r.s.likes, k)
	return nil
}
