package memory

import (
	"context"
	"sort"

	"twii/internal/model"
)

type commentRepo struct{ s *Store }

func (r *commentRepo) Create(ctx context.Context, c *model.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[c.PostID]; !ok {
		return model.ErrPostNotFound
	}
	now := r.s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	stored := *c
	r.s.comments[c.ID] = &stored
	return nil
}

func (r *commentRepo) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.comments[id]
	if !ok {
		return nil, model.ErrCommentNotFound
	}
	out := *c
	return &out, nil
}

func (r *commentRepo) UpdateContent(ctx context.Context, id, content string) (*model.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.comments[id]
	if !ok {
		return nil, model.ErrCommentNotFound
	}
	c.Content = content
	c.UpdatedAt = r.s.now()
	out := *c
	return &out, nil
}

func (r *commentRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.comments[id]; !ok {
		return model.ErrCommentNotFound
	}
	delete(r.s.comments, id)
	return nil
}

func (r *commentRepo) ListByPost(ctx context.Context, postID string) ([]model.CommentView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []model.CommentView{}
	for _, c := range r.s.comments {
		if c.PostID == postID {
			out = append(out, model.CommentView{Comment: *c, Author: r.s.summary(c.AuthorID)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
