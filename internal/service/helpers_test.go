package service

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"twii/internal/auth"
	"twii/internal/config"
	"twii/internal/model"
	"twii/internal/queue"
	"twii/internal/repository/memory"
)

// =============================================================================
// FAKES
// =============================================================================

type sentMail struct {
	To, Name, Token string
}

type mockMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *mockMailer) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, name, token})
	return nil
}

func (m *mockMailer) last(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

// mockImages hands out sequential keys and records deletes.
type mockImages struct {
	mu        sync.Mutex
	n         int
	deleted   []string
	uploadErr error
	deleteErr error
}

func (m *mockImages) upload(folder string) (*model.UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	m.n++
	key := folder + "/img" + string(rune('0'+m.n))
	return &model.UploadResult{URL: "https://cdn.test/" + key, Key: key}, nil
}

func (m *mockImages) UploadPostImage(ctx context.Context, img model.ImageUpload) (*model.UploadResult, error) {
	return m.upload(model.PostImageFolder)
}

func (m *mockImages) UploadAvatar(ctx context.Context, img model.ImageUpload) (*model.UploadResult, error) {
	return m.upload(model.AvatarFolder)
}

func (m *mockImages) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *mockImages) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

type mockPublisher struct {
	events []queue.MediaEvent
	err    error
}

func (p *mockPublisher) Publish(ctx context.Context, stream string, event queue.MediaEvent) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.events = append(p.events, event)
	return "1-0", nil
}

var errStoreDown = errors.New("connection refused")

func testImage() *model.ImageUpload {
	return &model.ImageUpload{Data: bytes.NewReader([]byte("png")), Size: 3, ContentType: model.ContentTypePNG}
}

// =============================================================================
// FIXTURE
// =============================================================================

type fixture struct {
	store    *memory.Store
	mailer   *mockMailer
	images   *mockImages
	tokens   *auth.TokenIssuer
	auth     *AuthService
	users    *UserService
	follows  *FollowService
	posts    *PostService
	comments *CommentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	mailer := &mockMailer{}
	images := &mockImages{}
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	cleaner := NewImageCleaner(images, nil)
	cfg := &config.Config{}

	return &fixture{
		store:    store,
		mailer:   mailer,
		images:   images,
		tokens:   tokens,
		auth:     NewAuthService(store.Users(), auth.NewBcryptHasher(bcrypt.MinCost), tokens, mailer, cfg),
		users:    NewUserService(store.Users(), store.Posts(), store.Follows(), images, cleaner),
		follows:  NewFollowService(store.Follows(), store.Users()),
		posts:    NewPostService(store.Posts(), store.Comments(), images, cleaner),
		comments: NewCommentService(store.Comments(), store.Posts(), store.Users()),
	}
}

// register creates a user and returns its identity.
func (f *fixture) register(t *testing.T, username string) model.Identity {
	t.Helper()
	u, err := f.auth.Register(context.Background(), model.RegisterRequest{
		Name:     username,
		Email:    username + "@x.com",
		Username: username,
		Password: "secret1",
	})
	require.NoError(t, err)
	return model.Identity{ID: u.ID, Email: u.Email, Username: u.Username}
}

func (f *fixture) post(t *testing.T, author model.Identity, content string, img *model.ImageUpload) *model.PostView {
	t.Helper()
	p, err := f.posts.Create(context.Background(), author, model.CreatePostRequest{Content: content}, img)
	require.NoError(t, err)
	return p
}

func strPtr(s string) *string { return &s }
