package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"twii/internal/apperror"
	"twii/internal/auth"
	"twii/internal/config"
	"twii/internal/mail"
	"twii/internal/model"
	"twii/internal/repository"
)

// verifyTokenBytes is the entropy of an email verification token.
const verifyTokenBytes = 32

// AuthService registers accounts, issues session tokens and handles email verification.
type AuthService struct {
	users           repository.UserRepository
	hasher          auth.PasswordHasher
	tokens          *auth.TokenIssuer
	mailer          mail.Mailer
	requireVerified bool
	logger          zerolog.Logger

	now        func() time.Time
	newToken   func() (string, error)
	generateID func() string
}

func NewAuthService(
	users repository.UserRepository,
	hasher auth.PasswordHasher,
	tokens *auth.TokenIssuer,
	mailer mail.Mailer,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		users:           users,
		hasher:          hasher,
		tokens:          tokens,
		mailer:          mailer,
		requireVerified: cfg.RequireEmailVerification,
		logger:          log.With().Str("component", "auth_service").Logger(),
		now:             time.Now,
		newToken:        func() (string, error) { return auth.RandomToken(verifyTokenBytes) },
		generateID:      uuid.NewString,
	}
}

// Register creates an unverified account and emails the verification link.
// The account stays persisted when the email cannot be sent; the caller gets
// an Internal error and the user can request a new link.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.SafeUser, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to register user")
	}

	token, err := s.newToken()
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to register user")
	}
	expiry := s.now().Add(model.EmailVerifyTTL)

	user := &model.User{
		ID:                s.generateID(),
		Name:              req.Name,
		Username:          req.Username,
		Email:             req.Email,
		Password:          hash,
		EmailVerifyToken:  &token,
		EmailVerifyExpiry: &expiry,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperror.Wrap(err, "Failed to register user")
	}

	if err := s.mailer.SendVerificationEmail(ctx, user.Email, user.Name, token); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("verification email failed after registration")
		return nil, apperror.Wrap(err, "Failed to send verification email")
	}

	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	safe := user.Safe()
	return &safe, nil
}

// Login authenticates by username or email and returns a signed access token.
// Unknown identifiers and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (string, error) {
	identifier := strings.TrimSpace(req.UsernameOrEmail)
	if identifier == "" {
		return "", model.ErrIdentifierRequired
	}

	var (
		user *model.User
		err  error
	)
	if model.IsEmailIdentifier(identifier) {
		user, err = s.users.GetByEmail(ctx, model.NormalizeEmail(identifier))
	} else {
		user, err = s.users.GetByUsername(ctx, model.NormalizeUsername(identifier))
	}
	if errors.Is(err, model.ErrUserNotFound) {
		return "", model.ErrInvalidCredentials
	}
	if err != nil {
		return "", apperror.Wrap(err, "Failed to log in")
	}

	ok, err := s.hasher.Compare(user.Password, req.Password)
	if err != nil {
		return "", apperror.Wrap(err, "Failed to log in")
	}
	if !ok {
		return "", model.ErrInvalidCredentials
	}

	if s.requireVerified && !user.EmailVerified {
		return "", model.ErrEmailNotVerified
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Username)
	if err != nil {
		return "", apperror.Wrap(err, "Failed to log in")
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")
	return token, nil
}

// VerifyEmail consumes a verification token.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*model.SafeUser, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, model.ErrInvalidVerifyToken
	}

	user, err := s.users.GetByVerifyToken(ctx, token)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, model.ErrInvalidVerifyToken
	}
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to verify email")
	}

	if user.EmailVerifyExpiry == nil || s.now().After(*user.EmailVerifyExpiry) {
		return nil, model.ErrVerifyTokenExpired
	}

	if err := s.users.MarkEmailVerified(ctx, user.ID, token); err != nil {
		return nil, apperror.Wrap(err, "Failed to verify email")
	}

	user.EmailVerified = true
	user.EmailVerifyToken = nil
	user.EmailVerifyExpiry = nil

	s.logger.Info().Str("user_id", user.ID).Msg("email verified")
	safe := user.Safe()
	return &safe, nil
}

// ResendVerification rotates the token, invalidating the previous one, and sends a new email.
func (s *AuthService) ResendVerification(ctx context.Context, req model.ResendVerificationRequest) error {
	req.Email = model.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.ErrResendUnknownUser
	}
	if err != nil {
		return apperror.Wrap(err, "Failed to resend verification email")
	}
	if user.EmailVerified {
		return model.ErrEmailAlreadyVerified
	}

	token, err := s.newToken()
	if err != nil {
		return apperror.Wrap(err, "Failed to resend verification email")
	}
	if err := s.users.SetVerifyToken(ctx, user.ID, token, s.now().Add(model.EmailVerifyTTL)); err != nil {
		return apperror.Wrap(err, "Failed to resend verification email")
	}

	if err := s.mailer.SendVerificationEmail(ctx, user.Email, user.Name, token); err != nil {
		return apperror.Wrap(err, "Failed to send verification email")
	}
	return nil
}

// Authenticate resolves a bearer token to the caller's identity. A valid token
// whose user has been deleted is rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (model.Identity, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return model.Identity{}, apperror.New(apperror.Unauthorized, "Unauthorized")
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.Identity{}, model.ErrSessionUserGone
	}
	if err != nil {
		return model.Identity{}, apperror.Wrap(err, "Failed to resolve session")
	}
	return user.Identity(), nil
}

// Me returns the caller's own safe projection.
func (s *AuthService) Me(ctx context.Context, id model.Identity) (*model.SafeUser, error) {
	user, err := s.users.GetByID(ctx, id.ID)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, model.ErrSessionUserGone
	}
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to load user")
	}
	safe := user.Safe()
	return &safe, nil
}
