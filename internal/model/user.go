package model

import (
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"twii/internal/apperror"
)

// User is the persisted account record. Password holds the bcrypt hash only.
type User struct {
	ID                string     `db:"id" json:"id"`
	Name              string     `db:"name" json:"name"`
	Username          string     `db:"username" json:"username"`
	Email             string     `db:"email" json:"email"`
	Password          string     `db:"password" json:"-"`
	EmailVerified     bool       `db:"email_verified" json:"emailVerified"`
	EmailVerifyToken  *string    `db:"email_verify_token" json:"-"`
	EmailVerifyExpiry *time.Time `db:"email_verify_expiry" json:"-"`
	Bio               *string    `db:"bio" json:"bio"`
	AvatarURL         *string    `db:"avatar_url" json:"avatarUrl"`
	AvatarKey         *string    `db:"avatar_key" json:"-"`
	CreatedAt         time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updatedAt"`
}

// SafeUser is the projection returned by the auth endpoints.
type SafeUser struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
}

func (u *User) Safe() SafeUser {
	return SafeUser{
		ID:            u.ID,
		Name:          u.Name,
		Username:      u.Username,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
	}
}

// Identity is the authenticated caller, resolved once per request.
type Identity struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	EmailVerified bool   `json:"emailVerified"`
}

func (u *User) Identity() Identity {
	return Identity{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		EmailVerified: u.EmailVerified,
	}
}

// UserSummary is the author/follower card embedded in other payloads.
type UserSummary struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Username  string    `db:"username" json:"username"`
	Bio       *string   `db:"bio" json:"bio"`
	AvatarURL *string   `db:"avatar_url" json:"avatarUrl"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Name:      u.Name,
		Username:  u.Username,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

// UserProfile is a public profile with relationship counts.
type UserProfile struct {
	UserSummary
	FollowerCount  int  `db:"follower_count" json:"followerCount"`
	FollowingCount int  `db:"following_count" json:"followingCount"`
	PostCount      int  `db:"post_count" json:"postCount"`
	IsFollowing    bool `json:"isFollowing"`
	IsMe           bool `json:"isMe"`
}

// UserUpdate carries the profile fields to change; nil means unchanged.
type UserUpdate struct {
	Name      *string
	Username  *string
	Bio       *string
	AvatarURL *string
	AvatarKey *string
}

// Verification token lifetime.
const EmailVerifyTTL = 24 * time.Hour

var (
	usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,20}$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	whitespace      = regexp.MustCompile(`\s+`)
)

// IsEmailIdentifier classifies a login identifier as an email address.
func IsEmailIdentifier(s string) bool {
	return emailPattern.MatchString(s)
}

// NormalizeUsername trims, lowercases and strips all whitespace.
func NormalizeUsername(s string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "")
}

// NormalizeEmail trims and lowercases.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var notReserved = validation.NewStringRule(func(s string) bool {
	return !IsReservedUsername(s)
}, "This username is reserved or not allowed.")

var usernameRule = []validation.Rule{
	validation.Required,
	validation.Match(usernamePattern).Error("Username must contain only lowercase letters, numbers, or underscores (3-20 chars)."),
	notReserved,
}

// MaxPasswordBytes is the bcrypt input limit.
const MaxPasswordBytes = 72

var passwordMaxBytes = validation.NewStringRule(func(s string) bool {
	return len(s) <= MaxPasswordBytes
}, "the length must be no more than 72 bytes")

// RegisterRequest is the sign-up payload. It is also accepted on POST /users.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
	r.Username = NormalizeUsername(r.Username)
}

func (r RegisterRequest) Validate() error {
	return validationError(validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Username, usernameRule...),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 0), passwordMaxBytes),
	))
}

// LoginRequest accepts either a username or an email as the identifier.
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

type ResendVerificationRequest struct {
	Email string `json:"email"`
}

func (r ResendVerificationRequest) Validate() error {
	return validationError(validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	))
}

// UpdateUserRequest is the profile edit payload. Absent fields stay unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
}

func (r *UpdateUserRequest) Normalize() {
	if r.Name != nil {
		n := strings.TrimSpace(*r.Name)
		r.Name = &n
	}
	if r.Username != nil {
		u := NormalizeUsername(*r.Username)
		r.Username = &u
	}
}

func (r UpdateUserRequest) Validate() error {
	return validationError(validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.Username, validation.NilOrNotEmpty, validation.Match(usernamePattern).Error("Username must contain only lowercase letters, numbers, or underscores (3-20 chars)."), notReserved),
		validation.Field(&r.Bio, validation.Length(0, MaxBioLength)),
	))
}

const MaxBioLength = 160

// validationError turns ozzo's field errors into a BadRequest.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	return apperror.New(apperror.BadRequest, err.Error())
}

var (
	ErrUserNotFound         = apperror.New(apperror.NotFound, "User not found")
	ErrUserIdentityConflict = apperror.New(apperror.Conflict, "The email or username provided is already in use.")
	ErrInvalidCredentials   = apperror.New(apperror.Unauthorized, "Invalid credentials")
	ErrIdentifierRequired   = apperror.New(apperror.BadRequest, "Username or email must be provided for login.")
	ErrEmailNotVerified     = apperror.New(apperror.Unauthorized, "Please verify your email before logging in")
	ErrInvalidVerifyToken   = apperror.New(apperror.Unauthorized, "Invalid verification token")
	ErrVerifyTokenExpired   = apperror.New(apperror.Unauthorized, "Verification token has expired")
	ErrResendUnknownUser    = apperror.New(apperror.Unauthorized, "User not found")
	ErrEmailAlreadyVerified = apperror.New(apperror.Conflict, "Email is already verified")
	ErrSessionUserGone      = apperror.New(apperror.Unauthorized, "User not found")
)
