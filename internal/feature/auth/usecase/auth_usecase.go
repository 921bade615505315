package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"insurance_backend/internal/feature/auth/domain/entity"
	"insurance_backend/internal/shared/access"
)

const (
	minPasswordLength = 8
	resetTokenTTL     = time.Hour
)

// dummyHash keeps login timing constant when the email is unknown. It is hashed lazily
// at the stored-password cost so both paths pay the same bcrypt price.
var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("unknown-account"), entity.PasswordCost)
	if err != nil {
		slog.Error("failed to prepare dummy password hash", "error", err)
	}
	return h
})

// UserRepository abstracts the persistence layer for user entities.
type UserRepository interface {
	// Create persists a new user. Returns ErrEmailAlreadyExists for a taken email.
	Create(ctx context.Context, user *entity.User) error
	// FindByEmail returns ErrUserNotFound when no user matches.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// FindByID returns ErrUserNotFound when no user matches.
	FindByID(ctx context.Context, id string) (*entity.User, error)
	// FindByResetToken returns ErrUserNotFound when no user holds the token.
	FindByResetToken(ctx context.Context, token string) (*entity.User, error)
	// FindByVerificationToken returns ErrUserNotFound when no user holds the token.
	FindByVerificationToken(ctx context.Context, token string) (*entity.User, error)
	// Update saves every column of the user.
	Update(ctx context.Context, user *entity.User) error
	// UpdateLastLogin stamps the last successful login.
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// TokenIssuer signs and verifies the JWT pair.
// Implemented by platform/jwt.
type TokenIssuer interface {
	GenerateAccessToken(userID, email string, role access.Role) (string, error)
	GenerateRefreshToken(userID, email string, role access.Role, sessionID string) (string, time.Time, error)
	// ParseRefreshToken returns the subject and jti of a valid refresh token.
	ParseRefreshToken(token string) (userID, sessionID string, err error)
}

// Notifier delivers account mails.
type Notifier interface {
	SendPasswordReset(ctx context.Context, to, name, token string) error
	SendEmailVerification(ctx context.Context, to, name, token string) error
}

// Client identifies the device a session is issued to.
type Client struct {
	UserAgent string
	IPAddress string
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      string
}

// Tokens is the token pair returned to clients. ExpiresIn is the configured access token
// lifetime, e.g. "15m".
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User   *entity.User `json:"user"`
	Tokens Tokens       `json:"tokens"`
}

// Options tunes token and session behaviour.
type Options struct {
	// AccessExpiresIn is echoed in Tokens.ExpiresIn.
	AccessExpiresIn string
	// MaxSessionsPerUser caps concurrent refresh sessions; the oldest are evicted.
	MaxSessionsPerUser int
}

// authUsecase implements authentication business logic.
type authUsecase struct {
	users    UserRepository
	sessions SessionRepository
	tokens   TokenIssuer
	notifier Notifier
	opts     Options
	now      func() time.Time
}

// NewAuthUsecase creates a new authUsecase instance.
func NewAuthUsecase(users UserRepository, sessions SessionRepository, tokens TokenIssuer, notifier Notifier, opts Options) *authUsecase {
	if opts.MaxSessionsPerUser <= 0 {
		opts.MaxSessionsPerUser = 5
	}
	return &authUsecase{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		notifier: notifier,
		opts:     opts,
		now:      time.Now,
	}
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a customer (or the requested role) and signs them in.
func (u *authUsecase) Register(ctx context.Context, in RegisterInput, client Client) (*AuthResult, error) {
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	role, err := access.ParseRole(in.Role)
	if err != nil {
		return nil, ErrInvalidRole
	}

	email := normalizeEmail(in.Email)
	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	verification := uuid.NewString()
	user := &entity.User{
		Email:                  email,
		FirstName:              strings.TrimSpace(in.FirstName),
		LastName:               strings.TrimSpace(in.LastName),
		Role:                   role,
		EmailVerificationToken: &verification,
		IsActive:               true,
	}
	if in.Phone != "" {
		phone := in.Phone
		user.Phone = &phone
	}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := u.notifier.SendEmailVerification(ctx, user.Email, user.FullName(), verification); err != nil {
		slog.Warn("verification mail failed", "user_id", user.ID, "error", err)
	}

	tokens, err := u.issueTokens(ctx, user, client)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Tokens: *tokens}, nil
}

// Login authenticates a user by email and password.
// A bcrypt comparison runs even when the user does not exist so response timing does not
// reveal registered emails.
func (u *authUsecase) Login(ctx context.Context, email, password string, client Client) (*AuthResult, error) {
	user, err := u.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	passwordHash := dummyHash()
	if user != nil {
		passwordHash = []byte(user.Password)
	}
	compareErr := bcrypt.CompareHashAndPassword(passwordHash, []byte(password))

	if user == nil || compareErr != nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	now := u.now()
	if err := u.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	user.LastLoginAt = &now

	tokens, err := u.issueTokens(ctx, user, client)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Tokens: *tokens}, nil
}

// RefreshToken rotates a refresh token: the presented session is revoked and a new pair issued.
func (u *authUsecase) RefreshToken(ctx context.Context, refreshToken string, client Client) (*Tokens, error) {
	userID, sessionID, err := u.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil || !user.IsActive {
		return nil, ErrInvalidRefreshToken
	}

	session, err := u.sessions.FindByID(ctx, sessionID)
	if err != nil || session.UserID != user.ID || !session.IsValid() {
		return nil, ErrInvalidRefreshToken
	}
	// the revoke is the single point that decides which caller redeems the token
	if err := u.sessions.Revoke(ctx, session.ID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			slog.Warn("refresh token replayed", "user_id", user.ID, "session_id", session.ID)
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to revoke session: %w", err)
	}

	return u.issueTokens(ctx, user, client)
}

// Logout revokes the session behind a refresh token.
func (u *authUsecase) Logout(ctx context.Context, refreshToken string) error {
	_, sessionID, err := u.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return ErrInvalidRefreshToken
	}
	if err := u.sessions.Revoke(ctx, sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return ErrInvalidRefreshToken
		}
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// ForgotPassword issues a one hour reset token. Unknown emails succeed silently.
func (u *authUsecase) ForgotPassword(ctx context.Context, email string) error {
	user, err := u.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	token := uuid.NewString()
	expires := u.now().Add(resetTokenTTL)
	user.PasswordResetToken = &token
	user.PasswordResetExpires = &expires
	if err := u.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := u.notifier.SendPasswordReset(ctx, user.Email, user.FullName(), token); err != nil {
		slog.Warn("password reset mail failed", "user_id", user.ID, "error", err)
	}
	return nil
}

// ResetPassword sets a new password using a reset token and signs the user out everywhere.
func (u *authUsecase) ResetPassword(ctx context.Context, token, password string) error {
	user, err := u.users.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}
	if !user.ResetTokenValid(u.now()) {
		return ErrInvalidResetToken
	}
	if err := validatePassword(password); err != nil {
		return err
	}

	if err := user.SetPassword(password); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordResetToken = nil
	user.PasswordResetExpires = nil
	if err := u.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to save password: %w", err)
	}

	if err := u.sessions.RevokeAllByUserID(ctx, user.ID); err != nil {
		slog.Warn("failed to revoke sessions after password reset", "user_id", user.ID, "error", err)
	}
	return nil
}

// VerifyEmail marks the account holding token as verified.
func (u *authUsecase) VerifyEmail(ctx context.Context, token string) error {
	user, err := u.users.FindByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrInvalidVerificationToken
		}
		return fmt.Errorf("failed to look up verification token: %w", err)
	}
	user.IsEmailVerified = true
	user.EmailVerificationToken = nil
	return u.users.Update(ctx, user)
}

// ValidateUser returns the user for valid credentials and nil otherwise.
func (u *authUsecase) ValidateUser(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := u.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if user.IsActive && user.CheckPassword(password) {
		return user, nil
	}
	return nil, nil
}

// FindByID returns the user or ErrUserNotFound.
func (u *authUsecase) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return u.users.FindByID(ctx, id)
}

// PurgeExpiredSessions deletes expired refresh sessions.
func (u *authUsecase) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return u.sessions.DeleteExpired(ctx)
}

// issueTokens opens a refresh session and signs the pair.
func (u *authUsecase) issueTokens(ctx context.Context, user *entity.User, client Client) (*Tokens, error) {
	accessToken, err := u.tokens.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	sessionID := uuid.NewString()
	refresh, expiresAt, err := u.tokens.GenerateRefreshToken(user.ID, user.Email, user.Role, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	session := &entity.Session{
		ID:        sessionID,
		UserID:    user.ID,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
		CreatedAt: u.now(),
		ExpiresAt: expiresAt,
	}
	if err := u.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	u.enforceSessionCap(ctx, user.ID)

	return &Tokens{
		AccessToken:  accessToken,
		RefreshToken: refresh,
		ExpiresIn:    u.opts.AccessExpiresIn,
	}, nil
}

func (u *authUsecase) enforceSessionCap(ctx context.Context, userID string) {
	count, err := u.sessions.CountByUserID(ctx, userID)
	if err != nil {
		slog.Warn("failed to count sessions", "user_id", userID, "error", err)
		return
	}
	for ; count > int64(u.opts.MaxSessionsPerUser); count-- {
		if err := u.sessions.DeleteOldestByUserID(ctx, userID); err != nil {
			slog.Warn("failed to evict session", "user_id", userID, "error", err)
			return
		}
	}
}
