package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gnoparus/pbtodo/core"
	"github.com/gnoparus/pbtodo/credential"
	"github.com/gnoparus/pbtodo/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ValidationError carries every violated rule for a request so the
// transport can report them together
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return core.ErrValidation.Error()
}

func (e *ValidationError) Unwrap() error {
	return core.ErrValidation
}

// RateLimitError tells the caller how long the identity stays blocked
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return core.ErrRateLimited.Error()
}

func (e *RateLimitError) Unwrap() error {
	return core.ErrRateLimited
}

// TokenPair is the result of a successful login or refresh
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService handles registration, login and session lifecycle.
// Login and registration attempts are throttled per email address.
type AuthService struct {
	users        ports.UserStore
	tokenizer    ports.Tokenizer
	store        ports.TokenStore
	loginLimiter ports.AttemptLimiter
	regLimiter   ports.AttemptLimiter
	eventPub     ports.EventPublisher
	log          *zap.Logger

	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewAuthService creates a new authentication service
func NewAuthService(
	users ports.UserStore,
	tokenizer ports.Tokenizer,
	store ports.TokenStore,
	loginLimiter ports.AttemptLimiter,
	regLimiter ports.AttemptLimiter,
	eventPub ports.EventPublisher,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		users:        users,
		tokenizer:    tokenizer,
		store:        store,
		loginLimiter: loginLimiter,
		regLimiter:   regLimiter,
		eventPub:     eventPub,
		log:          log,
		accessTTL:    15 * time.Minute,
		refreshTTL:   5 * 24 * time.Hour, // 5 days
	}
}

// SetTokenTTLs overrides the default access and refresh lifetimes.
// Non-positive values are ignored.
func (s *AuthService) SetTokenTTLs(access, refresh time.Duration) {
	if access > 0 {
		s.accessTTL = access
	}
	if refresh > 0 {
		s.refreshTTL = refresh
	}
}

// AccessTTL reports the configured access token lifetime.
func (s *AuthService) AccessTTL() time.Duration {
	return s.accessTTL
}

// Register validates the fields, throttles per email, and creates the
// user with a freshly derived password hash.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*core.User, error) {
	result := core.Merge(
		core.ValidateEmail(email),
		core.ValidatePassword(password),
		core.ValidateName(name),
	)
	if !result.IsValid {
		return nil, &ValidationError{Errors: result.Errors}
	}

	if err := s.gate(s.regLimiter, email); err != nil {
		return nil, err
	}
	s.regLimiter.RecordAttempt(email)

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, core.ErrEmailTaken
	} else if !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}

	hash, err := credential.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &core.User{
		Email:        email,
		Name:         core.SanitizeInput(name),
		PasswordHash: hash,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.regLimiter.Reset(email)
	s.log.Info("user registered", zap.String("user_id", user.ID))

	return user, nil
}

// Login authenticates a user by email and password and issues a token
// pair. Failed attempts count against the email's budget; a successful
// login clears it.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	if err := s.gate(s.loginLimiter, email); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Unknown emails burn an attempt too, otherwise the limiter
			// reveals which addresses exist
			s.recordFailure(ctx, s.loginLimiter, email)
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !credential.VerifyPassword(password, user.PasswordHash) {
		s.recordFailure(ctx, s.loginLimiter, email)
		s.log.Debug("password verification failed", zap.String("user_id", user.ID))
		return nil, core.ErrInvalidCredentials
	}

	s.loginLimiter.Reset(email)

	pair, err := s.issueTokens(s.newSession(user.ID, user.Email))
	if err != nil {
		return nil, err
	}

	s.log.Info("user logged in", zap.String("user_id", user.ID))
	return pair, nil
}

// Refresh rotates the refresh token and issues new access and refresh tokens
func (s *AuthService) Refresh(ctx context.Context, refreshTokenStr string) (*TokenPair, error) {
	session, err := s.tokenizer.RefreshTokenToSession(refreshTokenStr)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", core.ErrInvalidToken)
	}

	if time.Now().After(session.RefreshExpiry) {
		return nil, core.ErrTokenExpired
	}

	invalidated, err := s.store.IsTokenInvalidated(ctx, session.RefreshID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token invalidation: %w", err)
	}
	if invalidated {
		return nil, core.ErrTokenInvalidated
	}

	// The old refresh token stays invalid for the rest of its lifetime
	remaining := time.Until(session.RefreshExpiry)
	if err := s.store.InvalidateToken(ctx, session.RefreshID, remaining); err != nil {
		return nil, fmt.Errorf("failed to invalidate old token: %w", err)
	}

	return s.issueTokens(s.newSession(session.UserID, session.Email))
}

// Logout invalidates a refresh token. Expired tokens are still recorded
// so they cannot resurface on clock skew.
func (s *AuthService) Logout(ctx context.Context, refreshTokenStr string) error {
	session, err := s.tokenizer.RefreshTokenToSession(refreshTokenStr)
	if err != nil {
		return fmt.Errorf("invalid refresh token: %w", core.ErrInvalidToken)
	}

	remaining := time.Until(session.RefreshExpiry)
	if remaining < time.Hour {
		remaining = time.Hour
	}

	if err := s.store.InvalidateToken(ctx, session.RefreshID, remaining); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}

	// The store already holds the invalidation; a publish failure only
	// delays other instances, so it is logged and swallowed
	if err := s.eventPub.PublishLogout(ctx, session.Email, session.RefreshID); err != nil {
		s.log.Warn("failed to publish logout event", zap.Error(err))
	}

	return nil
}

// ValidateAccessToken parses an access token and checks that neither it
// nor its backing refresh token has been invalidated
func (s *AuthService) ValidateAccessToken(ctx context.Context, accessToken string) (*core.Session, error) {
	session, err := s.tokenizer.AccessTokenToSession(accessToken)
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", core.ErrInvalidToken)
	}

	if time.Now().After(session.AccessExpiry) {
		return nil, core.ErrTokenExpired
	}

	if session.RefreshID != "" {
		invalidated, err := s.store.IsTokenInvalidated(ctx, session.RefreshID)
		if err != nil {
			return nil, fmt.Errorf("failed to check token invalidation: %w", err)
		}
		if invalidated {
			return nil, core.ErrTokenInvalidated
		}
	}

	return session, nil
}

func (s *AuthService) gate(limiter ports.AttemptLimiter, identity string) error {
	if limiter.CanAttempt(identity) {
		return nil
	}
	return &RateLimitError{RetryAfter: limiter.RetryAfter(identity)}
}

// recordFailure counts the attempt and publishes a lockout event when
// this failure started a block
func (s *AuthService) recordFailure(ctx context.Context, limiter ports.AttemptLimiter, identity string) {
	limiter.RecordAttempt(identity)

	if limiter.CanAttempt(identity) {
		return
	}

	retryAfter := limiter.RetryAfter(identity)
	if err := s.eventPub.PublishLockout(ctx, identity, int(retryAfter.Seconds())); err != nil {
		s.log.Warn("failed to publish lockout event", zap.Error(err))
	}
	s.log.Warn("identity locked out",
		zap.String("identity", identity),
		zap.Duration("retry_after", retryAfter))
}

func (s *AuthService) newSession(userID, email string) *core.Session {
	now := time.Now()
	return &core.Session{
		ID:            uuid.NewString(),
		UserID:        userID,
		Email:         email,
		IssuedAt:      now,
		AccessExpiry:  now.Add(s.accessTTL),
		RefreshExpiry: now.Add(s.refreshTTL),
		RefreshID:     uuid.NewString(),
	}
}

func (s *AuthService) issueTokens(session *core.Session) (*TokenPair, error) {
	accessToken, err := s.tokenizer.SessionToAccessToken(session)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	refreshToken, err := s.tokenizer.SessionToRefreshToken(session)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
