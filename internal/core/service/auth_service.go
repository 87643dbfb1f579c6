package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/secureapi/secure-api/internal/core/domain"
	"github.com/secureapi/secure-api/internal/core/ports"
	"github.com/secureapi/secure-api/internal/core/security"
)

// placeholderPassword is hashed once at startup. Logins for unknown
// usernames are compared against it so they cost the same as a wrong
// password for a real user.
const placeholderPassword = "placeholder-password-never-valid"

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenCodec mints and verifies bearer tokens.
type TokenCodec interface {
	Mint(subject string) (string, error)
	Verify(token string) (string, error)
}

// AuthService implements registration, login and per-request token
// authentication.
type AuthService struct {
	users     ports.UserRepository
	hasher    PasswordHasher
	tokens    TokenCodec
	limiter   ports.LoginLimiter
	audit     ports.AuditSink
	log       zerolog.Logger
	now       func() time.Time
	dummyHash string
}

// AuthOption configures optional AuthService collaborators.
type AuthOption func(*AuthService)

// WithLoginLimiter enables throttling of repeated failed logins.
func WithLoginLimiter(l ports.LoginLimiter) AuthOption {
	return func(s *AuthService) { s.limiter = l }
}

// WithAuditSink sends registration and login outcomes to sink.
func WithAuditSink(sink ports.AuditSink) AuthOption {
	return func(s *AuthService) { s.audit = sink }
}

func NewAuthService(users ports.UserRepository, hasher PasswordHasher, tokens TokenCodec, log zerolog.Logger, opts ...AuthOption) *AuthService {
	s := &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	dummy, err := hasher.Hash(placeholderPassword)
	if err != nil {
		log.Warn().Err(err).Msg("failed to prepare placeholder hash; unknown-user logins will return faster")
	}
	s.dummyHash = dummy
	return s
}

// Register creates a new account. A username that already exists, whether
// seen by the pre-check or rejected by the store, yields
// domain.ErrDuplicateUsername.
func (s *AuthService) Register(ctx context.Context, username, password, displayName string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}
	if displayName == "" {
		displayName = username
	}

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		return nil, domain.ErrDuplicateUsername
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	now := s.now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: hash,
		DisplayName:  displayName,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			s.log.Info().Str("username", username).Msg("registration lost race on unique username")
			return nil, domain.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("username", created.Username).Msg("user registered")
	s.emit(domain.AuthEventRegistered, created.Username)
	return created, nil
}

// Login checks the credentials and mints a token. Every credential failure
// returns domain.ErrAuthenticationFailed without saying which part was wrong.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	key := limiterKey(ctx, username)
	if wait := s.blocked(ctx, key); wait > 0 {
		s.emit(domain.AuthEventLoginThrottled, username)
		return nil, &domain.ThrottledError{RetryAfter: wait}
	}

	user, err := s.users.FindByUsername(ctx, username)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		s.hasher.Verify(password, s.dummyHash)
		return nil, s.loginFailed(ctx, key, username)
	case err != nil:
		return nil, fmt.Errorf("login: %w", err)
	}

	if password == "" || !s.hasher.Verify(password, user.PasswordHash) {
		return nil, s.loginFailed(ctx, key, username)
	}

	token, err := s.tokens.Mint(user.Username)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, key); err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("failed to reset login attempts")
		}
	}
	s.emit(domain.AuthEventLoginSuccess, user.Username)

	return &ports.LoginResult{
		Token:       token,
		Username:    user.Username,
		DisplayName: user.DisplayName,
	}, nil
}

// Authenticate verifies a bearer token and resolves its subject to a live
// user. Token and missing-user failures wrap domain.ErrUnauthenticated;
// store failures are returned as-is.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Principal, error) {
	subject, err := s.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}

	user, err := s.users.FindByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	return &domain.Principal{Username: user.Username, DisplayName: user.DisplayName}, nil
}

// limiterKey scopes throttling to one username from one client address, so
// a third party cannot lock an account for everyone.
func limiterKey(ctx context.Context, username string) string {
	if ip := domain.ClientIPFromContext(ctx); ip != "" {
		return username + "|" + ip
	}
	return username
}

func (s *AuthService) blocked(ctx context.Context, key string) time.Duration {
	if s.limiter == nil {
		return 0
	}
	wait, err := s.limiter.Blocked(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("login limiter unavailable, allowing attempt")
		return 0
	}
	return wait
}

func (s *AuthService) loginFailed(ctx context.Context, key, username string) error {
	if s.limiter != nil {
		if err := s.limiter.RecordFailure(ctx, key); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("failed to record login failure")
		}
	}
	s.emit(domain.AuthEventLoginFailure, username)
	return domain.ErrAuthenticationFailed
}

func (s *AuthService) emit(kind domain.AuthEventKind, username string) {
	if s.audit == nil {
		return
	}
	s.audit.Enqueue(domain.AuthEvent{Kind: kind, Username: username, OccurredAt: s.now().UTC()})
}
