package ports

import (
	"context"
	"time"

	"github.com/secureapi/secure-api/internal/core/domain"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token       string
	Username    string
	DisplayName string
}

type AuthService interface {
	Register(ctx context.Context, username, password, displayName string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

// Authenticator resolves a bearer token into the principal for one request.
// Every failure wraps domain.ErrUnauthenticated.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Principal, error)
}

// LoginLimiter throttles repeated failed logins for a single username.
type LoginLimiter interface {
	// Blocked reports how long the key remains locked; zero means allowed.
	Blocked(ctx context.Context, key string) (time.Duration, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}
