package ports

import (
	"context"

	"github.com/secureapi/secure-api/internal/core/domain"
)

// UserRepository is the credential store. Create must report a username
// collision as domain.ErrDuplicateUsername, including collisions detected by
// the store's own unique index.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	ListUsernames(ctx context.Context) ([]string, error)
}
