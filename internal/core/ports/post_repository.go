package ports

import (
	"context"

	"github.com/secureapi/secure-api/internal/core/domain"
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) (*domain.Post, error)
	// ListRecent returns every post, newest first, with the author's
	// username and display name resolved.
	ListRecent(ctx context.Context) ([]*domain.Post, error)
}
