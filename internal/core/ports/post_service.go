package ports

import (
	"context"

	"github.com/secureapi/secure-api/internal/core/domain"
)

// Overview is the current user's landing data.
type Overview struct {
	CurrentUser string
	AllUsers    []string
}

// PostService defines use-case operations for posts. Callers pass the
// principal bound to the request explicitly.
type PostService interface {
	CreatePost(ctx context.Context, principal *domain.Principal, title, content string) (*domain.Post, error)
	ListPosts(ctx context.Context) ([]*domain.Post, error)
	Overview(ctx context.Context, principal *domain.Principal) (*Overview, error)
}
