package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/secureapi/secure-api/internal/core/domain"
	"github.com/secureapi/secure-api/internal/core/ports"
)

type PostService struct {
	posts  ports.PostRepository
	users  ports.UserRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewPostService(posts ports.PostRepository, users ports.UserRepository, logger zerolog.Logger) *PostService {
	return &PostService{posts: posts, users: users, logger: logger, now: time.Now}
}

// CreatePost stores a post authored by principal. Title and content are kept
// exactly as given.
func (s *PostService) CreatePost(ctx context.Context, principal *domain.Principal, title, content string) (*domain.Post, error) {
	author, err := s.author(ctx, principal)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	post, err := s.posts.Create(ctx, &domain.Post{
		Title:             title,
		Content:           content,
		AuthorID:          author.ID,
		AuthorUsername:    author.Username,
		AuthorDisplayName: author.DisplayName,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("author", author.Username).Msg("failed to create post")
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.logger.Info().Str("post_id", post.ID).Str("author", author.Username).Msg("post created")
	return post, nil
}

// ListPosts returns all posts, newest first.
func (s *PostService) ListPosts(ctx context.Context) ([]*domain.Post, error) {
	posts, err := s.posts.ListRecent(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Overview returns the principal's display name and every registered username.
func (s *PostService) Overview(ctx context.Context, principal *domain.Principal) (*ports.Overview, error) {
	author, err := s.author(ctx, principal)
	if err != nil {
		return nil, err
	}

	usernames, err := s.users.ListUsernames(ctx)
	if err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}
	return &ports.Overview{CurrentUser: author.DisplayName, AllUsers: usernames}, nil
}

// author re-reads the principal's user record; a user deleted mid-request
// is treated as an invalidated session.
func (s *PostService) author(ctx context.Context, principal *domain.Principal) (*domain.User, error) {
	if principal == nil {
		return nil, domain.ErrUnauthenticated
	}
	user, err := s.users.FindByUsername(ctx, principal.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
		}
		return nil, fmt.Errorf("resolve author: %w", err)
	}
	return user, nil
}
