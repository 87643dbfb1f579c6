package handler

import (
	"github.com/secureapi/secure-api/internal/core/domain"
	"github.com/secureapi/secure-api/internal/core/ports"
	"github.com/secureapi/secure-api/internal/pkg/sanitize"
)

// Every mapper below is the response boundary: text is escaped here and
// nowhere else.

func toPostResponse(p *domain.Post) postResponse {
	return postResponse{
		ID:         p.ID,
		Title:      sanitize.Escape(p.Title),
		Content:    sanitize.Escape(p.Content),
		AuthorName: sanitize.Escape(p.AuthorDisplayName),
		CreatedAt:  p.CreatedAt.UTC(),
		UpdatedAt:  p.UpdatedAt.UTC(),
	}
}

func toPostListResponse(posts []*domain.Post) []postResponse {
	out := make([]postResponse, len(posts))
	for i, p := range posts {
		out[i] = toPostResponse(p)
	}
	return out
}

func toLoginResponse(r *ports.LoginResult) loginResponse {
	return loginResponse{
		Token:       r.Token,
		Username:    sanitize.Escape(r.Username),
		DisplayName: sanitize.Escape(r.DisplayName),
	}
}

func toRegisterResponse(u *domain.User) registerResponse {
	return registerResponse{
		Message:  "User registered successfully",
		Username: sanitize.Escape(u.Username),
	}
}

func toDataResponse(o *ports.Overview) dataResponse {
	return dataResponse{
		CurrentUser: sanitize.Escape(o.CurrentUser),
		AllUsers:    sanitize.EscapeAll(o.AllUsers),
	}
}
