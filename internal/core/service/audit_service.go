package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/secureapi/secure-api/internal/core/domain"
	"github.com/secureapi/secure-api/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService writing to repo.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Record persists a single authentication event.
func (s *auditService) Record(ctx context.Context, event domain.AuthEvent) error {
	if err := s.repo.InsertAuthEvent(ctx, &event); err != nil {
		return fmt.Errorf("record auth event: %w", err)
	}

	s.log.Debug().
		Str("kind", string(event.Kind)).
		Str("username", event.Username).
		Msg("auth event recorded")
	return nil
}
