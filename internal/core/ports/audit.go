package ports

import (
	"context"

	"github.com/secureapi/secure-api/internal/core/domain"
)

// AuditSink accepts authentication events without blocking the caller.
type AuditSink interface {
	Enqueue(event domain.AuthEvent)
}

// AuditRepository persists authentication events.
type AuditRepository interface {
	InsertAuthEvent(ctx context.Context, event *domain.AuthEvent) error
}

// AuditService records a single authentication event.
type AuditService interface {
	Record(ctx context.Context, event domain.AuthEvent) error
}
