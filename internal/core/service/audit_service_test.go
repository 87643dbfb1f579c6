package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/secureapi/secure-api/internal/core/domain"
)

type stubAuditRepo struct {
	inserted []domain.AuthEvent
	err      error
}

func (r *stubAuditRepo) InsertAuthEvent(_ context.Context, e *domain.AuthEvent) error {
	if r.err != nil {
		return r.err
	}
	r.inserted = append(r.inserted, *e)
	return nil
}

func TestAuditService_Record(t *testing.T) {
	repo := &stubAuditRepo{}
	svc := NewAuditService(repo, zerolog.Nop())

	ev := domain.AuthEvent{Kind: domain.AuthEventLoginSuccess, Username: "alice", OccurredAt: time.Now()}
	if err := svc.Record(context.Background(), ev); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(repo.inserted) != 1 || repo.inserted[0].Username != "alice" {
		t.Fatalf("unexpected inserts: %+v", repo.inserted)
	}
}

func TestAuditService_Record_Error(t *testing.T) {
	repo := &stubAuditRepo{err: errors.New("write failed")}
	svc := NewAuditService(repo, zerolog.Nop())

	if err := svc.Record(context.Background(), domain.AuthEvent{Kind: domain.AuthEventRegistered}); err == nil {
		t.Fatalf("expected error")
	}
}
