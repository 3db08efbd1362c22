package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/workhive/marketplace-api/internal/core/domain"
)

type stubAuditRepo struct {
	err       error
	inserted  []*domain.AuthEvent
	lastLimit int
}

func (r *stubAuditRepo) InsertEvent(_ context.Context, e *domain.AuthEvent) error {
	if r.err != nil {
		return r.err
	}
	r.inserted = append(r.inserted, e)
	return nil
}

func (r *stubAuditRepo) ListByIdentity(_ context.Context, id string, limit int) ([]domain.AuthEvent, error) {
	r.lastLimit = limit
	var out []domain.AuthEvent
	for _, e := range r.inserted {
		if e.IdentityID == id {
			out = append(out, *e)
		}
	}
	return out, nil
}

type stubPublisher struct {
	err       error
	published []domain.AuthEvent
}

func (p *stubPublisher) Publish(_ context.Context, e domain.AuthEvent) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, e)
	return nil
}

func otpEvent() domain.AuthEvent {
	return domain.AuthEvent{
		Type:       domain.EventOTPRequested,
		IdentityID: "id-1",
		Email:      "a@b.com",
		OccurredAt: time.Now().UTC(),
		Secret:     "123456",
	}
}

func TestEventService_AuditNeverStoresSecret(t *testing.T) {
	audit := &stubAuditRepo{}
	pub := &stubPublisher{}
	svc := NewEventService(audit, pub, zerolog.Nop())

	if err := svc.Process(context.Background(), otpEvent()); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if len(audit.inserted) != 1 || audit.inserted[0].Secret != "" {
		t.Fatalf("expected one audited event without secret, got %+v", audit.inserted)
	}
	if len(pub.published) != 1 || pub.published[0].Secret != "123456" {
		t.Fatalf("expected published event to keep the secret, got %+v", pub.published)
	}
}

func TestEventService_SinkFailureDoesNotStopOthers(t *testing.T) {
	audit := &stubAuditRepo{err: errors.New("mongo down")}
	pub := &stubPublisher{}
	svc := NewEventService(audit, pub, zerolog.Nop())

	err := svc.Process(context.Background(), otpEvent())
	if err == nil {
		t.Fatalf("expected error from failing audit sink")
	}
	if len(pub.published) != 1 {
		t.Fatalf("expected publish to run despite audit failure")
	}
}

func TestEventService_NilSinks(t *testing.T) {
	svc := NewEventService(nil, nil, zerolog.Nop())
	if err := svc.Process(context.Background(), otpEvent()); err != nil {
		t.Fatalf("expected nil error with no sinks, got %v", err)
	}
}
