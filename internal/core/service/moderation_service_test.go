package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/workhive/marketplace-api/internal/core/domain"
)

type stubRestrictionRepo struct {
	byIdentity map[string][]domain.Restriction
}

func newStubRestrictionRepo() *stubRestrictionRepo {
	return &stubRestrictionRepo{byIdentity: make(map[string][]domain.Restriction)}
}

func (r *stubRestrictionRepo) ListByIdentity(_ context.Context, id string) ([]domain.Restriction, error) {
	return r.byIdentity[id], nil
}

func (r *stubRestrictionRepo) HasAny(_ context.Context, id string, kinds []domain.RestrictionKind) (bool, error) {
	for _, have := range r.byIdentity[id] {
		for _, k := range kinds {
			if have.Kind == k {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *stubRestrictionRepo) Add(_ context.Context, in *domain.Restriction) error {
	for _, have := range r.byIdentity[in.IdentityID] {
		if have.Kind == in.Kind {
			*in = have
			return nil
		}
	}
	in.ID = "r-" + string(in.Kind)
	r.byIdentity[in.IdentityID] = append(r.byIdentity[in.IdentityID], *in)
	return nil
}

func (r *stubRestrictionRepo) Remove(_ context.Context, id string, kind domain.RestrictionKind) error {
	list := r.byIdentity[id]
	for i, have := range list {
		if have.Kind == kind {
			r.byIdentity[id] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return domain.ErrRestrictionNotFound
}

func TestModerationService_Restrictions(t *testing.T) {
	identities := newStubIdentityRepo()
	target := &domain.Identity{Email: "w@b.com", Role: domain.RoleWorker}
	_ = identities.Create(context.Background(), target, &domain.WorkerProfile{}, nil)

	repo := newStubRestrictionRepo()
	events := &recordingEmitter{}
	svc := NewModerationService(repo, identities, nil, events, zerolog.Nop())
	ctx := context.Background()

	first, err := svc.AddRestriction(ctx, "admin-1", target.ID, domain.RestrictApplyJobs, "spam")
	if err != nil {
		t.Fatalf("AddRestriction returned error: %v", err)
	}
	again, err := svc.AddRestriction(ctx, "admin-1", target.ID, domain.RestrictApplyJobs, "spam again")
	if err != nil {
		t.Fatalf("repeat AddRestriction returned error: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("expected idempotent add, got %s and %s", first.ID, again.ID)
	}

	list, _ := svc.ListRestrictions(ctx, target.ID)
	if len(list) != 1 {
		t.Fatalf("expected one restriction, got %d", len(list))
	}
	if ev := events.last(); ev.Type != domain.EventRestrictionChanged || ev.Metadata["kind"] != "APPLY_JOBS" {
		t.Fatalf("unexpected event %+v", ev)
	}

	if err := svc.RemoveRestriction(ctx, "admin-1", target.ID, domain.RestrictApplyJobs); err != nil {
		t.Fatalf("RemoveRestriction returned error: %v", err)
	}
	if err := svc.RemoveRestriction(ctx, "admin-1", target.ID, domain.RestrictApplyJobs); !errors.Is(err, domain.ErrRestrictionNotFound) {
		t.Fatalf("expected ErrRestrictionNotFound, got %v", err)
	}

	if _, err := svc.AddRestriction(ctx, "admin-1", target.ID, "FLY", ""); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error for unknown kind, got %v", err)
	}
	if _, err := svc.AddRestriction(ctx, "admin-1", "ghost", domain.RestrictPostJobs, ""); !errors.Is(err, domain.ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
}

func TestModerationService_SetSuspended(t *testing.T) {
	identities := newStubIdentityRepo()
	target := &domain.Identity{Email: "w@b.com", Role: domain.RoleWorker}
	_ = identities.Create(context.Background(), target, &domain.WorkerProfile{}, nil)

	events := &recordingEmitter{}
	svc := NewModerationService(newStubRestrictionRepo(), identities, nil, events, zerolog.Nop())
	ctx := context.Background()

	if err := svc.SetSuspended(ctx, "admin-1", target.ID, true); err != nil {
		t.Fatalf("SetSuspended returned error: %v", err)
	}
	if !identities.byID[target.ID].Suspended {
		t.Fatalf("expected identity to be suspended")
	}
	if ev := events.last(); ev.Type != domain.EventSuspensionChanged || ev.Metadata["suspended"] != "true" {
		t.Fatalf("unexpected event %+v", ev)
	}

	if err := svc.SetSuspended(ctx, target.ID, target.ID, false); domain.KindOf(err) != domain.KindForbidden {
		t.Fatalf("expected forbidden for self-moderation, got %v", err)
	}
}

func TestModerationService_SecurityEvents(t *testing.T) {
	identities := newStubIdentityRepo()
	target := &domain.Identity{Email: "w@b.com", Role: domain.RoleWorker}
	_ = identities.Create(context.Background(), target, &domain.WorkerProfile{}, nil)

	audit := &stubAuditRepo{}
	_ = audit.InsertEvent(context.Background(), &domain.AuthEvent{Type: domain.EventSignedIn, IdentityID: target.ID})
	_ = audit.InsertEvent(context.Background(), &domain.AuthEvent{Type: domain.EventSignedIn, IdentityID: "someone-else"})

	svc := NewModerationService(newStubRestrictionRepo(), identities, audit, &recordingEmitter{}, zerolog.Nop())

	events, err := svc.SecurityEvents(context.Background(), target.ID, 1000)
	if err != nil {
		t.Fatalf("SecurityEvents returned error: %v", err)
	}
	if len(events) != 1 || audit.lastLimit != maxAuditLimit {
		t.Fatalf("expected one event with clamped limit, got %d events limit %d", len(events), audit.lastLimit)
	}

	disabled := NewModerationService(newStubRestrictionRepo(), identities, nil, &recordingEmitter{}, zerolog.Nop())
	if _, err := disabled.SecurityEvents(context.Background(), target.ID, 0); domain.KindOf(err) != domain.KindUnavailable {
		t.Fatalf("expected unavailable without an audit store, got %v", err)
	}
}
