package ports

import (
	"context"

	"github.com/workhive/marketplace-api/internal/core/domain"
)

// RestrictionRepository persists capability denials.
type RestrictionRepository interface {
	ListByIdentity(ctx context.Context, identityID string) ([]domain.Restriction, error)
	// HasAny reports whether identityID carries at least one of kinds.
	HasAny(ctx context.Context, identityID string, kinds []domain.RestrictionKind) (bool, error)
	// Add is idempotent: adding an existing kind returns the stored record.
	Add(ctx context.Context, r *domain.Restriction) error
	Remove(ctx context.Context, identityID string, kind domain.RestrictionKind) error
}

// ModerationService is the admin surface over suspensions and restrictions.
type ModerationService interface {
	ListRestrictions(ctx context.Context, identityID string) ([]domain.Restriction, error)
	AddRestriction(ctx context.Context, actorID, identityID string, kind domain.RestrictionKind, reason string) (*domain.Restriction, error)
	RemoveRestriction(ctx context.Context, actorID, identityID string, kind domain.RestrictionKind) error
	SetSuspended(ctx context.Context, actorID, identityID string, suspended bool) error
	// SecurityEvents reads the audit trail of identityID, newest first.
	SecurityEvents(ctx context.Context, identityID string, limit int) ([]domain.AuthEvent, error)
}
