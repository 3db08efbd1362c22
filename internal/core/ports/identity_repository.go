package ports

import (
	"context"

	"github.com/workhive/marketplace-api/internal/core/domain"
)

// IdentityRepository defines persistence for identities and their profile
// sub-records. Lookups return domain.ErrIdentityNotFound when nothing matches.
type IdentityRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	FindByID(ctx context.Context, id string) (*domain.Identity, error)

	// Create stores the identity together with exactly one of worker or
	// business in a single transaction. It assigns identity.ID.
	Create(ctx context.Context, identity *domain.Identity, worker *domain.WorkerProfile, business *domain.BusinessProfile) error

	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SoftDelete(ctx context.Context, id string) error
	SetSuspended(ctx context.Context, id string, suspended bool) error

	// SwitchProfile sets the default profile and role, creating whichever of
	// worker or business is non-nil when that sub-record does not exist yet.
	SwitchProfile(ctx context.Context, id string, kind domain.ProfileKind, role domain.Role, worker *domain.WorkerProfile, business *domain.BusinessProfile) (*domain.Identity, error)

	// Profiles returns the worker and business sub-records; either may be nil.
	Profiles(ctx context.Context, id string) (*domain.WorkerProfile, *domain.BusinessProfile, error)
}
