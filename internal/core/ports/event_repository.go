package ports

import (
	"context"

	"github.com/workhive/marketplace-api/internal/core/domain"
)

// AuditRepository persists identity events to the security audit trail.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
	// ListByIdentity returns the newest events first.
	ListByIdentity(ctx context.Context, identityID string, limit int) ([]domain.AuthEvent, error)
}

// EventPublisher forwards identity events to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.AuthEvent) error
}
