package ports

import (
	"context"

	"github.com/workhive/marketplace-api/internal/core/domain"
)

// EventService processes a single identity event synchronously.
type EventService interface {
	Process(ctx context.Context, event domain.AuthEvent) error
}

// EventEmitter hands an event off for asynchronous processing. It never blocks
// the caller.
type EventEmitter interface {
	Emit(event domain.AuthEvent)
}
