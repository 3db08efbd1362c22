package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/workhive/marketplace-api/internal/core/domain"
	"github.com/workhive/marketplace-api/internal/core/ports"
)

type eventService struct {
	audit     ports.AuditRepository
	publisher ports.EventPublisher
	log       zerolog.Logger
}

// NewEventService returns an EventService that writes each event to the
// audit trail and the message bus. Either sink may be nil.
func NewEventService(audit ports.AuditRepository, publisher ports.EventPublisher, log zerolog.Logger) ports.EventService {
	return &eventService{audit: audit, publisher: publisher, log: log}
}

// Process delivers one event to every configured sink. A failing sink does not
// stop the others; the joined error is returned for logging.
func (s *eventService) Process(ctx context.Context, event domain.AuthEvent) error {
	var errs []error

	if s.audit != nil {
		// The audit trail never stores secrets.
		audited := event
		audited.Secret = ""
		if err := s.audit.InsertEvent(ctx, &audited); err != nil {
			errs = append(errs, fmt.Errorf("audit: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("publish: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	s.log.Debug().
		Str("type", string(event.Type)).
		Str("identity_id", event.IdentityID).
		Msg("event processed")
	return nil
}
