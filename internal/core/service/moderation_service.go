package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/workhive/marketplace-api/internal/core/domain"
	"github.com/workhive/marketplace-api/internal/core/ports"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type moderationService struct {
	restrictions ports.RestrictionRepository
	identities   ports.IdentityRepository
	audit        ports.AuditRepository
	events       ports.EventEmitter
	log          zerolog.Logger
	now          func() time.Time
}

// NewModerationService returns a ModerationService implementation. audit may
// be nil, in which case SecurityEvents reports the trail as unavailable.
func NewModerationService(
	restrictions ports.RestrictionRepository,
	identities ports.IdentityRepository,
	audit ports.AuditRepository,
	events ports.EventEmitter,
	log zerolog.Logger,
) ports.ModerationService {
	return &moderationService{
		restrictions: restrictions,
		identities:   identities,
		audit:        audit,
		events:       events,
		log:          log,
		now:          time.Now,
	}
}

func (s *moderationService) ListRestrictions(ctx context.Context, identityID string) ([]domain.Restriction, error) {
	if _, err := s.identities.FindByID(ctx, identityID); err != nil {
		return nil, err
	}
	list, err := s.restrictions.ListByIdentity(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("list restrictions: %w", err)
	}
	if list == nil {
		list = []domain.Restriction{}
	}
	return list, nil
}

func (s *moderationService) AddRestriction(ctx context.Context, actorID, identityID string, kind domain.RestrictionKind, reason string) (*domain.Restriction, error) {
	if !kind.Valid() {
		return nil, domain.E(domain.KindValidation, "kind must be one of APPLY_JOBS POST_JOBS UPLOAD_ASSETS")
	}
	target, err := s.identities.FindByID(ctx, identityID)
	if err != nil {
		return nil, err
	}

	r := &domain.Restriction{
		IdentityID: identityID,
		Kind:       kind,
		Reason:     strings.TrimSpace(reason),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.restrictions.Add(ctx, r); err != nil {
		return nil, fmt.Errorf("add restriction: %w", err)
	}

	s.emit(domain.EventRestrictionChanged, target, map[string]string{
		"action": "added", "kind": string(kind), "actor": actorID,
	})
	return r, nil
}

func (s *moderationService) RemoveRestriction(ctx context.Context, actorID, identityID string, kind domain.RestrictionKind) error {
	if !kind.Valid() {
		return domain.E(domain.KindValidation, "kind must be one of APPLY_JOBS POST_JOBS UPLOAD_ASSETS")
	}
	target, err := s.identities.FindByID(ctx, identityID)
	if err != nil {
		return err
	}
	if err := s.restrictions.Remove(ctx, identityID, kind); err != nil {
		return err
	}

	s.emit(domain.EventRestrictionChanged, target, map[string]string{
		"action": "removed", "kind": string(kind), "actor": actorID,
	})
	return nil
}

func (s *moderationService) SetSuspended(ctx context.Context, actorID, identityID string, suspended bool) error {
	if actorID == identityID {
		return domain.E(domain.KindForbidden, "You cannot change your own suspension")
	}
	target, err := s.identities.FindByID(ctx, identityID)
	if err != nil {
		return err
	}
	if target.Suspended == suspended {
		return nil
	}
	if err := s.identities.SetSuspended(ctx, identityID, suspended); err != nil {
		return fmt.Errorf("set suspended: %w", err)
	}

	s.log.Info().Str("identity_id", identityID).Str("actor", actorID).Bool("suspended", suspended).Msg("suspension changed")
	s.emit(domain.EventSuspensionChanged, target, map[string]string{
		"suspended": strconv.FormatBool(suspended), "actor": actorID,
	})
	return nil
}

func (s *moderationService) SecurityEvents(ctx context.Context, identityID string, limit int) ([]domain.AuthEvent, error) {
	if s.audit == nil {
		return nil, domain.E(domain.KindUnavailable, "Audit trail is not configured")
	}
	switch {
	case limit <= 0:
		limit = defaultAuditLimit
	case limit > maxAuditLimit:
		limit = maxAuditLimit
	}
	if _, err := s.identities.FindByID(ctx, identityID); err != nil {
		return nil, err
	}

	events, err := s.audit.ListByIdentity(ctx, identityID, limit)
	if err != nil {
		return nil, fmt.Errorf("security events: %w", err)
	}
	if events == nil {
		events = []domain.AuthEvent{}
	}
	return events, nil
}

func (s *moderationService) emit(typ domain.AuthEventType, target *domain.Identity, meta map[string]string) {
	s.events.Emit(domain.AuthEvent{
		Type:       typ,
		IdentityID: target.ID,
		Email:      target.Email,
		OccurredAt: s.now().UTC(),
		Metadata:   meta,
	})
}
