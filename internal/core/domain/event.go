package domain

import "time"

// AuthEventType names a security-relevant change to an identity.
type AuthEventType string

const (
	EventSignedUp           AuthEventType = "identity.signed_up"
	EventSignedIn           AuthEventType = "identity.signed_in"
	EventSignedOut          AuthEventType = "identity.signed_out"
	EventDeleted            AuthEventType = "identity.deleted"
	EventPasswordChanged    AuthEventType = "identity.password_changed"
	EventOTPRequested       AuthEventType = "identity.otp_requested"
	EventProfileSwitched    AuthEventType = "identity.profile_switched"
	EventSuspensionChanged  AuthEventType = "identity.suspension_changed"
	EventRestrictionChanged AuthEventType = "identity.restriction_changed"
)

// AuthEvent is emitted by use cases and fanned out to the audit trail and the
// message bus.
type AuthEvent struct {
	Type       AuthEventType     `json:"type"`
	IdentityID string            `json:"identityId,omitempty"`
	Email      string            `json:"email,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	// Secret travels to the notification consumer only (e.g. an OTP code).
	// It is never written to the audit trail.
	Secret string `json:"secret,omitempty"`
}

// ShardKey keeps events for one identity on one worker.
func (e AuthEvent) ShardKey() string {
	if e.IdentityID != "" {
		return e.IdentityID
	}
	return e.Email
}
