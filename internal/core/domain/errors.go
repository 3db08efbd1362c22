package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error by its effect on the caller. The HTTP layer maps
// each kind to exactly one status code.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindUnauthorized
	KindForbidden
	KindConflict
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Error is the tagged error every layer reports into. Message is safe to show
// to clients; Err carries the lower-level cause and is never rendered.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a new tagged error.
func E(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap tags cause with kind while keeping a client-safe message.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

var (
	ErrUnauthorized = E(KindUnauthorized, "Unauthorized")
	ErrForbidden    = E(KindForbidden, "Forbidden")

	ErrInvalidCredentials = E(KindUnauthorized, "Invalid Credentials")
	ErrIdentityExists     = E(KindConflict, "An account with this email already exists")
	ErrIdentityNotFound   = E(KindNotFound, "Account not found")
	ErrAccountDeleted     = E(KindForbidden, "Account has been deleted")
	ErrAccountSuspended   = E(KindForbidden, "Account is suspended")

	ErrTokenExpired  = E(KindUnauthorized, "Token expired")
	ErrTokenInvalid  = E(KindUnauthorized, "Invalid token")
	ErrInvalidClaims = E(KindValidation, "Malformed token claims")

	ErrInvalidOTP   = E(KindUnauthorized, "Invalid or expired code")
	ErrSamePassword = E(KindValidation, "New password must differ from the current password")

	ErrJobNotFound         = E(KindNotFound, "Job not found")
	ErrJobClosed           = E(KindConflict, "Job is not accepting applications")
	ErrAlreadyApplied      = E(KindConflict, "You have already applied to this job")
	ErrProfileMissing      = E(KindForbidden, "Profile not found for this account")
	ErrRestrictionNotFound = E(KindNotFound, "Restriction not found")

	ErrAssetStoreDisabled = E(KindUnavailable, "File storage is not configured")
)
