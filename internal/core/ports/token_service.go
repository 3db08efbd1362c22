package ports

import (
	"time"

	"github.com/workhive/marketplace-api/internal/core/domain"
)

// TokenService signs and verifies identity tokens.
//
// Verify distinguishes domain.ErrTokenExpired (valid signature, past expiry)
// from domain.ErrTokenInvalid (anything else).
type TokenService interface {
	Sign(claims domain.Claims, kind domain.TokenKind, lifetime time.Duration) (string, error)
	Verify(token string) (*domain.Claims, domain.TokenKind, error)
	IssuePair(claims domain.Claims) (domain.TokenPair, error)
	IssueAccess(claims domain.Claims) (string, time.Time, error)
}
