package ports

import (
	"context"
	"time"

	"github.com/workhive/marketplace-api/internal/core/domain"
)

// SignUpInput carries a validated signup payload.
type SignUpInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	ProfileType domain.ProfileKind
}

// ResetPasswordInput carries the OTP-based reset payload.
type ResetPasswordInput struct {
	OTP      string
	Email    string
	Password string
}

// Session is the result of any flow that issues a token pair.
type Session struct {
	Identity *domain.Identity
	Tokens   domain.TokenPair
}

// AccessGrant is a freshly minted access token.
type AccessGrant struct {
	Token     string
	ExpiresAt time.Time
}

// Account is the identity plus whichever profiles exist.
type Account struct {
	Identity *domain.Identity
	Worker   *domain.WorkerProfile
	Business *domain.BusinessProfile
}

type AuthService interface {
	SignUp(ctx context.Context, in SignUpInput) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	// Refresh verifies a refresh token and mints a new access token from the
	// claims it carries.
	Refresh(ctx context.Context, refreshToken string) (*domain.Claims, *AccessGrant, error)
	SignOut(ctx context.Context, claims *domain.Claims)

	IsVerified(ctx context.Context, identityID string) (bool, error)
	DeleteAccount(ctx context.Context, identityID string) error
	RecoverPassword(ctx context.Context, identityID, email, newPassword string) error
	RequestOTP(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, in ResetPasswordInput) error

	Account(ctx context.Context, identityID string) (*Account, error)
	SwitchProfile(ctx context.Context, identityID string, kind domain.ProfileKind) (*Session, error)
}
