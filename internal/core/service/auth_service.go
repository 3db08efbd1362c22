package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/workhive/marketplace-api/internal/core/domain"
	"github.com/workhive/marketplace-api/internal/core/ports"
)

const (
	defaultOTPTTL      = 10 * time.Minute
	defaultOTPCooldown = time.Minute
	otpDigits          = 6
)

// AuthOptions tunes AuthService.
type AuthOptions struct {
	// RevalidateOnRefresh re-reads suspended/deleted flags before a refresh
	// token is allowed to mint a new access token.
	RevalidateOnRefresh bool
	OTPTTL              time.Duration
	// OTPCooldown is the minimum gap between two codes for the same email.
	OTPCooldown time.Duration
	BcryptCost  int
}

// AuthService implements credential issuance, login and account lifecycle.
type AuthService struct {
	identities ports.IdentityRepository
	tokens     ports.TokenService
	otps       ports.OTPStore
	throttle   ports.RequestThrottle
	events     ports.EventEmitter
	opts       AuthOptions
	log        zerolog.Logger
	now        func() time.Time
}

func NewAuthService(
	identities ports.IdentityRepository,
	tokens ports.TokenService,
	otps ports.OTPStore,
	throttle ports.RequestThrottle,
	events ports.EventEmitter,
	opts AuthOptions,
	log zerolog.Logger,
) *AuthService {
	if opts.OTPTTL <= 0 {
		opts.OTPTTL = defaultOTPTTL
	}
	if opts.OTPCooldown <= 0 {
		opts.OTPCooldown = defaultOTPCooldown
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		identities: identities,
		tokens:     tokens,
		otps:       otps,
		throttle:   throttle,
		events:     events,
		opts:       opts,
		log:        log,
		now:        time.Now,
	}
}

func (s *AuthService) SignUp(ctx context.Context, in ports.SignUpInput) (*ports.Session, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.E(domain.KindValidation, "email and password are required")
	}
	if !in.ProfileType.Valid() {
		return nil, domain.E(domain.KindValidation, "profileType must be one of WORKER BUSINESS")
	}

	_, err := s.identities.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, domain.ErrIdentityExists
	case !errors.Is(err, domain.ErrIdentityNotFound):
		return nil, fmt.Errorf("sign up: lookup: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("sign up: hash password: %w", err)
	}

	now := s.now().UTC()
	identity := &domain.Identity{
		Email:          email,
		PasswordHash:   string(hash),
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		Role:           in.ProfileType.Role(),
		DefaultProfile: in.ProfileType,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	worker, business := s.initialProfile(identity, in.ProfileType)

	if err := s.identities.Create(ctx, identity, worker, business); err != nil {
		if errors.Is(err, domain.ErrIdentityExists) {
			return nil, err
		}
		return nil, fmt.Errorf("sign up: create: %w", err)
	}

	tokens, err := s.tokens.IssuePair(identity.Claims())
	if err != nil {
		return nil, fmt.Errorf("sign up: issue tokens: %w", err)
	}

	s.emit(domain.EventSignedUp, identity, map[string]string{"profileType": string(in.ProfileType)})
	return &ports.Session{Identity: identity, Tokens: tokens}, nil
}

// SignIn never tells an unknown email apart from a wrong password.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*ports.Session, error) {
	identity, err := s.identities.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("sign in: lookup: %w", err)
	}
	if !identity.HasPassword() {
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := accountUsable(identity); err != nil {
		return nil, err
	}

	tokens, err := s.tokens.IssuePair(identity.Claims())
	if err != nil {
		return nil, fmt.Errorf("sign in: issue tokens: %w", err)
	}

	s.emit(domain.EventSignedIn, identity, nil)
	return &ports.Session{Identity: identity, Tokens: tokens}, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.Claims, *ports.AccessGrant, error) {
	claims, kind, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return nil, nil, err
	}
	if kind != domain.TokenRefresh {
		return nil, nil, domain.ErrTokenInvalid
	}

	if s.opts.RevalidateOnRefresh {
		identity, err := s.identities.FindByID(ctx, claims.ID)
		if err != nil {
			if errors.Is(err, domain.ErrIdentityNotFound) {
				return nil, nil, domain.ErrAccountDeleted
			}
			return nil, nil, fmt.Errorf("refresh: lookup: %w", err)
		}
		if err := accountUsable(identity); err != nil {
			return nil, nil, err
		}
	}

	token, expiresAt, err := s.tokens.IssueAccess(*claims)
	if err != nil {
		return nil, nil, fmt.Errorf("refresh: issue access: %w", err)
	}
	return claims, &ports.AccessGrant{Token: token, ExpiresAt: expiresAt}, nil
}

// SignOut only records the event; tokens are stateless.
func (s *AuthService) SignOut(_ context.Context, claims *domain.Claims) {
	if claims == nil {
		return
	}
	s.events.Emit(domain.AuthEvent{
		Type:       domain.EventSignedOut,
		IdentityID: claims.ID,
		Email:      claims.Email,
		OccurredAt: s.now().UTC(),
	})
}

func (s *AuthService) IsVerified(ctx context.Context, identityID string) (bool, error) {
	identity, err := s.identities.FindByID(ctx, identityID)
	if err != nil {
		return false, err
	}
	return identity.Verified, nil
}

func (s *AuthService) DeleteAccount(ctx context.Context, identityID string) error {
	identity, err := s.identities.FindByID(ctx, identityID)
	if err != nil {
		return err
	}
	if identity.Deleted {
		return domain.ErrAccountDeleted
	}
	if err := s.identities.SoftDelete(ctx, identityID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	s.emit(domain.EventDeleted, identity, nil)
	return nil
}

// RecoverPassword changes the password of the signed-in identity. Unlike
// ResetPassword, the new password must differ from the current one.
func (s *AuthService) RecoverPassword(ctx context.Context, identityID, email, newPassword string) error {
	identity, err := s.identities.FindByID(ctx, identityID)
	if err != nil {
		return err
	}
	if identity.Email != domain.NormalizeEmail(email) {
		return domain.E(domain.KindForbidden, "Email does not match the signed-in account")
	}
	if identity.HasPassword() &&
		bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(newPassword)) == nil {
		return domain.ErrSamePassword
	}

	if err := s.setPassword(ctx, identity, newPassword, "recovery"); err != nil {
		return fmt.Errorf("recover password: %w", err)
	}
	return nil
}

// RequestOTP stores a fresh one-time code for email and emits it for
// delivery. Unknown or deleted accounts and throttled requests succeed
// silently.
func (s *AuthService) RequestOTP(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, "otp:"+email, s.opts.OTPCooldown)
		if err != nil {
			s.log.Warn().Err(err).Msg("otp throttle check failed, issuing anyway")
		} else if !allowed {
			s.log.Debug().Msg("otp request throttled")
			return nil
		}
	}
	identity, err := s.identities.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			s.log.Debug().Msg("otp requested for unknown account")
			return nil
		}
		return fmt.Errorf("request otp: lookup: %w", err)
	}
	if identity.Deleted {
		s.log.Debug().Str("identity_id", identity.ID).Msg("otp requested for deleted account")
		return nil
	}

	code, err := generateOTP(otpDigits)
	if err != nil {
		return fmt.Errorf("request otp: generate: %w", err)
	}
	if err := s.otps.Save(ctx, email, code, s.opts.OTPTTL); err != nil {
		return fmt.Errorf("request otp: save: %w", err)
	}

	ev := s.event(domain.EventOTPRequested, identity, nil)
	ev.Secret = code
	s.events.Emit(ev)
	return nil
}

// ResetPassword consumes the OTP and sets the new password. It does not
// compare against the current password.
func (s *AuthService) ResetPassword(ctx context.Context, in ports.ResetPasswordInput) error {
	email := domain.NormalizeEmail(in.Email)
	ok, err := s.otps.Consume(ctx, email, in.OTP)
	if err != nil {
		return fmt.Errorf("reset password: consume otp: %w", err)
	}
	if !ok {
		return domain.ErrInvalidOTP
	}

	identity, err := s.identities.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return domain.ErrInvalidOTP
		}
		return fmt.Errorf("reset password: lookup: %w", err)
	}
	if identity.Deleted {
		return domain.ErrAccountDeleted
	}

	if err := s.setPassword(ctx, identity, in.Password, "otp"); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

func (s *AuthService) Account(ctx context.Context, identityID string) (*ports.Account, error) {
	identity, err := s.identities.FindByID(ctx, identityID)
	if err != nil {
		return nil, err
	}
	worker, business, err := s.identities.Profiles(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("account: profiles: %w", err)
	}
	return &ports.Account{Identity: identity, Worker: worker, Business: business}, nil
}

// SwitchProfile makes kind the default profile and re-issues tokens so the
// new role takes effect immediately. Staff keep their role.
func (s *AuthService) SwitchProfile(ctx context.Context, identityID string, kind domain.ProfileKind) (*ports.Session, error) {
	if !kind.Valid() {
		return nil, domain.E(domain.KindValidation, "profileType must be one of WORKER BUSINESS")
	}
	identity, err := s.identities.FindByID(ctx, identityID)
	if err != nil {
		return nil, err
	}
	if err := accountUsable(identity); err != nil {
		return nil, err
	}

	role := identity.Role
	if !role.IsStaff() {
		role = kind.Role()
	}
	worker, business := s.initialProfile(identity, kind)

	updated, err := s.identities.SwitchProfile(ctx, identityID, kind, role, worker, business)
	if err != nil {
		return nil, fmt.Errorf("switch profile: %w", err)
	}
	tokens, err := s.tokens.IssuePair(updated.Claims())
	if err != nil {
		return nil, fmt.Errorf("switch profile: issue tokens: %w", err)
	}

	s.emit(domain.EventProfileSwitched, updated, map[string]string{"profileType": string(kind)})
	return &ports.Session{Identity: updated, Tokens: tokens}, nil
}

func (s *AuthService) setPassword(ctx context.Context, identity *domain.Identity, password, via string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.identities.UpdatePassword(ctx, identity.ID, string(hash)); err != nil {
		return err
	}
	s.emit(domain.EventPasswordChanged, identity, map[string]string{"via": via})
	return nil
}

func (s *AuthService) initialProfile(identity *domain.Identity, kind domain.ProfileKind) (*domain.WorkerProfile, *domain.BusinessProfile) {
	now := s.now().UTC()
	if kind == domain.ProfileBusiness {
		name := strings.TrimSpace(identity.FirstName + " " + identity.LastName)
		return nil, &domain.BusinessProfile{Name: name, Slug: uniqueSlug(name), CreatedAt: now}
	}
	return &domain.WorkerProfile{Skills: []string{}, CreatedAt: now}, nil
}

func (s *AuthService) event(typ domain.AuthEventType, identity *domain.Identity, meta map[string]string) domain.AuthEvent {
	return domain.AuthEvent{
		Type:       typ,
		IdentityID: identity.ID,
		Email:      identity.Email,
		OccurredAt: s.now().UTC(),
		Metadata:   meta,
	}
}

func (s *AuthService) emit(typ domain.AuthEventType, identity *domain.Identity, meta map[string]string) {
	s.events.Emit(s.event(typ, identity, meta))
}

// accountUsable rejects deleted and suspended identities with distinct errors.
func accountUsable(identity *domain.Identity) error {
	if identity.Deleted {
		return domain.ErrAccountDeleted
	}
	if identity.Suspended {
		return domain.ErrAccountSuspended
	}
	return nil
}

func generateOTP(digits int) (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < digits; i++ {
		limit.Mul(limit, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n.Int64()), nil
}
