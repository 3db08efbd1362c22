package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/workhive/marketplace-api/internal/core/domain"
)

const (
	defaultAccessTTL  = 12 * time.Hour
	defaultRefreshTTL = 365 * 24 * time.Hour
)

// tokenClaims is the signed payload. The identity ID travels as "sub".
type tokenClaims struct {
	Email          string             `json:"email"`
	FirstName      string             `json:"firstName"`
	LastName       string             `json:"lastName"`
	Role           domain.Role        `json:"role"`
	DefaultProfile domain.ProfileKind `json:"defaultProfile"`
	Kind           domain.TokenKind   `json:"typ"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 identity tokens with a single secret.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration, opts ...TokenOption) *TokenService {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	s := &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sign encodes claims with an expiry of now+lifetime. A negative lifetime
// yields an already expired token.
func (s *TokenService) Sign(claims domain.Claims, kind domain.TokenKind, lifetime time.Duration) (string, error) {
	if claims.ID == "" || !claims.Role.Valid() {
		return "", domain.ErrInvalidClaims
	}
	if kind != domain.TokenAccess && kind != domain.TokenRefresh {
		return "", domain.ErrInvalidClaims
	}

	now := s.now()
	tc := tokenClaims{
		Email:          claims.Email,
		FirstName:      claims.FirstName,
		LastName:       claims.LastName,
		Role:           claims.Role,
		DefaultProfile: claims.DefaultProfile,
		Kind:           kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(s.secret)
}

// Verify returns the claims of a well-signed unexpired token.
// domain.ErrTokenExpired is only returned once the signature has checked out.
func (s *TokenService) Verify(token string) (*domain.Claims, domain.TokenKind, error) {
	tc := &tokenClaims{}
	_, err := jwt.ParseWithClaims(token, tc,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, "", domain.ErrTokenExpired
		}
		return nil, "", domain.ErrTokenInvalid
	}
	if tc.Subject == "" || (tc.Kind != domain.TokenAccess && tc.Kind != domain.TokenRefresh) {
		return nil, "", domain.ErrTokenInvalid
	}

	return &domain.Claims{
		ID:             tc.Subject,
		Email:          tc.Email,
		FirstName:      tc.FirstName,
		LastName:       tc.LastName,
		Role:           tc.Role,
		DefaultProfile: tc.DefaultProfile,
	}, tc.Kind, nil
}

// IssueAccess mints an access token and reports when it expires.
func (s *TokenService) IssueAccess(claims domain.Claims) (string, time.Time, error) {
	token, err := s.Sign(claims, domain.TokenAccess, s.accessTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, s.now().Add(s.accessTTL), nil
}

// IssuePair mints an access and a refresh token for the same claims.
func (s *TokenService) IssuePair(claims domain.Claims) (domain.TokenPair, error) {
	access, accessExp, err := s.IssueAccess(claims)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.Sign(claims, domain.TokenRefresh, s.refreshTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: s.now().Add(s.refreshTTL),
	}, nil
}
