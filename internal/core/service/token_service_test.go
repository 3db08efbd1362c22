package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/workhive/marketplace-api/internal/core/domain"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleClaims() domain.Claims {
	return domain.Claims{
		ID:             "2b1f7d0e-9c1a-4e55-8d2f-5a1e4e3b9f10",
		Email:          "a@b.com",
		FirstName:      "A",
		LastName:       "B",
		Role:           domain.RoleWorker,
		DefaultProfile: domain.ProfileWorker,
	}
}

func clockAt(t *time.Time) TokenOption {
	return WithClock(func() time.Time { return *t })
}

func TestTokenService_RoundTrip(t *testing.T) {
	now := fixedNow
	svc := NewTokenService("secret", time.Hour, 24*time.Hour, clockAt(&now))

	for _, kind := range []domain.TokenKind{domain.TokenAccess, domain.TokenRefresh} {
		token, err := svc.Sign(sampleClaims(), kind, time.Hour)
		if err != nil {
			t.Fatalf("Sign(%s) returned error: %v", kind, err)
		}

		claims, gotKind, err := svc.Verify(token)
		if err != nil {
			t.Fatalf("Verify(%s) returned error: %v", kind, err)
		}
		if *claims != sampleClaims() {
			t.Fatalf("claims mismatch: got %+v want %+v", *claims, sampleClaims())
		}
		if gotKind != kind {
			t.Fatalf("expected kind %s, got %s", kind, gotKind)
		}
	}
}

func TestTokenService_ExpiredIsDistinctFromInvalid(t *testing.T) {
	now := fixedNow
	svc := NewTokenService("secret", time.Hour, 24*time.Hour, clockAt(&now))

	token, err := svc.Sign(sampleClaims(), domain.TokenAccess, time.Minute)
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}

	now = fixedNow.Add(2 * time.Minute)
	if _, _, err := svc.Verify(token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}

	other := NewTokenService("other-secret", time.Hour, time.Hour, clockAt(&now))
	if _, _, err := other.Verify(token); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for a foreign signature, got %v", err)
	}
}

func TestTokenService_NegativeLifetimeYieldsExpiredToken(t *testing.T) {
	now := fixedNow
	svc := NewTokenService("secret", time.Hour, time.Hour, clockAt(&now))

	token, err := svc.Sign(sampleClaims(), domain.TokenAccess, -time.Minute)
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}
	if _, _, err := svc.Verify(token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_RejectsGarbageAndForeignAlgorithms(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, time.Hour)

	if _, _, err := svc.Verify("not-a-token"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "x", "role": "WORKER", "typ": "access",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("building unsigned token: %v", err)
	}
	if _, _, err := svc.Verify(unsigned); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for alg=none, got %v", err)
	}
}

func TestTokenService_SignRejectsMalformedClaims(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, time.Hour)

	noID := sampleClaims()
	noID.ID = ""
	if _, err := svc.Sign(noID, domain.TokenAccess, time.Hour); !errors.Is(err, domain.ErrInvalidClaims) {
		t.Fatalf("expected ErrInvalidClaims for missing id, got %v", err)
	}

	badRole := sampleClaims()
	badRole.Role = "WORK"
	if _, err := svc.Sign(badRole, domain.TokenAccess, time.Hour); !errors.Is(err, domain.ErrInvalidClaims) {
		t.Fatalf("expected ErrInvalidClaims for unknown role, got %v", err)
	}
}

func TestTokenService_IssuePair(t *testing.T) {
	now := fixedNow
	svc := NewTokenService("secret", 12*time.Hour, 8760*time.Hour, clockAt(&now))

	pair, err := svc.IssuePair(sampleClaims())
	if err != nil {
		t.Fatalf("IssuePair returned error: %v", err)
	}
	if !pair.AccessExpiresAt.Equal(fixedNow.Add(12 * time.Hour)) {
		t.Fatalf("unexpected access expiry: %v", pair.AccessExpiresAt)
	}
	if !pair.RefreshExpiresAt.Equal(fixedNow.Add(8760 * time.Hour)) {
		t.Fatalf("unexpected refresh expiry: %v", pair.RefreshExpiresAt)
	}

	if _, kind, err := svc.Verify(pair.AccessToken); err != nil || kind != domain.TokenAccess {
		t.Fatalf("access token: kind=%s err=%v", kind, err)
	}
	if _, kind, err := svc.Verify(pair.RefreshToken); err != nil || kind != domain.TokenRefresh {
		t.Fatalf("refresh token: kind=%s err=%v", kind, err)
	}
}
