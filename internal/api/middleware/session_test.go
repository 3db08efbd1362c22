package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/workhive/marketplace-api/internal/core/domain"
	"github.com/workhive/marketplace-api/internal/core/ports"
)

type verifyResult struct {
	claims *domain.Claims
	kind   domain.TokenKind
	err    error
}

type stubVerifier struct {
	results map[string]verifyResult
}

func (s *stubVerifier) Verify(token string) (*domain.Claims, domain.TokenKind, error) {
	r, ok := s.results[token]
	if !ok {
		return nil, "", domain.ErrTokenInvalid
	}
	return r.claims, r.kind, r.err
}

type stubRefresher struct {
	calls  int
	claims *domain.Claims
	err    error
}

func (s *stubRefresher) Refresh(_ context.Context, _ string) (*domain.Claims, *ports.AccessGrant, error) {
	s.calls++
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.claims, &ports.AccessGrant{Token: "new-access", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

var (
	accessClaims  = &domain.Claims{ID: "id-access", Role: domain.RoleWorker, DefaultProfile: domain.ProfileWorker}
	refreshClaims = &domain.Claims{ID: "id-refresh", Role: domain.RoleWorker, DefaultProfile: domain.ProfileWorker}
)

func newVerifier() *stubVerifier {
	return &stubVerifier{results: map[string]verifyResult{
		"valid":   {claims: accessClaims, kind: domain.TokenAccess},
		"expired": {err: domain.ErrTokenExpired},
		"refresh": {claims: refreshClaims, kind: domain.TokenRefresh},
	}}
}

type sessionCase struct {
	mobile  bool
	access  string
	refresh string
}

func runSession(t *testing.T, tc sessionCase, refresher *stubRefresher) (rec *httptest.ResponseRecorder, seen *domain.Claims, called bool, err error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if tc.mobile {
		req.Header.Set(HeaderClient, "mobile")
		if tc.access != "" {
			req.Header.Set(HeaderClientAccess, tc.access)
		}
		if tc.refresh != "" {
			req.Header.Set(HeaderClientRefresh, tc.refresh)
		}
	} else {
		if tc.access != "" {
			req.AddCookie(&http.Cookie{Name: CookieAccess, Value: tc.access})
		}
		if tc.refresh != "" {
			req.AddCookie(&http.Cookie{Name: CookieRefresh, Value: tc.refresh})
		}
	}
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Session(newVerifier(), refresher, NewCookies(CookieConfig{}), zerolog.Nop())
	err = mw(func(c echo.Context) error {
		called = true
		seen, _ = Identity(c)
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, seen, called, err
}

func TestSession_NoToken(t *testing.T) {
	refresher := &stubRefresher{}
	rec, seen, called, err := runSession(t, sessionCase{}, refresher)
	if err != nil || !called {
		t.Fatalf("expected next to run, err=%v", err)
	}
	if seen != nil {
		t.Fatalf("expected anonymous request")
	}
	if refresher.calls != 0 || rec.Header().Get("Set-Cookie") != "" {
		t.Fatalf("no refresh or cookie expected")
	}
}

func TestSession_ValidAccessNeverRefreshes(t *testing.T) {
	for _, mobile := range []bool{false, true} {
		refresher := &stubRefresher{claims: refreshClaims}
		rec, seen, called, err := runSession(t, sessionCase{mobile: mobile, access: "valid", refresh: "refresh"}, refresher)
		if err != nil || !called {
			t.Fatalf("mobile=%v: expected next to run, err=%v", mobile, err)
		}
		if seen == nil || seen.ID != accessClaims.ID {
			t.Fatalf("mobile=%v: expected access claims, got %+v", mobile, seen)
		}
		if refresher.calls != 0 {
			t.Fatalf("mobile=%v: refresh token must not be used", mobile)
		}
		if rec.Header().Get("Set-Cookie") != "" {
			t.Fatalf("mobile=%v: no cookie expected", mobile)
		}
	}
}

func TestSession_ExpiredWithRefreshCookieClient(t *testing.T) {
	refresher := &stubRefresher{claims: refreshClaims}
	rec, seen, called, err := runSession(t, sessionCase{access: "expired", refresh: "refresh"}, refresher)
	if err != nil || !called {
		t.Fatalf("expected next to run, err=%v", err)
	}
	if seen == nil || seen.ID != refreshClaims.ID {
		t.Fatalf("expected refresh claims, got %+v", seen)
	}

	var found bool
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == CookieAccess && ck.Value == "new-access" && ck.HttpOnly {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a new access_token cookie, got %v", rec.Header().Values("Set-Cookie"))
	}
}

func TestSession_ExpiredMobileIsRejected(t *testing.T) {
	for _, refresh := range []string{"", "refresh"} {
		refresher := &stubRefresher{claims: refreshClaims}
		_, _, called, err := runSession(t, sessionCase{mobile: true, access: "expired", refresh: refresh}, refresher)
		if called {
			t.Fatalf("refresh=%q: handler must not run", refresh)
		}
		if !errors.Is(err, domain.ErrTokenExpired) || domain.KindOf(err) != domain.KindUnauthorized {
			t.Fatalf("refresh=%q: expected unauthorized expiry, got %v", refresh, err)
		}
		if refresher.calls != 0 {
			t.Fatalf("refresh=%q: mobile clients are never refreshed transparently", refresh)
		}
	}
}

func TestSession_ExpiredWithoutRefreshIsAnonymous(t *testing.T) {
	refresher := &stubRefresher{}
	_, seen, called, err := runSession(t, sessionCase{access: "expired"}, refresher)
	if err != nil || !called || seen != nil {
		t.Fatalf("expected anonymous pass-through, err=%v seen=%+v", err, seen)
	}
}

func TestSession_FailedRefreshIsAnonymous(t *testing.T) {
	for _, cause := range []error{domain.ErrTokenInvalid, domain.ErrAccountSuspended} {
		refresher := &stubRefresher{err: cause}
		rec, seen, called, err := runSession(t, sessionCase{access: "expired", refresh: "garbage"}, refresher)
		if err != nil || !called || seen != nil {
			t.Fatalf("%v: expected anonymous pass-through, err=%v seen=%+v", cause, err, seen)
		}
		if rec.Header().Get("Set-Cookie") != "" {
			t.Fatalf("%v: no cookie expected", cause)
		}
	}
}

func TestSession_InvalidAccessIsAnonymous(t *testing.T) {
	refresher := &stubRefresher{claims: refreshClaims}
	_, seen, called, err := runSession(t, sessionCase{mobile: true, access: "tampered", refresh: "refresh"}, refresher)
	if err != nil || !called || seen != nil {
		t.Fatalf("expected anonymous pass-through, err=%v seen=%+v", err, seen)
	}
	if refresher.calls != 0 {
		t.Fatalf("invalid access tokens never trigger a refresh")
	}
}

func TestSession_RefreshTokenAsAccessIsAnonymous(t *testing.T) {
	_, seen, called, err := runSession(t, sessionCase{access: "refresh"}, &stubRefresher{})
	if err != nil || !called || seen != nil {
		t.Fatalf("a refresh token must not authenticate as access, seen=%+v", seen)
	}
}
