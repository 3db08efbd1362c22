package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/workhive/marketplace-api/internal/core/domain"
)

func cookiesByName(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, ck := range rec.Result().Cookies() {
		out[ck.Name] = ck
	}
	return out
}

func TestCookies_Development(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewCookies(CookieConfig{Domain: "ignored.example"}).SetPair(c, domain.TokenPair{AccessToken: "a", RefreshToken: "r"})

	got := cookiesByName(rec)
	access, refresh := got[CookieAccess], got[CookieRefresh]
	if access == nil || refresh == nil {
		t.Fatalf("expected both cookies, got %v", got)
	}
	if !access.HttpOnly || access.Secure || access.SameSite != http.SameSiteLaxMode || access.Domain != "" {
		t.Fatalf("unexpected development attributes: %+v", access)
	}
	if access.MaxAge != int((24 * time.Hour).Seconds()) {
		t.Fatalf("unexpected access max-age %d", access.MaxAge)
	}
	if refresh.MaxAge != int((365 * 24 * time.Hour).Seconds()) {
		t.Fatalf("unexpected refresh max-age %d", refresh.MaxAge)
	}
}

func TestCookies_Production(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewCookies(CookieConfig{Production: true, Domain: "workhive.io"}).SetAccess(c, "a")

	access := cookiesByName(rec)[CookieAccess]
	if access == nil {
		t.Fatalf("expected access cookie")
	}
	if !access.Secure || access.SameSite != http.SameSiteNoneMode || access.Domain != "workhive.io" {
		t.Fatalf("unexpected production attributes: %+v", access)
	}
}

func TestCookies_Clear(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewCookies(CookieConfig{}).Clear(c)

	got := cookiesByName(rec)
	for _, name := range []string{CookieAccess, CookieRefresh} {
		ck := got[name]
		if ck == nil || ck.Value != "" || ck.MaxAge >= 0 {
			t.Fatalf("expected %s to be expired, got %+v", name, ck)
		}
	}
}
