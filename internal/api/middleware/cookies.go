package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/workhive/marketplace-api/internal/core/domain"
)

const (
	CookieAccess  = "access_token"
	CookieRefresh = "refresh_token"
)

// CookieConfig controls the attributes of session cookies.
type CookieConfig struct {
	Production    bool
	Domain        string
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
}

// Cookies writes and clears the session cookies of non-mobile clients.
type Cookies struct {
	cfg CookieConfig
}

func NewCookies(cfg CookieConfig) *Cookies {
	if cfg.AccessMaxAge <= 0 {
		cfg.AccessMaxAge = 24 * time.Hour
	}
	if cfg.RefreshMaxAge <= 0 {
		cfg.RefreshMaxAge = 365 * 24 * time.Hour
	}
	return &Cookies{cfg: cfg}
}

func (k *Cookies) SetAccess(c echo.Context, token string) {
	c.SetCookie(k.build(CookieAccess, token, k.cfg.AccessMaxAge))
}

func (k *Cookies) SetPair(c echo.Context, pair domain.TokenPair) {
	c.SetCookie(k.build(CookieAccess, pair.AccessToken, k.cfg.AccessMaxAge))
	c.SetCookie(k.build(CookieRefresh, pair.RefreshToken, k.cfg.RefreshMaxAge))
}

// Clear expires both session cookies.
func (k *Cookies) Clear(c echo.Context) {
	for _, name := range []string{CookieAccess, CookieRefresh} {
		ck := k.build(name, "", 0)
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
		c.SetCookie(ck)
	}
}

func (k *Cookies) build(name, value string, maxAge time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if k.cfg.Production {
		ck.Secure = true
		ck.SameSite = http.SameSiteNoneMode
		ck.Domain = k.cfg.Domain
	}
	return ck
}
