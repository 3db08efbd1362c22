package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/workhive/marketplace-api/internal/core/domain"
)

// Client transport headers. Mobile clients carry tokens in headers; every
// other client carries them in cookies.
const (
	HeaderClient        = "x-client"
	HeaderClientAccess  = "x-client-access"
	HeaderClientRefresh = "x-client-refresh"
	HeaderRefreshToken  = "x-refresh-token"

	clientMobile = "mobile"
	identityKey  = "identity"
)

// IsMobile reports whether the request declares itself as a mobile client.
func IsMobile(c echo.Context) bool {
	return strings.EqualFold(strings.TrimSpace(c.Request().Header.Get(HeaderClient)), clientMobile)
}

// SetIdentity attaches resolved claims to the request.
func SetIdentity(c echo.Context, claims *domain.Claims) {
	c.Set(identityKey, claims)
}

// Identity returns the claims attached by the session middleware, if any.
func Identity(c echo.Context) (*domain.Claims, bool) {
	claims, ok := c.Get(identityKey).(*domain.Claims)
	return claims, ok && claims != nil
}

func requestTokens(c echo.Context, mobile bool) (access, refresh string) {
	if mobile {
		h := c.Request().Header
		return strings.TrimSpace(h.Get(HeaderClientAccess)), strings.TrimSpace(h.Get(HeaderClientRefresh))
	}
	if ck, err := c.Cookie(CookieAccess); err == nil {
		access = ck.Value
	}
	if ck, err := c.Cookie(CookieRefresh); err == nil {
		refresh = ck.Value
	}
	return access, refresh
}
