package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/workhive/marketplace-api/internal/api/metrics"
	"github.com/workhive/marketplace-api/internal/core/domain"
	"github.com/workhive/marketplace-api/internal/core/ports"
)

// TokenVerifier is the part of the token service the middleware needs.
type TokenVerifier interface {
	Verify(token string) (*domain.Claims, domain.TokenKind, error)
}

// SessionRefresher mints an access token from a refresh token.
type SessionRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*domain.Claims, *ports.AccessGrant, error)
}

// Session resolves the caller's identity on every request.
//
//   - no access token: anonymous
//   - valid access token: identity attached, refresh token untouched
//   - expired access token, mobile client: 401, mobile clients call PUT /refresh
//   - expired access token, cookie client: the refresh token is exchanged for
//     a new access cookie; any failure leaves the request anonymous
//   - invalid access token: anonymous
func Session(tokens TokenVerifier, refresher SessionRefresher, cookies *Cookies, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			mobile := IsMobile(c)
			access, refresh := requestTokens(c, mobile)
			if access == "" {
				return next(c)
			}

			claims, kind, err := tokens.Verify(access)
			switch {
			case err == nil:
				if kind == domain.TokenAccess {
					SetIdentity(c, claims)
				}
				return next(c)

			case errors.Is(err, domain.ErrTokenExpired):
				if mobile {
					metrics.SessionRefreshesTotal.WithLabelValues("mobile_rejected").Inc()
					return domain.ErrTokenExpired
				}
				if refresh == "" {
					metrics.SessionRefreshesTotal.WithLabelValues("no_refresh").Inc()
					return next(c)
				}

				claims, grant, err := refresher.Refresh(c.Request().Context(), refresh)
				if err != nil {
					result := "invalid_refresh"
					if errors.Is(err, domain.ErrAccountDeleted) || errors.Is(err, domain.ErrAccountSuspended) {
						result = "revoked"
					}
					metrics.SessionRefreshesTotal.WithLabelValues(result).Inc()
					log.Debug().Err(err).Str("result", result).Msg("session refresh skipped")
					return next(c)
				}

				cookies.SetAccess(c, grant.Token)
				SetIdentity(c, claims)
				metrics.SessionRefreshesTotal.WithLabelValues("refreshed").Inc()
				return next(c)

			default:
				return next(c)
			}
		}
	}
}
