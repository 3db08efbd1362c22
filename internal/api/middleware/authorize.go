package middleware

import (
	"context"
	"fmt"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/workhive/marketplace-api/internal/api/metrics"
	"github.com/workhive/marketplace-api/internal/core/domain"
)

// Policy declares who may reach a route. Empty Roles admits any identity;
// Forbidden lists restrictions that deny access.
type Policy struct {
	Roles     []domain.Role
	Forbidden []domain.RestrictionKind
}

// RestrictionChecker looks up capability denials.
type RestrictionChecker interface {
	HasAny(ctx context.Context, identityID string, kinds []domain.RestrictionKind) (bool, error)
}

// Authorize enforces p against the identity attached by Session.
func Authorize(p Policy, restrictions RestrictionChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := Identity(c)
			if !ok {
				metrics.AuthorizationDenialsTotal.WithLabelValues("unauthenticated").Inc()
				return domain.ErrUnauthorized
			}

			if len(p.Roles) > 0 && !slices.Contains(p.Roles, claims.Role) {
				metrics.AuthorizationDenialsTotal.WithLabelValues("role").Inc()
				return domain.ErrForbidden
			}

			if len(p.Forbidden) > 0 {
				denied, err := restrictions.HasAny(c.Request().Context(), claims.ID, p.Forbidden)
				if err != nil {
					return fmt.Errorf("authorize: restriction lookup: %w", err)
				}
				if denied {
					metrics.AuthorizationDenialsTotal.WithLabelValues("restriction").Inc()
					return domain.ErrForbidden
				}
			}

			return next(c)
		}
	}
}
