package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/workhive/marketplace-api/internal/api/middleware"
	"github.com/workhive/marketplace-api/internal/core/domain"
)

// currentIdentity returns the claims resolved by the session middleware.
// Routes behind Authorize always have them; the check keeps handlers safe
// when mounted without it.
func currentIdentity(c echo.Context) (*domain.Claims, error) {
	claims, ok := middleware.Identity(c)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// bind decodes and validates a request. Decoding failures are a 400; rule
// violations a 422.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	return c.Validate(req)
}

func respond(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, envelope{Message: message, Data: data})
}
