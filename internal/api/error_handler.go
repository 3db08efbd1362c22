package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/workhive/marketplace-api/internal/core/domain"
	"github.com/workhive/marketplace-api/pkg/logger"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Message string `json:"message"`
}

var kindStatus = map[domain.Kind]int{
	domain.KindNotFound:     http.StatusNotFound,
	domain.KindValidation:   http.StatusUnprocessableEntity,
	domain.KindUnauthorized: http.StatusUnauthorized,
	domain.KindForbidden:    http.StatusForbidden,
	domain.KindConflict:     http.StatusConflict,
	domain.KindUnavailable:  http.StatusServiceUnavailable,
}

// NewHTTPErrorHandler returns the one place errors become responses. Domain
// errors map by kind; anything unclassified is logged and rendered as a
// generic 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var de *domain.Error
	if errors.As(err, &de) {
		if status, ok := kindStatus[de.Kind]; ok {
			return status, de.Message
		}
	}

	// Echo's own errors: bind failures, unknown routes, wrong methods.
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	reqLog := logger.FromContext(c.Request().Context())
	if reqLog.GetLevel() == zerolog.Disabled {
		reqLog = log
	}
	reqLog.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "Internal server error"
}
