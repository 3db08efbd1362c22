package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/workhive/marketplace-api/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"not found", domain.ErrJobNotFound, http.StatusNotFound, "Job not found"},
		{"validation", domain.E(domain.KindValidation, "email is required"), http.StatusUnprocessableEntity, "email is required"},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid Credentials"},
		{"forbidden", domain.ErrAccountSuspended, http.StatusForbidden, "Account is suspended"},
		{"conflict wrapped", fmt.Errorf("sign up: %w", domain.ErrIdentityExists), http.StatusConflict, "An account with this email already exists"},
		{"unavailable", domain.ErrAssetStoreDisabled, http.StatusServiceUnavailable, "File storage is not configured"},
		{"bind", echo.NewHTTPError(http.StatusBadRequest, "Invalid request body"), http.StatusBadRequest, "Invalid request body"},
		{"route", echo.ErrNotFound, http.StatusNotFound, "Not Found"},
		{"unknown", errors.New("pq: connection refused"), http.StatusInternalServerError, "Internal server error"},
		{"internal kind", domain.Wrap(domain.KindInternal, "store failure", errors.New("boom")), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body["message"] != tt.message {
				t.Fatalf("expected message %q, got %q", tt.message, body["message"])
			}
		})
	}
}

func TestHTTPErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.String(http.StatusOK, "done")

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrForbidden, c)

	if rec.Code != http.StatusOK || rec.Body.String() != "done" {
		t.Fatalf("committed response must be left alone, got %d %q", rec.Code, rec.Body.String())
	}
}
