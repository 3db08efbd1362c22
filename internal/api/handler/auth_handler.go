package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/workhive/marketplace-api/internal/api/metrics"
	"github.com/workhive/marketplace-api/internal/api/middleware"
	"github.com/workhive/marketplace-api/internal/core/domain"
	"github.com/workhive/marketplace-api/internal/core/ports"
)

type AuthHandler struct {
	auth    ports.AuthService
	cookies *middleware.Cookies
}

func NewAuthHandler(auth ports.AuthService, cookies *middleware.Cookies) *AuthHandler {
	return &AuthHandler{auth: auth, cookies: cookies}
}

// SignUp creates an account with its first profile and opens a session.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        x-client  header    string         false  "mobile to receive tokens in the body"
// @Param        body      body      signUpRequest  true   "Account details"
// @Success      201       {object}  envelope{data=sessionData}
// @Failure      400       {object}  errorResponse
// @Failure      409       {object}  errorResponse
// @Failure      422       {object}  errorResponse
// @Router       /sign-up [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := h.auth.SignUp(c.Request().Context(), ports.SignUpInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		ProfileType: domain.ProfileKind(req.ProfileType),
	})
	if err != nil {
		return err
	}

	metrics.SignUpsTotal.WithLabelValues(req.ProfileType).Inc()
	return h.issue(c, http.StatusCreated, "Account created", session)
}

// SignIn opens a session for existing credentials.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        x-client  header    string         false  "mobile to receive tokens in the body"
// @Param        body      body      signInRequest  true   "Credentials"
// @Success      200       {object}  envelope{data=sessionData}
// @Failure      401       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Router       /sign-in [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := h.auth.SignIn(c.Request().Context(), req.Email, req.Password)
	metrics.SignInsTotal.WithLabelValues(signInResult(err)).Inc()
	if err != nil {
		return err
	}
	return h.issue(c, http.StatusOK, "Signed in", session)
}

// Refresh exchanges the x-refresh-token header for a new access token.
//
// @Summary      Refresh the access token
// @Tags         auth
// @Produce      json
// @Param        x-refresh-token  header    string  true  "Refresh token"
// @Success      200              {object}  envelope{data=refreshData}
// @Failure      401              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Router       /refresh [put]
func (h *AuthHandler) Refresh(c echo.Context) error {
	token := strings.TrimSpace(c.Request().Header.Get(middleware.HeaderRefreshToken))
	if token == "" {
		return domain.E(domain.KindUnauthorized, "Refresh token required")
	}

	_, grant, err := h.auth.Refresh(c.Request().Context(), token)
	if err != nil {
		return err
	}

	if !middleware.IsMobile(c) {
		h.cookies.SetAccess(c, grant.Token)
	}
	return respond(c, http.StatusOK, "Token refreshed", refreshData{
		AccessToken: grant.Token,
		ExpiresAt:   grant.ExpiresAt,
	})
}

// Logout clears the session cookies.
//
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  envelope
// @Router       /logout [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	if claims, ok := middleware.Identity(c); ok {
		h.auth.SignOut(c.Request().Context(), claims)
	}
	h.cookies.Clear(c)
	return respond(c, http.StatusOK, "Logged out", nil)
}

// IsAuthenticated reports the verification flag of the current identity.
//
// @Summary      Session check
// @Tags         auth
// @Produce      json
// @Success      200  {object}  envelope{data=verificationData}
// @Failure      401  {object}  errorResponse
// @Router       /is-authenticated [get]
func (h *AuthHandler) IsAuthenticated(c echo.Context) error {
	claims, err := currentIdentity(c)
	if err != nil {
		return err
	}

	verified, err := h.auth.IsVerified(c.Request().Context(), claims.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Authenticated", verificationData{IsVerified: verified})
}

// DeleteAccount soft-deletes the current identity and ends the session.
//
// @Summary      Delete account
// @Tags         auth
// @Produce      json
// @Success      200  {object}  envelope
// @Failure      401  {object}  errorResponse
// @Router       /delete-account [get]
func (h *AuthHandler) DeleteAccount(c echo.Context) error {
	claims, err := currentIdentity(c)
	if err != nil {
		return err
	}

	if err := h.auth.DeleteAccount(c.Request().Context(), claims.ID); err != nil {
		return err
	}
	h.cookies.Clear(c)
	return respond(c, http.StatusOK, "Account deleted", nil)
}

// PasswordRecovery changes the password of the signed-in identity. The new
// password must differ from the current one.
//
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      passwordRecoveryRequest  true  "Email and new password"
// @Success      200   {object}  envelope
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /password-recovery [put]
func (h *AuthHandler) PasswordRecovery(c echo.Context) error {
	claims, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req passwordRecoveryRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.auth.RecoverPassword(c.Request().Context(), claims.ID, req.Email, req.Password); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Password updated", nil)
}

// RequestOTP sends a one-time reset code. The response is identical whether
// or not the address has an account.
//
// @Summary      Request a reset code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      otpRequest  true  "Email"
// @Success      200   {object}  envelope
// @Failure      422   {object}  errorResponse
// @Router       /otp [post]
func (h *AuthHandler) RequestOTP(c echo.Context) error {
	var req otpRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.auth.RequestOTP(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "If an account exists for this email, a code has been sent", nil)
}

// ResetPassword sets a new password using a one-time code.
//
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Code, email and new password"
// @Success      200   {object}  envelope
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	err := h.auth.ResetPassword(c.Request().Context(), ports.ResetPasswordInput{
		OTP:      req.OTP,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Password reset", nil)
}

// Me returns the current identity with its profiles.
//
// @Summary      Current account
// @Tags         auth
// @Produce      json
// @Success      200  {object}  envelope{data=accountData}
// @Failure      401  {object}  errorResponse
// @Router       /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	claims, err := currentIdentity(c)
	if err != nil {
		return err
	}

	account, err := h.auth.Account(c.Request().Context(), claims.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Account", toAccountData(account))
}

// SwitchProfile changes the default profile and re-issues the session.
//
// @Summary      Switch profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      switchProfileRequest  true  "Target profile"
// @Success      200   {object}  envelope{data=sessionData}
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /switch-profile [put]
func (h *AuthHandler) SwitchProfile(c echo.Context) error {
	claims, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req switchProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := h.auth.SwitchProfile(c.Request().Context(), claims.ID, domain.ProfileKind(req.ProfileType))
	if err != nil {
		return err
	}
	return h.issue(c, http.StatusOK, "Profile switched", session)
}

// issue hands tokens to mobile clients in the body and to everyone else as
// cookies.
func (h *AuthHandler) issue(c echo.Context, status int, message string, session *ports.Session) error {
	mobile := middleware.IsMobile(c)
	if !mobile {
		h.cookies.SetPair(c, session.Tokens)
	}
	return respond(c, status, message, toSessionData(session, mobile))
}

func signInResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrAccountDeleted):
		return "deleted"
	case errors.Is(err, domain.ErrAccountSuspended):
		return "suspended"
	default:
		return "error"
	}
}
