package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bloggers-platform/accounts-api/internal/core/ports"
)

// AuthHandler handles the credential-lifecycle endpoints.
type AuthHandler struct {
	authService ports.AuthService
	users       ports.UsersService
}

func NewAuthHandler(authService ports.AuthService, users ports.UsersService) *AuthHandler {
	return &AuthHandler{authService: authService, users: users}
}

// Registration creates a new account and sends a confirmation email.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Param        body  body  registrationRequest  true  "Registration details"
// @Success      204   "User registered, confirmation email queued"
// @Failure      400   {object}  map[string]any
// @Failure      409   {object}  map[string]any
// @Failure      429   {object}  map[string]any
// @Router       /auth/registration [post]
func (h *AuthHandler) Registration(c echo.Context) error {
	var req registrationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.authService.RegisterUser(c.Request().Context(), ports.RegisterUserInput{
		Login:    req.Login,
		Email:    req.Email,
		Password: req.Password,
	}); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// Login authenticates a user and returns an access token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  map[string]any
// @Failure      429   {object}  map[string]any
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.authService.ValidateUser(ctx, ports.LoginInput{
		Login:    req.Login,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	result, err := h.authService.Login(ctx, user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{AccessToken: result.AccessToken})
}

// PasswordRecovery requests a recovery email. Responds 204 even for unknown
// emails to prevent account enumeration.
//
// @Summary      Request password recovery
// @Tags         auth
// @Accept       json
// @Param        body  body  passwordRecoveryRequest  true  "Account email"
// @Success      204   "Accepted regardless of whether the email is registered"
// @Failure      400   {object}  map[string]any
// @Failure      429   {object}  map[string]any
// @Router       /auth/password-recovery [post]
func (h *AuthHandler) PasswordRecovery(c echo.Context) error {
	var req passwordRecoveryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.authService.PasswordRecovery(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// NewPassword applies a password change authorized by a recovery code.
//
// @Summary      Confirm password recovery
// @Tags         auth
// @Accept       json
// @Param        body  body  newPasswordRequest  true  "New password and recovery code"
// @Success      204   "Accepted"
// @Failure      400   {object}  map[string]any
// @Failure      429   {object}  map[string]any
// @Router       /auth/new-password [post]
func (h *AuthHandler) NewPassword(c echo.Context) error {
	var req newPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.authService.NewPassword(c.Request().Context(), req.NewPassword, req.RecoveryCode); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RegistrationConfirmation activates an account with a confirmation code.
//
// @Summary      Confirm registration
// @Tags         auth
// @Accept       json
// @Param        body  body  registrationConfirmationRequest  true  "Confirmation code"
// @Success      204   "Email verified, account activated"
// @Failure      400   {object}  map[string]any
// @Failure      429   {object}  map[string]any
// @Router       /auth/registration-confirmation [post]
func (h *AuthHandler) RegistrationConfirmation(c echo.Context) error {
	var req registrationConfirmationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.authService.RegistrationConfirmation(c.Request().Context(), req.Code); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RegistrationEmailResending re-sends the confirmation email.
//
// @Summary      Resend registration confirmation email
// @Tags         auth
// @Accept       json
// @Param        body  body  registrationEmailResendingRequest  true  "Account email"
// @Success      204   "Accepted"
// @Failure      400   {object}  map[string]any
// @Failure      429   {object}  map[string]any
// @Router       /auth/registration-email-resending [post]
func (h *AuthHandler) RegistrationEmailResending(c echo.Context) error {
	var req registrationEmailResendingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.authService.RegistrationEmailResending(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user's info.
//
// @Summary      Get current user info
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  map[string]any
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	view, err := h.users.Me(c.Request().Context(), user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, meResponse{
		UserID: view.ID,
		Login:  view.Login,
		Email:  view.Email,
	})
}
