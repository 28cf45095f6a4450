package handler

import (
	"net/http"

	"mentorship-service/internal/apperr"
	"mentorship-service/internal/middleware"
	"mentorship-service/internal/service"
	"mentorship-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthHandler serves /api/auth
type AuthHandler struct {
	auth  *service.AuthService
	users *service.UserService
}

func NewAuthHandler(auth *service.AuthService, users *service.UserService) *AuthHandler {
	return &AuthHandler{auth: auth, users: users}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type passwordRequest struct {
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// Register creates an account and returns a token with the new user
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromContext(c)

	// Parse request
	var req service.RegisterInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	result, err := h.auth.Register(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}

	log.Info("User registered", zap.Uint("user_id", result.User.ID), zap.String("role", string(result.User.Role)))
	return c.JSON(http.StatusCreated, result)
}

// Login checks credentials and issues a token
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)

	// Parse request
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	result, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	log.Info("User logged in", zap.Uint("user_id", result.User.ID))
	return c.JSON(http.StatusOK, result)
}

// Me returns the authenticated user
func (h *AuthHandler) Me(c echo.Context) error {
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	user, err := h.users.Get(c.Request().Context(), actor.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// Logout revokes the token used for this request
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return respondError(c, apperr.Unauthorized("no token, authorization denied"))
	}
	if err := h.auth.Logout(c.Request().Context(), claims); err != nil {
		return respondError(c, err)
	}
	logger.FromContext(c).Info("User logged out", zap.Uint("user_id", claims.UserID))
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// VerifyEmail confirms the address behind a verification token
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	if err := h.auth.VerifyEmail(c.Request().Context(), c.Param("token")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "email verified"})
}

// ForgotPassword mails a reset link. The response is the same whether or not the email exists
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	// Parse request
	var req emailRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := h.auth.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "if the email exists, a reset link has been sent"})
}

// ResetPassword sets a new password using a reset token
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	// Parse request
	var req passwordRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := h.auth.ResetPassword(c.Request().Context(), c.Param("token"), req.Password); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password has been reset"})
}
