package handler

import (
	"errors"
	"net/http"

	"mentorship-service/internal/apperr"
	"mentorship-service/internal/model"
	"mentorship-service/internal/service"
	"mentorship-service/pkg/logger"
	"mentorship-service/pkg/upload"
	"mentorship-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UserHandler serves /api/users
type UserHandler struct {
	users   *service.UserService
	uploads *upload.Store
}

func NewUserHandler(users *service.UserService, uploads *upload.Store) *UserHandler {
	return &UserHandler{users: users, uploads: uploads}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
}

func userFilter(c echo.Context) service.UserFilter {
	return service.UserFilter{
		Role:     model.Role(c.QueryParam("role")),
		Skill:    c.QueryParam("skill"),
		Location: c.QueryParam("location"),
		Search:   c.QueryParam("search"),
	}
}

// List retrieves users matching the query filters
func (h *UserHandler) List(c echo.Context) error {
	result, err := h.users.List(c.Request().Context(), userFilter(c), queryPage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// ListMentors is List restricted to role=mentor
func (h *UserHandler) ListMentors(c echo.Context) error {
	filter := userFilter(c)
	filter.Role = model.RoleMentor
	result, err := h.users.List(c.Request().Context(), filter, queryPage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Get retrieves a user by ID
func (h *UserHandler) Get(c echo.Context) error {
	// Parse ID from path
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	user, err := h.users.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile updates the caller's basic profile fields
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	// Parse request
	var req service.ProfileInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), actor.ID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// ChangePassword replaces the caller's password after checking the current one
func (h *UserHandler) ChangePassword(c echo.Context) error {
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	// Parse request
	var req changePasswordRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	if err := h.users.ChangePassword(c.Request().Context(), actor.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return respondError(c, err)
	}
	logger.FromContext(c).Info("Password changed", zap.Uint("user_id", actor.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// UploadProfileImage stores the multipart "image" field as the caller's square profile image
func (h *UserHandler) UploadProfileImage(c echo.Context) error {
	log := logger.FromContext(c)
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	// Get file from form
	fh, err := c.FormFile("image")
	if err != nil {
		return respondError(c, apperr.BadRequest("image file is required"))
	}
	if fh.Size > h.uploads.MaxBytes() {
		return respondError(c, apperr.BadRequest("file too large"))
	}
	src, err := fh.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer src.Close()

	// Crop, resize and save as JPEG
	url, err := h.uploads.SaveImage(src, fh.Filename, "profiles")
	if err != nil {
		return respondError(c, uploadError(err))
	}

	// Point the user at the new image, then drop the old file
	previous, err := h.users.SetProfileImage(c.Request().Context(), actor.ID, url)
	if err != nil {
		if rmErr := h.uploads.Remove(url); rmErr != nil {
			log.Warn("Failed to remove orphaned upload", zap.String("url", url), zap.Error(rmErr))
		}
		return respondError(c, err)
	}
	if previous != "" {
		if err := h.uploads.Remove(previous); err != nil {
			log.Warn("Failed to remove previous profile image", zap.String("url", previous), zap.Error(err))
		}
	}

	// Update metrics
	prometheus.RecordUpload("profile_image")
	log.Info("Profile image updated", zap.Uint("user_id", actor.ID), zap.String("url", url))
	return c.JSON(http.StatusOK, echo.Map{"profile_image": url})
}

// Delete soft deletes a user (admin)
func (h *UserHandler) Delete(c echo.Context) error {
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	// Parse ID from path
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.users.Delete(c.Request().Context(), actor, id); err != nil {
		return respondError(c, err)
	}
	logger.FromContext(c).Info("User deleted", zap.Uint("user_id", id), zap.Uint("by", actor.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "user removed"})
}

func uploadError(err error) error {
	switch {
	case errors.Is(err, upload.ErrTooLarge):
		return apperr.BadRequest("file too large")
	case errors.Is(err, upload.ErrUnsupportedType):
		return apperr.BadRequest("unsupported file type")
	case errors.Is(err, upload.ErrInvalidImage):
		return apperr.BadRequest("invalid image")
	default:
		return err
	}
}
