package handler

import (
	"net/http"

	"mentorship-service/internal/model"
	"mentorship-service/internal/service"

	"github.com/labstack/echo/v4"
)

// ProfileHandler serves /api/mentor-profiles and /api/mentee-profiles
type ProfileHandler struct {
	profiles *service.ProfileService
}

func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// CreateMentorProfile adds the caller's mentor profile
func (h *ProfileHandler) CreateMentorProfile(c echo.Context) error {
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	// Parse request
	var req service.MentorProfileInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	profile, err := h.profiles.CreateMentorProfile(c.Request().Context(), actor, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, profile)
}

func (h *ProfileHandler) UpdateMentorProfile(c echo.Context) error {
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	// Parse request
	var req service.MentorProfileInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	profile, err := h.profiles.UpdateMentorProfile(c.Request().Context(), actor, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) MyMentorProfile(c echo.Context) error {
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	profile, err := h.profiles.GetMentorProfile(c.Request().Context(), actor.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) GetMentorProfile(c echo.Context) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return respondError(c, err)
	}
	profile, err := h.profiles.GetMentorProfile(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) ListMentorProfiles(c echo.Context) error {
	filter := service.MentorProfileFilter{
		Expertise: c.QueryParam("expertise"),
		Industry:  c.QueryParam("industry"),
	}
	result, err := h.profiles.ListMentorProfiles(c.Request().Context(), filter, queryPage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// CreateMenteeProfile adds the caller's mentee profile
func (h *ProfileHandler) CreateMenteeProfile(c echo.Context) error {
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	// Parse request
	var req service.MenteeProfileInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	profile, err := h.profiles.CreateMenteeProfile(c.Request().Context(), actor, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, profile)
}

func (h *ProfileHandler) UpdateMenteeProfile(c echo.Context) error {
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	// Parse request
	var req service.MenteeProfileInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	profile, err := h.profiles.UpdateMenteeProfile(c.Request().Context(), actor, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) MyMenteeProfile(c echo.Context) error {
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	profile, err := h.profiles.GetMenteeProfile(c.Request().Context(), actor.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) GetMenteeProfile(c echo.Context) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return respondError(c, err)
	}
	profile, err := h.profiles.GetMenteeProfile(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) ListMenteeProfiles(c echo.Context) error {
	filter := service.MenteeProfileFilter{
		Industry: c.QueryParam("industry"),
		Stage:    model.BusinessStage(c.QueryParam("stage")),
	}
	result, err := h.profiles.ListMenteeProfiles(c.Request().Context(), filter, queryPage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
