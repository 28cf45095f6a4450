package handler

import (
	"net/http"

	"mentorship-service/internal/model"
	"mentorship-service/internal/service"
	"mentorship-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// MentorshipHandler serves /api/mentorships
type MentorshipHandler struct {
	mentorships *service.MentorshipService
	sessions    *service.SessionService
}

func NewMentorshipHandler(mentorships *service.MentorshipService, sessions *service.SessionService) *MentorshipHandler {
	return &MentorshipHandler{mentorships: mentorships, sessions: sessions}
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type goalsRequest struct {
	Goals []model.Goal `json:"goals" validate:"dive"`
}

// Request creates a pending mentorship with a mentor
func (h *MentorshipHandler) Request(c echo.Context) error {
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	// Parse request
	var req service.MentorshipRequestInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	m, err := h.mentorships.Request(c.Request().Context(), actor, req)
	if err != nil {
		return respondError(c, err)
	}
	logger.FromContext(c).Info("Mentorship requested",
		zap.Uint("mentorship_id", m.ID),
		zap.Uint("mentor_id", m.MentorID),
		zap.Uint("mentee_id", m.MenteeID))
	return c.JSON(http.StatusCreated, m)
}

// List retrieves the caller's mentorships
func (h *MentorshipHandler) List(c echo.Context) error {
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	status := model.MentorshipStatus(c.QueryParam("status"))
	result, err := h.mentorships.List(c.Request().Context(), actor, status, queryPage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Get retrieves a mentorship the caller belongs to
func (h *MentorshipHandler) Get(c echo.Context) error {
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
	m, err := h.mentorships.Get(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// UpdateStatus moves a mentorship through its lifecycle
func (h *MentorshipHandler) UpdateStatus(c echo.Context) error {
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

	// Parse request
	var req statusRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	m, err := h.mentorships.UpdateStatus(c.Request().Context(), actor, id, model.MentorshipStatus(req.Status))
	if err != nil {
		return respondError(c, err)
	}
	logger.FromContext(c).Info("Mentorship status changed",
		zap.Uint("mentorship_id", m.ID),
		zap.String("status", string(m.Status)))
	return c.JSON(http.StatusOK, m)
}

// UpdateGoals replaces the mentorship goals
func (h *MentorshipHandler) UpdateGoals(c echo.Context) error {
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

	// Parse request
	var req goalsRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	m, err := h.mentorships.UpdateGoals(c.Request().Context(), actor, id, req.Goals)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *MentorshipHandler) UpdateProgress(c echo.Context) error {
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

	// Parse request
	var req service.ProgressInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	m, err := h.mentorships.UpdateProgress(c.Request().Context(), actor, id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// AddFeedback records the caller's rating on a completed mentorship
func (h *MentorshipHandler) AddFeedback(c echo.Context) error {
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

	// Parse request
	var req service.FeedbackInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	m, err := h.mentorships.AddFeedback(c.Request().Context(), actor, id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// Sessions lists the sessions of one mentorship
func (h *MentorshipHandler) Sessions(c echo.Context) error {
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
	result, err := h.sessions.ListForMentorship(c.Request().Context(), actor, id, queryPage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
