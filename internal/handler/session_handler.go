package handler

import (
	"net/http"

	"mentorship-service/internal/model"
	"mentorship-service/internal/service"
	"mentorship-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SessionHandler serves /api/sessions
type SessionHandler struct {
	sessions *service.SessionService
}

func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type notesRequest struct {
	Notes string `json:"notes" validate:"max=8000"`
}

// Schedule books a session inside an active mentorship
func (h *SessionHandler) Schedule(c echo.Context) error {
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	// Parse request
	var req service.ScheduleInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	session, err := h.sessions.Schedule(c.Request().Context(), actor, req)
	if err != nil {
		return respondError(c, err)
	}
	logger.FromContext(c).Info("Session scheduled",
		zap.Uint("session_id", session.ID),
		zap.Uint("mentorship_id", session.MentorshipID),
		zap.Time("start_time", session.StartTime))
	return c.JSON(http.StatusCreated, session)
}

// List retrieves the caller's sessions
func (h *SessionHandler) List(c echo.Context) error {
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	filter := service.SessionFilter{
		Status:       model.SessionStatus(c.QueryParam("status")),
		Upcoming:     queryBool(c, "upcoming"),
		MentorshipID: queryUint(c, "mentorship_id"),
	}
	result, err := h.sessions.List(c.Request().Context(), actor, filter, queryPage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *SessionHandler) Get(c echo.Context) error {
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
	session, err := h.sessions.Get(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// UpdateStatus changes a session's status
func (h *SessionHandler) UpdateStatus(c echo.Context) error {
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
	session, err := h.sessions.UpdateStatus(c.Request().Context(), actor, id, model.SessionStatus(req.Status))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) UpdateNotes(c echo.Context) error {
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
	var req notesRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	session, err := h.sessions.UpdateNotes(c.Request().Context(), actor, id, req.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}
