package handler

import (
	"net/http"

	"mentorship-service/internal/model"
	"mentorship-service/internal/service"
	"mentorship-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// EventHandler serves /api/events and /api/event-registrations
type EventHandler struct {
	events *service.EventService
}

func NewEventHandler(events *service.EventService) *EventHandler {
	return &EventHandler{events: events}
}

type registrationRequest struct {
	EventID uint `json:"event_id" validate:"required"`
}

// Create adds a new event (mentor or admin)
func (h *EventHandler) Create(c echo.Context) error {
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	// Parse request
	var req service.EventInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	event, err := h.events.Create(c.Request().Context(), actor, req)
	if err != nil {
		return respondError(c, err)
	}
	logger.FromContext(c).Info("Event created", zap.Uint("event_id", event.ID), zap.String("title", event.Title))
	return c.JSON(http.StatusCreated, event)
}

// List retrieves events, optionally only upcoming ones
func (h *EventHandler) List(c echo.Context) error {
	filter := service.EventFilter{
		Type:     model.EventType(c.QueryParam("type")),
		Category: c.QueryParam("category"),
		Upcoming: queryBool(c, "upcoming"),
	}
	result, err := h.events.List(c.Request().Context(), filter, queryPage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Get retrieves a specific event by ID
func (h *EventHandler) Get(c echo.Context) error {
	// Parse ID from path
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	event, err := h.events.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, event)
}

// Update modifies an event owned by the caller
func (h *EventHandler) Update(c echo.Context) error {
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
	var req service.EventInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	event, err := h.events.Update(c.Request().Context(), actor, id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, event)
}

// Delete removes an event organised by the caller
func (h *EventHandler) Delete(c echo.Context) error {
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
	if err := h.events.Delete(c.Request().Context(), actor, id); err != nil {
		return respondError(c, err)
	}
	logger.FromContext(c).Info("Event deleted", zap.Uint("event_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "event removed"})
}

// Registrations lists who signed up for an event
func (h *EventHandler) Registrations(c echo.Context) error {
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
	regs, err := h.events.Registrations(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, regs)
}

// Register signs the caller up for an event
func (h *EventHandler) Register(c echo.Context) error {
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	// Parse request
	var req registrationRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	reg, err := h.events.Register(c.Request().Context(), actor, req.EventID)
	if err != nil {
		return respondError(c, err)
	}
	logger.FromContext(c).Info("Registered for event", zap.Uint("event_id", req.EventID), zap.Uint("user_id", actor.ID))
	return c.JSON(http.StatusCreated, reg)
}

func (h *EventHandler) MyRegistrations(c echo.Context) error {
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	regs, err := h.events.MyRegistrations(c.Request().Context(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, regs)
}

// CancelRegistration withdraws the caller's registration
func (h *EventHandler) CancelRegistration(c echo.Context) error {
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
	reg, err := h.events.CancelRegistration(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, reg)
}

// MarkAttended flags a registration as attended
func (h *EventHandler) MarkAttended(c echo.Context) error {
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
	reg, err := h.events.MarkAttended(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, reg)
}
