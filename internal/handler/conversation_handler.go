package handler

import (
	"net/http"

	"mentorship-service/internal/service"
	"mentorship-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ConversationHandler serves /api/conversations and /api/messages
type ConversationHandler struct {
	conversations *service.ConversationService
}

func NewConversationHandler(conversations *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

type conversationRequest struct {
	ParticipantID uint `json:"participant_id" validate:"required"`
}

type messageRequest struct {
	ConversationID uint   `json:"conversation_id" validate:"required"`
	Content        string `json:"content"`
}

// Open finds or creates the conversation with participant_id; 201 when created
func (h *ConversationHandler) Open(c echo.Context) error {
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	// Parse request
	var req conversationRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	view, created, err := h.conversations.FindOrCreate(c.Request().Context(), actor, req.ParticipantID)
	if err != nil {
		return respondError(c, err)
	}
	if created {
		return c.JSON(http.StatusCreated, view)
	}
	return c.JSON(http.StatusOK, view)
}

// List returns the caller's conversations, most recent first
func (h *ConversationHandler) List(c echo.Context) error {
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	result, err := h.conversations.List(c.Request().Context(), actor, queryPage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Get returns a single conversation the caller participates in
func (h *ConversationHandler) Get(c echo.Context) error {
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
	view, err := h.conversations.Get(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// SendMessage appends a message to the conversation
func (h *ConversationHandler) SendMessage(c echo.Context) error {
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	// Parse request
	var req messageRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	msg, err := h.conversations.SendMessage(c.Request().Context(), actor, req.ConversationID, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	logger.FromContext(c).Info("Message sent",
		zap.Uint("conversation_id", msg.ConversationID),
		zap.Uint("message_id", msg.ID))
	return c.JSON(http.StatusCreated, msg)
}

// Messages pages through a conversation; markAsRead=true clears the caller's unread messages first
func (h *ConversationHandler) Messages(c echo.Context) error {
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "conversationId")
	if err != nil {
		return respondError(c, err)
	}
	page, err := h.conversations.ReadMessages(c.Request().Context(), actor, id, queryPage(c), queryBool(c, "markAsRead"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// MarkRead clears the caller's unread counter
func (h *ConversationHandler) MarkRead(c echo.Context) error {
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "conversationId")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.conversations.MarkRead(c.Request().Context(), actor, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "messages marked as read"})
}

// UnreadCount sums the caller's unread messages across conversations
func (h *ConversationHandler) UnreadCount(c echo.Context) error {
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	total, err := h.conversations.UnreadTotal(c.Request().Context(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"unread_count": total})
}
