package handler

import (
	"net/http"

	"mentorship-service/internal/service"

	"github.com/labstack/echo/v4"
)

// StoryHandler serves /api/success-stories
type StoryHandler struct {
	stories *service.StoryService
}

func NewStoryHandler(stories *service.StoryService) *StoryHandler {
	return &StoryHandler{stories: stories}
}

type featureRequest struct {
	Featured bool `json:"featured"`
}

// Create submits a success story for review
func (h *StoryHandler) Create(c echo.Context) error {
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	// Parse request
	var req service.StoryInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	story, err := h.stories.Create(c.Request().Context(), actor, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, story)
}

func (h *StoryHandler) List(c echo.Context) error {
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	filter := service.StoryFilter{
		Category: c.QueryParam("category"),
		Featured: queryBool(c, "featured"),
		Mine:     queryBool(c, "mine"),
	}
	result, err := h.stories.List(c.Request().Context(), actor, filter, queryPage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *StoryHandler) Get(c echo.Context) error {
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
	story, err := h.stories.Get(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, story)
}

func (h *StoryHandler) Update(c echo.Context) error {
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
	var req service.StoryInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	story, err := h.stories.Update(c.Request().Context(), actor, id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, story)
}

func (h *StoryHandler) Delete(c echo.Context) error {
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
	if err := h.stories.Delete(c.Request().Context(), actor, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "story removed"})
}

// Feature sets whether a story is featured (admin)
func (h *StoryHandler) Feature(c echo.Context) error {
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
	var req featureRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	story, err := h.stories.SetFeatured(c.Request().Context(), actor, id, req.Featured)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, story)
}
