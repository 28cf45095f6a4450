package handler

import (
	"net/http"
	"strings"

	"mentorship-service/internal/apperr"
	"mentorship-service/internal/model"
	"mentorship-service/internal/service"
	"mentorship-service/pkg/logger"
	"mentorship-service/pkg/upload"
	"mentorship-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ResourceHandler serves /api/resources
type ResourceHandler struct {
	resources *service.ResourceService
	uploads   *upload.Store
}

func NewResourceHandler(resources *service.ResourceService, uploads *upload.Store) *ResourceHandler {
	return &ResourceHandler{resources: resources, uploads: uploads}
}

type shareRequest struct {
	UserIDs []uint `json:"user_ids" validate:"required,min=1"`
}

// Create accepts JSON or multipart/form-data with an optional "file" part
func (h *ResourceHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	// Parse request
	var req service.ResourceInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	// Store the uploaded file, if any, before creating the record
	var filePath string
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		filePath, err = h.saveFile(c)
		if err != nil {
			return respondError(c, err)
		}
	}

	resource, err := h.resources.Create(c.Request().Context(), actor, req, filePath)
	if err != nil {
		// Don't leave the file behind when the insert fails
		if filePath != "" {
			if rmErr := h.uploads.Remove(filePath); rmErr != nil {
				log.Warn("Failed to remove orphaned upload", zap.String("path", filePath), zap.Error(rmErr))
			}
		}
		return respondError(c, err)
	}

	log.Info("Resource created", zap.Uint("resource_id", resource.ID), zap.Bool("has_file", filePath != ""))
	return c.JSON(http.StatusCreated, resource)
}

func (h *ResourceHandler) saveFile(c echo.Context) (string, error) {
	fh, err := c.FormFile("file")
	if err == http.ErrMissingFile {
		return "", nil
	}
	if err != nil {
		return "", apperr.BadRequest("invalid file upload")
	}
	if fh.Size > h.uploads.MaxBytes() {
		return "", apperr.BadRequest("file too large")
	}
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	url, err := h.uploads.SaveFile(src, fh.Filename, "resources")
	if err != nil {
		return "", uploadError(err)
	}
	prometheus.RecordUpload("resource")
	return url, nil
}

// List retrieves resources visible to the caller
func (h *ResourceHandler) List(c echo.Context) error {
	// Extract user from context (set by auth middleware)
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	filter := service.ResourceFilter{
		Type:     model.ResourceType(c.QueryParam("type")),
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
		Mine:     queryBool(c, "mine"),
	}
	result, err := h.resources.List(c.Request().Context(), actor, filter, queryPage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *ResourceHandler) Get(c echo.Context) error {
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
	resource, err := h.resources.Get(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, resource)
}

// Update modifies a resource owned by the caller
func (h *ResourceHandler) Update(c echo.Context) error {
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
	var req service.ResourceInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	resource, err := h.resources.Update(c.Request().Context(), actor, id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, resource)
}

// Delete removes a resource and its stored file
func (h *ResourceHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
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
	filePath, err := h.resources.Delete(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	if filePath != "" {
		if err := h.uploads.Remove(filePath); err != nil {
			log.Warn("Failed to remove resource file", zap.String("path", filePath), zap.Error(err))
		}
	}
	log.Info("Resource deleted", zap.Uint("resource_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "resource removed"})
}

// Share grants other users access to a private resource
func (h *ResourceHandler) Share(c echo.Context) error {
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
	var req shareRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	shared, err := h.resources.Share(c.Request().Context(), actor, id, req.UserIDs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"shared_with": shared})
}

// Download counts the download and returns where the content lives
func (h *ResourceHandler) Download(c echo.Context) error {
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
	resource, err := h.resources.Download(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	url := resource.URL
	if resource.FilePath != "" {
		url = resource.FilePath
	}
	return c.JSON(http.StatusOK, echo.Map{"url": url, "downloads": resource.Downloads})
}
