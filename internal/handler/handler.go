// Package handler contains the HTTP handlers for the mentorship API.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"

	"mentorship-service/internal/apperr"
	"mentorship-service/internal/middleware"
	"mentorship-service/internal/service"
	"mentorship-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var exposeErrorDetails atomic.Bool

// ExposeErrorDetails controls whether unexpected 500 responses carry the
// underlying error text in "details". Off in production.
func ExposeErrorDetails(enabled bool) {
	exposeErrorDetails.Store(enabled)
}

// respondError writes err as {"error": message}. Unexpected errors become a 500 and
// carry "details" only when ExposeErrorDetails is enabled.
func respondError(c echo.Context, err error) error {
	log := logger.FromContext(c)

	if appErr, ok := apperr.As(err); ok {
		if appErr.Status >= http.StatusInternalServerError {
			log.Error("Request failed", zap.Error(err))
		} else {
			log.Info("Request rejected", zap.Int("status", appErr.Status), zap.String("reason", appErr.Message))
		}
		return c.JSON(appErr.Status, echo.Map{"error": appErr.Message})
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return c.JSON(he.Code, echo.Map{"error": he.Message})
	}

	log.Error("Unexpected error", zap.Error(err))
	body := echo.Map{"error": "internal server error"}
	if exposeErrorDetails.Load() {
		body["details"] = err.Error()
	}
	return c.JSON(http.StatusInternalServerError, body)
}

// HTTPErrorHandler renders errors that escape handlers, including router 404/405s
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if writeErr := respondError(c, err); writeErr != nil {
		logger.FromContext(c).Error("Failed to write error response", zap.Error(writeErr))
	}
}

// bind decodes the request body into req and runs the registered validator
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		logger.FromContext(c).Warn("Invalid request data", zap.Error(err))
		return apperr.BadRequest("invalid request data")
	}
	if err := c.Validate(req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			if msg, ok := he.Message.(string); ok {
				return apperr.BadRequest(msg)
			}
		}
		return apperr.BadRequest("invalid request data")
	}
	return nil
}

func currentActor(c echo.Context) (service.Actor, error) {
	id, role, ok := middleware.UserFromContext(c)
	if !ok {
		return service.Actor{}, apperr.Unauthorized("no token, authorization denied")
	}
	return service.Actor{ID: id, Role: role}, nil
}

func paramID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.BadRequest("invalid " + name)
	}
	return uint(id), nil
}

func queryPage(c echo.Context) service.Page {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return service.Page{Page: page, Limit: limit}.Normalize()
}

func queryBool(c echo.Context, name string) bool {
	v, _ := strconv.ParseBool(c.QueryParam(name))
	return v
}

func queryUint(c echo.Context, name string) uint {
	v, _ := strconv.ParseUint(c.QueryParam(name), 10, 64)
	return uint(v)
}
