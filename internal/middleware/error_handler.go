package middleware

import (
	"errors"
	"net/http"

	"campusEvents/pkg/apperror"
	"campusEvents/pkg/logger"

	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Message string `json:"message"`
}

// ErrorHandler catches errors that escape the handlers, echo routing
// errors included, and renders them as the common JSON shape.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "internal server error"

	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		status = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	case apperror.IsNotFound(err):
		status = http.StatusNotFound
		message = err.Error()
	case apperror.IsValidation(err), apperror.IsConfirmation(err):
		status = http.StatusBadRequest
		message = err.Error()
	case apperror.IsConflict(err):
		status = http.StatusConflict
		message = err.Error()
	case apperror.IsDependency(err):
		status = http.StatusBadGateway
		message = err.Error()
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Unhandled request error", "method", c.Request().Method, "path", c.Path(), "error", err)
	}

	if err := c.JSON(status, errorResponse{Message: message}); err != nil {
		logger.Error("Failed to write error response", "error", err)
	}
}
