package rest

import (
	"net/http"

	"campusEvents/pkg/apperror"
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

// statusFromError maps the business error taxonomy to an HTTP status.
func statusFromError(err error) int {
	switch {
	case apperror.IsNotFound(err):
		return http.StatusNotFound
	case apperror.IsValidation(err), apperror.IsConfirmation(err):
		return http.StatusBadRequest
	case apperror.IsConflict(err):
		return http.StatusConflict
	case apperror.IsDependency(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
