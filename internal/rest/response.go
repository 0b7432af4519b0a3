package rest

import (
	"errors"
	"net/http"
	"rehabDose/domain"

	"github.com/labstack/echo/v4"
)

type ResponseError struct {
	Message string `json:"message"`
}

// errorStatus maps service errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrPatientNotFound),
		errors.Is(err, domain.ErrNoResults),
		errors.Is(err, domain.ErrNoParams):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidPatient):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorResponse(c echo.Context, err error) error {
	return c.JSON(errorStatus(err), ResponseError{Message: err.Error()})
}
