package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mesh-intelligence/clinic/internal/printer"
	"github.com/mesh-intelligence/clinic/pkg/types"
)

// Result is the envelope returned by every mutating endpoint.
type Result struct {
	Success    bool         `json:"success"`
	ID         int64        `json:"id,omitempty"`
	Count      *int         `json:"count,omitempty"`
	Path       string       `json:"path,omitempty"`
	Cancelled  bool         `json:"cancelled,omitempty"`
	Job        *printer.Job `json:"job,omitempty"`
	Error      string       `json:"error,omitempty"`
	PrintError string       `json:"printError,omitempty"`
}

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	switch {
	case types.IsValidation(err), errors.Is(err, types.ErrDuplicateMedicine):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, printer.ErrPrintFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func fail(c echo.Context, err error) error {
	return c.JSON(statusFor(err), Result{Error: err.Error()})
}

func notFound(c echo.Context) error {
	return fail(c, types.ErrNotFound)
}

func ok(c echo.Context, r Result) error {
	r.Success = true
	return c.JSON(http.StatusOK, r)
}
