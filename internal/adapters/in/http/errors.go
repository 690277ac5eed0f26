package http

import (
	"errors"
	"net/http"

	"routeplanner/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"
)

// statusFor maps an error kind to its HTTP status: rule violations are 422,
// lost races are 409, unknown ids 404 and infrastructure failures 503.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrAlreadyAssigned),
		errors.Is(err, errs.ErrVersionIsInvalid):
		return http.StatusConflict
	case errors.Is(err, errs.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, errs.ErrCapacityExceeded),
		errors.Is(err, errs.ErrInvalidState),
		errors.Is(err, errs.ErrEmptyRoute),
		errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrQuantityExceedsOrder),
		errors.Is(err, errs.ErrMissingProof),
		errors.Is(err, errs.ErrInvalidVehicle),
		errors.Is(err, errs.ErrNotYetDeparted),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c echo.Context, err error) error {
	status := statusFor(err)
	trace.SpanFromContext(c.Request().Context()).RecordError(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
		message = http.StatusText(status)
	}

	return c.JSON(status, Error{Code: status, Kind: errs.Kind(err), Message: message})
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Kind: "BAD_REQUEST", Message: message})
}
