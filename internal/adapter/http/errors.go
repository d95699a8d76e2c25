package http

import (
	"errors"
	"log/slog"
	"net/http"

	"flexemi-backend/internal/domain/errs"
	"flexemi-backend/internal/domain/installment"

	"github.com/labstack/echo/v4"
)

// writeError maps domain errors onto HTTP codes.
func writeError(c echo.Context, err error) error {
	var (
		ve *errs.ValidationError
		ge *installment.GuardError
	)
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: fromDomain(ve)})
	case errors.Is(err, errs.ErrUnauthorized):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	case errors.Is(err, errs.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.As(err, &ge):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: ge.Reason})
	case errors.Is(err, errs.ErrGuard), errors.Is(err, errs.ErrConflict):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		slog.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Path(), "err", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

// bindValid binds the body into req and runs struct validation.
// It writes the 400/422 response itself and reports false when it did.
func bindValid(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}
