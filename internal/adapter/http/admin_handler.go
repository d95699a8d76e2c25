package http

import (
	"net/http"

	"flexemi-backend/internal/usecase/admin"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct{ uc *admin.Usecase }

func NewAdminHandler(uc *admin.Usecase) *AdminHandler { return &AdminHandler{uc: uc} }

func (h *AdminHandler) Stats(c echo.Context) error {
	out, err := h.uc.Stats(c.Request().Context(), actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// SweepLateFees sweeps every loan for admins and the caller's own for lenders.
func (h *AdminHandler) SweepLateFees(c echo.Context) error {
	out, err := h.uc.SweepLateFees(c.Request().Context(), actor(c), nowFn())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
