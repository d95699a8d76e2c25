package http

import (
	"net/http"
	"time"

	"flexemi-backend/internal/adapter/middleware"
	"flexemi-backend/internal/domain/user"

	"github.com/labstack/echo/v4"
)

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "flexemi",
		"time":    nowFn().UTC().Format(time.RFC3339Nano),
	})
}

// actor is set by JWTAuth on every authenticated route; a zero Actor fails
// every permission check downstream.
func actor(c echo.Context) user.Actor {
	a, _ := middleware.ActorFrom(c)
	return a
}

type pathID struct {
	ID string `param:"id" validate:"required,hex32"`
}

// idParam validates a 32-hex path id. Malformed ids cannot name anything,
// so they are answered like a missing record would be.
func idParam(c echo.Context, name string) (string, bool) {
	p := pathID{ID: c.Param(name)}
	if err := c.Validate(&p); err != nil {
		return "", false
	}
	return p.ID, true
}
