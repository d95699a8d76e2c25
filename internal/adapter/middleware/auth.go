package middleware

import (
	"net/http"
	"strings"

	"flexemi-backend/internal/domain/user"

	"github.com/labstack/echo/v4"
)

const actorKey = "flexemi.actor"

// TokenParser resolves a bearer token to the calling actor.
type TokenParser interface {
	Parse(token string) (user.Actor, error)
}

// JWTAuth rejects requests without a valid bearer token and stores the
// caller's actor on the context.
func JWTAuth(tokens TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, token, ok := strings.Cut(strings.TrimSpace(raw), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}
			actor, err := tokens.Parse(strings.TrimSpace(token))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}
			SetActor(c, actor)
			return next(c)
		}
	}
}

func SetActor(c echo.Context, a user.Actor) { c.Set(actorKey, a) }

// ActorFrom returns the actor JWTAuth stored, if any.
func ActorFrom(c echo.Context) (user.Actor, bool) {
	a, ok := c.Get(actorKey).(user.Actor)
	return a, ok && a.Authenticated()
}
