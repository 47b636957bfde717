package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// AccessChecker answers whether a user's role grants an access module.
type AccessChecker interface {
	CheckAccess(ctx context.Context, userID, module string) (bool, error)
}

// RequireModule enforces that the authenticated user's role grants the given
// access module. It expects Auth to have run first and injected user_id.
func RequireModule(checker AccessChecker, module string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := c.Get("user_id").(string)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			ok, err := checker.CheckAccess(c.Request().Context(), userID, module)
			if err != nil || !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"message": "forbidden"})
			}
			return next(c)
		}
	}
}
