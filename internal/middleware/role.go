package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jwilber99/calbright-portal-backend-seperated/internal/model"
)

// RequireRole halts with 403 unless the context role (set by
// RequireSession, which must run first) is one of the given roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "Forbidden"})
			}
			return next(c)
		}
	}
}

// RequireAdmin restricts a route to admin sessions.
func RequireAdmin() echo.MiddlewareFunc {
	return RequireRole(model.RoleAdmin)
}
