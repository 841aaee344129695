package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kofiadjei/robolab-api/internal/model"
)

// RequireRole aborts with 403 unless the authenticated role is one of the
// given set. It assumes JWTAuth already ran and stored the role in the
// context.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxRole).(model.Role)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// RequireStaff is RequireRole for the roles with institute-wide
// visibility (admin and faculty).
func RequireStaff() echo.MiddlewareFunc {
	return RequireRole(model.RoleAdmin, model.RoleFaculty)
}
