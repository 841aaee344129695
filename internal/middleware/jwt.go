// Package middleware contains the reusable Echo middleware for the API:
// JWT authentication, role enforcement, Redis response caching and a
// Redis token-bucket rate limiter.
package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/kofiadjei/robolab-api/internal/model"
)

// Context keys set by JWTAuth and read by RequireRole and the handlers.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// JWTAuth validates the Bearer access token on protected routes and
// stores the subject (user id, uint64) and role (model.Role) in the
// request context. The secret must match the one used when issuing
// tokens.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			// Numeric claims come back as float64 after JSON decoding.
			sub, ok := claims["sub"].(float64)
			if !ok || sub <= 0 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid subject"})
			}
			roleStr, _ := claims["role"].(string)
			role := model.Role(roleStr)
			if !role.Valid() {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid role"})
			}

			c.Set(CtxUserID, uint64(sub))
			c.Set(CtxRole, role)
			return next(c)
		}
	}
}
