package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID renders the authenticated user id for rate-limit keys.
// Unauthenticated requests share the "anon" bucket for their IP.
func currentUserID(c echo.Context) string {
	if v, ok := c.Get(CtxUserID).(uint64); ok && v > 0 {
		return strconv.FormatUint(v, 10)
	}
	return "anon"
}
