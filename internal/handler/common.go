// Package handler contains the Echo HTTP handlers. Handlers bind and
// validate request bodies, call repositories or the workflow service,
// and translate domain errors into JSON responses of the form
// {"error": "..."}.
package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kofiadjei/robolab-api/internal/middleware"
	"github.com/kofiadjei/robolab-api/internal/model"
	"github.com/kofiadjei/robolab-api/internal/workflow"
)

// getUserID extracts the authenticated user id stored by the JWT
// middleware.
func getUserID(c echo.Context) (uint64, error) {
	if v, ok := c.Get(middleware.CtxUserID).(uint64); ok && v > 0 {
		return v, nil
	}
	return 0, errors.New("invalid user_id in context")
}

// getRole extracts the authenticated role stored by the JWT middleware.
func getRole(c echo.Context) (model.Role, error) {
	if r, ok := c.Get(middleware.CtxRole).(model.Role); ok && r.Valid() {
		return r, nil
	}
	return "", errors.New("invalid role in context")
}

// actor builds the workflow actor for the current request.
func actor(c echo.Context) (workflow.Actor, error) {
	uid, err := getUserID(c)
	if err != nil {
		return workflow.Actor{}, err
	}
	role, err := getRole(c)
	if err != nil {
		return workflow.Actor{}, err
	}
	return workflow.Actor{ID: uid, Role: role}, nil
}

// pathID parses the :id route parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// dbCtx bounds repository calls the way every handler does: the request
// context plus a five second ceiling.
func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}
