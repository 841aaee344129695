package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kofiadjei/robolab-api/internal/model"
	"github.com/kofiadjei/robolab-api/internal/repository"
)

// Marks at or after the cutoff count as LATE. The institute day runs on
// UTC.
const lateCutoffHourUTC = 9

// AttendanceHandler records and reports daily attendance.
type AttendanceHandler struct {
	Attendance *repository.AttendanceRepo
}

func NewAttendanceHandler(a *repository.AttendanceRepo) *AttendanceHandler {
	return &AttendanceHandler{Attendance: a}
}

// Mark handles POST /v1/attendance. The status is decided server-side
// from the marking time; the client sends nothing.
func (h *AttendanceHandler) Mark(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	now := time.Now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	status := model.AttendancePresent
	if now.Hour() >= lateCutoffHourUTC {
		status = model.AttendanceLate
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	rec, err := h.Attendance.Mark(ctx, uid, day, now, status)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyMarked) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "attendance already marked for today"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "mark failed"})
	}
	return c.JSON(http.StatusCreated, rec)
}

// ListOwn handles GET /v1/attendance and returns the caller's history.
func (h *AttendanceHandler) ListOwn(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	items, err := h.Attendance.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListByDay handles GET /v1/attendance/day/:date (staff) where :date is
// YYYY-MM-DD.
func (h *AttendanceHandler) ListByDay(c echo.Context) error {
	day, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	items, err := h.Attendance.ListByDay(ctx, day)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
