package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kofiadjei/robolab-api/internal/model"
	"github.com/kofiadjei/robolab-api/internal/repository"
	"github.com/kofiadjei/robolab-api/internal/workflow"
)

// AppointmentHandler exposes the appointment lifecycle over HTTP. All
// rules live in the workflow service; this layer binds requests and maps
// domain errors onto status codes.
type AppointmentHandler struct {
	Workflow *workflow.Service
	Appts    *repository.AppointmentRepo
}

func NewAppointmentHandler(w *workflow.Service, appts *repository.AppointmentRepo) *AppointmentHandler {
	return &AppointmentHandler{Workflow: w, Appts: appts}
}

type createAppointmentReq struct {
	FacultyID   uint64 `json:"faculty_id"`
	LabID       uint64 `json:"lab_id"`
	RegionID    uint64 `json:"region_id"`
	VisitAt     string `json:"visit_at"` // RFC 3339
	Purpose     string `json:"purpose"`
	NumVisitors uint32 `json:"num_visitors"`
}

type appointmentResp struct {
	ID            uint64  `json:"id"`
	UserID        uint64  `json:"user_id"`
	FacultyID     uint64  `json:"faculty_id"`
	LabID         uint64  `json:"lab_id"`
	RegionID      uint64  `json:"region_id"`
	VisitAt       string  `json:"visit_at"`
	Purpose       string  `json:"purpose"`
	NumVisitors   uint32  `json:"num_visitors"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	OrderID       *string `json:"order_id,omitempty"`
	FeePesewas    uint32  `json:"fee_pesewas"`
	FeeUSD        string  `json:"fee_usd"`
	CheckInAt     *string `json:"check_in_at,omitempty"`
	CheckOutAt    *string `json:"check_out_at,omitempty"`
}

func toAppointmentResp(a model.Appointment) appointmentResp {
	resp := appointmentResp{
		ID:            a.ID,
		UserID:        a.UserID,
		FacultyID:     a.FacultyID,
		LabID:         a.LabID,
		RegionID:      a.RegionID,
		VisitAt:       a.VisitAt.UTC().Format(time.RFC3339),
		Purpose:       a.Purpose,
		NumVisitors:   a.NumVisitors,
		Status:        string(a.Status),
		PaymentStatus: string(a.PaymentStatus),
		OrderID:       a.OrderID,
		FeePesewas:    a.FeePesewas,
		FeeUSD:        workflow.USDValue(a.FeePesewas),
	}
	if a.CheckInAt != nil {
		iso := a.CheckInAt.UTC().Format(time.RFC3339)
		resp.CheckInAt = &iso
	}
	if a.CheckOutAt != nil {
		iso := a.CheckOutAt.UTC().Format(time.RFC3339)
		resp.CheckOutAt = &iso
	}
	return resp
}

// appointmentError maps workflow and repository errors onto responses.
// Business-rule rejections are 400s; missing rows 404; ownership and role
// failures 403; gateway trouble 502.
func appointmentError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, workflow.ErrRoleNotAllowed), errors.Is(err, workflow.ErrNotOwner):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrAppointmentNotFound),
		errors.Is(err, repository.ErrFacultyNotFound),
		errors.Is(err, repository.ErrLabNotFound),
		errors.Is(err, repository.ErrRegionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, workflow.ErrInvalidInput),
		errors.Is(err, workflow.ErrDuplicateBooking),
		errors.Is(err, workflow.ErrPaymentRequired),
		errors.Is(err, workflow.ErrAlreadyDecided),
		errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrOrderMissing),
		errors.Is(err, workflow.ErrPaymentNotCompleted):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, workflow.ErrGateway):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment gateway unavailable"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// Create handles POST /v1/appointments.
func (h *AppointmentHandler) Create(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createAppointmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	visitAt, err := time.Parse(time.RFC3339, req.VisitAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "visit_at must be RFC 3339"})
	}

	appt, approvalURL, err := h.Workflow.Create(c.Request().Context(), workflow.CreateInput{
		Actor:       act,
		FacultyID:   req.FacultyID,
		LabID:       req.LabID,
		RegionID:    req.RegionID,
		VisitAt:     visitAt,
		Purpose:     req.Purpose,
		NumVisitors: req.NumVisitors,
	})
	if err != nil {
		return appointmentError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"appointment":  toAppointmentResp(appt),
		"approval_url": approvalURL,
	})
}

// Get handles GET /v1/appointments/:id.
func (h *AppointmentHandler) Get(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	appt, err := h.Workflow.Get(c.Request().Context(), id, act)
	if err != nil {
		return appointmentError(c, err)
	}
	return c.JSON(http.StatusOK, toAppointmentResp(appt))
}

// List handles GET /v1/appointments. Staff see everything, everyone else
// their own bookings.
func (h *AppointmentHandler) List(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Workflow.List(c.Request().Context(), act)
	if err != nil {
		return appointmentError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListOwn handles GET /v1/appointments/user and always returns the
// caller's own bookings regardless of role.
func (h *AppointmentHandler) ListOwn(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Workflow.ListOwn(c.Request().Context(), act)
	if err != nil {
		return appointmentError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListByLab handles GET /v1/labs/:id/appointments (staff only; enforced
// by route middleware).
func (h *AppointmentHandler) ListByLab(c echo.Context) error {
	labID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	items, err := h.Appts.ListByLab(ctx, labID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type captureReq struct {
	AppointmentID uint64 `json:"appointment_id"`
	OrderID       string `json:"order_id"`
}

// Capture handles POST /v1/appointments/capture-payment: captures the
// stored payment order and records the outcome.
func (h *AppointmentHandler) Capture(c echo.Context) error {
	var req captureReq
	if err := c.Bind(&req); err != nil || req.AppointmentID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "appointment_id required"})
	}

	appt, err := h.Workflow.CapturePayment(c.Request().Context(), req.AppointmentID, req.OrderID)
	if err != nil {
		if errors.Is(err, workflow.ErrPaymentNotCompleted) {
			// The FAILED state was recorded; tell the client what happened.
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":       "payment capture not completed",
				"appointment": toAppointmentResp(appt),
			})
		}
		return appointmentError(c, err)
	}
	return c.JSON(http.StatusOK, toAppointmentResp(appt))
}

// Approve handles PUT /v1/appointments/approve/:id.
func (h *AppointmentHandler) Approve(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	appt, err := h.Workflow.Approve(c.Request().Context(), id, act)
	if err != nil {
		return appointmentError(c, err)
	}
	return c.JSON(http.StatusOK, toAppointmentResp(appt))
}

// CheckIn handles PUT /v1/appointments/:id/checkin.
func (h *AppointmentHandler) CheckIn(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	appt, err := h.Workflow.CheckIn(c.Request().Context(), id, act)
	if err != nil {
		return appointmentError(c, err)
	}
	return c.JSON(http.StatusOK, toAppointmentResp(appt))
}

// CheckOut handles PUT /v1/appointments/:id/checkout.
func (h *AppointmentHandler) CheckOut(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	appt, err := h.Workflow.CheckOut(c.Request().Context(), id, act)
	if err != nil {
		return appointmentError(c, err)
	}
	return c.JSON(http.StatusOK, toAppointmentResp(appt))
}

// Cancel handles PUT /v1/appointments/:id/cancel.
func (h *AppointmentHandler) Cancel(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	appt, err := h.Workflow.Cancel(c.Request().Context(), id, act)
	if err != nil {
		return appointmentError(c, err)
	}
	return c.JSON(http.StatusOK, toAppointmentResp(appt))
}
