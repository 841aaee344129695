// Package workflow owns the appointment lifecycle: booking, fee
// computation, payment capture, payment-gated approval and the
// check-in/check-out transitions. Handlers stay thin; every rule about
// which transition is legal for whom lives here.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kofiadjei/robolab-api/internal/model"
	"github.com/kofiadjei/robolab-api/internal/payment"
	"github.com/kofiadjei/robolab-api/internal/queue"
	"github.com/kofiadjei/robolab-api/internal/repository"
)

// Domain rejections. Handlers translate these to HTTP responses; none of
// them are transport errors.
var (
	// ErrRoleNotAllowed means the caller's role may not perform the operation.
	ErrRoleNotAllowed = errors.New("role not allowed")
	// ErrNotOwner means the caller is not the appointment's owner.
	ErrNotOwner = errors.New("not the appointment owner")
	// ErrInvalidInput wraps request validation failures.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicateBooking means the user already holds an active
	// (scheduled or approved) appointment for the lab.
	ErrDuplicateBooking = errors.New("active appointment already exists for this lab")
	// ErrAlreadyDecided means the appointment is already approved or completed.
	ErrAlreadyDecided = errors.New("appointment already approved or completed")
	// ErrPaymentRequired means approval was attempted before payment.
	ErrPaymentRequired = errors.New("payment required before approval")
	// ErrInvalidTransition means the appointment is not in a state the
	// requested transition may start from.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrOrderMissing means payment capture was requested before an order
	// was created, or with a mismatched order id.
	ErrOrderMissing = errors.New("no matching payment order for appointment")
	// ErrPaymentNotCompleted means the gateway reported a capture status
	// other than COMPLETED.
	ErrPaymentNotCompleted = errors.New("payment capture not completed")
	// ErrGateway wraps transport or API failures from the payment gateway.
	ErrGateway = errors.New("payment gateway error")
)

// Actor identifies the authenticated caller for an operation.
type Actor struct {
	ID   uint64
	Role model.Role
}

// AppointmentStore is the persistence surface the workflow needs. The
// Mark* methods are guarded transitions that report false when the row
// was not in an allowed source state.
type AppointmentStore interface {
	Create(ctx context.Context, a *model.Appointment) error
	GetByID(ctx context.Context, id uint64) (model.Appointment, error)
	HasActive(ctx context.Context, userID, labID uint64) (bool, error)
	SetOrderID(ctx context.Context, id uint64, orderID string) error
	SetPaymentStatus(ctx context.Context, id uint64, ps model.PaymentStatus) error
	MarkApproved(ctx context.Context, id uint64) (bool, error)
	MarkCheckedIn(ctx context.Context, id uint64, at time.Time) (bool, error)
	MarkCheckedOut(ctx context.Context, id uint64, at time.Time) (bool, error)
	Cancel(ctx context.Context, id uint64) (bool, error)
	ListByUser(ctx context.Context, userID uint64) ([]repository.AppointmentDetail, error)
	ListAll(ctx context.Context) ([]repository.AppointmentDetail, error)
}

// Reference-data lookups consumed when booking and when building events.
type (
	RegionStore interface {
		GetByID(ctx context.Context, id uint64) (model.Region, error)
	}
	LabStore interface {
		GetByID(ctx context.Context, id uint64) (model.RoboticsLab, error)
	}
	FacultyStore interface {
		GetByID(ctx context.Context, id uint64) (model.Faculty, error)
	}
	UserStore interface {
		GetByID(ctx context.Context, id uint64) (model.User, error)
	}
)

// Gateway is the payment processor adapter (see internal/payment).
type Gateway interface {
	CreateOrder(ctx context.Context, value string) (payment.Order, error)
	CaptureOrder(ctx context.Context, orderID string) (payment.CaptureResult, error)
}

// Publisher delivers a domain event to the broker. Failures are logged
// and never fail the request.
type Publisher func(ctx context.Context, ev queue.AppointmentApprovedEvent) error

// Service implements the appointment workflow over the stores above.
type Service struct {
	appts     AppointmentStore
	regions   RegionStore
	labs      LabStore
	faculties FacultyStore
	users     UserStore
	gateway   Gateway
	publish   Publisher
}

// NewService wires the workflow. publish may be nil to disable events.
func NewService(appts AppointmentStore, regions RegionStore, labs LabStore, faculties FacultyStore, users UserStore, gateway Gateway, publish Publisher) *Service {
	return &Service{
		appts:     appts,
		regions:   regions,
		labs:      labs,
		faculties: faculties,
		users:     users,
		gateway:   gateway,
		publish:   publish,
	}
}

// CreateInput carries everything needed to book a lab visit.
type CreateInput struct {
	Actor       Actor
	FacultyID   uint64
	LabID       uint64
	RegionID    uint64
	VisitAt     time.Time
	Purpose     string
	NumVisitors uint32
}

// Create books a lab visit: it validates the request, verifies the
// referenced faculty, lab and region exist, rejects a second active
// booking for the same (user, lab), persists the appointment with the
// region's fee, and asks the gateway for a payable order. The approval
// URL for the payer is returned alongside the stored appointment.
//
// The appointment row is written before the gateway call; if order
// creation fails the fresh row is cancelled so no orphaned unpaid
// appointment survives the failure.
func (s *Service) Create(ctx context.Context, in CreateInput) (model.Appointment, string, error) {
	if !in.Actor.Role.CanBookLab() {
		return model.Appointment{}, "", ErrRoleNotAllowed
	}
	if strings.TrimSpace(in.Purpose) == "" {
		return model.Appointment{}, "", fmt.Errorf("%w: purpose is required", ErrInvalidInput)
	}
	if in.NumVisitors == 0 {
		return model.Appointment{}, "", fmt.Errorf("%w: num_visitors must be positive", ErrInvalidInput)
	}
	if !in.VisitAt.After(time.Now().UTC()) {
		return model.Appointment{}, "", fmt.Errorf("%w: appointment date must be in the future", ErrInvalidInput)
	}

	if _, err := s.faculties.GetByID(ctx, in.FacultyID); err != nil {
		return model.Appointment{}, "", err
	}
	if _, err := s.labs.GetByID(ctx, in.LabID); err != nil {
		return model.Appointment{}, "", err
	}
	region, err := s.regions.GetByID(ctx, in.RegionID)
	if err != nil {
		return model.Appointment{}, "", err
	}

	exists, err := s.appts.HasActive(ctx, in.Actor.ID, in.LabID)
	if err != nil {
		return model.Appointment{}, "", err
	}
	if exists {
		return model.Appointment{}, "", ErrDuplicateBooking
	}

	appt := model.Appointment{
		UserID:        in.Actor.ID,
		FacultyID:     in.FacultyID,
		LabID:         in.LabID,
		RegionID:      in.RegionID,
		VisitAt:       in.VisitAt.UTC(),
		Purpose:       strings.TrimSpace(in.Purpose),
		NumVisitors:   in.NumVisitors,
		Status:        model.AppointmentScheduled,
		PaymentStatus: model.PaymentPending,
		FeePesewas:    FeeForRegion(region.Name),
	}
	if err := s.appts.Create(ctx, &appt); err != nil {
		if errors.Is(err, repository.ErrActiveAppointmentExists) {
			return model.Appointment{}, "", ErrDuplicateBooking
		}
		return model.Appointment{}, "", err
	}

	order, err := s.gateway.CreateOrder(ctx, USDValue(appt.FeePesewas))
	if err != nil {
		// Compensate: a booking the payer can never pay for is dead weight.
		if _, cerr := s.appts.Cancel(ctx, appt.ID); cerr != nil {
			log.Printf("workflow: cancel after gateway failure for appointment %d: %v", appt.ID, cerr)
		}
		return model.Appointment{}, "", fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if err := s.appts.SetOrderID(ctx, appt.ID, order.ID); err != nil {
		return model.Appointment{}, "", err
	}
	appt.OrderID = &order.ID
	return appt, order.ApprovalURL, nil
}

// CapturePayment captures the appointment's stored order. A COMPLETED
// gateway response marks the payment PAID; any other status is durably
// recorded as FAILED and reported as ErrPaymentNotCompleted.
func (s *Service) CapturePayment(ctx context.Context, appointmentID uint64, orderID string) (model.Appointment, error) {
	appt, err := s.appts.GetByID(ctx, appointmentID)
	if err != nil {
		return model.Appointment{}, err
	}
	if appt.OrderID == nil || (orderID != "" && *appt.OrderID != orderID) {
		return model.Appointment{}, ErrOrderMissing
	}

	res, err := s.gateway.CaptureOrder(ctx, *appt.OrderID)
	if err != nil {
		return model.Appointment{}, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if res.Status != "COMPLETED" {
		if serr := s.appts.SetPaymentStatus(ctx, appt.ID, model.PaymentFailed); serr != nil {
			log.Printf("workflow: record failed capture for appointment %d: %v", appt.ID, serr)
		}
		appt.PaymentStatus = model.PaymentFailed
		return appt, ErrPaymentNotCompleted
	}
	if err := s.appts.SetPaymentStatus(ctx, appt.ID, model.PaymentPaid); err != nil {
		return model.Appointment{}, err
	}
	appt.PaymentStatus = model.PaymentPaid
	return appt, nil
}

// Approve advances a paid appointment to APPROVED. Only admins and
// faculty may approve; an unpaid appointment is rejected and its status
// left untouched. On success an appointment.approved event is published
// best-effort.
func (s *Service) Approve(ctx context.Context, id uint64, actor Actor) (model.Appointment, error) {
	if !actor.Role.CanApprove() {
		return model.Appointment{}, ErrRoleNotAllowed
	}
	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	switch appt.Status {
	case model.AppointmentApproved, model.AppointmentCompleted:
		return model.Appointment{}, ErrAlreadyDecided
	case model.AppointmentCancelled:
		return model.Appointment{}, ErrInvalidTransition
	}
	if appt.PaymentStatus != model.PaymentPaid {
		return model.Appointment{}, ErrPaymentRequired
	}
	ok, err := s.appts.MarkApproved(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	if !ok {
		// The row changed under us; the guard repeats every precondition.
		return model.Appointment{}, ErrAlreadyDecided
	}
	appt.Status = model.AppointmentApproved
	s.publishApproved(ctx, appt)
	return appt, nil
}

// publishApproved assembles and publishes the approval event. Lookup or
// broker failures are logged, never surfaced.
func (s *Service) publishApproved(ctx context.Context, appt model.Appointment) {
	if s.publish == nil {
		return
	}
	ev := queue.AppointmentApprovedEvent{
		AppointmentID: appt.ID,
		UserID:        appt.UserID,
		FeePesewas:    appt.FeePesewas,
		VisitAt:       appt.VisitAt.UTC().Format(time.RFC3339),
		ApprovedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if u, err := s.users.GetByID(ctx, appt.UserID); err == nil {
		ev.UserEmail = u.Email
	}
	if lab, err := s.labs.GetByID(ctx, appt.LabID); err == nil {
		ev.LabID = lab.ID
		ev.LabName = lab.Name
	}
	if region, err := s.regions.GetByID(ctx, appt.RegionID); err == nil {
		ev.RegionName = region.Name
	}
	if err := s.publish(ctx, ev); err != nil {
		log.Printf("workflow: publish appointment.approved for %d: %v", appt.ID, err)
	}
}

// CheckIn records the owner's arrival. Allowed from SCHEDULED and
// APPROVED.
func (s *Service) CheckIn(ctx context.Context, id uint64, actor Actor) (model.Appointment, error) {
	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	if appt.UserID != actor.ID {
		return model.Appointment{}, ErrNotOwner
	}
	if appt.Status != model.AppointmentScheduled && appt.Status != model.AppointmentApproved {
		return model.Appointment{}, ErrInvalidTransition
	}
	now := time.Now().UTC()
	ok, err := s.appts.MarkCheckedIn(ctx, id, now)
	if err != nil {
		return model.Appointment{}, err
	}
	if !ok {
		return model.Appointment{}, ErrInvalidTransition
	}
	appt.Status = model.AppointmentCheckedIn
	appt.CheckInAt = &now
	return appt, nil
}

// CheckOut completes the visit. Allowed from CHECKED_IN only.
func (s *Service) CheckOut(ctx context.Context, id uint64, actor Actor) (model.Appointment, error) {
	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	if appt.UserID != actor.ID {
		return model.Appointment{}, ErrNotOwner
	}
	if appt.Status != model.AppointmentCheckedIn {
		return model.Appointment{}, ErrInvalidTransition
	}
	now := time.Now().UTC()
	ok, err := s.appts.MarkCheckedOut(ctx, id, now)
	if err != nil {
		return model.Appointment{}, err
	}
	if !ok {
		return model.Appointment{}, ErrInvalidTransition
	}
	appt.Status = model.AppointmentCompleted
	appt.CheckOutAt = &now
	return appt, nil
}

// Cancel moves the owner's non-terminal appointment to CANCELLED.
func (s *Service) Cancel(ctx context.Context, id uint64, actor Actor) (model.Appointment, error) {
	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	if appt.UserID != actor.ID {
		return model.Appointment{}, ErrNotOwner
	}
	if appt.Status.Terminal() {
		return model.Appointment{}, ErrInvalidTransition
	}
	ok, err := s.appts.Cancel(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	if !ok {
		return model.Appointment{}, ErrInvalidTransition
	}
	appt.Status = model.AppointmentCancelled
	return appt, nil
}

// Get returns one appointment. Owners see their own; staff see any.
func (s *Service) Get(ctx context.Context, id uint64, actor Actor) (model.Appointment, error) {
	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	if appt.UserID != actor.ID && !actor.Role.Staff() {
		return model.Appointment{}, ErrNotOwner
	}
	return appt, nil
}

// List returns all appointments for staff callers and only the caller's
// own otherwise.
func (s *Service) List(ctx context.Context, actor Actor) ([]repository.AppointmentDetail, error) {
	if actor.Role.Staff() {
		return s.appts.ListAll(ctx)
	}
	return s.appts.ListByUser(ctx, actor.ID)
}

// ListOwn always returns the caller's own appointments.
func (s *Service) ListOwn(ctx context.Context, actor Actor) ([]repository.AppointmentDetail, error) {
	return s.appts.ListByUser(ctx, actor.ID)
}
