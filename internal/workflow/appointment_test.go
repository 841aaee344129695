package workflow

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kofiadjei/robolab-api/internal/model"
	"github.com/kofiadjei/robolab-api/internal/payment"
	"github.com/kofiadjei/robolab-api/internal/queue"
	"github.com/kofiadjei/robolab-api/internal/repository"
)

// fakeAppointments is an in-memory AppointmentStore. Guards mirror the
// SQL repository: Mark* methods report false when the row is not in an
// allowed source state.
type fakeAppointments struct {
	rows   map[uint64]*model.Appointment
	nextID uint64

	createErr error
}

func newFakeAppointments() *fakeAppointments {
	return &fakeAppointments{rows: make(map[uint64]*model.Appointment), nextID: 1}
}

func (f *fakeAppointments) Create(_ context.Context, a *model.Appointment) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, r := range f.rows {
		if r.UserID == a.UserID && r.LabID == a.LabID &&
			(r.Status == model.AppointmentScheduled || r.Status == model.AppointmentApproved) {
			return repository.ErrActiveAppointmentExists
		}
	}
	a.ID = f.nextID
	f.nextID++
	cp := *a
	f.rows[a.ID] = &cp
	return nil
}

func (f *fakeAppointments) GetByID(_ context.Context, id uint64) (model.Appointment, error) {
	r, ok := f.rows[id]
	if !ok {
		return model.Appointment{}, repository.ErrAppointmentNotFound
	}
	return *r, nil
}

func (f *fakeAppointments) HasActive(_ context.Context, userID, labID uint64) (bool, error) {
	for _, r := range f.rows {
		if r.UserID == userID && r.LabID == labID &&
			(r.Status == model.AppointmentScheduled || r.Status == model.AppointmentApproved) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAppointments) SetOrderID(_ context.Context, id uint64, orderID string) error {
	r, ok := f.rows[id]
	if !ok {
		return repository.ErrAppointmentNotFound
	}
	if r.OrderID != nil {
		return repository.ErrConflict
	}
	r.OrderID = &orderID
	return nil
}

func (f *fakeAppointments) SetPaymentStatus(_ context.Context, id uint64, ps model.PaymentStatus) error {
	r, ok := f.rows[id]
	if !ok {
		return repository.ErrAppointmentNotFound
	}
	r.PaymentStatus = ps
	return nil
}

func (f *fakeAppointments) MarkApproved(_ context.Context, id uint64) (bool, error) {
	r, ok := f.rows[id]
	if !ok {
		return false, nil
	}
	switch r.Status {
	case model.AppointmentApproved, model.AppointmentCompleted, model.AppointmentCancelled:
		return false, nil
	}
	if r.PaymentStatus != model.PaymentPaid {
		return false, nil
	}
	r.Status = model.AppointmentApproved
	return true, nil
}

func (f *fakeAppointments) MarkCheckedIn(_ context.Context, id uint64, at time.Time) (bool, error) {
	r, ok := f.rows[id]
	if !ok || (r.Status != model.AppointmentScheduled && r.Status != model.AppointmentApproved) {
		return false, nil
	}
	r.Status = model.AppointmentCheckedIn
	r.CheckInAt = &at
	return true, nil
}

func (f *fakeAppointments) MarkCheckedOut(_ context.Context, id uint64, at time.Time) (bool, error) {
	r, ok := f.rows[id]
	if !ok || r.Status != model.AppointmentCheckedIn {
		return false, nil
	}
	r.Status = model.AppointmentCompleted
	r.CheckOutAt = &at
	return true, nil
}

func (f *fakeAppointments) Cancel(_ context.Context, id uint64) (bool, error) {
	r, ok := f.rows[id]
	if !ok || r.Status.Terminal() {
		return false, nil
	}
	r.Status = model.AppointmentCancelled
	return true, nil
}

func (f *fakeAppointments) ListByUser(_ context.Context, userID uint64) ([]repository.AppointmentDetail, error) {
	out := make([]repository.AppointmentDetail, 0)
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, repository.AppointmentDetail{ID: r.ID, UserID: r.UserID})
		}
	}
	return out, nil
}

func (f *fakeAppointments) ListAll(_ context.Context) ([]repository.AppointmentDetail, error) {
	out := make([]repository.AppointmentDetail, 0)
	for _, r := range f.rows {
		out = append(out, repository.AppointmentDetail{ID: r.ID, UserID: r.UserID})
	}
	return out, nil
}

type fakeRegions struct{ regions map[uint64]model.Region }

func (f fakeRegions) GetByID(_ context.Context, id uint64) (model.Region, error) {
	r, ok := f.regions[id]
	if !ok {
		return model.Region{}, repository.ErrRegionNotFound
	}
	return r, nil
}

type fakeLabs struct{ labs map[uint64]model.RoboticsLab }

func (f fakeLabs) GetByID(_ context.Context, id uint64) (model.RoboticsLab, error) {
	l, ok := f.labs[id]
	if !ok {
		return model.RoboticsLab{}, repository.ErrLabNotFound
	}
	return l, nil
}

type fakeFaculties struct{ ids map[uint64]bool }

func (f fakeFaculties) GetByID(_ context.Context, id uint64) (model.Faculty, error) {
	if !f.ids[id] {
		return model.Faculty{}, repository.ErrFacultyNotFound
	}
	return model.Faculty{ID: id, EmployeeID: 1}, nil
}

type fakeUsers struct{ users map[uint64]model.User }

func (f fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

// fakeGateway records calls and returns scripted results.
type fakeGateway struct {
	createErr     error
	captureErr    error
	captureStatus string
	created       int
	captured      []string
}

func (g *fakeGateway) CreateOrder(_ context.Context, value string) (payment.Order, error) {
	g.created++
	if g.createErr != nil {
		return payment.Order{}, g.createErr
	}
	return payment.Order{ID: "ORD-1", ApprovalURL: "https://paypal.test/approve/ORD-1"}, nil
}

func (g *fakeGateway) CaptureOrder(_ context.Context, orderID string) (payment.CaptureResult, error) {
	g.captured = append(g.captured, orderID)
	if g.captureErr != nil {
		return payment.CaptureResult{}, g.captureErr
	}
	status := g.captureStatus
	if status == "" {
		status = "COMPLETED"
	}
	return payment.CaptureResult{Status: status}, nil
}

type env struct {
	svc       *Service
	appts     *fakeAppointments
	gateway   *fakeGateway
	published []queue.AppointmentApprovedEvent
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		appts:   newFakeAppointments(),
		gateway: &fakeGateway{},
	}
	regions := fakeRegions{regions: map[uint64]model.Region{
		1: {ID: 1, Name: "local"},
		2: {ID: 2, Name: "Ashanti"},
	}}
	labs := fakeLabs{labs: map[uint64]model.RoboticsLab{
		10: {ID: 10, RegionID: 1, Name: "Mechatronics Lab"},
	}}
	faculties := fakeFaculties{ids: map[uint64]bool{5: true}}
	users := fakeUsers{users: map[uint64]model.User{
		100: {ID: 100, Email: "ama@example.com", Role: model.RoleStudent},
	}}
	e.svc = NewService(e.appts, regions, labs, faculties, users, e.gateway,
		func(_ context.Context, ev queue.AppointmentApprovedEvent) error {
			e.published = append(e.published, ev)
			return nil
		})
	return e
}

var student = Actor{ID: 100, Role: model.RoleStudent}

func validInput() CreateInput {
	return CreateInput{
		Actor:       student,
		FacultyID:   5,
		LabID:       10,
		RegionID:    1,
		VisitAt:     time.Now().UTC().Add(48 * time.Hour),
		Purpose:     "line follower testing",
		NumVisitors: 3,
	}
}

func TestCreateAppointment(t *testing.T) {
	e := newEnv(t)

	appt, approvalURL, err := e.svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentScheduled, appt.Status)
	assert.Equal(t, model.PaymentPending, appt.PaymentStatus)
	assert.Equal(t, LocalFeePesewas, appt.FeePesewas)
	require.NotNil(t, appt.OrderID)
	assert.Equal(t, "ORD-1", *appt.OrderID)
	assert.Equal(t, "https://paypal.test/approve/ORD-1", approvalURL)
	assert.Equal(t, 1, e.gateway.created)
}

func TestCreateAppointmentStandardFee(t *testing.T) {
	e := newEnv(t)

	in := validInput()
	in.RegionID = 2
	appt, _, err := e.svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, StandardFeePesewas, appt.FeePesewas)
}

func TestCreateAppointmentValidation(t *testing.T) {
	e := newEnv(t)

	in := validInput()
	in.Actor.Role = model.RoleEmployee
	_, _, err := e.svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrRoleNotAllowed)

	in = validInput()
	in.Purpose = "   "
	_, _, err = e.svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = validInput()
	in.NumVisitors = 0
	_, _, err = e.svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = validInput()
	in.VisitAt = time.Now().UTC().Add(-time.Hour)
	_, _, err = e.svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = validInput()
	in.RegionID = 99
	_, _, err = e.svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, repository.ErrRegionNotFound)

	// Nothing reached the gateway.
	assert.Zero(t, e.gateway.created)
}

func TestCreateAppointmentDuplicateActive(t *testing.T) {
	e := newEnv(t)

	_, _, err := e.svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, _, err = e.svc.Create(context.Background(), validInput())
	assert.ErrorIs(t, err, ErrDuplicateBooking)
	assert.Equal(t, 1, e.gateway.created)
}

func TestCreateAppointmentGatewayFailureCancels(t *testing.T) {
	e := newEnv(t)
	e.gateway.createErr = errors.New("gateway down")

	_, _, err := e.svc.Create(context.Background(), validInput())
	assert.ErrorIs(t, err, ErrGateway)

	// The freshly stored booking was cancelled, so a retry is possible.
	require.Len(t, e.appts.rows, 1)
	for _, r := range e.appts.rows {
		assert.Equal(t, model.AppointmentCancelled, r.Status)
	}
	_, _, err = e.svc.Create(context.Background(), validInput())
	assert.ErrorIs(t, err, ErrGateway) // still down, but no duplicate conflict
}

func TestCapturePayment(t *testing.T) {
	e := newEnv(t)
	appt, _, err := e.svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	got, err := e.svc.CapturePayment(context.Background(), appt.ID, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, got.PaymentStatus)
	assert.Equal(t, []string{"ORD-1"}, e.gateway.captured)
}

func TestCapturePaymentNotCompleted(t *testing.T) {
	e := newEnv(t)
	appt, _, err := e.svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	e.gateway.captureStatus = "DECLINED"

	got, err := e.svc.CapturePayment(context.Background(), appt.ID, "")
	assert.ErrorIs(t, err, ErrPaymentNotCompleted)
	assert.Equal(t, model.PaymentFailed, got.PaymentStatus)

	// The failure is durable.
	stored, err := e.appts.GetByID(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentFailed, stored.PaymentStatus)
}

func TestCapturePaymentOrderMismatch(t *testing.T) {
	e := newEnv(t)
	appt, _, err := e.svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, err = e.svc.CapturePayment(context.Background(), appt.ID, "ORD-OTHER")
	assert.ErrorIs(t, err, ErrOrderMissing)
	assert.Empty(t, e.gateway.captured)
}

func TestApproveRequiresPayment(t *testing.T) {
	e := newEnv(t)
	appt, _, err := e.svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	admin := Actor{ID: 1, Role: model.RoleAdmin}
	_, err = e.svc.Approve(context.Background(), appt.ID, admin)
	assert.ErrorIs(t, err, ErrPaymentRequired)

	// Rejection leaves the appointment SCHEDULED.
	stored, _ := e.appts.GetByID(context.Background(), appt.ID)
	assert.Equal(t, model.AppointmentScheduled, stored.Status)
}

func TestApprovePaidAppointment(t *testing.T) {
	e := newEnv(t)
	appt, _, err := e.svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	_, err = e.svc.CapturePayment(context.Background(), appt.ID, "")
	require.NoError(t, err)

	admin := Actor{ID: 1, Role: model.RoleAdmin}
	got, err := e.svc.Approve(context.Background(), appt.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentApproved, got.Status)

	require.Len(t, e.published, 1)
	ev := e.published[0]
	assert.Equal(t, appt.ID, ev.AppointmentID)
	assert.Equal(t, "ama@example.com", ev.UserEmail)
	assert.Equal(t, "Mechatronics Lab", ev.LabName)
	assert.Equal(t, "local", ev.RegionName)
	assert.Equal(t, LocalFeePesewas, ev.FeePesewas)

	// A second approval is rejected.
	_, err = e.svc.Approve(context.Background(), appt.ID, admin)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
}

func TestApproveAuthorization(t *testing.T) {
	e := newEnv(t)
	appt, _, err := e.svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, err = e.svc.Approve(context.Background(), appt.ID, student)
	assert.ErrorIs(t, err, ErrRoleNotAllowed)

	_, err = e.svc.Approve(context.Background(), 999, Actor{ID: 1, Role: model.RoleFaculty})
	assert.ErrorIs(t, err, repository.ErrAppointmentNotFound)
}

func TestCheckInAndOut(t *testing.T) {
	e := newEnv(t)
	appt, _, err := e.svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	// Check-out before check-in is an invalid transition.
	_, err = e.svc.CheckOut(context.Background(), appt.ID, student)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err := e.svc.CheckIn(context.Background(), appt.ID, student)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentCheckedIn, got.Status)
	assert.NotNil(t, got.CheckInAt)

	// A second check-in is rejected.
	_, err = e.svc.CheckIn(context.Background(), appt.ID, student)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err = e.svc.CheckOut(context.Background(), appt.ID, student)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentCompleted, got.Status)
	assert.NotNil(t, got.CheckOutAt)
}

func TestCheckInOwnerOnly(t *testing.T) {
	e := newEnv(t)
	appt, _, err := e.svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	other := Actor{ID: 200, Role: model.RoleStudent}
	_, err = e.svc.CheckIn(context.Background(), appt.ID, other)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestCancel(t *testing.T) {
	e := newEnv(t)
	appt, _, err := e.svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	other := Actor{ID: 200, Role: model.RoleStudent}
	_, err = e.svc.Cancel(context.Background(), appt.ID, other)
	assert.ErrorIs(t, err, ErrNotOwner)

	got, err := e.svc.Cancel(context.Background(), appt.ID, student)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentCancelled, got.Status)

	_, err = e.svc.Cancel(context.Background(), appt.ID, student)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestGetVisibility(t *testing.T) {
	e := newEnv(t)
	appt, _, err := e.svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, err = e.svc.Get(context.Background(), appt.ID, student)
	assert.NoError(t, err)

	_, err = e.svc.Get(context.Background(), appt.ID, Actor{ID: 1, Role: model.RoleAdmin})
	assert.NoError(t, err)

	_, err = e.svc.Get(context.Background(), appt.ID, Actor{ID: 200, Role: model.RoleStudent})
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestListScoping(t *testing.T) {
	e := newEnv(t)
	_, _, err := e.svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	own, err := e.svc.List(context.Background(), student)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	none, err := e.svc.List(context.Background(), Actor{ID: 200, Role: model.RoleStudent})
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := e.svc.List(context.Background(), Actor{ID: 1, Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
