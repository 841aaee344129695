package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/kofiadjei/robolab-api/internal/model"
)

// AppointmentRepo provides persistence for lab appointments. Lifecycle
// transitions are written as guarded UPDATEs whose WHERE clause repeats the
// allowed source states, so a row that moved concurrently is simply not
// matched and the caller sees zero affected rows instead of a lost update.
type AppointmentRepo struct {
	db *sql.DB
}

// NewAppointmentRepo returns a new AppointmentRepo bound to the given database.
func NewAppointmentRepo(db *sql.DB) *AppointmentRepo { return &AppointmentRepo{db: db} }

// ErrAppointmentNotFound is returned when no appointment row matches.
var ErrAppointmentNotFound = errors.New("appointment not found")

// ErrActiveAppointmentExists is returned when the unique index over
// (user_id, lab_id, active_flag) rejects a second SCHEDULED/APPROVED
// appointment for the same user and lab. active_flag is a generated column
// that is 1 for active states and NULL otherwise, so completed and
// cancelled rows never collide.
var ErrActiveAppointmentExists = errors.New("active appointment already exists for this lab")

const appointmentColumns = `id, user_id, faculty_id, lab_id, region_id, visit_at, purpose,
	num_visitors, status, payment_status, order_id, fee_pesewas, check_in_at, check_out_at,
	created_at, updated_at`

// Create inserts a new SCHEDULED appointment with payment_status PENDING
// and populates the generated ID on the passed record.
func (r *AppointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	const q = `INSERT INTO appointments
		(user_id, faculty_id, lab_id, region_id, visit_at, purpose, num_visitors, status, payment_status, fee_pesewas)
		VALUES (?,?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		a.UserID, a.FacultyID, a.LabID, a.RegionID, a.VisitAt.UTC(), a.Purpose, a.NumVisitors,
		string(a.Status), string(a.PaymentStatus), a.FeePesewas)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrActiveAppointmentExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByID loads a single appointment row.
func (r *AppointmentRepo) GetByID(ctx context.Context, id uint64) (model.Appointment, error) {
	const q = `SELECT ` + appointmentColumns + ` FROM appointments WHERE id=? LIMIT 1`
	var (
		a        model.Appointment
		orderID  sql.NullString
		checkIn  sql.NullTime
		checkOut sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&a.ID, &a.UserID, &a.FacultyID, &a.LabID, &a.RegionID, &a.VisitAt, &a.Purpose,
		&a.NumVisitors, &a.Status, &a.PaymentStatus, &orderID, &a.FeePesewas, &checkIn, &checkOut,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if noRows(err) {
			return model.Appointment{}, ErrAppointmentNotFound
		}
		return model.Appointment{}, err
	}
	if orderID.Valid {
		v := orderID.String
		a.OrderID = &v
	}
	if checkIn.Valid {
		t := checkIn.Time
		a.CheckInAt = &t
	}
	if checkOut.Valid {
		t := checkOut.Time
		a.CheckOutAt = &t
	}
	return a, nil
}

// HasActive reports whether the user already holds a SCHEDULED or APPROVED
// appointment for the lab. The unique index enforces this under
// concurrency; the query exists to give callers a friendly conflict
// message before they attempt the insert.
func (r *AppointmentRepo) HasActive(ctx context.Context, userID, labID uint64) (bool, error) {
	const q = `SELECT 1 FROM appointments
		WHERE user_id=? AND lab_id=? AND status IN ('SCHEDULED','APPROVED') LIMIT 1`
	var one int
	err := r.db.QueryRowContext(ctx, q, userID, labID).Scan(&one)
	if noRows(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SetOrderID stores the external payment order id. The id is written only
// once; rows that already carry an order id are not matched.
func (r *AppointmentRepo) SetOrderID(ctx context.Context, id uint64, orderID string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE appointments SET order_id=? WHERE id=? AND order_id IS NULL", orderID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// SetPaymentStatus records the outcome of a capture attempt.
func (r *AppointmentRepo) SetPaymentStatus(ctx context.Context, id uint64, ps model.PaymentStatus) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE appointments SET payment_status=? WHERE id=?", string(ps), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

// MarkApproved advances the appointment to APPROVED. The guard excludes
// rows already APPROVED, COMPLETED or CANCELLED and requires the payment
// to be PAID, so the payment gate also holds at the storage layer. It
// returns false when the guard matched no row.
func (r *AppointmentRepo) MarkApproved(ctx context.Context, id uint64) (bool, error) {
	const q = `UPDATE appointments SET status='APPROVED'
		WHERE id=? AND status NOT IN ('APPROVED','COMPLETED','CANCELLED') AND payment_status='PAID'`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// MarkCheckedIn records the owner's arrival. Allowed from SCHEDULED and
// APPROVED only.
func (r *AppointmentRepo) MarkCheckedIn(ctx context.Context, id uint64, at time.Time) (bool, error) {
	const q = `UPDATE appointments SET status='CHECKED_IN', check_in_at=?
		WHERE id=? AND status IN ('SCHEDULED','APPROVED')`
	res, err := r.db.ExecContext(ctx, q, at.UTC(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// MarkCheckedOut completes the visit. Allowed from CHECKED_IN only, so
// COMPLETED is unreachable without a prior check-in.
func (r *AppointmentRepo) MarkCheckedOut(ctx context.Context, id uint64, at time.Time) (bool, error) {
	const q = `UPDATE appointments SET status='COMPLETED', check_out_at=?
		WHERE id=? AND status='CHECKED_IN'`
	res, err := r.db.ExecContext(ctx, q, at.UTC(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Cancel moves any non-terminal appointment to CANCELLED.
func (r *AppointmentRepo) Cancel(ctx context.Context, id uint64) (bool, error) {
	const q = `UPDATE appointments SET status='CANCELLED'
		WHERE id=? AND status IN ('SCHEDULED','APPROVED','CHECKED_IN')`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// AppointmentDetail is an appointment joined with summaries of the user,
// faculty, lab and region it references. Reverse references from regions
// and labs to their appointments are served by these joins instead of
// maintained arrays.
type AppointmentDetail struct {
	ID            uint64  `json:"id"`
	UserID        uint64  `json:"user_id"`
	UserEmail     string  `json:"user_email"`
	FacultyID     uint64  `json:"faculty_id"`
	FacultyName   string  `json:"faculty_name"`
	LabID         uint64  `json:"lab_id"`
	LabName       string  `json:"lab_name"`
	RegionID      uint64  `json:"region_id"`
	RegionName    string  `json:"region_name"`
	VisitAt       string  `json:"visit_at"`
	Purpose       string  `json:"purpose"`
	NumVisitors   uint32  `json:"num_visitors"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	OrderID       *string `json:"order_id,omitempty"`
	FeePesewas    uint32  `json:"fee_pesewas"`
	CheckInAt     *string `json:"check_in_at,omitempty"`
	CheckOutAt    *string `json:"check_out_at,omitempty"`
}

const detailSelect = `SELECT a.id, a.user_id, u.email,
		a.faculty_id, CONCAT(e.first_name, ' ', e.last_name),
		a.lab_id, l.name, a.region_id, rg.name,
		a.visit_at, a.purpose, a.num_visitors, a.status, a.payment_status,
		a.order_id, a.fee_pesewas, a.check_in_at, a.check_out_at
	FROM appointments a
	JOIN users u ON u.id = a.user_id
	JOIN faculties f ON f.id = a.faculty_id
	JOIN employees e ON e.id = f.employee_id
	JOIN labs l ON l.id = a.lab_id
	JOIN regions rg ON rg.id = a.region_id`

// ListByUser returns the user's own appointments with joined summaries,
// ordered by visit date ascending (soonest first).
func (r *AppointmentRepo) ListByUser(ctx context.Context, userID uint64) ([]AppointmentDetail, error) {
	const q = detailSelect + ` WHERE a.user_id = ? ORDER BY a.visit_at ASC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDetails(rows)
}

// ListAll returns every appointment with joined summaries for staff views,
// newest bookings first.
func (r *AppointmentRepo) ListAll(ctx context.Context) ([]AppointmentDetail, error) {
	const q = detailSelect + ` ORDER BY a.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDetails(rows)
}

// ListByLab returns appointments for one lab, the query-time replacement
// for the lab's reverse-reference list.
func (r *AppointmentRepo) ListByLab(ctx context.Context, labID uint64) ([]AppointmentDetail, error) {
	const q = detailSelect + ` WHERE a.lab_id = ? ORDER BY a.visit_at ASC`
	rows, err := r.db.QueryContext(ctx, q, labID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDetails(rows)
}

func scanDetails(rows *sql.Rows) ([]AppointmentDetail, error) {
	details := make([]AppointmentDetail, 0)
	for rows.Next() {
		var (
			d        AppointmentDetail
			visitAt  time.Time
			orderID  sql.NullString
			checkIn  sql.NullTime
			checkOut sql.NullTime
		)
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.UserEmail,
			&d.FacultyID, &d.FacultyName,
			&d.LabID, &d.LabName, &d.RegionID, &d.RegionName,
			&visitAt, &d.Purpose, &d.NumVisitors, &d.Status, &d.PaymentStatus,
			&orderID, &d.FeePesewas, &checkIn, &checkOut,
		); err != nil {
			return nil, err
		}
		d.VisitAt = visitAt.UTC().Format(time.RFC3339)
		if orderID.Valid {
			v := orderID.String
			d.OrderID = &v
		}
		if checkIn.Valid {
			iso := checkIn.Time.UTC().Format(time.RFC3339)
			d.CheckInAt = &iso
		}
		if checkOut.Valid {
			iso := checkOut.Time.UTC().Format(time.RFC3339)
			d.CheckOutAt = &iso
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}
