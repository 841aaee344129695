package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/kofiadjei/robolab-api/internal/model"
)

// AttendanceRepo stores one attendance mark per user per day. The
// (user_id, day) pair carries a unique index, so double marking is a
// duplicate-key error rather than a read-then-write race.
type AttendanceRepo struct{ db *sql.DB }

func NewAttendanceRepo(db *sql.DB) *AttendanceRepo { return &AttendanceRepo{db: db} }

// ErrAlreadyMarked is returned when the user has already marked
// attendance for the day.
var ErrAlreadyMarked = errors.New("attendance already marked for today")

// Mark inserts the day's attendance record.
func (r *AttendanceRepo) Mark(ctx context.Context, userID uint64, day time.Time, markedAt time.Time, status model.AttendanceStatus) (model.AttendanceRecord, error) {
	day = day.UTC().Truncate(24 * time.Hour)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO attendance_records (user_id, day, marked_at, status) VALUES (?,?,?,?)",
		userID, day, markedAt.UTC(), string(status))
	if err != nil {
		if isDuplicateKey(err) {
			return model.AttendanceRecord{}, ErrAlreadyMarked
		}
		return model.AttendanceRecord{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	return model.AttendanceRecord{
		ID:       uint64(id),
		UserID:   userID,
		Day:      day,
		MarkedAt: markedAt.UTC(),
		Status:   status,
	}, nil
}

// ListByUser returns the user's attendance history, newest day first.
func (r *AttendanceRepo) ListByUser(ctx context.Context, userID uint64) ([]model.AttendanceRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, day, marked_at, status FROM attendance_records WHERE user_id=? ORDER BY day DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttendance(rows)
}

// ListByDay returns every record for one day for staff views.
func (r *AttendanceRepo) ListByDay(ctx context.Context, day time.Time) ([]model.AttendanceRecord, error) {
	day = day.UTC().Truncate(24 * time.Hour)
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, day, marked_at, status FROM attendance_records WHERE day=? ORDER BY marked_at", day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttendance(rows)
}

func scanAttendance(rows *sql.Rows) ([]model.AttendanceRecord, error) {
	out := make([]model.AttendanceRecord, 0)
	for rows.Next() {
		var rec model.AttendanceRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Day, &rec.MarkedAt, &rec.Status); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
