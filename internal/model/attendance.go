package model

import "time"

// AttendanceStatus is decided server-side when attendance is marked:
// PRESENT before the daily cutoff, LATE after it.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceLate    AttendanceStatus = "LATE"
)

// AttendanceRecord stores one mark per user per day. The (user, day)
// pair is unique; marking twice on the same day is a conflict.
type AttendanceRecord struct {
	ID       uint64           // attendance_records.id
	UserID   uint64           // attendance_records.user_id
	Day      time.Time        // attendance_records.day (date only, UTC)
	MarkedAt time.Time        // attendance_records.marked_at
	Status   AttendanceStatus // attendance_records.status
}
