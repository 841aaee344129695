package model

import "time"

// AppointmentStatus enumerates the lifecycle states of a lab visit.
// Transitions only move forward: SCHEDULED -> APPROVED -> CHECKED_IN ->
// COMPLETED. CANCELLED is terminal and reachable from any non-terminal
// state. Approval additionally requires the payment status to be PAID.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "SCHEDULED"
	AppointmentApproved  AppointmentStatus = "APPROVED"
	AppointmentCheckedIn AppointmentStatus = "CHECKED_IN"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
)

// Terminal reports whether no further lifecycle transitions are possible.
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentCompleted || s == AppointmentCancelled
}

// PaymentStatus tracks the payment side of an appointment independently of
// its lifecycle status.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Appointment records a user's scheduled visit to a robotics lab.
//
// Fields:
//
//	ID            – primary key identifier.
//	UserID        – requesting user (owner).
//	FacultyID     – faculty member responsible for the visit.
//	LabID         – lab being visited.
//	RegionID      – region supplying the fee tier.
//	VisitAt       – scheduled date/time of the visit (future-dated).
//	Purpose       – free-text purpose, non-empty.
//	NumVisitors   – number of visitors, positive.
//	Status        – lifecycle state (see AppointmentStatus).
//	PaymentStatus – payment state (see PaymentStatus).
//	OrderID       – external payment order id, set once after order creation.
//	FeePesewas    – visit fee in pesewas (GHS cents).
//	CheckInAt     – set when the owner checks in.
//	CheckOutAt    – set when the owner checks out.
type Appointment struct {
	ID            uint64            // appointments.id
	UserID        uint64            // appointments.user_id
	FacultyID     uint64            // appointments.faculty_id
	LabID         uint64            // appointments.lab_id
	RegionID      uint64            // appointments.region_id
	VisitAt       time.Time         // appointments.visit_at
	Purpose       string            // appointments.purpose
	NumVisitors   uint32            // appointments.num_visitors
	Status        AppointmentStatus // appointments.status
	PaymentStatus PaymentStatus     // appointments.payment_status
	OrderID       *string           // appointments.order_id (nullable)
	FeePesewas    uint32            // appointments.fee_pesewas
	CheckInAt     *time.Time        // appointments.check_in_at (nullable)
	CheckOutAt    *time.Time        // appointments.check_out_at (nullable)
	CreatedAt     time.Time         // appointments.created_at
	UpdatedAt     time.Time         // appointments.updated_at
}
