// Package queue defines message payloads exchanged over the message broker.
package queue

// AppointmentApprovedEvent is published when a lab appointment is approved
// by an admin or faculty member. It carries enough information for
// downstream consumers to log or notify without querying the primary
// database.
type AppointmentApprovedEvent struct {
	AppointmentID uint64 `json:"appointment_id"`
	UserID        uint64 `json:"user_id"`
	UserEmail     string `json:"user_email"`
	LabID         uint64 `json:"lab_id"`
	LabName       string `json:"lab_name"`
	RegionName    string `json:"region_name"`
	VisitAt       string `json:"visit_at"`
	FeePesewas    uint32 `json:"fee_pesewas"`
	ApprovedAt    string `json:"approved_at"`
}
