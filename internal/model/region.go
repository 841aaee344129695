package model

import "time"

// Region is reference data owned by admins. Its name determines the fee
// tier applied to appointments booked in labs of the region: a region
// named "local" (case-insensitive) gets the low fixed fee, any other name
// the high fixed fee. Appointments and labs referencing a region are found
// by query-time joins; no reverse-reference lists are stored.
type Region struct {
	ID        uint64    // regions.id
	Name      string    // regions.name (unique)
	CreatedAt time.Time // regions.created_at
	UpdatedAt time.Time // regions.updated_at
}

// RoboticsLab belongs to a region and is the resource an appointment
// books a visit to. Admin-managed reference data.
type RoboticsLab struct {
	ID          uint64    // labs.id
	RegionID    uint64    // labs.region_id
	Name        string    // labs.name
	Description string    // labs.description
	CreatedAt   time.Time // labs.created_at
	UpdatedAt   time.Time // labs.updated_at
}
