package model

import "time"

// Company is the top of the organizational hierarchy. Departments belong
// to a company, employees to a department.
type Company struct {
	ID        uint64    // companies.id
	Name      string    // companies.name (unique)
	Location  string    // companies.location
	CreatedAt time.Time // companies.created_at
	UpdatedAt time.Time // companies.updated_at
}

// Department groups employees inside a company.
type Department struct {
	ID        uint64    // departments.id
	CompanyID uint64    // departments.company_id
	Name      string    // departments.name
	CreatedAt time.Time // departments.created_at
	UpdatedAt time.Time // departments.updated_at
}

// Employee is an organizational person record. It may optionally be
// linked to a login account via UserID.
type Employee struct {
	ID           uint64    // employees.id
	DepartmentID uint64    // employees.department_id
	UserID       *uint64   // employees.user_id (nullable login account)
	FirstName    string    // employees.first_name
	LastName     string    // employees.last_name
	Position     string    // employees.position
	CreatedAt    time.Time // employees.created_at
	UpdatedAt    time.Time // employees.updated_at
}

// Faculty wraps an employee with lab responsibilities. LabAdmin marks
// faculty members with administrative privileges over labs; they may
// approve appointments regardless of the flag, which only gates lab
// record management in the registry.
type Faculty struct {
	ID         uint64    // faculties.id
	EmployeeID uint64    // faculties.employee_id
	LabAdmin   bool      // faculties.lab_admin
	CreatedAt  time.Time // faculties.created_at
	UpdatedAt  time.Time // faculties.updated_at
}
