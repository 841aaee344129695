package model

import "time"

// Role is the closed set of institute roles. Authorization decisions are
// made through the capability methods below rather than ad-hoc string
// comparisons in handlers, so the set of roles allowed to perform an
// operation lives in exactly one place.
type Role string

const (
	RoleStudent  Role = "STUDENT"
	RoleTeacher  Role = "TEACHER"
	RoleFaculty  Role = "FACULTY"
	RoleEmployee Role = "EMPLOYEE"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleFaculty, RoleEmployee, RoleAdmin:
		return true
	}
	return false
}

// CanBookLab reports whether the role may create lab appointments.
func (r Role) CanBookLab() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleFaculty:
		return true
	}
	return false
}

// CanApprove reports whether the role may approve lab appointments.
func (r Role) CanApprove() bool {
	return r == RoleAdmin || r == RoleFaculty
}

// Staff reports whether the role sees institute-wide data (all
// appointments, all loans, attendance by date).
func (r Role) Staff() bool {
	return r == RoleAdmin || r == RoleFaculty
}

// User represents an application user record as stored in the `users`
// table. The password is kept only as a bcrypt hash.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	Role         – institute role (see Role constants).
//	IsActive     – whether the account is active.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         Role      // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table. Each token
// belongs to a user and carries expiry and revocation metadata. The plain
// token is never stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
