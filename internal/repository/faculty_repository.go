package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kofiadjei/robolab-api/internal/model"
)

// FacultyRepo manages faculty records, each wrapping one employee.
// Appointments referencing a faculty are found with query-time joins;
// no reverse-reference list is stored on the faculty row.
type FacultyRepo struct{ db *sql.DB }

func NewFacultyRepo(db *sql.DB) *FacultyRepo { return &FacultyRepo{db: db} }

// ErrFacultyNotFound is returned when no faculty row matches.
var ErrFacultyNotFound = errors.New("faculty not found")

// Create wraps an employee as a faculty member. An employee can be
// wrapped at most once.
func (r *FacultyRepo) Create(ctx context.Context, employeeID uint64, labAdmin bool) (model.Faculty, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO faculties (employee_id, lab_admin) VALUES (?,?)", employeeID, labAdmin)
	if err != nil {
		if isDuplicateKey(err) {
			return model.Faculty{}, ErrConflict
		}
		return model.Faculty{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Faculty{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID loads a single faculty record.
func (r *FacultyRepo) GetByID(ctx context.Context, id uint64) (model.Faculty, error) {
	var f model.Faculty
	err := r.db.QueryRowContext(ctx,
		"SELECT id, employee_id, lab_admin, created_at, updated_at FROM faculties WHERE id=? LIMIT 1", id).
		Scan(&f.ID, &f.EmployeeID, &f.LabAdmin, &f.CreatedAt, &f.UpdatedAt)
	if noRows(err) {
		return model.Faculty{}, ErrFacultyNotFound
	}
	return f, err
}

// FacultyDetail joins the faculty with its employee's name and position
// for listing.
type FacultyDetail struct {
	ID         uint64 `json:"id"`
	EmployeeID uint64 `json:"employee_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Position   string `json:"position"`
	LabAdmin   bool   `json:"lab_admin"`
}

// List returns all faculty members with their employee names.
func (r *FacultyRepo) List(ctx context.Context) ([]FacultyDetail, error) {
	const q = `SELECT f.id, f.employee_id, e.first_name, e.last_name, e.position, f.lab_admin
		FROM faculties f
		JOIN employees e ON e.id = f.employee_id
		ORDER BY e.last_name, e.first_name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]FacultyDetail, 0)
	for rows.Next() {
		var d FacultyDetail
		if err := rows.Scan(&d.ID, &d.EmployeeID, &d.FirstName, &d.LastName, &d.Position, &d.LabAdmin); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SetLabAdmin flips the lab administrative privilege flag.
func (r *FacultyRepo) SetLabAdmin(ctx context.Context, id uint64, labAdmin bool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE faculties SET lab_admin=? WHERE id=?", labAdmin, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrFacultyNotFound
	}
	return nil
}

// Delete removes a faculty record; faculties referenced by appointments
// return ErrConflict.
func (r *FacultyRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM faculties WHERE id=?", id)
	if err != nil {
		if isRestrictedDelete(err) {
			return ErrConflict
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrFacultyNotFound
	}
	return nil
}
