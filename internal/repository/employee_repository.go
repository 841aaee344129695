package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/kofiadjei/robolab-api/internal/model"
)

// EmployeeRepo manages employee person records.
type EmployeeRepo struct{ db *sql.DB }

func NewEmployeeRepo(db *sql.DB) *EmployeeRepo { return &EmployeeRepo{db: db} }

// ErrEmployeeNotFound is returned when no employee row matches.
var ErrEmployeeNotFound = errors.New("employee not found")

// Create inserts an employee into a department. userID may be zero when
// the employee has no login account.
func (r *EmployeeRepo) Create(ctx context.Context, departmentID, userID uint64, firstName, lastName, position string) (model.Employee, error) {
	var uid interface{}
	if userID != 0 {
		uid = userID
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO employees (department_id, user_id, first_name, last_name, position) VALUES (?,?,?,?,?)",
		departmentID, uid, strings.TrimSpace(firstName), strings.TrimSpace(lastName), strings.TrimSpace(position))
	if err != nil {
		if isDuplicateKey(err) {
			return model.Employee{}, ErrConflict
		}
		return model.Employee{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Employee{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID loads a single employee.
func (r *EmployeeRepo) GetByID(ctx context.Context, id uint64) (model.Employee, error) {
	var (
		e   model.Employee
		uid sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, department_id, user_id, first_name, last_name, position, created_at, updated_at FROM employees WHERE id=? LIMIT 1", id).
		Scan(&e.ID, &e.DepartmentID, &uid, &e.FirstName, &e.LastName, &e.Position, &e.CreatedAt, &e.UpdatedAt)
	if noRows(err) {
		return model.Employee{}, ErrEmployeeNotFound
	}
	if err != nil {
		return model.Employee{}, err
	}
	if uid.Valid {
		v := uint64(uid.Int64)
		e.UserID = &v
	}
	return e, nil
}

// List returns employees, optionally filtered by department (0 = all).
func (r *EmployeeRepo) List(ctx context.Context, departmentID uint64) ([]model.Employee, error) {
	q := "SELECT id, department_id, user_id, first_name, last_name, position, created_at, updated_at FROM employees"
	args := []interface{}{}
	if departmentID != 0 {
		q += " WHERE department_id=?"
		args = append(args, departmentID)
	}
	q += " ORDER BY last_name, first_name"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Employee, 0)
	for rows.Next() {
		var (
			e   model.Employee
			uid sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.DepartmentID, &uid, &e.FirstName, &e.LastName, &e.Position, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		if uid.Valid {
			v := uint64(uid.Int64)
			e.UserID = &v
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Update changes an employee's department, name and position.
func (r *EmployeeRepo) Update(ctx context.Context, id, departmentID uint64, firstName, lastName, position string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE employees SET department_id=?, first_name=?, last_name=?, position=? WHERE id=?",
		departmentID, strings.TrimSpace(firstName), strings.TrimSpace(lastName), strings.TrimSpace(position), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

// Delete removes an employee; employees wrapped by a faculty record
// return ErrConflict.
func (r *EmployeeRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM employees WHERE id=?", id)
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
		return ErrEmployeeNotFound
	}
	return nil
}
