package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/kofiadjei/robolab-api/internal/model"
)

// DepartmentRepo manages department records inside companies.
type DepartmentRepo struct{ db *sql.DB }

func NewDepartmentRepo(db *sql.DB) *DepartmentRepo { return &DepartmentRepo{db: db} }

// ErrDepartmentNotFound is returned when no department row matches.
var ErrDepartmentNotFound = errors.New("department not found")

// Create inserts a department under a company. Department names are
// unique per company.
func (r *DepartmentRepo) Create(ctx context.Context, companyID uint64, name string) (model.Department, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO departments (company_id, name) VALUES (?,?)",
		companyID, strings.TrimSpace(name))
	if err != nil {
		if isDuplicateKey(err) {
			return model.Department{}, ErrConflict
		}
		return model.Department{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Department{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID loads a single department.
func (r *DepartmentRepo) GetByID(ctx context.Context, id uint64) (model.Department, error) {
	var d model.Department
	err := r.db.QueryRowContext(ctx,
		"SELECT id, company_id, name, created_at, updated_at FROM departments WHERE id=? LIMIT 1", id).
		Scan(&d.ID, &d.CompanyID, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	if noRows(err) {
		return model.Department{}, ErrDepartmentNotFound
	}
	return d, err
}

// List returns departments, optionally filtered by company (0 = all).
func (r *DepartmentRepo) List(ctx context.Context, companyID uint64) ([]model.Department, error) {
	q := "SELECT id, company_id, name, created_at, updated_at FROM departments"
	args := []interface{}{}
	if companyID != 0 {
		q += " WHERE company_id=?"
		args = append(args, companyID)
	}
	q += " ORDER BY name"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Department, 0)
	for rows.Next() {
		var d model.Department
		if err := rows.Scan(&d.ID, &d.CompanyID, &d.Name, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Update renames a department.
func (r *DepartmentRepo) Update(ctx context.Context, id uint64, name string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE departments SET name=? WHERE id=?", strings.TrimSpace(name), id)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDepartmentNotFound
	}
	return nil
}

// Delete removes a department; departments with employees return ErrConflict.
func (r *DepartmentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM departments WHERE id=?", id)
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
		return ErrDepartmentNotFound
	}
	return nil
}
