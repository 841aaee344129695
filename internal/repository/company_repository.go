package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/kofiadjei/robolab-api/internal/model"
)

// CompanyRepo manages company records, the root of the organizational
// registry.
type CompanyRepo struct{ db *sql.DB }

func NewCompanyRepo(db *sql.DB) *CompanyRepo { return &CompanyRepo{db: db} }

// ErrCompanyNotFound is returned when no company row matches.
var ErrCompanyNotFound = errors.New("company not found")

// Create inserts a company; names are unique.
func (r *CompanyRepo) Create(ctx context.Context, name, location string) (model.Company, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO companies (name, location) VALUES (?,?)",
		strings.TrimSpace(name), strings.TrimSpace(location))
	if err != nil {
		if isDuplicateKey(err) {
			return model.Company{}, ErrConflict
		}
		return model.Company{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Company{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID loads a single company.
func (r *CompanyRepo) GetByID(ctx context.Context, id uint64) (model.Company, error) {
	var c model.Company
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, location, created_at, updated_at FROM companies WHERE id=? LIMIT 1", id).
		Scan(&c.ID, &c.Name, &c.Location, &c.CreatedAt, &c.UpdatedAt)
	if noRows(err) {
		return model.Company{}, ErrCompanyNotFound
	}
	return c, err
}

// List returns all companies ordered by name.
func (r *CompanyRepo) List(ctx context.Context) ([]model.Company, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, location, created_at, updated_at FROM companies ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Company, 0)
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Location, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update changes a company's name and location.
func (r *CompanyRepo) Update(ctx context.Context, id uint64, name, location string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE companies SET name=?, location=? WHERE id=?",
		strings.TrimSpace(name), strings.TrimSpace(location), id)
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
		return ErrCompanyNotFound
	}
	return nil
}

// Delete removes a company; companies with departments return ErrConflict.
func (r *CompanyRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM companies WHERE id=?", id)
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
		return ErrCompanyNotFound
	}
	return nil
}
