package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/kofiadjei/robolab-api/internal/model"
)

// RegionRepo manages the admin-owned region reference data.
type RegionRepo struct{ db *sql.DB }

func NewRegionRepo(db *sql.DB) *RegionRepo { return &RegionRepo{db: db} }

// ErrRegionNotFound is returned when no region row matches.
var ErrRegionNotFound = errors.New("region not found")

// Create inserts a region. Names are unique; a duplicate returns ErrConflict.
func (r *RegionRepo) Create(ctx context.Context, name string) (model.Region, error) {
	name = strings.TrimSpace(name)
	res, err := r.db.ExecContext(ctx, "INSERT INTO regions (name) VALUES (?)", name)
	if err != nil {
		if isDuplicateKey(err) {
			return model.Region{}, ErrConflict
		}
		return model.Region{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Region{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID loads a single region.
func (r *RegionRepo) GetByID(ctx context.Context, id uint64) (model.Region, error) {
	var rg model.Region
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, created_at, updated_at FROM regions WHERE id=? LIMIT 1", id).
		Scan(&rg.ID, &rg.Name, &rg.CreatedAt, &rg.UpdatedAt)
	if noRows(err) {
		return model.Region{}, ErrRegionNotFound
	}
	return rg, err
}

// List returns all regions ordered by name.
func (r *RegionRepo) List(ctx context.Context) ([]model.Region, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, created_at, updated_at FROM regions ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Region, 0)
	for rows.Next() {
		var rg model.Region
		if err := rows.Scan(&rg.ID, &rg.Name, &rg.CreatedAt, &rg.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rg)
	}
	return out, rows.Err()
}

// Update renames a region.
func (r *RegionRepo) Update(ctx context.Context, id uint64, name string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE regions SET name=? WHERE id=?", strings.TrimSpace(name), id)
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
		return ErrRegionNotFound
	}
	return nil
}

// Delete removes a region. Regions still referenced by labs or
// appointments are protected by foreign keys and return ErrConflict.
func (r *RegionRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM regions WHERE id=?", id)
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
		return ErrRegionNotFound
	}
	return nil
}
