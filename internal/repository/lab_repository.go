package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/kofiadjei/robolab-api/internal/model"
)

// LabRepo manages robotics lab reference data. Every lab belongs to a
// region; the region supplies the fee tier for appointments in the lab.
type LabRepo struct{ db *sql.DB }

func NewLabRepo(db *sql.DB) *LabRepo { return &LabRepo{db: db} }

// ErrLabNotFound is returned when no lab row matches.
var ErrLabNotFound = errors.New("lab not found")

// Create inserts a lab under the given region.
func (r *LabRepo) Create(ctx context.Context, regionID uint64, name, description string) (model.RoboticsLab, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO labs (region_id, name, description) VALUES (?,?,?)",
		regionID, strings.TrimSpace(name), description)
	if err != nil {
		if isDuplicateKey(err) {
			return model.RoboticsLab{}, ErrConflict
		}
		return model.RoboticsLab{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.RoboticsLab{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID loads a single lab.
func (r *LabRepo) GetByID(ctx context.Context, id uint64) (model.RoboticsLab, error) {
	var l model.RoboticsLab
	err := r.db.QueryRowContext(ctx,
		"SELECT id, region_id, name, description, created_at, updated_at FROM labs WHERE id=? LIMIT 1", id).
		Scan(&l.ID, &l.RegionID, &l.Name, &l.Description, &l.CreatedAt, &l.UpdatedAt)
	if noRows(err) {
		return model.RoboticsLab{}, ErrLabNotFound
	}
	return l, err
}

// List returns all labs, optionally filtered by region (regionID 0 means
// no filter).
func (r *LabRepo) List(ctx context.Context, regionID uint64) ([]model.RoboticsLab, error) {
	q := "SELECT id, region_id, name, description, created_at, updated_at FROM labs"
	args := []interface{}{}
	if regionID != 0 {
		q += " WHERE region_id=?"
		args = append(args, regionID)
	}
	q += " ORDER BY name"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.RoboticsLab, 0)
	for rows.Next() {
		var l model.RoboticsLab
		if err := rows.Scan(&l.ID, &l.RegionID, &l.Name, &l.Description, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Update changes a lab's name, description and region.
func (r *LabRepo) Update(ctx context.Context, id, regionID uint64, name, description string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE labs SET region_id=?, name=?, description=? WHERE id=?",
		regionID, strings.TrimSpace(name), description, id)
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
		return ErrLabNotFound
	}
	return nil
}

// Delete removes a lab. Labs still referenced by appointments are
// protected by foreign keys and return ErrConflict.
func (r *LabRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM labs WHERE id=?", id)
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
		return ErrLabNotFound
	}
	return nil
}
