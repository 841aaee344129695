// Package repository implements the MySQL data access layer. This file
// defines error values reused across multiple repositories. These sentinel
// values let handlers distinguish failure scenarios: ErrForbidden means the
// caller does not own the record it is operating on, ErrConflict means the
// operation cannot proceed because of existing dependent or conflicting
// records (e.g. deleting a region that still has labs).
package repository

import (
	"database/sql"
	"errors"
	"strings"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an insert, update or delete cannot be
// performed because of conflicting state, such as deleting a company that
// still has departments. Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// isDuplicateKey reports whether err is a MySQL duplicate-key violation
// (error 1062). Repositories map these onto domain-specific sentinels.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// isRestrictedDelete reports whether err is a MySQL foreign-key restriction
// (error 1451), raised when deleting a row that dependent rows reference.
func isRestrictedDelete(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1451")
}

// noRows reports whether err signals an empty result set.
func noRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
