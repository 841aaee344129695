package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/kofiadjei/robolab-api/internal/model"
)

// BookRepo manages the library catalogue.
type BookRepo struct{ db *sql.DB }

func NewBookRepo(db *sql.DB) *BookRepo { return &BookRepo{db: db} }

// ErrBookNotFound is returned when no book row matches.
var ErrBookNotFound = errors.New("book not found")

// Create inserts a catalogue entry. ISBNs are unique. Available copies
// start equal to total copies.
func (r *BookRepo) Create(ctx context.Context, title, author, isbn string, totalCopies uint32) (model.Book, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO books (title, author, isbn, total_copies, available_copies) VALUES (?,?,?,?,?)",
		strings.TrimSpace(title), strings.TrimSpace(author), strings.TrimSpace(isbn), totalCopies, totalCopies)
	if err != nil {
		if isDuplicateKey(err) {
			return model.Book{}, ErrConflict
		}
		return model.Book{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Book{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID loads a single book.
func (r *BookRepo) GetByID(ctx context.Context, id uint64) (model.Book, error) {
	var b model.Book
	err := r.db.QueryRowContext(ctx,
		"SELECT id, title, author, isbn, total_copies, available_copies, created_at, updated_at FROM books WHERE id=? LIMIT 1", id).
		Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.TotalCopies, &b.AvailableCopies, &b.CreatedAt, &b.UpdatedAt)
	if noRows(err) {
		return model.Book{}, ErrBookNotFound
	}
	return b, err
}

// List returns the catalogue ordered by title.
func (r *BookRepo) List(ctx context.Context) ([]model.Book, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, title, author, isbn, total_copies, available_copies, created_at, updated_at FROM books ORDER BY title")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Book, 0)
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.TotalCopies, &b.AvailableCopies, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Update changes catalogue metadata. Copy counts are adjusted only
// through borrow/return so the available count stays consistent.
func (r *BookRepo) Update(ctx context.Context, id uint64, title, author string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE books SET title=?, author=? WHERE id=?",
		strings.TrimSpace(title), strings.TrimSpace(author), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookNotFound
	}
	return nil
}

// Delete removes a book; books with loan history return ErrConflict.
func (r *BookRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM books WHERE id=?", id)
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
		return ErrBookNotFound
	}
	return nil
}
