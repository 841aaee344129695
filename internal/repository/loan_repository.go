package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/kofiadjei/robolab-api/internal/model"
)

// LoanRepo manages book loans. Borrow and Return run inside transactions
// so the available-copy counter and the loan row always change together.
type LoanRepo struct{ db *sql.DB }

func NewLoanRepo(db *sql.DB) *LoanRepo { return &LoanRepo{db: db} }

// ErrLoanNotFound is returned when no loan row matches.
var ErrLoanNotFound = errors.New("loan not found")

// ErrNoCopiesAvailable is returned when every copy of the book is out.
var ErrNoCopiesAvailable = errors.New("no copies available")

// ErrOpenLoanExists is returned when the user already holds an open loan
// for the book.
var ErrOpenLoanExists = errors.New("open loan already exists for this book")

// Borrow decrements the book's available copies and inserts an open loan
// in one transaction. The decrement is guarded (available_copies > 0) so
// the counter never goes negative; when the guard matches no row the book
// either does not exist or has no free copy.
func (r *LoanRepo) Borrow(ctx context.Context, userID, bookID uint64, reference string, dueAt time.Time) (model.BookLoan, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.BookLoan{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM book_loans WHERE user_id=? AND book_id=? AND returned_at IS NULL LIMIT 1",
		userID, bookID).Scan(&exists)
	if err == nil {
		return model.BookLoan{}, ErrOpenLoanExists
	}
	if !noRows(err) {
		return model.BookLoan{}, err
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE books SET available_copies = available_copies - 1 WHERE id=? AND available_copies > 0", bookID)
	if err != nil {
		return model.BookLoan{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.BookLoan{}, err
	}
	if n == 0 {
		// Distinguish a missing book from an exhausted one.
		var one int
		if err := tx.QueryRowContext(ctx, "SELECT 1 FROM books WHERE id=? LIMIT 1", bookID).Scan(&one); err != nil {
			if noRows(err) {
				return model.BookLoan{}, ErrBookNotFound
			}
			return model.BookLoan{}, err
		}
		return model.BookLoan{}, ErrNoCopiesAvailable
	}

	now := time.Now().UTC()
	ins, err := tx.ExecContext(ctx,
		"INSERT INTO book_loans (user_id, book_id, reference, borrowed_at, due_at) VALUES (?,?,?,?,?)",
		userID, bookID, reference, now, dueAt.UTC())
	if err != nil {
		return model.BookLoan{}, err
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return model.BookLoan{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.BookLoan{}, err
	}
	committed = true
	return model.BookLoan{
		ID:         uint64(id),
		UserID:     userID,
		BookID:     bookID,
		Reference:  reference,
		BorrowedAt: now,
		DueAt:      dueAt.UTC(),
	}, nil
}

// Return closes the caller's open loan and gives the copy back to the
// catalogue. A loan belonging to a different user yields ErrForbidden.
func (r *LoanRepo) Return(ctx context.Context, loanID, userID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var (
		ownerID  uint64
		bookID   uint64
		returned sql.NullTime
	)
	err = tx.QueryRowContext(ctx,
		"SELECT user_id, book_id, returned_at FROM book_loans WHERE id=? LIMIT 1", loanID).
		Scan(&ownerID, &bookID, &returned)
	if err != nil {
		if noRows(err) {
			return ErrLoanNotFound
		}
		return err
	}
	if ownerID != userID {
		return ErrForbidden
	}
	if returned.Valid {
		return ErrConflict
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE book_loans SET returned_at=NOW() WHERE id=? AND returned_at IS NULL", loanID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE books SET available_copies = LEAST(available_copies + 1, total_copies) WHERE id=?", bookID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// LoanDetail joins a loan with its book title for listing.
type LoanDetail struct {
	ID         uint64  `json:"id"`
	UserID     uint64  `json:"user_id"`
	BookID     uint64  `json:"book_id"`
	BookTitle  string  `json:"book_title"`
	Reference  string  `json:"reference"`
	BorrowedAt string  `json:"borrowed_at"`
	DueAt      string  `json:"due_at"`
	ReturnedAt *string `json:"returned_at,omitempty"`
}

const loanSelect = `SELECT bl.id, bl.user_id, bl.book_id, b.title, bl.reference,
		bl.borrowed_at, bl.due_at, bl.returned_at
	FROM book_loans bl
	JOIN books b ON b.id = bl.book_id`

// ListByUser returns the user's loans, open ones first.
func (r *LoanRepo) ListByUser(ctx context.Context, userID uint64) ([]LoanDetail, error) {
	const q = loanSelect + ` WHERE bl.user_id=? ORDER BY bl.returned_at IS NULL DESC, bl.borrowed_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLoans(rows)
}

// ListAll returns every loan for staff views, newest first.
func (r *LoanRepo) ListAll(ctx context.Context) ([]LoanDetail, error) {
	const q = loanSelect + ` ORDER BY bl.borrowed_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLoans(rows)
}

func scanLoans(rows *sql.Rows) ([]LoanDetail, error) {
	out := make([]LoanDetail, 0)
	for rows.Next() {
		var (
			d          LoanDetail
			borrowedAt time.Time
			dueAt      time.Time
			returnedAt sql.NullTime
		)
		if err := rows.Scan(&d.ID, &d.UserID, &d.BookID, &d.BookTitle, &d.Reference,
			&borrowedAt, &dueAt, &returnedAt); err != nil {
			return nil, err
		}
		d.BorrowedAt = borrowedAt.UTC().Format(time.RFC3339)
		d.DueAt = dueAt.UTC().Format(time.RFC3339)
		if returnedAt.Valid {
			iso := returnedAt.Time.UTC().Format(time.RFC3339)
			d.ReturnedAt = &iso
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
