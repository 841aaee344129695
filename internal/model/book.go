package model

import "time"

// Book is a library catalogue entry. AvailableCopies is decremented on
// borrow and incremented on return; it never drops below zero (guarded
// UPDATE in the repository).
type Book struct {
	ID              uint64    // books.id
	Title           string    // books.title
	Author          string    // books.author
	ISBN            string    // books.isbn (unique)
	TotalCopies     uint32    // books.total_copies
	AvailableCopies uint32    // books.available_copies
	CreatedAt       time.Time // books.created_at
	UpdatedAt       time.Time // books.updated_at
}

// BookLoan records one user borrowing one book. A user holds at most one
// open loan per book at a time. Reference is an opaque code handed to the
// borrower for desk pickup.
type BookLoan struct {
	ID         uint64     // book_loans.id
	UserID     uint64     // book_loans.user_id
	BookID     uint64     // book_loans.book_id
	Reference  string     // book_loans.reference
	BorrowedAt time.Time  // book_loans.borrowed_at
	DueAt      time.Time  // book_loans.due_at
	ReturnedAt *time.Time // book_loans.returned_at (nullable, open loan while NULL)
}
