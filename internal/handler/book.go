package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kofiadjei/robolab-api/internal/repository"
)

// Loans run for two weeks unless the borrower asks for less.
const defaultLoanDays = 14

// BookHandler serves the library: catalogue management plus the
// borrow/return flow.
type BookHandler struct {
	Books *repository.BookRepo
	Loans *repository.LoanRepo
}

func NewBookHandler(b *repository.BookRepo, l *repository.LoanRepo) *BookHandler {
	return &BookHandler{Books: b, Loans: l}
}

type bookReq struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn"`
	TotalCopies uint32 `json:"total_copies"`
}

// Create handles POST /v1/books (admin).
func (h *BookHandler) Create(c echo.Context) error {
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	title := strings.TrimSpace(req.Title)
	if title == "" || req.TotalCopies == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and total_copies are required"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	book, err := h.Books.Create(ctx, title, strings.TrimSpace(req.Author), strings.TrimSpace(req.ISBN), req.TotalCopies)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "isbn already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create book"})
	}
	return c.JSON(http.StatusCreated, book)
}

// Get handles GET /v1/books/:id.
func (h *BookHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	book, err := h.Books.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "book not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, book)
}

// List handles GET /v1/books.
func (h *BookHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	items, err := h.Books.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Update handles PUT /v1/books/:id (admin). Copy counts are not edited
// here; they move only through the borrow/return flow.
func (h *BookHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Books.Update(ctx, id, title, strings.TrimSpace(req.Author)); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "book not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	book, _ := h.Books.GetByID(ctx, id)
	return c.JSON(http.StatusOK, book)
}

// Delete handles DELETE /v1/books/:id (admin).
func (h *BookHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Books.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrBookNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "book not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "book has loans"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

type borrowReq struct {
	Days int `json:"days"` // optional loan length, capped at the default
}

// Borrow handles POST /v1/books/:id/borrow. The response carries the
// pickup reference the borrower shows at the desk.
func (h *BookHandler) Borrow(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req borrowReq
	_ = c.Bind(&req)
	days := req.Days
	if days <= 0 || days > defaultLoanDays {
		days = defaultLoanDays
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	reference := uuid.NewString()
	dueAt := time.Now().UTC().AddDate(0, 0, days)
	loan, err := h.Loans.Borrow(ctx, uid, bookID, reference, dueAt)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "book not found"})
		case errors.Is(err, repository.ErrOpenLoanExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "open loan already exists for this book"})
		case errors.Is(err, repository.ErrNoCopiesAvailable):
			return c.JSON(http.StatusConflict, echo.Map{"error": "no copies available"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "borrow failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"loan_id":   loan.ID,
		"book_id":   loan.BookID,
		"reference": loan.Reference,
		"due_at":    loan.DueAt.Format(time.RFC3339),
	})
}

// Return handles POST /v1/loans/:id/return.
func (h *BookHandler) Return(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	loanID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Loans.Return(ctx, loanID, uid); err != nil {
		switch {
		case errors.Is(err, repository.ErrLoanNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "loan not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your loan"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "loan already returned"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "return failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListLoans handles GET /v1/loans. Staff see every loan; everyone else
// their own.
func (h *BookHandler) ListLoans(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role, err := getRole(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	var items []repository.LoanDetail
	if role.Staff() {
		items, err = h.Loans.ListAll(ctx)
	} else {
		items, err = h.Loans.ListByUser(ctx, uid)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
