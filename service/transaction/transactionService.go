package txnsvc

import (
	"context"
	"errors"
	"time"

	"bookrental/model"
	txnrepo "bookrental/repository/transaction"
)

// errors used by controllers

type ErrCode string

const (
	ErrBadInput       ErrCode = "BAD_INPUT"
	ErrInvalidRange   ErrCode = "INVALID_RANGE"
	ErrBookNotFound   ErrCode = "BOOK_NOT_FOUND"
	ErrUserNotFound   ErrCode = "USER_NOT_FOUND"
	ErrTxnNotFound    ErrCode = "TXN_NOT_FOUND"
	ErrNoTransactions ErrCode = "NO_TRANSACTIONS"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts the error code, or "" for uncoded (store) errors.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

const (
	unknownBook = "Unknown Book"
	unknownUser = "Unknown User"
)

// dto

type Returned struct {
	TransactionID int64   `json:"transaction_id"`
	DaysRented    int64   `json:"days_rented"`
	TotalRent     float64 `json:"total_rent"`
}

type Enriched struct {
	ID         int64                   `json:"id"`
	BookID     int64                   `json:"book_id"`
	BookName   string                  `json:"book_name"`
	UserID     int64                   `json:"user_id"`
	UserName   string                  `json:"user_name"`
	IssueDate  time.Time               `json:"issue_date"`
	ReturnDate *time.Time              `json:"return_date,omitempty"`
	TotalRent  *float64                `json:"total_rent,omitempty"`
	Status     model.TransactionStatus `json:"status"`
}

type HistoryEntry struct {
	UserID     int64                   `json:"user_id"`
	IssueDate  time.Time               `json:"issue_date"`
	ReturnDate *time.Time              `json:"return_date,omitempty"`
	Status     model.TransactionStatus `json:"status"`
}

type History struct {
	BookName      string         `json:"book_name"`
	CurrentStatus string         `json:"current_status"` // "issued" | "not issued"
	CurrentHolder *int64         `json:"current_holder,omitempty"`
	History       []HistoryEntry `json:"history"`
}

type UserLoan struct {
	TransactionID int64                   `json:"transaction_id"`
	BookID        int64                   `json:"book_id"`
	BookName      string                  `json:"book_name"`
	IssueDate     time.Time               `json:"issue_date"`
	ReturnDate    *time.Time              `json:"return_date,omitempty"`
	TotalRent     *float64                `json:"total_rent,omitempty"`
	Status        model.TransactionStatus `json:"status"`
}

// Books and Users are the lookup-only views the ledger needs from the
// catalog and the registry. The ledger never mutates either.

type Books interface {
	ByID(ctx context.Context, id int64) (*model.Book, error)
	ByName(ctx context.Context, name string) (*model.Book, error)
}

type Users interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
	ByName(ctx context.Context, name string) (*model.User, error)
}

type Repo interface {
	Insert(ctx context.Context, bookID, userID int64, issueDate time.Time) (int64, error)
	ByID(ctx context.Context, id int64) (*model.Transaction, error)
	MarkReturned(ctx context.Context, id int64, returnDate time.Time, totalRent float64) (bool, error)
	ListAll(ctx context.Context) ([]txnrepo.Row, error)
	ListByBook(ctx context.Context, bookID int64) ([]model.Transaction, error)
	ListByUser(ctx context.Context, userID int64) ([]txnrepo.Row, error)
	ListIssuedBetween(ctx context.Context, start, end time.Time) ([]txnrepo.Row, error)
	SumRentForBook(ctx context.Context, bookID int64) (float64, error)
}

type Service interface {
	// Issue creates an open transaction for a resolved book and user.
	Issue(ctx context.Context, book, user model.Ident, issueDate time.Time) (int64, error)

	// Return closes an open transaction and computes the rent owed.
	Return(ctx context.Context, transactionID int64, returnDate time.Time) (*Returned, error)

	ListAll(ctx context.Context) ([]Enriched, error)
	BookHistory(ctx context.Context, bookName string) (*History, error)
	TotalRentForBook(ctx context.Context, bookName string) (float64, error)
	ForUser(ctx context.Context, user model.Ident) ([]UserLoan, error)
	IssuedInRange(ctx context.Context, start, end time.Time) ([]Enriched, error)
}

// ----- Service implementation -----

type service struct {
	r     Repo
	books Books
	users Users
}

func New(r Repo, books Books, users Users) Service {
	return &service{r: r, books: books, users: users}
}

const day = 24 * time.Hour

// daysRented rounds any partial day up and charges at least one day, so a
// same-day return still pays. A return before the issue is a caller error.
func daysRented(issue, ret time.Time) (int64, error) {
	span := ret.Sub(issue)
	if span < 0 {
		return 0, makeErr(ErrInvalidRange)
	}
	days := int64(span / day)
	if span%day != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days, nil
}

func (s *service) resolveBook(ctx context.Context, id model.Ident) (*model.Book, error) {
	var (
		b   *model.Book
		err error
	)
	if id.IsID() {
		b, err = s.books.ByID(ctx, id.ID)
	} else {
		b, err = s.books.ByName(ctx, id.Name)
	}
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, makeErr(ErrBookNotFound)
	}
	return b, nil
}

func (s *service) resolveUser(ctx context.Context, id model.Ident) (*model.User, error) {
	var (
		u   *model.User
		err error
	)
	if id.IsID() {
		u, err = s.users.ByID(ctx, id.ID)
	} else {
		u, err = s.users.ByName(ctx, id.Name)
	}
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, makeErr(ErrUserNotFound)
	}
	return u, nil
}

// Issue is deliberately permissive: it does not check for an existing open
// transaction on the same book, so two holders can overlap.
func (s *service) Issue(ctx context.Context, book, user model.Ident, issueDate time.Time) (int64, error) {
	if book.IsZero() || user.IsZero() || issueDate.IsZero() {
		return 0, makeErr(ErrBadInput)
	}
	b, err := s.resolveBook(ctx, book)
	if err != nil {
		return 0, err
	}
	u, err := s.resolveUser(ctx, user)
	if err != nil {
		return 0, err
	}
	id, err := s.r.Insert(ctx, b.ID, u.ID, issueDate)
	if errors.Is(err, txnrepo.ErrMissingRef) {
		// the book or user was deleted between resolution and insert
		return 0, makeErr(ErrBookNotFound)
	}
	return id, err
}

func (s *service) Return(ctx context.Context, transactionID int64, returnDate time.Time) (*Returned, error) {
	if transactionID <= 0 || returnDate.IsZero() {
		return nil, makeErr(ErrBadInput)
	}
	t, err := s.r.ByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if t == nil || t.Status != model.StatusIssued {
		return nil, makeErr(ErrTxnNotFound)
	}

	b, err := s.books.ByID(ctx, t.BookID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, makeErr(ErrBookNotFound)
	}

	days, err := daysRented(t.IssueDate, returnDate)
	if err != nil {
		return nil, err
	}
	total := b.RentPerDay * float64(days)

	ok, err := s.r.MarkReturned(ctx, transactionID, returnDate, total)
	if err != nil {
		return nil, err
	}
	if !ok {
		// lost the race: someone returned it first
		return nil, makeErr(ErrTxnNotFound)
	}
	return &Returned{TransactionID: transactionID, DaysRented: days, TotalRent: total}, nil
}

func (s *service) ListAll(ctx context.Context) ([]Enriched, error) {
	rows, err := s.r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Enriched, 0, len(rows))
	for _, row := range rows {
		out = append(out, enrich(row))
	}
	return out, nil
}

func enrich(row txnrepo.Row) Enriched {
	return Enriched{
		ID:         row.ID,
		BookID:     row.BookID,
		BookName:   orUnknown(row.BookName, unknownBook),
		UserID:     row.UserID,
		UserName:   orUnknown(row.UserName, unknownUser),
		IssueDate:  row.IssueDate,
		ReturnDate: row.ReturnDate,
		TotalRent:  row.TotalRent,
		Status:     row.Status,
	}
}

func orUnknown(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func (s *service) BookHistory(ctx context.Context, bookName string) (*History, error) {
	b, err := s.resolveBook(ctx, model.ByName(bookName))
	if err != nil {
		return nil, err
	}
	rows, err := s.r.ListByBook(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	h := &History{
		BookName:      b.Name,
		CurrentStatus: "not issued",
		History:       make([]HistoryEntry, 0, len(rows)),
	}
	for _, t := range rows {
		h.History = append(h.History, HistoryEntry{
			UserID:     t.UserID,
			IssueDate:  t.IssueDate,
			ReturnDate: t.ReturnDate,
			Status:     t.Status,
		})
		// rows come newest-first, so the first open transaction is the
		// most recent one and wins if several holders overlap
		if t.Status == model.StatusIssued && h.CurrentHolder == nil {
			uid := t.UserID
			h.CurrentStatus = "issued"
			h.CurrentHolder = &uid
		}
	}
	return h, nil
}

func (s *service) TotalRentForBook(ctx context.Context, bookName string) (float64, error) {
	b, err := s.resolveBook(ctx, model.ByName(bookName))
	if err != nil {
		return 0, err
	}
	return s.r.SumRentForBook(ctx, b.ID)
}

func (s *service) ForUser(ctx context.Context, user model.Ident) ([]UserLoan, error) {
	u, err := s.resolveUser(ctx, user)
	if err != nil {
		return nil, err
	}
	rows, err := s.r.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, makeErr(ErrNoTransactions)
	}
	out := make([]UserLoan, 0, len(rows))
	for _, row := range rows {
		out = append(out, UserLoan{
			TransactionID: row.ID,
			BookID:        row.BookID,
			BookName:      orUnknown(row.BookName, unknownBook),
			IssueDate:     row.IssueDate,
			ReturnDate:    row.ReturnDate,
			TotalRent:     row.TotalRent,
			Status:        row.Status,
		})
	}
	return out, nil
}

// IssuedInRange keeps only transactions whose book and user still resolve;
// dangling rows are skipped, not errored on.
func (s *service) IssuedInRange(ctx context.Context, start, end time.Time) ([]Enriched, error) {
	if start.IsZero() || end.IsZero() {
		return nil, makeErr(ErrBadInput)
	}
	if end.Before(start) {
		return nil, makeErr(ErrInvalidRange)
	}
	rows, err := s.r.ListIssuedBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	out := make([]Enriched, 0, len(rows))
	for _, row := range rows {
		if row.BookName == nil || row.UserName == nil {
			continue
		}
		out = append(out, enrich(row))
	}
	return out, nil
}
