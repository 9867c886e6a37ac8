// service/transaction/transaction_service_test.go
package txnsvc

import (
	"context"
	"testing"
	"time"

	"bookrental/model"
	txnrepo "bookrental/repository/transaction"

	"github.com/stretchr/testify/require"
)

type repoMock struct {
	insertFn            func(ctx context.Context, bookID, userID int64, issueDate time.Time) (int64, error)
	byIDFn              func(ctx context.Context, id int64) (*model.Transaction, error)
	markReturnedFn      func(ctx context.Context, id int64, returnDate time.Time, totalRent float64) (bool, error)
	listAllFn           func(ctx context.Context) ([]txnrepo.Row, error)
	listByBookFn        func(ctx context.Context, bookID int64) ([]model.Transaction, error)
	listByUserFn        func(ctx context.Context, userID int64) ([]txnrepo.Row, error)
	listIssuedBetweenFn func(ctx context.Context, start, end time.Time) ([]txnrepo.Row, error)
	sumRentForBookFn    func(ctx context.Context, bookID int64) (float64, error)
}

var _ Repo = (*repoMock)(nil)

func (m *repoMock) Insert(ctx context.Context, bookID, userID int64, issueDate time.Time) (int64, error) {
	return m.insertFn(ctx, bookID, userID, issueDate)
}
func (m *repoMock) ByID(ctx context.Context, id int64) (*model.Transaction, error) {
	return m.byIDFn(ctx, id)
}
func (m *repoMock) MarkReturned(ctx context.Context, id int64, returnDate time.Time, totalRent float64) (bool, error) {
	return m.markReturnedFn(ctx, id, returnDate, totalRent)
}
func (m *repoMock) ListAll(ctx context.Context) ([]txnrepo.Row, error) { return m.listAllFn(ctx) }
func (m *repoMock) ListByBook(ctx context.Context, bookID int64) ([]model.Transaction, error) {
	return m.listByBookFn(ctx, bookID)
}
func (m *repoMock) ListByUser(ctx context.Context, userID int64) ([]txnrepo.Row, error) {
	return m.listByUserFn(ctx, userID)
}
func (m *repoMock) ListIssuedBetween(ctx context.Context, start, end time.Time) ([]txnrepo.Row, error) {
	return m.listIssuedBetweenFn(ctx, start, end)
}
func (m *repoMock) SumRentForBook(ctx context.Context, bookID int64) (float64, error) {
	return m.sumRentForBookFn(ctx, bookID)
}

type booksMock struct {
	byIDFn   func(ctx context.Context, id int64) (*model.Book, error)
	byNameFn func(ctx context.Context, name string) (*model.Book, error)
}

var _ Books = (*booksMock)(nil)

func (m *booksMock) ByID(ctx context.Context, id int64) (*model.Book, error) {
	if m.byIDFn == nil {
		return nil, nil
	}
	return m.byIDFn(ctx, id)
}
func (m *booksMock) ByName(ctx context.Context, name string) (*model.Book, error) {
	if m.byNameFn == nil {
		return nil, nil
	}
	return m.byNameFn(ctx, name)
}

type usersMock struct {
	byIDFn   func(ctx context.Context, id int64) (*model.User, error)
	byNameFn func(ctx context.Context, name string) (*model.User, error)
}

var _ Users = (*usersMock)(nil)

func (m *usersMock) ByID(ctx context.Context, id int64) (*model.User, error) {
	if m.byIDFn == nil {
		return nil, nil
	}
	return m.byIDFn(ctx, id)
}
func (m *usersMock) ByName(ctx context.Context, name string) (*model.User, error) {
	if m.byNameFn == nil {
		return nil, nil
	}
	return m.byNameFn(ctx, name)
}

func strPtr(s string) *string { return &s }

var (
	dune  = &model.Book{ID: 1, Name: "Dune", Category: "SciFi", RentPerDay: 5}
	alice = &model.User{ID: 2, Name: "Alice"}
)

func duneBooks() *booksMock {
	return &booksMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Book, error) {
			if id == dune.ID {
				return dune, nil
			}
			return nil, nil
		},
		byNameFn: func(ctx context.Context, name string) (*model.Book, error) {
			if name == "Dune" {
				return dune, nil
			}
			return nil, nil
		},
	}
}

func aliceUsers() *usersMock {
	return &usersMock{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			if id == alice.ID {
				return alice, nil
			}
			return nil, nil
		},
		byNameFn: func(ctx context.Context, name string) (*model.User, error) {
			if name == "Alice" {
				return alice, nil
			}
			return nil, nil
		},
	}
}

// --- issue ---

func TestIssue_ByName(t *testing.T) {
	ctx := context.Background()
	m := &repoMock{
		insertFn: func(ctx context.Context, bookID, userID int64, issueDate time.Time) (int64, error) {
			require.Equal(t, int64(1), bookID)
			require.Equal(t, int64(2), userID)
			return 7, nil
		},
	}
	svc := New(m, duneBooks(), aliceUsers())

	id, err := svc.Issue(ctx, model.ByName("Dune"), model.ByName("Alice"), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, int64(7), id)
}

func TestIssue_BookNotFound(t *testing.T) {
	svc := New(&repoMock{}, duneBooks(), aliceUsers())
	_, err := svc.Issue(context.Background(), model.ByName("Neuromancer"), model.ByName("Alice"), time.Now())
	require.Error(t, err)
	require.Equal(t, ErrBookNotFound, Code(err))
}

func TestIssue_UserNotFound(t *testing.T) {
	svc := New(&repoMock{}, duneBooks(), aliceUsers())
	_, err := svc.Issue(context.Background(), model.ByID(1), model.ByName("Bob"), time.Now())
	require.Error(t, err)
	require.Equal(t, ErrUserNotFound, Code(err))
}

func TestIssue_BadInput(t *testing.T) {
	svc := New(&repoMock{}, duneBooks(), aliceUsers())
	_, err := svc.Issue(context.Background(), model.Ident{}, model.ByName("Alice"), time.Now())
	require.Equal(t, ErrBadInput, Code(err))

	_, err = svc.Issue(context.Background(), model.ByID(1), model.ByID(2), time.Time{})
	require.Equal(t, ErrBadInput, Code(err))
}

// --- return & rent rule ---

func openTxn(issue time.Time) *model.Transaction {
	return &model.Transaction{ID: 9, BookID: 1, UserID: 2, IssueDate: issue, Status: model.StatusIssued}
}

func returnService(t *testing.T, issue time.Time, wantTotal float64) Service {
	t.Helper()
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Transaction, error) {
			return openTxn(issue), nil
		},
		markReturnedFn: func(ctx context.Context, id int64, returnDate time.Time, totalRent float64) (bool, error) {
			require.Equal(t, wantTotal, totalRent)
			return true, nil
		},
	}
	return New(m, duneBooks(), aliceUsers())
}

func TestReturn_CeilingRule(t *testing.T) {
	issue := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		ret      time.Time
		wantDays int64
	}{
		{"exactly 24h", issue.Add(24 * time.Hour), 1},
		{"25h rounds up", issue.Add(25 * time.Hour), 2},
		{"same instant pays one day", issue, 1},
		{"partial first day", issue.Add(3 * time.Hour), 1},
		{"36h", issue.Add(36 * time.Hour), 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := returnService(t, issue, float64(tc.wantDays)*dune.RentPerDay)
			out, err := svc.Return(context.Background(), 9, tc.ret)
			require.NoError(t, err)
			require.Equal(t, tc.wantDays, out.DaysRented)
			require.Equal(t, float64(tc.wantDays)*dune.RentPerDay, out.TotalRent)
		})
	}
}

func TestReturn_DuneExample(t *testing.T) {
	issue := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ret := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	svc := returnService(t, issue, 10)
	out, err := svc.Return(context.Background(), 9, ret)
	require.NoError(t, err)
	require.Equal(t, int64(2), out.DaysRented)
	require.Equal(t, float64(10), out.TotalRent)
}

func TestReturn_BeforeIssue(t *testing.T) {
	issue := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Transaction, error) {
			return openTxn(issue), nil
		},
	}
	svc := New(m, duneBooks(), aliceUsers())

	_, err := svc.Return(context.Background(), 9, issue.Add(-24*time.Hour))
	require.Error(t, err)
	require.Equal(t, ErrInvalidRange, Code(err))
}

func TestReturn_AlreadyReturned(t *testing.T) {
	issue := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	closed := openTxn(issue)
	closed.Status = model.StatusReturned

	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Transaction, error) {
			return closed, nil
		},
	}
	svc := New(m, duneBooks(), aliceUsers())

	_, err := svc.Return(context.Background(), 9, issue.Add(48*time.Hour))
	require.Equal(t, ErrTxnNotFound, Code(err))
}

func TestReturn_LostUpdateRace(t *testing.T) {
	issue := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Transaction, error) {
			return openTxn(issue), nil
		},
		markReturnedFn: func(ctx context.Context, id int64, returnDate time.Time, totalRent float64) (bool, error) {
			return false, nil
		},
	}
	svc := New(m, duneBooks(), aliceUsers())

	_, err := svc.Return(context.Background(), 9, issue.Add(24*time.Hour))
	require.Equal(t, ErrTxnNotFound, Code(err))
}

func TestReturn_UnknownTransaction(t *testing.T) {
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Transaction, error) { return nil, nil },
	}
	svc := New(m, duneBooks(), aliceUsers())

	_, err := svc.Return(context.Background(), 404, time.Now())
	require.Equal(t, ErrTxnNotFound, Code(err))
}

// --- query views ---

func TestListAll_UnknownPlaceholders(t *testing.T) {
	issue := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	m := &repoMock{
		listAllFn: func(ctx context.Context) ([]txnrepo.Row, error) {
			return []txnrepo.Row{
				{
					Transaction: model.Transaction{ID: 1, BookID: 1, UserID: 2, IssueDate: issue, Status: model.StatusIssued},
					BookName:    strPtr("Dune"),
					UserName:    nil,
				},
				{
					Transaction: model.Transaction{ID: 2, BookID: 8, UserID: 2, IssueDate: issue, Status: model.StatusIssued},
					BookName:    nil,
					UserName:    strPtr("Alice"),
				},
			}, nil
		},
	}
	svc := New(m, duneBooks(), aliceUsers())

	rows, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Unknown User", rows[0].UserName)
	require.Equal(t, "Dune", rows[0].BookName)
	require.Equal(t, "Unknown Book", rows[1].BookName)
	require.Equal(t, "Alice", rows[1].UserName)
}

func TestBookHistory_CurrentHolder(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	m := &repoMock{
		listByBookFn: func(ctx context.Context, bookID int64) ([]model.Transaction, error) {
			require.Equal(t, int64(1), bookID)
			// newest first, as the repo orders them
			return []model.Transaction{
				{ID: 2, BookID: 1, UserID: 5, IssueDate: t2, Status: model.StatusIssued},
				{ID: 1, BookID: 1, UserID: 2, IssueDate: t1, Status: model.StatusIssued},
			}, nil
		},
	}
	svc := New(m, duneBooks(), aliceUsers())

	h, err := svc.BookHistory(context.Background(), "Dune")
	require.NoError(t, err)
	require.Equal(t, "issued", h.CurrentStatus)
	require.NotNil(t, h.CurrentHolder)
	// when two open transactions overlap, the most recent issue wins
	require.Equal(t, int64(5), *h.CurrentHolder)
	require.Len(t, h.History, 2)
}

func TestBookHistory_NotIssuedAfterReturn(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ret := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	rent := 10.0
	m := &repoMock{
		listByBookFn: func(ctx context.Context, bookID int64) ([]model.Transaction, error) {
			return []model.Transaction{
				{ID: 1, BookID: 1, UserID: 2, IssueDate: t1, ReturnDate: &ret, TotalRent: &rent, Status: model.StatusReturned},
			}, nil
		},
	}
	svc := New(m, duneBooks(), aliceUsers())

	h, err := svc.BookHistory(context.Background(), "Dune")
	require.NoError(t, err)
	require.Equal(t, "not issued", h.CurrentStatus)
	require.Nil(t, h.CurrentHolder)
	require.Len(t, h.History, 1)
	require.Equal(t, int64(2), h.History[0].UserID)
}

func TestBookHistory_UnknownBook(t *testing.T) {
	svc := New(&repoMock{}, duneBooks(), aliceUsers())
	_, err := svc.BookHistory(context.Background(), "Neuromancer")
	require.Equal(t, ErrBookNotFound, Code(err))
}

func TestTotalRent_ZeroWhenNoneReturned(t *testing.T) {
	m := &repoMock{
		sumRentForBookFn: func(ctx context.Context, bookID int64) (float64, error) { return 0, nil },
	}
	svc := New(m, duneBooks(), aliceUsers())

	total, err := svc.TotalRentForBook(context.Background(), "Dune")
	require.NoError(t, err)
	require.Equal(t, float64(0), total)
}

func TestForUser_NoTransactions(t *testing.T) {
	m := &repoMock{
		listByUserFn: func(ctx context.Context, userID int64) ([]txnrepo.Row, error) { return nil, nil },
	}
	svc := New(m, duneBooks(), aliceUsers())

	_, err := svc.ForUser(context.Background(), model.ByName("Alice"))
	require.Equal(t, ErrNoTransactions, Code(err))
}

func TestForUser_JoinsBookName(t *testing.T) {
	issue := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	m := &repoMock{
		listByUserFn: func(ctx context.Context, userID int64) ([]txnrepo.Row, error) {
			require.Equal(t, int64(2), userID)
			return []txnrepo.Row{
				{
					Transaction: model.Transaction{ID: 3, BookID: 1, UserID: 2, IssueDate: issue, Status: model.StatusIssued},
					BookName:    strPtr("Dune"),
					UserName:    strPtr("Alice"),
				},
			}, nil
		},
	}
	svc := New(m, duneBooks(), aliceUsers())

	rows, err := svc.ForUser(context.Background(), model.ByID(2))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Dune", rows[0].BookName)
	require.Equal(t, int64(3), rows[0].TransactionID)
}

func TestIssuedInRange_SkipsDanglingRefs(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	m := &repoMock{
		listIssuedBetweenFn: func(ctx context.Context, s, e time.Time) ([]txnrepo.Row, error) {
			require.Equal(t, start, s)
			require.Equal(t, end, e)
			return []txnrepo.Row{
				{
					Transaction: model.Transaction{ID: 1, BookID: 1, UserID: 2, IssueDate: start.Add(time.Hour), Status: model.StatusIssued},
					BookName:    strPtr("Dune"),
					UserName:    strPtr("Alice"),
				},
				{
					Transaction: model.Transaction{ID: 2, BookID: 8, UserID: 2, IssueDate: start.Add(2 * time.Hour), Status: model.StatusIssued},
					BookName:    nil,
					UserName:    strPtr("Alice"),
				},
			}, nil
		},
	}
	svc := New(m, duneBooks(), aliceUsers())

	rows, err := svc.IssuedInRange(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, int64(1), rows[0].ID)
}

func TestIssuedInRange_EndBeforeStart(t *testing.T) {
	svc := New(&repoMock{}, duneBooks(), aliceUsers())
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.IssuedInRange(context.Background(), start, start.Add(-time.Hour))
	require.Equal(t, ErrInvalidRange, Code(err))
}
