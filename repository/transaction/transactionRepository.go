package txnrepo

import (
	"context"
	"time"

	"bookrental/model"
	"bookrental/util/database"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

// ErrMissingRef reports a foreign-key violation on insert: the referenced
// book or user vanished between resolution and write.
var ErrMissingRef = errors.New("referenced book or user does not exist")

// Row is a transaction joined with its book and user names. The names are
// nil when the referenced record cannot be resolved; the service layer
// decides what to show in that case.
type Row struct {
	model.Transaction
	BookName *string
	UserName *string
}

type Repo interface {
	Insert(ctx context.Context, bookID, userID int64, issueDate time.Time) (int64, error)
	ByID(ctx context.Context, id int64) (*model.Transaction, error)
	MarkReturned(ctx context.Context, id int64, returnDate time.Time, totalRent float64) (bool, error)
	ListAll(ctx context.Context) ([]Row, error)
	ListByBook(ctx context.Context, bookID int64) ([]model.Transaction, error)
	ListByUser(ctx context.Context, userID int64) ([]Row, error)
	ListIssuedBetween(ctx context.Context, start, end time.Time) ([]Row, error)
	SumRentForBook(ctx context.Context, bookID int64) (float64, error)
}

var pg = goqu.Dialect("postgres")

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) Insert(ctx context.Context, bookID, userID int64, issueDate time.Time) (int64, error) {
	const q = `
		INSERT INTO transactions (book_id, user_id, issue_date, status)
		VALUES ($1,$2,$3,'issued')
		RETURNING id`
	var id int64
	if err := r.db.Pool.QueryRow(ctx, q, bookID, userID, issueDate).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
			return 0, ErrMissingRef
		}
		return 0, errors.Wrap(err, "insert transaction")
	}
	return id, nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Transaction, error) {
	const q = `
		SELECT id, book_id, user_id, issue_date, return_date, total_rent, status
		FROM transactions
		WHERE id = $1`
	t := &model.Transaction{}
	err := r.db.Pool.QueryRow(ctx, q, id).Scan(
		&t.ID, &t.BookID, &t.UserID, &t.IssueDate, &t.ReturnDate, &t.TotalRent, &t.Status,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get transaction")
	}
	return t, nil
}

// MarkReturned closes the transaction in one conditional update. The status
// guard makes a second return a no-op; callers get false and map it to
// not-found.
func (r *repo) MarkReturned(ctx context.Context, id int64, returnDate time.Time, totalRent float64) (bool, error) {
	const q = `
		UPDATE transactions
		SET return_date = $2,
			total_rent = $3,
			status = 'returned'
		WHERE id = $1
		AND status = 'issued'`
	tag, err := r.db.Pool.Exec(ctx, q, id, returnDate, totalRent)
	if err != nil {
		return false, errors.Wrap(err, "mark returned")
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repo) ListAll(ctx context.Context) ([]Row, error) {
	return r.joined(ctx)
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]Row, error) {
	return r.joined(ctx, goqu.I("t.user_id").Eq(userID))
}

func (r *repo) ListIssuedBetween(ctx context.Context, start, end time.Time) ([]Row, error) {
	return r.joined(ctx,
		goqu.I("t.issue_date").Gte(start),
		goqu.I("t.issue_date").Lte(end),
	)
}

// joined selects transactions LEFT JOINed with book and user names so a
// dangling reference yields a NULL name instead of dropping the row.
func (r *repo) joined(ctx context.Context, conds ...goqu.Expression) ([]Row, error) {
	ds := pg.From(goqu.T("transactions").As("t")).
		Select(
			goqu.I("t.id"), goqu.I("t.book_id"), goqu.I("t.user_id"),
			goqu.I("t.issue_date"), goqu.I("t.return_date"), goqu.I("t.total_rent"), goqu.I("t.status"),
			goqu.I("b.name").As("book_name"), goqu.I("u.name").As("user_name"),
		).
		LeftJoin(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("t.book_id")))).
		LeftJoin(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("t.user_id")))).
		Order(goqu.I("t.issue_date").Desc(), goqu.I("t.id").Desc())
	if len(conds) > 0 {
		ds = ds.Where(conds...)
	}
	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build transaction query")
	}

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query transactions")
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(
			&row.ID, &row.BookID, &row.UserID,
			&row.IssueDate, &row.ReturnDate, &row.TotalRent, &row.Status,
			&row.BookName, &row.UserName,
		); err != nil {
			return nil, errors.Wrap(err, "scan transaction")
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repo) ListByBook(ctx context.Context, bookID int64) ([]model.Transaction, error) {
	const q = `
		SELECT id, book_id, user_id, issue_date, return_date, total_rent, status
		FROM transactions
		WHERE book_id = $1
		ORDER BY issue_date DESC, id DESC`
	rows, err := r.db.Pool.Query(ctx, q, bookID)
	if err != nil {
		return nil, errors.Wrap(err, "query book transactions")
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.BookID, &t.UserID, &t.IssueDate, &t.ReturnDate, &t.TotalRent, &t.Status); err != nil {
			return nil, errors.Wrap(err, "scan transaction")
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repo) SumRentForBook(ctx context.Context, bookID int64) (float64, error) {
	const q = `
		SELECT COALESCE(SUM(total_rent), 0)
		FROM transactions
		WHERE book_id = $1
		AND status = 'returned'`
	var total float64
	if err := r.db.Pool.QueryRow(ctx, q, bookID).Scan(&total); err != nil {
		return 0, errors.Wrap(err, "sum rent")
	}
	return total, nil
}
