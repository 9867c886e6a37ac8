package bookrepo

import (
	"context"

	"bookrental/model"
	"bookrental/util/database"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

type Repo interface {
	Create(ctx context.Context, name, category string, rentPerDay float64) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	SearchByName(ctx context.Context, term string) ([]model.Book, error)
	SearchByRentRange(ctx context.Context, minRent, maxRent float64) ([]model.Book, error)
	SearchByCategoryNameRange(ctx context.Context, category, term string, minRent, maxRent float64) ([]model.Book, error)
	ByID(ctx context.Context, id int64) (*model.Book, error)
	ByName(ctx context.Context, name string) (*model.Book, error)
}

var pg = goqu.Dialect("postgres")

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, name, category string, rentPerDay float64) (*model.Book, error) {
	b := &model.Book{Name: name, Category: category, RentPerDay: rentPerDay}
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO books (name, category, rent_per_day)
		VALUES ($1,$2,$3)
		RETURNING id`,
		name, category, rentPerDay,
	).Scan(&b.ID)
	if err != nil {
		return nil, errors.Wrap(err, "insert book")
	}
	return b, nil
}

func (r *repo) List(ctx context.Context) ([]model.Book, error) {
	return r.search(ctx)
}

func (r *repo) SearchByName(ctx context.Context, term string) ([]model.Book, error) {
	return r.search(ctx, goqu.C("name").ILike("%"+term+"%"))
}

func (r *repo) SearchByRentRange(ctx context.Context, minRent, maxRent float64) ([]model.Book, error) {
	return r.search(ctx,
		goqu.C("rent_per_day").Gte(minRent),
		goqu.C("rent_per_day").Lte(maxRent),
	)
}

func (r *repo) SearchByCategoryNameRange(ctx context.Context, category, term string, minRent, maxRent float64) ([]model.Book, error) {
	return r.search(ctx,
		goqu.C("category").Eq(category),
		goqu.C("name").ILike("%"+term+"%"),
		goqu.C("rent_per_day").Gte(minRent),
		goqu.C("rent_per_day").Lte(maxRent),
	)
}

// search composes the shared SELECT with any filter conjunction.
func (r *repo) search(ctx context.Context, conds ...goqu.Expression) ([]model.Book, error) {
	ds := pg.From("books").Select("id", "name", "category", "rent_per_day").Order(goqu.C("id").Asc())
	if len(conds) > 0 {
		ds = ds.Where(conds...)
	}
	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build book query")
	}

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query books")
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Name, &b.Category, &b.RentPerDay); err != nil {
			return nil, errors.Wrap(err, "scan book")
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Book, error) {
	return r.one(ctx, `
		SELECT id, name, category, rent_per_day
		FROM books
		WHERE id = $1`, id)
}

// ByName matches the exact name, case-insensitively.
func (r *repo) ByName(ctx context.Context, name string) (*model.Book, error) {
	return r.one(ctx, `
		SELECT id, name, category, rent_per_day
		FROM books
		WHERE lower(name) = lower($1)`, name)
}

// one returns (nil, nil) when no row matches.
func (r *repo) one(ctx context.Context, q string, arg any) (*model.Book, error) {
	b := &model.Book{}
	err := r.db.Pool.QueryRow(ctx, q, arg).Scan(&b.ID, &b.Name, &b.Category, &b.RentPerDay)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get book")
	}
	return b, nil
}
