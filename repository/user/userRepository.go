package userrepo

import (
	"context"

	"bookrental/model"
	"bookrental/util/database"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

type Repo interface {
	Create(ctx context.Context, name string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	ByName(ctx context.Context, name string) (*model.User, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, name string) (*model.User, error) {
	u := &model.User{Name: name}
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO users (name)
		VALUES ($1)
		RETURNING id`,
		name,
	).Scan(&u.ID)
	if err != nil {
		return nil, errors.Wrap(err, "insert user")
	}
	return u, nil
}

func (r *repo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name
		FROM users
		ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "query users")
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, errors.Wrap(err, "scan user")
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	return r.one(ctx, `
		SELECT id, name
		FROM users
		WHERE id = $1`, id)
}

func (r *repo) ByName(ctx context.Context, name string) (*model.User, error) {
	return r.one(ctx, `
		SELECT id, name
		FROM users
		WHERE lower(name) = lower($1)`, name)
}

func (r *repo) one(ctx context.Context, q string, arg any) (*model.User, error) {
	u := &model.User{}
	err := r.db.Pool.QueryRow(ctx, q, arg).Scan(&u.ID, &u.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	return u, nil
}
