package usersvc

import (
	"context"
	"errors"
	"strings"

	"bookrental/model"
)

var ErrBadInput = errors.New("invalid payload")

type Repo interface {
	Create(ctx context.Context, name string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

type Service interface {
	Create(ctx context.Context, name string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, name string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrBadInput
	}
	return s.r.Create(ctx, name)
}

func (s *service) List(ctx context.Context) ([]model.User, error) { return s.r.List(ctx) }
