package booksvc

import (
	"context"
	"errors"
	"strings"

	"bookrental/model"
)

var ErrBadInput = errors.New("invalid payload")

type Book = model.Book

type Repo interface {
	Create(ctx context.Context, name, category string, rentPerDay float64) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	SearchByName(ctx context.Context, term string) ([]model.Book, error)
	SearchByRentRange(ctx context.Context, minRent, maxRent float64) ([]model.Book, error)
	SearchByCategoryNameRange(ctx context.Context, category, term string, minRent, maxRent float64) ([]model.Book, error)
}

type Service interface {
	Create(ctx context.Context, name, category string, rentPerDay float64) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	SearchByName(ctx context.Context, term string) ([]model.Book, error)
	SearchByRentRange(ctx context.Context, minRent, maxRent float64) ([]model.Book, error)
	SearchByCategoryNameRange(ctx context.Context, category, term string, minRent, maxRent float64) ([]model.Book, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, name, category string, rentPerDay float64) (*model.Book, error) {
	name = strings.TrimSpace(name)
	category = strings.TrimSpace(category)
	if name == "" || category == "" || rentPerDay < 0 {
		return nil, ErrBadInput
	}
	return s.r.Create(ctx, name, category, rentPerDay)
}

func (s *service) List(ctx context.Context) ([]model.Book, error) { return s.r.List(ctx) }

func (s *service) SearchByName(ctx context.Context, term string) ([]model.Book, error) {
	if strings.TrimSpace(term) == "" {
		return nil, ErrBadInput
	}
	return s.r.SearchByName(ctx, term)
}

func (s *service) SearchByRentRange(ctx context.Context, minRent, maxRent float64) ([]model.Book, error) {
	if minRent < 0 || maxRent < minRent {
		return nil, ErrBadInput
	}
	return s.r.SearchByRentRange(ctx, minRent, maxRent)
}

func (s *service) SearchByCategoryNameRange(ctx context.Context, category, term string, minRent, maxRent float64) ([]model.Book, error) {
	if strings.TrimSpace(category) == "" || strings.TrimSpace(term) == "" {
		return nil, ErrBadInput
	}
	if minRent < 0 || maxRent < minRent {
		return nil, ErrBadInput
	}
	return s.r.SearchByCategoryNameRange(ctx, category, term, minRent, maxRent)
}
