// service/user/user_service_test.go
package usersvc_test

import (
	"context"
	"testing"

	"bookrental/model"
	usersvc "bookrental/service/user"
)

type repoMock struct {
	createFn func(ctx context.Context, name string) (*model.User, error)
	listFn   func(ctx context.Context) ([]model.User, error)
}

func (m *repoMock) Create(ctx context.Context, name string) (*model.User, error) {
	return m.createFn(ctx, name)
}
func (m *repoMock) List(ctx context.Context) ([]model.User, error) { return m.listFn(ctx) }

func TestCreate_Validation(t *testing.T) {
	s := usersvc.New(&repoMock{})
	if _, err := s.Create(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty name")
	}
	if _, err := s.Create(context.Background(), "   "); err == nil {
		t.Fatal("expected error for blank name")
	}
}

func TestCreate_TrimsName(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, name string) (*model.User, error) {
			if name != "Alice" {
				t.Fatalf("got %q; want trimmed name", name)
			}
			return &model.User{ID: 7, Name: name}, nil
		},
	}
	s := usersvc.New(m)
	u, err := s.Create(context.Background(), "  Alice ")
	if err != nil || u.ID != 7 {
		t.Fatalf("got %+v err=%v; want id=7 nil", u, err)
	}
}
