package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/example/gomarket/internal/datamodels/user"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*user.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*user.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	if u != nil && args.Error(0) == nil && u.ID == 0 {
		u.ID = 1
	}
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) ListAll(ctx context.Context) ([]*user.User, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]*user.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) ListByRole(ctx context.Context, role string) ([]*user.User, error) {
	args := m.Called(ctx, role)
	if v := args.Get(0); v != nil {
		return v.([]*user.User), args.Error(1)
	}
	return nil, args.Error(1)
}
