package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/example/gomarket/internal/datamodels/review"
)

type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id int64) (*review.Review, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*review.Review), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReviewRepository) List(ctx context.Context, productID int64) ([]*review.Review, error) {
	args := m.Called(ctx, productID)
	if v := args.Get(0); v != nil {
		return v.([]*review.Review), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReviewRepository) ListAll(ctx context.Context) ([]*review.Review, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]*review.Review), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReviewRepository) Create(ctx context.Context, r *review.Review) error {
	args := m.Called(ctx, r)
	if r != nil && args.Error(0) == nil && r.ID == 0 {
		r.ID = 1
	}
	return args.Error(0)
}

func (m *MockReviewRepository) Update(ctx context.Context, r *review.Review) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
