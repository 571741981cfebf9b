package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/example/gomarket/internal/datamodels/product"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*product.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]*product.Product, error) {
	args := m.Called(ctx, ids)
	if v := args.Get(0); v != nil {
		return v.([]*product.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, f product.ListFilter) ([]*product.Product, int64, error) {
	args := m.Called(ctx, f)
	var list []*product.Product
	if v := args.Get(0); v != nil {
		list = v.([]*product.Product)
	}
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) ListBySeller(ctx context.Context, sellerID int64) ([]*product.Product, error) {
	args := m.Called(ctx, sellerID)
	if v := args.Get(0); v != nil {
		return v.([]*product.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, p *product.Product) error {
	args := m.Called(ctx, p)
	if p != nil && args.Error(0) == nil && p.ID == 0 {
		p.ID = 1
	}
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, p *product.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) ReconcileStatus(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
