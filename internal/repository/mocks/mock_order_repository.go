package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/example/gomarket/internal/datamodels/order"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	args := m.Called(ctx, id)
	if o := args.Get(0); o != nil {
		return o.(*order.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) ListByBuyer(ctx context.Context, buyerID int64) ([]*order.Order, error) {
	args := m.Called(ctx, buyerID)
	if v := args.Get(0); v != nil {
		return v.([]*order.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) ListAll(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]*order.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) ListByIDs(ctx context.Context, ids []int64) ([]*order.Order, error) {
	args := m.Called(ctx, ids)
	if v := args.Get(0); v != nil {
		return v.([]*order.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) ListItems(ctx context.Context, orderID int64) ([]*order.Item, error) {
	args := m.Called(ctx, orderID)
	if v := args.Get(0); v != nil {
		return v.([]*order.Item), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) ListItemsByOrders(ctx context.Context, orderIDs []int64) ([]*order.Item, error) {
	args := m.Called(ctx, orderIDs)
	if v := args.Get(0); v != nil {
		return v.([]*order.Item), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) ListIDsBySeller(ctx context.Context, sellerID int64) ([]int64, error) {
	args := m.Called(ctx, sellerID)
	if v := args.Get(0); v != nil {
		return v.([]int64), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) SellerHasItems(ctx context.Context, orderID, sellerID int64) (bool, error) {
	args := m.Called(ctx, orderID, sellerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
