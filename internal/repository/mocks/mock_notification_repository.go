package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/example/gomarket/internal/datamodels/notification"
)

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) CreateIgnoreDuplicate(ctx context.Context, n *notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*notification.Notification, error) {
	args := m.Called(ctx, userID, limit)
	if v := args.Get(0); v != nil {
		return v.([]*notification.Notification), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNotificationRepository) GetByID(ctx context.Context, id int64) (*notification.Notification, error) {
	args := m.Called(ctx, id)
	if n := args.Get(0); n != nil {
		return n.(*notification.Notification), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
