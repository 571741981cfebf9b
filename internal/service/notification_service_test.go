package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/example/gomarket/internal/apperr"
	"github.com/example/gomarket/internal/datamodels/notification"
	"github.com/example/gomarket/internal/datamodels/user"
	"github.com/example/gomarket/internal/infra/mq"
	"github.com/example/gomarket/internal/repository/mocks"
)

func TestCreateForOrder(t *testing.T) {
	ctx := context.TODO()

	repo := new(mocks.MockNotificationRepository)
	users := new(mocks.MockUserRepository)
	users.On("ListByRole", ctx, user.RoleAdmin).Return([]*user.User{{ID: 1, Role: user.RoleAdmin}}, nil).Once()
	// 两个卖家 + 一个管理员，各一条
	repo.On("CreateIgnoreDuplicate", ctx, mock.AnythingOfType("*notification.Notification")).Return(nil).Times(3)

	svc := NewNotificationService(repo, users)
	err := svc.CreateForOrder(ctx, mq.OrderEvent{OrderID: 5, BuyerID: 10, TotalAmount: 1500, SellerIDs: []int64{7, 8}})
	assert.NoError(t, err)
	repo.AssertExpectations(t)
	users.AssertExpectations(t)
}

func TestMarkReadPermission(t *testing.T) {
	ctx := context.TODO()
	stored := &notification.Notification{ID: 2, UserID: 7, OrderID: 5}

	t.Run("other user forbidden", func(t *testing.T) {
		repo := new(mocks.MockNotificationRepository)
		repo.On("GetByID", ctx, int64(2)).Return(stored, nil).Once()
		svc := NewNotificationService(repo, new(mocks.MockUserRepository))

		_, err := svc.MarkRead(ctx, &user.User{ID: 99}, 2)
		assert.Equal(t, 403, apperr.StatusCode(err))
	})

	t.Run("owner marks read", func(t *testing.T) {
		repo := new(mocks.MockNotificationRepository)
		repo.On("GetByID", ctx, int64(2)).Return(stored, nil).Once()
		repo.On("MarkRead", ctx, int64(2)).Return(nil).Once()
		svc := NewNotificationService(repo, new(mocks.MockUserRepository))

		n, err := svc.MarkRead(ctx, &user.User{ID: 7}, 2)
		assert.NoError(t, err)
		assert.True(t, n.Read)
	})
}
