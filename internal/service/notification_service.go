package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/example/gomarket/internal/apperr"
	"github.com/example/gomarket/internal/datamodels/notification"
	"github.com/example/gomarket/internal/datamodels/user"
	"github.com/example/gomarket/internal/infra/mq"
)

type NotificationService struct {
	repo  notification.Repository
	users user.Repository
}

func NewNotificationService(repo notification.Repository, users user.Repository) *NotificationService {
	return &NotificationService{repo: repo, users: users}
}

// CreateForOrder 消费订单事件，为每个卖家和管理员各写一条通知。
// MQ 是至少一次投递，落库按 (收件人, 订单) 幂等。
func (s *NotificationService) CreateForOrder(ctx context.Context, ev mq.OrderEvent) error {
	msg := fmt.Sprintf("新订单 #%d，金额 ¥%.2f。", ev.OrderID, float64(ev.TotalAmount)/100)
	for _, sellerID := range ev.SellerIDs {
		n := &notification.Notification{
			UserID:  sellerID,
			OrderID: ev.OrderID,
			Message: msg,
		}
		if err := s.repo.CreateIgnoreDuplicate(ctx, n); err != nil {
			return err
		}
	}
	admins, err := s.users.ListByRole(ctx, user.RoleAdmin)
	if err != nil {
		return err
	}
	for _, a := range admins {
		n := &notification.Notification{
			UserID:  a.ID,
			OrderID: ev.OrderID,
			Message: msg,
		}
		if err := s.repo.CreateIgnoreDuplicate(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

// ListMine 当前用户的通知，最新的在前
func (s *NotificationService) ListMine(ctx context.Context, u *user.User, limit int) ([]*notification.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListByUser(ctx, u.ID, limit)
}

// MarkRead 标记已读，只能操作自己的通知
func (s *NotificationService) MarkRead(ctx context.Context, u *user.User, id int64) (*notification.Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("通知不存在。")
		}
		return nil, err
	}
	if n.UserID != u.ID {
		return nil, apperr.Forbidden("只能操作自己的通知。")
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return nil, err
	}
	n.Read = true
	return n, nil
}
