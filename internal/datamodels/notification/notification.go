package notification

import (
	"context"
	"time"
)

// Notification 订单通知，收件人为卖家或管理员。
// (user_id, order_id) 唯一，MQ 重复投递时不会产生重复行。
type Notification struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"uniqueIndex:idx_notify_user_order;not null" json:"userId"`
	OrderID   int64     `gorm:"uniqueIndex:idx_notify_user_order;not null" json:"orderId"`
	Message   string    `gorm:"size:255;not null" json:"message"`
	Read      bool      `gorm:"index;not null;default:false" json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository 通知仓储接口
type Repository interface {
	// CreateIgnoreDuplicate 冲突时静默跳过，保证消费端幂等
	CreateIgnoreDuplicate(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]*Notification, error)
	GetByID(ctx context.Context, id int64) (*Notification, error)
	MarkRead(ctx context.Context, id int64) error
}
