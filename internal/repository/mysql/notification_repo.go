package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/gomarket/internal/datamodels/notification"
)

type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓储
func NewNotificationRepository(db *gorm.DB) notification.Repository {
	return &notificationRepo{db: db}
}

// CreateIgnoreDuplicate 同一收件人对同一订单只保留一条，MQ 重复投递时直接跳过
func (r *notificationRepo) CreateIgnoreDuplicate(ctx context.Context, n *notification.Notification) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "order_id"}},
		DoNothing: true,
	}).Create(n).Error
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]*notification.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var list []*notification.Notification
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *notificationRepo) GetByID(ctx context.Context, id int64) (*notification.Notification, error) {
	var n notification.Notification
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&notification.Notification{}).
		Where("id = ?", id).
		Update("read", true).Error
}
