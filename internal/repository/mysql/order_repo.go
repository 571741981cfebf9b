package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/gomarket/internal/datamodels/order"
)

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepo{db: db}
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) ListByBuyer(ctx context.Context, buyerID int64) ([]*order.Order, error) {
	var list []*order.Order
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", buyerID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) ListAll(ctx context.Context) ([]*order.Order, error) {
	var list []*order.Order
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) ListByIDs(ctx context.Context, ids []int64) ([]*order.Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []*order.Order
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) ListItems(ctx context.Context, orderID int64) ([]*order.Item, error) {
	var list []*order.Item
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) ListItemsByOrders(ctx context.Context, orderIDs []int64) ([]*order.Item, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	var list []*order.Item
	if err := r.db.WithContext(ctx).
		Where("order_id IN ?", orderIDs).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) ListIDsBySeller(ctx context.Context, sellerID int64) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&order.Item{}).
		Distinct("order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("products.user_id = ?", sellerID).
		Order("order_items.order_id DESC").
		Pluck("order_items.order_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *orderRepo) SellerHasItems(ctx context.Context, orderID, sellerID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&order.Item{}).
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("order_items.order_id = ? AND products.user_id = ?", orderID, sellerID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}
