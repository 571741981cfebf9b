package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/gomarket/internal/datamodels/review"
)

type reviewRepo struct {
	db *gorm.DB
}

// NewReviewRepository 创建评价仓储
func NewReviewRepository(db *gorm.DB) review.Repository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) GetByID(ctx context.Context, id int64) (*review.Review, error) {
	var rv review.Review
	if err := r.db.WithContext(ctx).First(&rv, id).Error; err != nil {
		return nil, err
	}
	return &rv, nil
}

// List 返回评价列表，productID 为 0 时不过滤
func (r *reviewRepo) List(ctx context.Context, productID int64) ([]*review.Review, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if productID > 0 {
		q = q.Where("product_id = ?", productID)
	}
	var list []*review.Review
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *reviewRepo) ListAll(ctx context.Context) ([]*review.Review, error) {
	return r.List(ctx, 0)
}

func (r *reviewRepo) Create(ctx context.Context, rv *review.Review) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r *reviewRepo) Update(ctx context.Context, rv *review.Review) error {
	return r.db.WithContext(ctx).Save(rv).Error
}

func (r *reviewRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&review.Review{}, id).Error
}
