package review

import (
	"context"
	"time"
)

// Review 商品评价，评分限定 1~5
type Review struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Review    string    `gorm:"type:text;not null" json:"review"`
	Rating    int       `gorm:"not null" json:"rating"`
	UserID    int64     `gorm:"index;not null" json:"userId"`
	ProductID int64     `gorm:"index;not null" json:"productId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ValidRating 评分是否在范围内
func ValidRating(r int) bool {
	return r >= 1 && r <= 5
}

// Repository 评价仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Review, error)
	List(ctx context.Context, productID int64) ([]*Review, error)
	ListAll(ctx context.Context) ([]*Review, error)
	Create(ctx context.Context, r *Review) error
	Update(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id int64) error
}
