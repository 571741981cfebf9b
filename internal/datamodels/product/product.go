package product

import (
	"context"
	"time"
)

// 商品状态由库存推导：stock > 0 即为可售
const (
	StatusAvailable   = "available"
	StatusUnavailable = "unavailable"
)

// StatusForStock 库存对应的商品状态
func StatusForStock(stock int64) string {
	if stock > 0 {
		return StatusAvailable
	}
	return StatusUnavailable
}

// Product 商品模型
type Product struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"size:512" json:"description"`
	Price       int64     `gorm:"not null" json:"price"` // 分
	Stock       int64     `gorm:"not null" json:"stock"`
	Unit        string    `gorm:"size:32" json:"unit"`
	ImageURL    string    `gorm:"size:255" json:"imageUrl"`
	Status      string    `gorm:"size:16;index" json:"status"`
	UserID      int64     `gorm:"index;not null" json:"userId"` // 卖家
	CategoryID  int64     `gorm:"index;not null" json:"categoryId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Summary 订单明细里携带的商品摘要
type Summary struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Unit     string `json:"unit"`
	ImageURL string `json:"imageUrl"`
}

// Summarize 生成摘要
func (p *Product) Summarize() *Summary {
	return &Summary{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Unit:     p.Unit,
		ImageURL: p.ImageURL,
	}
}

// ListFilter 商品列表查询条件
type ListFilter struct {
	Name       string
	CategoryID int64
	Status     string
	PriceGTE   int64
	PriceLTE   int64
	// Sort 形如 "-price,name"，前缀減号表示降序
	Sort  string
	Page  int
	Limit int
}

// Repository 商品仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*Product, error)
	List(ctx context.Context, f ListFilter) ([]*Product, int64, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
	// ReconcileStatus 按库存批量修正 status 字段，返回修正行数
	ReconcileStatus(ctx context.Context) (int64, error)
}
