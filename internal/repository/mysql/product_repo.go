package mysql

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/example/gomarket/internal/datamodels/product"
)

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) product.Repository {
	return &productRepo{db: db}
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	var p product.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) GetByIDs(ctx context.Context, ids []int64) ([]*product.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []*product.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// 允许的排序字段，防止拼接任意列名
var sortableColumns = map[string]bool{
	"id":         true,
	"name":       true,
	"price":      true,
	"stock":      true,
	"created_at": true,
}

func (r *productRepo) List(ctx context.Context, f product.ListFilter) ([]*product.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&product.Product{})

	if f.Name != "" {
		q = q.Where("name LIKE ?", "%"+f.Name+"%")
	}
	if f.CategoryID > 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.PriceGTE > 0 {
		q = q.Where("price >= ?", f.PriceGTE)
	}
	if f.PriceLTE > 0 {
		q = q.Where("price <= ?", f.PriceLTE)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	if f.Sort != "" {
		var parts []string
		for _, field := range strings.Split(f.Sort, ",") {
			field = strings.TrimSpace(field)
			dir := "ASC"
			if strings.HasPrefix(field, "-") {
				field = field[1:]
				dir = "DESC"
			}
			if sortableColumns[field] {
				parts = append(parts, field+" "+dir)
			}
		}
		if len(parts) > 0 {
			order = strings.Join(parts, ", ")
		}
	}

	page := f.Page
	if page <= 0 {
		page = 1
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	var list []*product.Product
	if err := q.Order(order).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *productRepo) ListBySeller(ctx context.Context, sellerID int64) ([]*product.Product, error) {
	var list []*product.Product
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", sellerID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *productRepo) Create(ctx context.Context, p *product.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) Update(ctx context.Context, p *product.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&product.Product{}, id).Error
}

func (r *productRepo) ReconcileStatus(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&product.Product{}).
		Where("(stock > 0 AND status <> ?) OR (stock <= 0 AND status <> ?)",
			product.StatusAvailable, product.StatusUnavailable).
		Update("status", gorm.Expr(
			"CASE WHEN stock > 0 THEN ? ELSE ? END",
			product.StatusAvailable, product.StatusUnavailable))
	return res.RowsAffected, res.Error
}
