package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/mediocregopher/radix/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/gomarket/internal/apperr"
	"github.com/example/gomarket/internal/datamodels/category"
	"github.com/example/gomarket/internal/datamodels/product"
	"github.com/example/gomarket/internal/datamodels/user"
	"github.com/example/gomarket/internal/upload"
)

// 商品详情缓存 TTL（秒）
const productCacheTTL = "300"

type ProductService struct {
	repo       product.Repository
	categories category.Repository
	redis      radix.Client
	images     *upload.Store
}

func NewProductService(repo product.Repository, categories category.Repository, redis radix.Client, images *upload.Store) *ProductService {
	return &ProductService{repo: repo, categories: categories, redis: redis, images: images}
}

func productCacheKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func (s *ProductService) cacheGet(id int64) *product.Product {
	if s.redis == nil {
		return nil
	}
	var raw string
	if err := s.redis.Do(radix.Cmd(&raw, "GET", productCacheKey(id))); err != nil || raw == "" {
		return nil
	}
	var p product.Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		// 缓存损坏直接清掉，走数据库
		_ = s.redis.Do(radix.Cmd(nil, "DEL", productCacheKey(id)))
		return nil
	}
	return &p
}

func (s *ProductService) cacheSet(p *product.Product) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := s.redis.Do(radix.Cmd(nil, "SETEX", productCacheKey(p.ID), productCacheTTL, string(raw))); err != nil {
		GetMonitor().RecordRedisError()
		zap.L().Warn("cache product failed", zap.Int64("product_id", p.ID), zap.Error(err))
	}
}

func (s *ProductService) cacheDel(id int64) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Do(radix.Cmd(nil, "DEL", productCacheKey(id))); err != nil {
		GetMonitor().RecordRedisError()
	}
}

// List 商品列表，支持筛选、排序和分页
func (s *ProductService) List(ctx context.Context, f product.ListFilter) ([]*product.Product, int64, error) {
	if f.Status != "" && f.Status != product.StatusAvailable && f.Status != product.StatusUnavailable {
		return nil, 0, apperr.BadRequest("商品状态筛选值无效。")
	}
	return s.repo.List(ctx, f)
}

// Get 按 ID 查商品，优先读缓存
func (s *ProductService) Get(ctx context.Context, id int64) (*product.Product, error) {
	if p := s.cacheGet(id); p != nil {
		return p, nil
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("商品不存在。")
		}
		return nil, err
	}
	s.cacheSet(p)
	return p, nil
}

// ListBySeller 某卖家的全部商品
func (s *ProductService) ListBySeller(ctx context.Context, sellerID int64) ([]*product.Product, error) {
	return s.repo.ListBySeller(ctx, sellerID)
}

// CreateInput 新建商品请求体，价格单位为分
type CreateProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Stock       int64  `json:"stock"`
	Unit        string `json:"unit"`
	CategoryID  int64  `json:"categoryId"`
	ImageURL    string `json:"imageUrl"`
}

// Create 卖家新建商品，状态由库存推导
func (s *ProductService) Create(ctx context.Context, seller *user.User, in CreateProductInput) (*product.Product, error) {
	if in.Name == "" {
		return nil, apperr.BadRequest("商品名称不能为空。")
	}
	if in.Price <= 0 {
		return nil, apperr.BadRequest("商品价格必须大于零。")
	}
	if in.Stock < 0 {
		return nil, apperr.BadRequest("商品库存不能为负数。")
	}
	if _, err := s.categories.GetByID(ctx, in.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("分类不存在。")
		}
		return nil, err
	}

	p := &product.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Unit:        in.Unit,
		Status:      product.StatusForStock(in.Stock),
		ImageURL:    in.ImageURL,
		UserID:      seller.ID,
		CategoryID:  in.CategoryID,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProductInput 更新商品的可选字段
type UpdateProductInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
	Stock       *int64  `json:"stock"`
	Unit        *string `json:"unit"`
	CategoryID  *int64  `json:"categoryId"`
	ImageURL    *string `json:"imageUrl"`
}

// Update 更新商品，只有货主或管理员可以改
func (s *ProductService) Update(ctx context.Context, actor *user.User, id int64, in UpdateProductInput) (*product.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != actor.ID && !actor.IsAdmin() {
		return nil, apperr.Forbidden("只能修改自己的商品。")
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, apperr.BadRequest("商品名称不能为空。")
		}
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		if *in.Price <= 0 {
			return nil, apperr.BadRequest("商品价格必须大于零。")
		}
		p.Price = *in.Price
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, apperr.BadRequest("商品库存不能为负数。")
		}
		p.Stock = *in.Stock
	}
	if in.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *in.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("分类不存在。")
			}
			return nil, err
		}
		p.CategoryID = *in.CategoryID
	}
	if in.Unit != nil {
		p.Unit = *in.Unit
	}
	if in.ImageURL != nil && *in.ImageURL != p.ImageURL {
		if p.ImageURL != "" && s.images != nil {
			s.images.Remove(p.ImageURL)
		}
		p.ImageURL = *in.ImageURL
	}
	p.Status = product.StatusForStock(p.Stock)

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.cacheDel(p.ID)
	return p, nil
}

// Delete 删除商品，只有货主或管理员可以删
func (s *ProductService) Delete(ctx context.Context, actor *user.User, id int64) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.UserID != actor.ID && !actor.IsAdmin() {
		return apperr.Forbidden("只能删除自己的商品。")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if p.ImageURL != "" && s.images != nil {
		s.images.Remove(p.ImageURL)
	}
	s.cacheDel(id)
	return nil
}

// SaveImageMultipart 保存表单上传的商品图片，返回对外 URL
func (s *ProductService) SaveImageMultipart(fh *multipart.FileHeader) (string, error) {
	if s.images == nil {
		return "", apperr.BadRequest("图片上传未启用。")
	}
	return s.images.SaveMultipart(fh)
}

// SaveImageBase64 保存 base64 编码的商品图片，返回对外 URL
func (s *ProductService) SaveImageBase64(data string) (string, error) {
	if s.images == nil {
		return "", apperr.BadRequest("图片上传未启用。")
	}
	return s.images.SaveBase64(data)
}

// ReconcileStatus 按库存批量校正商品状态，定时任务调用
func (s *ProductService) ReconcileStatus(ctx context.Context) error {
	n, err := s.repo.ReconcileStatus(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		zap.L().Info("product status reconciled", zap.Int64("rows", n))
	}
	return nil
}
