package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/example/gomarket/internal/apperr"
	"github.com/example/gomarket/internal/datamodels/product"
	"github.com/example/gomarket/internal/datamodels/review"
	"github.com/example/gomarket/internal/datamodels/user"
)

type ReviewService struct {
	repo     review.Repository
	products product.Repository
}

func NewReviewService(repo review.Repository, products product.Repository) *ReviewService {
	return &ReviewService{repo: repo, products: products}
}

// ListByProduct 某商品的全部评价
func (s *ReviewService) ListByProduct(ctx context.Context, productID int64) ([]*review.Review, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("商品不存在。")
		}
		return nil, err
	}
	return s.repo.List(ctx, productID)
}

// Create 给商品写评价，评分必须在 1 到 5 之间
func (s *ReviewService) Create(ctx context.Context, u *user.User, productID int64, rating int, text string) (*review.Review, error) {
	if !review.ValidRating(rating) {
		return nil, apperr.BadRequest("评分必须在 1 到 5 之间。")
	}
	if text == "" {
		return nil, apperr.BadRequest("评价内容不能为空。")
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("商品不存在。")
		}
		return nil, err
	}
	r := &review.Review{
		UserID:    u.ID,
		ProductID: productID,
		Rating:    rating,
		Review:    text,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ListAll 全部评价，最新的在前
func (s *ReviewService) ListAll(ctx context.Context) ([]*review.Review, error) {
	return s.repo.ListAll(ctx)
}

// Get 按 ID 查评价
func (s *ReviewService) Get(ctx context.Context, id int64) (*review.Review, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("评价不存在。")
		}
		return nil, err
	}
	return r, nil
}

// Update 修改评价，作者本人或管理员可改
func (s *ReviewService) Update(ctx context.Context, actor *user.User, id int64, rating *int, text *string) (*review.Review, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != actor.ID && !actor.IsAdmin() {
		return nil, apperr.Forbidden("只能修改自己的评价。")
	}
	if rating != nil {
		if !review.ValidRating(*rating) {
			return nil, apperr.BadRequest("评分必须在 1 到 5 之间。")
		}
		r.Rating = *rating
	}
	if text != nil {
		if *text == "" {
			return nil, apperr.BadRequest("评价内容不能为空。")
		}
		r.Review = *text
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Delete 删除评价，作者本人或管理员可删
func (s *ReviewService) Delete(ctx context.Context, actor *user.User, id int64) error {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("评价不存在。")
		}
		return err
	}
	if r.UserID != actor.ID && !actor.IsAdmin() {
		return apperr.Forbidden("只能删除自己的评价。")
	}
	return s.repo.Delete(ctx, id)
}
