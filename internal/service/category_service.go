package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/example/gomarket/internal/apperr"
	"github.com/example/gomarket/internal/datamodels/category"
)

type CategoryService struct {
	repo category.Repository
}

func NewCategoryService(repo category.Repository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context) ([]*category.Category, error) {
	return s.repo.ListAll(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id int64) (*category.Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("分类不存在。")
		}
		return nil, err
	}
	return c, nil
}

// Create 新建分类，名称不能重复
func (s *CategoryService) Create(ctx context.Context, name, description string) (*category.Category, error) {
	if name == "" {
		return nil, apperr.BadRequest("分类名称不能为空。")
	}
	if _, err := s.repo.GetByName(ctx, name); err == nil {
		return nil, apperr.BadRequest("该分类名称已存在。")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	c := &category.Category{Name: name, Description: description}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id int64, name, description *string) (*category.Category, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil && *name != c.Name {
		if *name == "" {
			return nil, apperr.BadRequest("分类名称不能为空。")
		}
		if _, err := s.repo.GetByName(ctx, *name); err == nil {
			return nil, apperr.BadRequest("该分类名称已存在。")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		c.Name = *name
	}
	if description != nil {
		c.Description = *description
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
