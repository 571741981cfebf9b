package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/example/gomarket/internal/apperr"
	"github.com/example/gomarket/internal/datamodels/product"
	"github.com/example/gomarket/internal/datamodels/review"
	"github.com/example/gomarket/internal/datamodels/user"
	"github.com/example/gomarket/internal/repository/mocks"
)

func TestReviewCreate(t *testing.T) {
	ctx := context.TODO()
	buyer := &user.User{ID: 10, Role: user.RoleBuyer}

	t.Run("rating out of range", func(t *testing.T) {
		svc := NewReviewService(new(mocks.MockReviewRepository), new(mocks.MockProductRepository))

		_, err := svc.Create(ctx, buyer, 1, 0, "还行")
		assert.Equal(t, 400, apperr.StatusCode(err))

		_, err = svc.Create(ctx, buyer, 1, 6, "很好")
		assert.Equal(t, 400, apperr.StatusCode(err))
	})

	t.Run("success", func(t *testing.T) {
		repo := new(mocks.MockReviewRepository)
		products := new(mocks.MockProductRepository)
		products.On("GetByID", ctx, int64(1)).Return(&product.Product{ID: 1}, nil).Once()
		repo.On("Create", ctx, mock.AnythingOfType("*review.Review")).Return(nil).Once()
		svc := NewReviewService(repo, products)

		r, err := svc.Create(ctx, buyer, 1, 5, "很好")
		assert.NoError(t, err)
		assert.Equal(t, int64(10), r.UserID)
		assert.Equal(t, 5, r.Rating)
	})
}

func TestReviewDeletePermission(t *testing.T) {
	ctx := context.TODO()
	stored := &review.Review{ID: 3, UserID: 10, ProductID: 1, Rating: 4}

	t.Run("stranger forbidden", func(t *testing.T) {
		repo := new(mocks.MockReviewRepository)
		repo.On("GetByID", ctx, int64(3)).Return(stored, nil).Once()
		svc := NewReviewService(repo, new(mocks.MockProductRepository))

		err := svc.Delete(ctx, &user.User{ID: 99, Role: user.RoleBuyer}, 3)
		assert.Equal(t, 403, apperr.StatusCode(err))
	})

	t.Run("admin may delete", func(t *testing.T) {
		repo := new(mocks.MockReviewRepository)
		repo.On("GetByID", ctx, int64(3)).Return(stored, nil).Once()
		repo.On("Delete", ctx, int64(3)).Return(nil).Once()
		svc := NewReviewService(repo, new(mocks.MockProductRepository))

		err := svc.Delete(ctx, &user.User{ID: 1, Role: user.RoleAdmin}, 3)
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})
}
