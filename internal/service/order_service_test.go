package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/gomarket/internal/apperr"
	"github.com/example/gomarket/internal/datamodels/order"
	"github.com/example/gomarket/internal/datamodels/product"
	"github.com/example/gomarket/internal/datamodels/user"
	"github.com/example/gomarket/internal/repository/mocks"
)

func newOrderServiceForTest(repo *mocks.MockOrderRepository, products *mocks.MockProductRepository, users *mocks.MockUserRepository) *OrderService {
	return NewOrderService(nil, repo, products, users, nil, nil)
}

func TestCheckoutValidation(t *testing.T) {
	svc := newOrderServiceForTest(new(mocks.MockOrderRepository), new(mocks.MockProductRepository), new(mocks.MockUserRepository))
	buyer := &user.User{ID: 10, Role: user.RoleBuyer}
	ctx := context.TODO()

	t.Run("empty cart", func(t *testing.T) {
		_, err := svc.Checkout(ctx, buyer, CheckoutInput{
			ShippingAddress: "某街 1 号",
			PaymentMethod:   order.PaymentPix,
		})
		assert.Equal(t, 400, apperr.StatusCode(err))
	})

	t.Run("missing address", func(t *testing.T) {
		_, err := svc.Checkout(ctx, buyer, CheckoutInput{
			CartItems:     []CartItem{{ProductID: 1, Quantity: 1}},
			PaymentMethod: order.PaymentPix,
		})
		assert.Equal(t, 400, apperr.StatusCode(err))
	})

	t.Run("invalid payment method", func(t *testing.T) {
		_, err := svc.Checkout(ctx, buyer, CheckoutInput{
			CartItems:       []CartItem{{ProductID: 1, Quantity: 1}},
			ShippingAddress: "某街 1 号",
			PaymentMethod:   "boleto",
		})
		assert.Equal(t, 400, apperr.StatusCode(err))
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		_, err := svc.Checkout(ctx, buyer, CheckoutInput{
			CartItems:       []CartItem{{ProductID: 1, Quantity: 0}},
			ShippingAddress: "某街 1 号",
			PaymentMethod:   order.PaymentCard,
		})
		assert.Equal(t, 400, apperr.StatusCode(err))
	})
}

func TestValidateCheckoutMergesDuplicates(t *testing.T) {
	items, err := validateCheckout(CheckoutInput{
		CartItems: []CartItem{
			{ProductID: 3, Quantity: 2},
			{ProductID: 1, Quantity: 1},
			{ProductID: 3, Quantity: 1},
		},
		ShippingAddress: "某街 1 号",
		PaymentMethod:   order.PaymentPix,
	})
	assert.NoError(t, err)
	// 同一商品合并数量，并按 ID 升序锁定
	assert.Equal(t, []CartItem{{ProductID: 1, Quantity: 1}, {ProductID: 3, Quantity: 3}}, items)
}

func TestCancelPermissions(t *testing.T) {
	ctx := context.TODO()

	t.Run("stranger cannot cancel", func(t *testing.T) {
		repo := new(mocks.MockOrderRepository)
		repo.On("GetByID", ctx, int64(5)).Return(&order.Order{ID: 5, UserID: 10, Status: order.StatusProcessing}, nil).Once()
		svc := newOrderServiceForTest(repo, new(mocks.MockProductRepository), new(mocks.MockUserRepository))

		_, err := svc.Cancel(ctx, &user.User{ID: 99, Role: user.RoleBuyer}, 5)
		assert.Equal(t, 403, apperr.StatusCode(err))
		repo.AssertExpectations(t)
	})

	t.Run("double cancel conflicts", func(t *testing.T) {
		repo := new(mocks.MockOrderRepository)
		repo.On("GetByID", ctx, int64(5)).Return(&order.Order{ID: 5, UserID: 10, Status: order.StatusCancelled}, nil).Once()
		svc := newOrderServiceForTest(repo, new(mocks.MockProductRepository), new(mocks.MockUserRepository))

		_, err := svc.Cancel(ctx, &user.User{ID: 10, Role: user.RoleBuyer}, 5)
		assert.Equal(t, 400, apperr.StatusCode(err))
		assert.Contains(t, err.Error(), "已取消")
	})

	t.Run("delivered cannot be cancelled", func(t *testing.T) {
		repo := new(mocks.MockOrderRepository)
		repo.On("GetByID", ctx, int64(5)).Return(&order.Order{ID: 5, UserID: 10, Status: order.StatusDelivered}, nil).Once()
		svc := newOrderServiceForTest(repo, new(mocks.MockProductRepository), new(mocks.MockUserRepository))

		_, err := svc.Cancel(ctx, &user.User{ID: 10, Role: user.RoleBuyer}, 5)
		assert.Equal(t, 400, apperr.StatusCode(err))
	})
}

func TestSellerUpdateStatus(t *testing.T) {
	ctx := context.TODO()
	seller := &user.User{ID: 7, Role: user.RoleSeller}

	t.Run("order without seller items is forbidden", func(t *testing.T) {
		repo := new(mocks.MockOrderRepository)
		repo.On("GetByID", ctx, int64(3)).Return(&order.Order{ID: 3, UserID: 10, Status: order.StatusProcessing}, nil).Once()
		repo.On("SellerHasItems", ctx, int64(3), int64(7)).Return(false, nil).Once()
		svc := newOrderServiceForTest(repo, new(mocks.MockProductRepository), new(mocks.MockUserRepository))

		_, err := svc.SellerUpdateStatus(ctx, seller, 3, order.StatusShipped)
		assert.Equal(t, 403, apperr.StatusCode(err))
		repo.AssertExpectations(t)
	})

	t.Run("seller cannot cancel", func(t *testing.T) {
		repo := new(mocks.MockOrderRepository)
		repo.On("GetByID", ctx, int64(3)).Return(&order.Order{ID: 3, UserID: 10, Status: order.StatusProcessing}, nil).Once()
		repo.On("SellerHasItems", ctx, int64(3), int64(7)).Return(true, nil).Once()
		svc := newOrderServiceForTest(repo, new(mocks.MockProductRepository), new(mocks.MockUserRepository))

		_, err := svc.SellerUpdateStatus(ctx, seller, 3, order.StatusCancelled)
		assert.Equal(t, 400, apperr.StatusCode(err))
	})

	t.Run("processing to shipped succeeds", func(t *testing.T) {
		repo := new(mocks.MockOrderRepository)
		repo.On("GetByID", ctx, int64(3)).Return(&order.Order{ID: 3, UserID: 10, Status: order.StatusProcessing}, nil).Once()
		repo.On("SellerHasItems", ctx, int64(3), int64(7)).Return(true, nil).Once()
		repo.On("UpdateStatus", ctx, int64(3), order.StatusShipped).Return(nil).Once()
		svc := newOrderServiceForTest(repo, new(mocks.MockProductRepository), new(mocks.MockUserRepository))

		o, err := svc.SellerUpdateStatus(ctx, seller, 3, order.StatusShipped)
		assert.NoError(t, err)
		assert.Equal(t, order.StatusShipped, o.Status)
		repo.AssertExpectations(t)
	})
}

func TestAdminUpdateStatusTransition(t *testing.T) {
	ctx := context.TODO()

	t.Run("invalid status rejected", func(t *testing.T) {
		svc := newOrderServiceForTest(new(mocks.MockOrderRepository), new(mocks.MockProductRepository), new(mocks.MockUserRepository))
		_, err := svc.UpdateStatus(ctx, 1, "paid")
		assert.Equal(t, 400, apperr.StatusCode(err))
	})

	t.Run("cannot move delivered back to shipped", func(t *testing.T) {
		repo := new(mocks.MockOrderRepository)
		repo.On("GetByID", ctx, int64(1)).Return(&order.Order{ID: 1, Status: order.StatusDelivered}, nil).Once()
		svc := newOrderServiceForTest(repo, new(mocks.MockProductRepository), new(mocks.MockUserRepository))

		_, err := svc.UpdateStatus(ctx, 1, order.StatusShipped)
		assert.Equal(t, 400, apperr.StatusCode(err))
	})

	t.Run("shipped to delivered succeeds", func(t *testing.T) {
		repo := new(mocks.MockOrderRepository)
		repo.On("GetByID", ctx, int64(1)).Return(&order.Order{ID: 1, Status: order.StatusShipped}, nil).Once()
		repo.On("UpdateStatus", ctx, int64(1), order.StatusDelivered).Return(nil).Once()
		svc := newOrderServiceForTest(repo, new(mocks.MockProductRepository), new(mocks.MockUserRepository))

		o, err := svc.UpdateStatus(ctx, 1, order.StatusDelivered)
		assert.NoError(t, err)
		assert.Equal(t, order.StatusDelivered, o.Status)
	})
}

func TestListSellerOrdersFiltersItems(t *testing.T) {
	ctx := context.TODO()
	seller := &user.User{ID: 7, Role: user.RoleSeller}

	repo := new(mocks.MockOrderRepository)
	products := new(mocks.MockProductRepository)
	users := new(mocks.MockUserRepository)

	repo.On("ListIDsBySeller", ctx, int64(7)).Return([]int64{2, 1}, nil).Once()
	repo.On("ListByIDs", ctx, []int64{2, 1}).Return([]*order.Order{
		{ID: 1, UserID: 20, Status: order.StatusProcessing},
		{ID: 2, UserID: 21, Status: order.StatusShipped},
	}, nil).Once()
	// 订单 1 混有两个卖家的商品，订单 2 只有本卖家的
	repo.On("ListItemsByOrders", ctx, []int64{2, 1}).Return([]*order.Item{
		{ID: 11, OrderID: 1, ProductID: 100, Quantity: 1, Price: 500},
		{ID: 12, OrderID: 1, ProductID: 200, Quantity: 2, Price: 300},
		{ID: 13, OrderID: 2, ProductID: 100, Quantity: 3, Price: 500},
	}, nil).Once()
	products.On("GetByIDs", ctx, []int64{100, 200}).Return([]*product.Product{
		{ID: 100, Name: "西红柿", UserID: 7, Price: 500},
		{ID: 200, Name: "苹果", UserID: 8, Price: 300},
	}, nil).Once()
	users.On("GetByID", ctx, int64(20)).Return(&user.User{ID: 20, Name: "买家甲"}, nil).Once()
	users.On("GetByID", ctx, int64(21)).Return(&user.User{ID: 21, Name: "买家乙"}, nil).Once()

	svc := newOrderServiceForTest(repo, products, users)
	views, err := svc.ListSellerOrders(ctx, seller)
	assert.NoError(t, err)
	assert.Len(t, views, 2)

	// ListIDsBySeller 的顺序保持：新订单在前
	assert.Equal(t, int64(2), views[0].ID)
	assert.Equal(t, int64(1), views[1].ID)

	// 其他卖家的明细被过滤掉
	assert.Len(t, views[1].Items, 1)
	assert.Equal(t, int64(100), views[1].Items[0].ProductID)
	assert.Len(t, views[0].Items, 1)

	repo.AssertExpectations(t)
	products.AssertExpectations(t)
}

func TestAdminSalesFlattensItems(t *testing.T) {
	ctx := context.TODO()

	repo := new(mocks.MockOrderRepository)
	products := new(mocks.MockProductRepository)
	users := new(mocks.MockUserRepository)

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.On("ListAll", ctx).Return([]*order.Order{
		{ID: 1, UserID: 20, Status: order.StatusDelivered, CreatedAt: created},
	}, nil).Once()
	repo.On("ListItemsByOrders", ctx, []int64{1}).Return([]*order.Item{
		{ID: 11, OrderID: 1, ProductID: 100, Quantity: 2, Price: 500},
		{ID: 12, OrderID: 1, ProductID: 200, Quantity: 1, Price: 300},
	}, nil).Once()
	products.On("GetByIDs", ctx, []int64{100, 200}).Return([]*product.Product{
		{ID: 100, Name: "西红柿", UserID: 7},
		{ID: 200, Name: "苹果", UserID: 8},
	}, nil).Once()
	users.On("ListAll", ctx).Return([]*user.User{{ID: 20, Name: "买家甲"}}, nil).Once()

	svc := newOrderServiceForTest(repo, products, users)
	rows, err := svc.AdminSales(ctx)
	assert.NoError(t, err)
	assert.Len(t, rows, 2)

	assert.Equal(t, "1-100", rows[0].ID)
	assert.Equal(t, "买家甲", rows[0].BuyerName)
	assert.Equal(t, int64(1000), rows[0].Subtotal)
	assert.Equal(t, "1-200", rows[1].ID)
	assert.Equal(t, int64(8), rows[1].SellerID)
}

func TestGetOrderPermission(t *testing.T) {
	ctx := context.TODO()
	repo := new(mocks.MockOrderRepository)
	repo.On("GetByID", ctx, int64(1)).Return(&order.Order{ID: 1, UserID: 20, Status: order.StatusProcessing}, nil).Once()
	svc := newOrderServiceForTest(repo, new(mocks.MockProductRepository), new(mocks.MockUserRepository))

	_, err := svc.GetOrder(ctx, &user.User{ID: 99, Role: user.RoleBuyer}, 1)
	assert.Equal(t, 403, apperr.StatusCode(err))
}
