package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/gomarket/internal/apperr"
	"github.com/example/gomarket/internal/datamodels/order"
	"github.com/example/gomarket/internal/datamodels/user"
	"github.com/example/gomarket/internal/repository/mocks"
)

// newTxOrderService 基于 sqlmock 构造走真实事务路径的订单服务
func newTxOrderService(t *testing.T) (*OrderService, sqlmock.Sqlmock, *mocks.MockOrderRepository) {
	t.Helper()
	sqlDB, dbMock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger:               gormlogger.Default.LogMode(gormlogger.Silent),
		DisableAutomaticPing: true,
	})
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}
	repo := new(mocks.MockOrderRepository)
	svc := NewOrderService(db, repo, new(mocks.MockProductRepository), new(mocks.MockUserRepository), nil, nil)
	return svc, dbMock, repo
}

func productColumns() []string {
	return []string{"id", "name", "price", "stock", "status", "user_id", "category_id"}
}

func TestCheckoutTransaction(t *testing.T) {
	svc, dbMock, _ := newTxOrderService(t)
	buyer := &user.User{ID: 10, Role: user.RoleBuyer}

	dbMock.ExpectBegin()
	// 购物车乱序提交，加锁必须按商品 ID 升序
	dbMock.ExpectQuery("SELECT (.+) FROM `products` WHERE (.+)FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(productColumns()).
			AddRow(1, "白菜", 500, 10, "available", 7, 1))
	dbMock.ExpectExec("UPDATE `products` SET").
		WithArgs("白菜", "", 500, 8, "", "", "available", 7, 1, sqlmock.AnyArg(), sqlmock.AnyArg(), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectQuery("SELECT (.+) FROM `products` WHERE (.+)FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(productColumns()).
			AddRow(3, "大米", 1200, 1, "available", 8, 2))
	// 最后一件售出，状态转为 unavailable
	dbMock.ExpectExec("UPDATE `products` SET").
		WithArgs("大米", "", 1200, 0, "", "", "unavailable", 8, 2, sqlmock.AnyArg(), sqlmock.AnyArg(), 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// 总价 = 2×500 + 1×1200
	dbMock.ExpectExec("INSERT INTO `orders`").
		WithArgs(int64(10), int64(2200), "某街 1 号", order.PaymentPix, order.StatusProcessing, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(9, 1))
	dbMock.ExpectExec("INSERT INTO `order_items`").
		WithArgs(
			int64(9), int64(1), int64(2), int64(500), sqlmock.AnyArg(),
			int64(9), int64(3), int64(1), int64(1200), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(100, 2))
	dbMock.ExpectCommit()

	view, err := svc.Checkout(context.TODO(), buyer, CheckoutInput{
		CartItems:       []CartItem{{ProductID: 3, Quantity: 1}, {ProductID: 1, Quantity: 2}},
		ShippingAddress: "某街 1 号",
		PaymentMethod:   order.PaymentPix,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(9), view.ID)
	assert.Equal(t, int64(2200), view.TotalAmount)
	assert.Equal(t, order.StatusProcessing, view.Status)
	// 明细记录下单时的单价快照
	assert.Len(t, view.Items, 2)
	assert.Equal(t, int64(500), view.Items[0].Price)
	assert.Equal(t, int64(1200), view.Items[1].Price)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestCheckoutInsufficientStockRollsBack(t *testing.T) {
	svc, dbMock, _ := newTxOrderService(t)
	buyer := &user.User{ID: 10, Role: user.RoleBuyer}

	dbMock.ExpectBegin()
	// 第一件扣减成功
	dbMock.ExpectQuery("SELECT (.+) FROM `products` WHERE (.+)FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(productColumns()).
			AddRow(1, "白菜", 500, 10, "available", 7, 1))
	dbMock.ExpectExec("UPDATE `products` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// 第二件缺货，整单回滚，订单与明细均不落库
	dbMock.ExpectQuery("SELECT (.+) FROM `products` WHERE (.+)FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(productColumns()).
			AddRow(2, "土豆", 300, 3, "available", 7, 1))
	dbMock.ExpectRollback()

	_, err := svc.Checkout(context.TODO(), buyer, CheckoutInput{
		CartItems:       []CartItem{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 5}},
		ShippingAddress: "某街 1 号",
		PaymentMethod:   order.PaymentCard,
	})
	assert.Equal(t, 400, apperr.StatusCode(err))
	assert.Contains(t, err.Error(), "土豆")
	assert.Contains(t, err.Error(), "仅剩 3 件")
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestCancelRestoresStock(t *testing.T) {
	svc, dbMock, repo := newTxOrderService(t)
	buyer := &user.User{ID: 10, Role: user.RoleBuyer}
	ctx := context.TODO()

	repo.On("GetByID", ctx, int64(9)).
		Return(&order.Order{ID: 9, UserID: 10, Status: order.StatusProcessing}, nil).Once()

	dbMock.ExpectBegin()
	dbMock.ExpectQuery("SELECT (.+) FROM `orders` WHERE (.+)FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "total_amount", "status"}).
			AddRow(9, 10, 1000, order.StatusProcessing))
	dbMock.ExpectQuery("SELECT (.+) FROM `order_items` WHERE order_id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "price"}).
			AddRow(100, 9, 1, 2, 500))
	dbMock.ExpectQuery("SELECT (.+) FROM `products` WHERE (.+)FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(productColumns()).
			AddRow(1, "白菜", 500, 0, "unavailable", 7, 1))
	// 回补 2 件后库存 2，状态回到 available
	dbMock.ExpectExec("UPDATE `products` SET").
		WithArgs("白菜", "", 500, 2, "", "", "available", 7, 1, sqlmock.AnyArg(), sqlmock.AnyArg(), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectExec("UPDATE `orders` SET").
		WithArgs(order.StatusCancelled, sqlmock.AnyArg(), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectCommit()

	o, err := svc.Cancel(ctx, buyer, 9)
	assert.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, o.Status)
	assert.NoError(t, dbMock.ExpectationsWereMet())

	// 再次取消直接冲突，不再进事务
	repo.On("GetByID", ctx, int64(9)).
		Return(&order.Order{ID: 9, UserID: 10, Status: order.StatusCancelled}, nil).Once()
	_, err = svc.Cancel(ctx, buyer, 9)
	assert.Equal(t, 400, apperr.StatusCode(err))
	assert.Contains(t, err.Error(), "订单已取消")
	repo.AssertExpectations(t)
}
