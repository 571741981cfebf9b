package order

import (
	"context"
	"time"
)

// 订单状态机：processing → shipped → delivered；
// processing/shipped 可取消；delivered 与 cancelled 为终态。
const (
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// 支付方式
const (
	PaymentPix  = "pix"
	PaymentCard = "card"
)

// ValidPaymentMethod 是否为合法支付方式
func ValidPaymentMethod(m string) bool {
	return m == PaymentPix || m == PaymentCard
}

// ValidStatus 是否为合法订单状态
func ValidStatus(s string) bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal 终态不可再流转
func IsTerminal(s string) bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition 完整状态机的合法流转
func CanTransition(from, to string) bool {
	switch from {
	case StatusProcessing:
		return to == StatusShipped || to == StatusDelivered || to == StatusCancelled
	case StatusShipped:
		return to == StatusDelivered || to == StatusCancelled
	}
	return false
}

// SellerCanTransition 卖家仅能推进发货/签收，取消走独立的取消接口
func SellerCanTransition(from, to string) bool {
	switch {
	case from == StatusProcessing && to == StatusShipped:
		return true
	case from == StatusShipped && to == StatusDelivered:
		return true
	}
	return false
}

// Order 订单模型
type Order struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	UserID          int64     `gorm:"index;not null" json:"userId"` // 买家
	TotalAmount     int64     `gorm:"not null" json:"totalAmount"`  // 分
	ShippingAddress string    `gorm:"size:255;not null" json:"shippingAddress"`
	PaymentMethod   string    `gorm:"size:16;not null" json:"paymentMethod"`
	Status          string    `gorm:"size:16;index;not null" json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Item 订单明细，price 为下单时的单价快照（分），
// 与商品后续调价解耦。
type Item struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	OrderID   int64     `gorm:"index;not null" json:"orderId"`
	ProductID int64     `gorm:"index;not null" json:"productId"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	Price     int64     `gorm:"not null" json:"price"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Item) TableName() string { return "order_items" }

// Repository 订单仓储接口；创建走服务层事务，这里只负责查询与状态更新
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByBuyer(ctx context.Context, buyerID int64) ([]*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*Order, error)
	ListItems(ctx context.Context, orderID int64) ([]*Item, error)
	ListItemsByOrders(ctx context.Context, orderIDs []int64) ([]*Item, error)
	// ListIDsBySeller 返回包含该卖家商品的订单 ID，新订单在前
	ListIDsBySeller(ctx context.Context, sellerID int64) ([]int64, error)
	// SellerHasItems 订单中是否含有该卖家的商品
	SellerHasItems(ctx context.Context, orderID, sellerID int64) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}
