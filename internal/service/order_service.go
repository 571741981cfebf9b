package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/mediocregopher/radix/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/gomarket/internal/apperr"
	"github.com/example/gomarket/internal/datamodels/order"
	"github.com/example/gomarket/internal/datamodels/product"
	"github.com/example/gomarket/internal/datamodels/user"
	"github.com/example/gomarket/internal/infra/mq"
)

// OrderEventPublisher 下单成功后的事件发布端，为 nil 时跳过
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, ev mq.OrderEvent) error
}

type OrderService struct {
	db        *gorm.DB
	repo      order.Repository
	products  product.Repository
	users     user.Repository
	publisher OrderEventPublisher
	redis     radix.Client
}

func NewOrderService(db *gorm.DB, repo order.Repository, products product.Repository, users user.Repository, publisher OrderEventPublisher, redis radix.Client) *OrderService {
	return &OrderService{
		db:        db,
		repo:      repo,
		products:  products,
		users:     users,
		publisher: publisher,
		redis:     redis,
	}
}

// CartItem 购物车条目
type CartItem struct {
	ProductID int64 `json:"id"`
	Quantity  int64 `json:"quantity"`
}

// CheckoutInput 下单请求体
type CheckoutInput struct {
	CartItems       []CartItem `json:"cartItems"`
	ShippingAddress string     `json:"shippingAddress"`
	PaymentMethod   string     `json:"paymentMethod"`
}

// BuyerInfo 订单视图里携带的买家信息
type BuyerInfo struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ItemView 订单明细视图
type ItemView struct {
	ID        int64            `json:"id"`
	ProductID int64            `json:"productId"`
	Quantity  int64            `json:"quantity"`
	Price     int64            `json:"price"`
	Product   *product.Summary `json:"product,omitempty"`
}

// OrderView 订单视图
type OrderView struct {
	order.Order
	Buyer *BuyerInfo `json:"user,omitempty"`
	Items []ItemView `json:"items"`
}

// validateCheckout 业务校验，合并重复商品并按 ID 升序返回，
// 固定加锁顺序避免并发下单互相死锁。
func validateCheckout(in CheckoutInput) ([]CartItem, error) {
	if len(in.CartItems) == 0 {
		return nil, apperr.BadRequest("购物车不能为空。")
	}
	if in.ShippingAddress == "" {
		return nil, apperr.BadRequest("收货地址不能为空。")
	}
	if !order.ValidPaymentMethod(in.PaymentMethod) {
		return nil, apperr.BadRequest("支付方式无效，仅支持 pix 或 card。")
	}
	merged := make(map[int64]int64, len(in.CartItems))
	for _, it := range in.CartItems {
		if it.ProductID <= 0 {
			return nil, apperr.BadRequest("商品 ID 无效。")
		}
		if it.Quantity <= 0 {
			return nil, apperr.BadRequest("商品数量必须大于零。")
		}
		merged[it.ProductID] += it.Quantity
	}
	items := make([]CartItem, 0, len(merged))
	for id, qty := range merged {
		items = append(items, CartItem{ProductID: id, Quantity: qty})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	return items, nil
}

// Checkout 购物车下单：锁库存、扣减、生成订单与明细，单个事务内完成，
// 任一商品缺货则整单回滚。成功后发布订单事件。
func (s *OrderService) Checkout(ctx context.Context, buyer *user.User, in CheckoutInput) (*OrderView, error) {
	GetMonitor().RecordCheckoutRequest()

	items, err := validateCheckout(in)
	if err != nil {
		GetMonitor().RecordCheckoutError()
		return nil, err
	}

	var (
		o         order.Order
		created   []order.Item
		summaries = make(map[int64]*product.Summary, len(items))
		sellerSet = make(map[int64]struct{})
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var total int64
		rows := make([]order.Item, 0, len(items))
		for _, it := range items {
			// 锁定商品行，持有到事务提交
			var p product.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&p, it.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound(fmt.Sprintf("商品 %d 不存在。", it.ProductID))
				}
				return err
			}
			if p.Stock < it.Quantity {
				return apperr.BadRequest(fmt.Sprintf("商品「%s」库存不足，仅剩 %d 件。", p.Name, p.Stock))
			}

			p.Stock -= it.Quantity
			p.Status = product.StatusForStock(p.Stock)
			if err := tx.Save(&p).Error; err != nil {
				return err
			}

			total += p.Price * it.Quantity
			rows = append(rows, order.Item{
				ProductID: p.ID,
				Quantity:  it.Quantity,
				Price:     p.Price, // 单价快照
			})
			summaries[p.ID] = p.Summarize()
			sellerSet[p.UserID] = struct{}{}
		}

		o = order.Order{
			UserID:          buyer.ID,
			TotalAmount:     total,
			ShippingAddress: in.ShippingAddress,
			PaymentMethod:   in.PaymentMethod,
			Status:          order.StatusProcessing,
		}
		if err := tx.Create(&o).Error; err != nil {
			return err
		}
		for i := range rows {
			rows[i].OrderID = o.ID
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
		created = rows
		return nil
	})
	if err != nil {
		GetMonitor().RecordCheckoutError()
		if !apperr.IsOperational(err) {
			GetMonitor().RecordDBError()
		}
		return nil, err
	}
	GetMonitor().RecordCheckoutSuccess()

	// 库存已变，商品缓存作废
	for id := range summaries {
		s.invalidateProduct(id)
	}
	s.publishOrderEvent(ctx, &o, sellerSet)

	view := &OrderView{Order: o, Items: make([]ItemView, 0, len(created))}
	for _, it := range created {
		view.Items = append(view.Items, ItemView{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Product:   summaries[it.ProductID],
		})
	}
	return view, nil
}

// DirectSaleInput 本地直销请求体
type DirectSaleInput struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// DirectSale 卖家登记线下成交：扣自己商品的库存并生成已签收订单
func (s *OrderService) DirectSale(ctx context.Context, seller *user.User, in DirectSaleInput) (*OrderView, error) {
	if in.Quantity <= 0 {
		return nil, apperr.BadRequest("商品数量必须大于零。")
	}
	p, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("商品不存在。")
		}
		return nil, err
	}
	if p.UserID != seller.ID && !seller.IsAdmin() {
		return nil, apperr.Forbidden("只能登记自己商品的本地销售。")
	}

	var (
		o    order.Order
		item order.Item
		sum  *product.Summary
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked product.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&locked, in.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("商品不存在。")
			}
			return err
		}
		if locked.Stock < in.Quantity {
			return apperr.BadRequest(fmt.Sprintf("商品「%s」库存不足，仅剩 %d 件。", locked.Name, locked.Stock))
		}
		locked.Stock -= in.Quantity
		locked.Status = product.StatusForStock(locked.Stock)
		if err := tx.Save(&locked).Error; err != nil {
			return err
		}

		o = order.Order{
			UserID:          seller.ID,
			TotalAmount:     locked.Price * in.Quantity,
			ShippingAddress: "Venda Local",
			PaymentMethod:   order.PaymentPix,
			Status:          order.StatusDelivered,
		}
		if err := tx.Create(&o).Error; err != nil {
			return err
		}
		item = order.Item{
			OrderID:   o.ID,
			ProductID: locked.ID,
			Quantity:  in.Quantity,
			Price:     locked.Price,
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		sum = locked.Summarize()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateProduct(in.ProductID)

	return &OrderView{
		Order: o,
		Items: []ItemView{{ID: item.ID, ProductID: item.ProductID, Quantity: item.Quantity, Price: item.Price, Product: sum}},
	}, nil
}

// Cancel 取消订单并回补库存，买家本人或管理员可操作
func (s *OrderService) Cancel(ctx context.Context, actor *user.User, orderID int64) (*order.Order, error) {
	o, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != actor.ID && !actor.IsAdmin() {
		return nil, apperr.Forbidden("只能取消自己的订单。")
	}
	if o.Status == order.StatusCancelled {
		return nil, apperr.Conflict("订单已取消。")
	}
	if o.Status == order.StatusDelivered {
		return nil, apperr.BadRequest("已签收的订单不能取消。")
	}
	if err := s.cancelTx(ctx, orderID); err != nil {
		return nil, err
	}
	o.Status = order.StatusCancelled
	return o, nil
}

// cancelTx 事务内重新校验状态并回补库存，防止并发重复取消
func (s *OrderService) cancelTx(ctx context.Context, orderID int64) error {
	var restocked []int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o order.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&o, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("订单不存在。")
			}
			return err
		}
		if o.Status == order.StatusCancelled {
			return apperr.Conflict("订单已取消。")
		}
		if o.Status == order.StatusDelivered {
			return apperr.BadRequest("已签收的订单不能取消。")
		}

		var items []order.Item
		if err := tx.Where("order_id = ?", orderID).
			Order("product_id").Find(&items).Error; err != nil {
			return err
		}
		for _, it := range items {
			var p product.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&p, it.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// 商品已被删除，库存无处可补
					continue
				}
				return err
			}
			p.Stock += it.Quantity
			p.Status = product.StatusForStock(p.Stock)
			if err := tx.Save(&p).Error; err != nil {
				return err
			}
			restocked = append(restocked, p.ID)
		}

		return tx.Model(&order.Order{}).Where("id = ?", orderID).
			Update("status", order.StatusCancelled).Error
	})
	if err != nil {
		return err
	}
	for _, id := range restocked {
		s.invalidateProduct(id)
	}
	return nil
}

// UpdateStatus 管理端变更订单状态，改为 cancelled 时走回补库存的取消流程
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, status string) (*order.Order, error) {
	if !order.ValidStatus(status) {
		return nil, apperr.BadRequest("订单状态无效。")
	}
	o, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if status == order.StatusCancelled {
		if o.Status == order.StatusCancelled {
			return nil, apperr.Conflict("订单已取消。")
		}
		if o.Status == order.StatusDelivered {
			return nil, apperr.BadRequest("已签收的订单不能取消。")
		}
		if err := s.cancelTx(ctx, orderID); err != nil {
			return nil, err
		}
		o.Status = order.StatusCancelled
		return o, nil
	}
	if !order.CanTransition(o.Status, status) {
		return nil, apperr.BadRequest(fmt.Sprintf("订单状态不能从 %s 变更为 %s。", o.Status, status))
	}
	if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	o.Status = status
	return o, nil
}

// SellerUpdateStatus 卖家推进发货或签收，仅限含自己商品的订单
func (s *OrderService) SellerUpdateStatus(ctx context.Context, seller *user.User, orderID int64, status string) (*order.Order, error) {
	if !order.ValidStatus(status) {
		return nil, apperr.BadRequest("订单状态无效。")
	}
	o, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	ok, err := s.repo.SellerHasItems(ctx, orderID, seller.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Forbidden("该订单不包含您的商品。")
	}
	if !order.SellerCanTransition(o.Status, status) {
		return nil, apperr.BadRequest(fmt.Sprintf("订单状态不能从 %s 变更为 %s。", o.Status, status))
	}
	if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	o.Status = status
	return o, nil
}

// ListMyOrders 买家的订单列表，含明细与商品摘要
func (s *OrderService) ListMyOrders(ctx context.Context, buyer *user.User) ([]OrderView, error) {
	orders, err := s.repo.ListByBuyer(ctx, buyer.ID)
	if err != nil {
		return nil, err
	}
	return s.assembleViews(ctx, orders, 0, false)
}

// GetOrder 订单详情，买家本人或管理员可看，管理端附带买家信息
func (s *OrderService) GetOrder(ctx context.Context, actor *user.User, orderID int64) (*OrderView, error) {
	o, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != actor.ID && !actor.IsAdmin() {
		return nil, apperr.Forbidden("只能查看自己的订单。")
	}
	views, err := s.assembleViews(ctx, []*order.Order{o}, 0, actor.IsAdmin())
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListSellerOrders 卖家视角的订单列表，明细只含该卖家的商品
func (s *OrderService) ListSellerOrders(ctx context.Context, seller *user.User) ([]OrderView, error) {
	ids, err := s.repo.ListIDsBySeller(ctx, seller.ID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []OrderView{}, nil
	}
	orders, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	// 保持新订单在前的顺序
	byID := make(map[int64]*order.Order, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}
	sorted := make([]*order.Order, 0, len(ids))
	for _, id := range ids {
		if o, ok := byID[id]; ok {
			sorted = append(sorted, o)
		}
	}
	return s.assembleViews(ctx, sorted, seller.ID, true)
}

// SaleRow 管理端销售流水的扁平行，每个订单明细一行
type SaleRow struct {
	ID          string `json:"id"` // "<orderID>-<productID>"
	OrderID     int64  `json:"orderId"`
	Date        string `json:"date"`
	Status      string `json:"status"`
	BuyerName   string `json:"buyerName"`
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	SellerID    int64  `json:"sellerId"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unitPrice"`
	Subtotal    int64  `json:"subtotal"`
}

// AdminSales 全站销售流水，按明细摊平
func (s *OrderService) AdminSales(ctx context.Context) ([]SaleRow, error) {
	orders, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return []SaleRow{}, nil
	}
	orderIDs := make([]int64, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
	}
	items, err := s.repo.ListItemsByOrders(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	products, err := s.productsByItems(ctx, items)
	if err != nil {
		return nil, err
	}
	buyers, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	buyerName := make(map[int64]string, len(buyers))
	for _, u := range buyers {
		buyerName[u.ID] = u.Name
	}
	orderByID := make(map[int64]*order.Order, len(orders))
	for _, o := range orders {
		orderByID[o.ID] = o
	}

	rows := make([]SaleRow, 0, len(items))
	for _, it := range items {
		o := orderByID[it.OrderID]
		if o == nil {
			continue
		}
		row := SaleRow{
			ID:        fmt.Sprintf("%d-%d", it.OrderID, it.ProductID),
			OrderID:   it.OrderID,
			Date:      o.CreatedAt.Format("2006-01-02 15:04:05"),
			Status:    o.Status,
			BuyerName: buyerName[o.UserID],
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
			Subtotal:  it.Price * it.Quantity,
		}
		if p := products[it.ProductID]; p != nil {
			row.ProductName = p.Name
			row.SellerID = p.UserID
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *OrderService) getOrder(ctx context.Context, id int64) (*order.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("订单不存在。")
		}
		return nil, err
	}
	return o, nil
}

// assembleViews 批量拼装订单视图；sellerID 非零时只保留该卖家的明细，
// withBuyer 为真时附带买家信息。
func (s *OrderService) assembleViews(ctx context.Context, orders []*order.Order, sellerID int64, withBuyer bool) ([]OrderView, error) {
	if len(orders) == 0 {
		return []OrderView{}, nil
	}
	orderIDs := make([]int64, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
	}
	items, err := s.repo.ListItemsByOrders(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	products, err := s.productsByItems(ctx, items)
	if err != nil {
		return nil, err
	}
	itemsByOrder := make(map[int64][]ItemView, len(orders))
	for _, it := range items {
		p := products[it.ProductID]
		if sellerID != 0 && (p == nil || p.UserID != sellerID) {
			continue
		}
		iv := ItemView{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		}
		if p != nil {
			iv.Product = p.Summarize()
		}
		itemsByOrder[it.OrderID] = append(itemsByOrder[it.OrderID], iv)
	}

	buyers := make(map[int64]*BuyerInfo)
	if withBuyer {
		for _, o := range orders {
			if _, ok := buyers[o.UserID]; ok {
				continue
			}
			u, err := s.users.GetByID(ctx, o.UserID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return nil, err
			}
			buyers[o.UserID] = &BuyerInfo{ID: u.ID, Name: u.Name, Email: u.Email}
		}
	}

	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		v := OrderView{Order: *o, Items: itemsByOrder[o.ID]}
		if v.Items == nil {
			v.Items = []ItemView{}
		}
		if withBuyer {
			v.Buyer = buyers[o.UserID]
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *OrderService) productsByItems(ctx context.Context, items []*order.Item) (map[int64]*product.Product, error) {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	if len(ids) == 0 {
		return map[int64]*product.Product{}, nil
	}
	list, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]*product.Product, len(list))
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}

func (s *OrderService) invalidateProduct(id int64) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Do(radix.Cmd(nil, "DEL", productCacheKey(id))); err != nil {
		GetMonitor().RecordRedisError()
	}
}

// publishOrderEvent 提交后发布，失败只记日志，不影响下单结果
func (s *OrderService) publishOrderEvent(ctx context.Context, o *order.Order, sellerSet map[int64]struct{}) {
	if s.publisher == nil {
		return
	}
	sellerIDs := make([]int64, 0, len(sellerSet))
	for id := range sellerSet {
		sellerIDs = append(sellerIDs, id)
	}
	sort.Slice(sellerIDs, func(i, j int) bool { return sellerIDs[i] < sellerIDs[j] })
	ev := mq.OrderEvent{
		OrderID:     o.ID,
		BuyerID:     o.UserID,
		TotalAmount: o.TotalAmount,
		SellerIDs:   sellerIDs,
	}
	if err := s.publisher.PublishOrderEvent(ctx, ev); err != nil {
		GetMonitor().RecordMQError()
		zap.L().Warn("publish order event failed", zap.Int64("order_id", o.ID), zap.Error(err))
	}
}
