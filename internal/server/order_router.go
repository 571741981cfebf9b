package server

import (
	"github.com/kataras/iris/v12"

	"github.com/example/gomarket/internal/middleware"
	"github.com/example/gomarket/internal/service"
)

// registerOrderRoutes 订单与通知路由
func registerOrderRoutes(api iris.Party, orderSvc *service.OrderService, notificationSvc *service.NotificationService, authed, adminOnly, sellerOrAdmin iris.Handler) {
	orders := api.Party("/orders", authed)

	// 购物车下单
	orders.Post("/checkout", func(ctx iris.Context) {
		var req service.CheckoutInput
		if err := ctx.ReadJSON(&req); err != nil {
			fail(ctx, err)
			return
		}
		v, err := orderSvc.Checkout(ctx.Request().Context(), middleware.CurrentUser(ctx), req)
		if err != nil {
			fail(ctx, err)
			return
		}
		success(ctx, iris.StatusCreated, "order", v)
	})

	// 卖家登记线下成交
	orders.Post("/", sellerOrAdmin, func(ctx iris.Context) {
		var req service.DirectSaleInput
		if err := ctx.ReadJSON(&req); err != nil {
			fail(ctx, err)
			return
		}
		v, err := orderSvc.DirectSale(ctx.Request().Context(), middleware.CurrentUser(ctx), req)
		if err != nil {
			fail(ctx, err)
			return
		}
		success(ctx, iris.StatusCreated, "order", v)
	})

	// 管理端销售流水，按明细摊平
	orders.Get("/", adminOnly, func(ctx iris.Context) {
		rows, err := orderSvc.AdminSales(ctx.Request().Context())
		if err != nil {
			fail(ctx, err)
			return
		}
		successList(ctx, "sales", rows, len(rows))
	})

	// 当前买家的订单
	orders.Get("/my-orders", func(ctx iris.Context) {
		list, err := orderSvc.ListMyOrders(ctx.Request().Context(), middleware.CurrentUser(ctx))
		if err != nil {
			fail(ctx, err)
			return
		}
		successList(ctx, "orders", list, len(list))
	})

	// 卖家视角的订单（只含自己商品的明细）
	orders.Get("/seller", sellerOrAdmin, func(ctx iris.Context) {
		list, err := orderSvc.ListSellerOrders(ctx.Request().Context(), middleware.CurrentUser(ctx))
		if err != nil {
			fail(ctx, err)
			return
		}
		successList(ctx, "orders", list, len(list))
	})

	orders.Get("/{id:int64}", func(ctx iris.Context) {
		v, err := orderSvc.GetOrder(ctx.Request().Context(), middleware.CurrentUser(ctx), paramInt64(ctx, "id"))
		if err != nil {
			fail(ctx, err)
			return
		}
		success(ctx, iris.StatusOK, "order", v)
	})

	// 取消订单并回补库存
	orders.Patch("/{id:int64}/cancel", func(ctx iris.Context) {
		o, err := orderSvc.Cancel(ctx.Request().Context(), middleware.CurrentUser(ctx), paramInt64(ctx, "id"))
		if err != nil {
			fail(ctx, err)
			return
		}
		success(ctx, iris.StatusOK, "order", o)
	})

	// 卖家推进发货/签收
	orders.Patch("/{id:int64}/seller-status", sellerOrAdmin, func(ctx iris.Context) {
		var req struct {
			Status string `json:"status"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			fail(ctx, err)
			return
		}
		o, err := orderSvc.SellerUpdateStatus(ctx.Request().Context(), middleware.CurrentUser(ctx), paramInt64(ctx, "id"), req.Status)
		if err != nil {
			fail(ctx, err)
			return
		}
		success(ctx, iris.StatusOK, "order", o)
	})

	// 管理端变更订单状态
	orders.Patch("/{id:int64}/status", adminOnly, func(ctx iris.Context) {
		var req struct {
			Status string `json:"status"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			fail(ctx, err)
			return
		}
		o, err := orderSvc.UpdateStatus(ctx.Request().Context(), paramInt64(ctx, "id"), req.Status)
		if err != nil {
			fail(ctx, err)
			return
		}
		success(ctx, iris.StatusOK, "order", o)
	})

	notifications := api.Party("/notifications", authed, sellerOrAdmin)
	notifications.Get("/", func(ctx iris.Context) {
		list, err := notificationSvc.ListMine(ctx.Request().Context(), middleware.CurrentUser(ctx), ctx.URLParamIntDefault("limit", 50))
		if err != nil {
			fail(ctx, err)
			return
		}
		successList(ctx, "notifications", list, len(list))
	})
	notifications.Patch("/{id:int64}/read", func(ctx iris.Context) {
		n, err := notificationSvc.MarkRead(ctx.Request().Context(), middleware.CurrentUser(ctx), paramInt64(ctx, "id"))
		if err != nil {
			fail(ctx, err)
			return
		}
		success(ctx, iris.StatusOK, "notification", n)
	})
}
