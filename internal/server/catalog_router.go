package server

import (
	"strconv"
	"strings"

	"github.com/kataras/iris/v12"

	"github.com/example/gomarket/internal/datamodels/product"
	"github.com/example/gomarket/internal/middleware"
	"github.com/example/gomarket/internal/service"
)

// registerCatalogRoutes 分类、商品与评价路由
func registerCatalogRoutes(api iris.Party, categorySvc *service.CategoryService, productSvc *service.ProductService, reviewSvc *service.ReviewService, authed, adminOnly, sellerOrAdmin iris.Handler) {
	categories := api.Party("/categories")

	categories.Get("/", func(ctx iris.Context) {
		list, err := categorySvc.List(ctx.Request().Context())
		if err != nil {
			fail(ctx, err)
			return
		}
		successList(ctx, "categories", list, len(list))
	})
	categories.Get("/{id:int64}", func(ctx iris.Context) {
		c, err := categorySvc.Get(ctx.Request().Context(), paramInt64(ctx, "id"))
		if err != nil {
			fail(ctx, err)
			return
		}
		success(ctx, iris.StatusOK, "category", c)
	})
	categories.Post("/", authed, adminOnly, func(ctx iris.Context) {
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			fail(ctx, err)
			return
		}
		c, err := categorySvc.Create(ctx.Request().Context(), req.Name, req.Description)
		if err != nil {
			fail(ctx, err)
			return
		}
		success(ctx, iris.StatusCreated, "category", c)
	})
	categories.Patch("/{id:int64}", authed, adminOnly, func(ctx iris.Context) {
		var req struct {
			Name        *string `json:"name"`
			Description *string `json:"description"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			fail(ctx, err)
			return
		}
		c, err := categorySvc.Update(ctx.Request().Context(), paramInt64(ctx, "id"), req.Name, req.Description)
		if err != nil {
			fail(ctx, err)
			return
		}
		success(ctx, iris.StatusOK, "category", c)
	})
	categories.Delete("/{id:int64}", authed, adminOnly, func(ctx iris.Context) {
		if err := categorySvc.Delete(ctx.Request().Context(), paramInt64(ctx, "id")); err != nil {
			fail(ctx, err)
			return
		}
		ctx.StatusCode(iris.StatusNoContent)
	})

	products := api.Party("/products")

	products.Get("/", func(ctx iris.Context) {
		f := parseProductFilter(ctx)
		list, total, err := productSvc.List(ctx.Request().Context(), f)
		if err != nil {
			fail(ctx, err)
			return
		}
		_ = ctx.JSON(iris.Map{
			"status":  "success",
			"results": len(list),
			"total":   total,
			"page":    f.Page,
			"data":    iris.Map{"products": list},
		})
	})

	// 当前卖家的商品
	products.Get("/my", authed, sellerOrAdmin, func(ctx iris.Context) {
		list, err := productSvc.ListBySeller(ctx.Request().Context(), middleware.CurrentUser(ctx).ID)
		if err != nil {
			fail(ctx, err)
			return
		}
		successList(ctx, "products", list, len(list))
	})

	products.Get("/{id:int64}", func(ctx iris.Context) {
		p, err := productSvc.Get(ctx.Request().Context(), paramInt64(ctx, "id"))
		if err != nil {
			fail(ctx, err)
			return
		}
		success(ctx, iris.StatusOK, "product", p)
	})

	products.Post("/", authed, sellerOrAdmin, func(ctx iris.Context) {
		in, err := readProductForm(ctx, productSvc)
		if err != nil {
			fail(ctx, err)
			return
		}
		p, err := productSvc.Create(ctx.Request().Context(), middleware.CurrentUser(ctx), *in)
		if err != nil {
			fail(ctx, err)
			return
		}
		success(ctx, iris.StatusCreated, "product", p)
	})
	products.Patch("/{id:int64}", authed, sellerOrAdmin, func(ctx iris.Context) {
		var req service.UpdateProductInput
		if err := readProductUpdate(ctx, productSvc, &req); err != nil {
			fail(ctx, err)
			return
		}
		p, err := productSvc.Update(ctx.Request().Context(), middleware.CurrentUser(ctx), paramInt64(ctx, "id"), req)
		if err != nil {
			fail(ctx, err)
			return
		}
		success(ctx, iris.StatusOK, "product", p)
	})
	products.Delete("/{id:int64}", authed, sellerOrAdmin, func(ctx iris.Context) {
		if err := productSvc.Delete(ctx.Request().Context(), middleware.CurrentUser(ctx), paramInt64(ctx, "id")); err != nil {
			fail(ctx, err)
			return
		}
		ctx.StatusCode(iris.StatusNoContent)
	})

	// 某商品的评价
	products.Get("/{id:int64}/reviews", func(ctx iris.Context) {
		list, err := reviewSvc.ListByProduct(ctx.Request().Context(), paramInt64(ctx, "id"))
		if err != nil {
			fail(ctx, err)
			return
		}
		successList(ctx, "reviews", list, len(list))
	})

	reviews := api.Party("/reviews")

	reviews.Get("/", func(ctx iris.Context) {
		list, err := reviewSvc.ListAll(ctx.Request().Context())
		if err != nil {
			fail(ctx, err)
			return
		}
		successList(ctx, "reviews", list, len(list))
	})
	reviews.Get("/{id:int64}", func(ctx iris.Context) {
		r, err := reviewSvc.Get(ctx.Request().Context(), paramInt64(ctx, "id"))
		if err != nil {
			fail(ctx, err)
			return
		}
		success(ctx, iris.StatusOK, "review", r)
	})
	reviews.Post("/", authed, func(ctx iris.Context) {
		var req struct {
			ProductID int64  `json:"productId"`
			Rating    int    `json:"rating"`
			Review    string `json:"review"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			fail(ctx, err)
			return
		}
		r, err := reviewSvc.Create(ctx.Request().Context(), middleware.CurrentUser(ctx), req.ProductID, req.Rating, req.Review)
		if err != nil {
			fail(ctx, err)
			return
		}
		success(ctx, iris.StatusCreated, "review", r)
	})
	reviews.Patch("/{id:int64}", authed, func(ctx iris.Context) {
		var req struct {
			Rating *int    `json:"rating"`
			Review *string `json:"review"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			fail(ctx, err)
			return
		}
		r, err := reviewSvc.Update(ctx.Request().Context(), middleware.CurrentUser(ctx), paramInt64(ctx, "id"), req.Rating, req.Review)
		if err != nil {
			fail(ctx, err)
			return
		}
		success(ctx, iris.StatusOK, "review", r)
	})
	reviews.Delete("/{id:int64}", authed, func(ctx iris.Context) {
		if err := reviewSvc.Delete(ctx.Request().Context(), middleware.CurrentUser(ctx), paramInt64(ctx, "id")); err != nil {
			fail(ctx, err)
			return
		}
		ctx.StatusCode(iris.StatusNoContent)
	})
}

// parseProductFilter 解析商品列表的查询参数。
// 排序形如 sort=-price,name；价格单位为分。
func parseProductFilter(ctx iris.Context) product.ListFilter {
	f := product.ListFilter{
		Name:   ctx.URLParam("name"),
		Status: ctx.URLParam("status"),
		Sort:   ctx.URLParam("sort"),
		Page:   ctx.URLParamIntDefault("page", 1),
		Limit:  ctx.URLParamIntDefault("limit", 100),
	}
	f.CategoryID, _ = strconv.ParseInt(ctx.URLParam("categoryId"), 10, 64)
	f.PriceGTE, _ = strconv.ParseInt(ctx.URLParam("price[gte]"), 10, 64)
	f.PriceLTE, _ = strconv.ParseInt(ctx.URLParam("price[lte]"), 10, 64)
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 500 {
		f.Limit = 100
	}
	return f
}

// readProductForm 读取新建商品请求。
// multipart 表单时 image 字段为文件，JSON 时 imageUrl 可为 base64 图片数据。
func readProductForm(ctx iris.Context, productSvc *service.ProductService) (*service.CreateProductInput, error) {
	var in service.CreateProductInput
	if strings.HasPrefix(ctx.GetContentTypeRequested(), "multipart/form-data") {
		in.Name = ctx.FormValue("name")
		in.Description = ctx.FormValue("description")
		in.Unit = ctx.FormValue("unit")
		in.Price, _ = strconv.ParseInt(ctx.FormValue("price"), 10, 64)
		in.Stock, _ = strconv.ParseInt(ctx.FormValue("stock"), 10, 64)
		in.CategoryID, _ = strconv.ParseInt(ctx.FormValue("categoryId"), 10, 64)
		if _, fh, err := ctx.FormFile("image"); err == nil && fh != nil {
			url, err := productSvc.SaveImageMultipart(fh)
			if err != nil {
				return nil, err
			}
			in.ImageURL = url
		}
		return &in, nil
	}
	if err := ctx.ReadJSON(&in); err != nil {
		return nil, err
	}
	if strings.HasPrefix(in.ImageURL, "data:image/") {
		url, err := productSvc.SaveImageBase64(in.ImageURL)
		if err != nil {
			return nil, err
		}
		in.ImageURL = url
	}
	return &in, nil
}

// readProductUpdate 同 readProductForm，但所有字段可选
func readProductUpdate(ctx iris.Context, productSvc *service.ProductService, in *service.UpdateProductInput) error {
	if strings.HasPrefix(ctx.GetContentTypeRequested(), "multipart/form-data") {
		if v := ctx.FormValue("name"); v != "" {
			in.Name = &v
		}
		if v := ctx.FormValue("description"); v != "" {
			in.Description = &v
		}
		if v := ctx.FormValue("unit"); v != "" {
			in.Unit = &v
		}
		if v := ctx.FormValue("price"); v != "" {
			n, _ := strconv.ParseInt(v, 10, 64)
			in.Price = &n
		}
		if v := ctx.FormValue("stock"); v != "" {
			n, _ := strconv.ParseInt(v, 10, 64)
			in.Stock = &n
		}
		if v := ctx.FormValue("categoryId"); v != "" {
			n, _ := strconv.ParseInt(v, 10, 64)
			in.CategoryID = &n
		}
		if _, fh, err := ctx.FormFile("image"); err == nil && fh != nil {
			url, err := productSvc.SaveImageMultipart(fh)
			if err != nil {
				return err
			}
			in.ImageURL = &url
		}
		return nil
	}
	if err := ctx.ReadJSON(in); err != nil {
		return err
	}
	if in.ImageURL != nil && strings.HasPrefix(*in.ImageURL, "data:image/") {
		url, err := productSvc.SaveImageBase64(*in.ImageURL)
		if err != nil {
			return err
		}
		in.ImageURL = &url
	}
	return nil
}
