package server

import (
	"strconv"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/mediocregopher/radix/v3"
	"gorm.io/gorm"

	"github.com/example/gomarket/internal/auth"
	"github.com/example/gomarket/internal/config"
	"github.com/example/gomarket/internal/datamodels/user"
	"github.com/example/gomarket/internal/middleware"
	"github.com/example/gomarket/internal/repository/mysql"
	"github.com/example/gomarket/internal/service"
	"github.com/example/gomarket/internal/upload"
)

// Deps 路由依赖，由 main 初始化后传入；Redis 与 Publisher 可为 nil（降级运行）
type Deps struct {
	DB        *gorm.DB
	Redis     radix.Client
	Publisher service.OrderEventPublisher
	Images    *upload.Store
}

// RegisterRoutes 注册所有 HTTP 路由
func RegisterRoutes(app *iris.Application, cfg *config.Config, deps Deps) {
	userRepo := mysql.NewUserRepository(deps.DB)
	categoryRepo := mysql.NewCategoryRepository(deps.DB)
	productRepo := mysql.NewProductRepository(deps.DB)
	orderRepo := mysql.NewOrderRepository(deps.DB)
	reviewRepo := mysql.NewReviewRepository(deps.DB)
	notificationRepo := mysql.NewNotificationRepository(deps.DB)

	userSvc := service.NewUserService(userRepo, &cfg.JWT)
	categorySvc := service.NewCategoryService(categoryRepo)
	productSvc := service.NewProductService(productRepo, categoryRepo, deps.Redis, deps.Images)
	orderSvc := service.NewOrderService(deps.DB, orderRepo, productRepo, userRepo, deps.Publisher, deps.Redis)
	reviewSvc := service.NewReviewService(reviewRepo, productRepo)
	notificationSvc := service.NewNotificationService(notificationRepo, userRepo)

	tokenCache := auth.NewTokenCache(deps.Redis, time.Duration(cfg.JWT.CacheTTLSeconds)*time.Second)
	authed := middleware.Authenticate(&cfg.JWT, tokenCache, userRepo)
	adminOnly := middleware.RequireRoles(user.RoleAdmin)
	sellerOrAdmin := middleware.RequireRoles(user.RoleSeller, user.RoleAdmin)

	// 商品图片静态访问
	app.HandleDir("/uploads", iris.Dir(cfg.Upload.Dir))

	api := app.Party("/api")

	// 健康检查
	api.Get("/health", func(ctx iris.Context) {
		_ = ctx.JSON(iris.Map{"status": "success", "data": iris.Map{"health": "ok"}})
	})

	// 监控指标，仅管理员可见
	api.Get("/stats", authed, adminOnly, func(ctx iris.Context) {
		success(ctx, iris.StatusOK, "stats", service.GetMonitor().Snapshot())
	})

	registerAuthRoutes(api, userSvc)
	registerUserRoutes(api, userSvc, authed, adminOnly)
	registerCatalogRoutes(api, categorySvc, productSvc, reviewSvc, authed, adminOnly, sellerOrAdmin)
	registerOrderRoutes(api, orderSvc, notificationSvc, authed, adminOnly, sellerOrAdmin)
}

func registerAuthRoutes(api iris.Party, userSvc *service.UserService) {
	// 注册/登录限流，防撞库
	authAPI := api.Party("/auth", middleware.AuthRateLimit())

	authAPI.Post("/register", func(ctx iris.Context) {
		var req service.RegisterInput
		if err := ctx.ReadJSON(&req); err != nil {
			fail(ctx, err)
			return
		}
		u, token, err := userSvc.Register(ctx.Request().Context(), req)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.StatusCode(iris.StatusCreated)
		_ = ctx.JSON(iris.Map{
			"status": "success",
			"token":  token,
			"data":   iris.Map{"user": u},
		})
	})

	authAPI.Post("/login", func(ctx iris.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			fail(ctx, err)
			return
		}
		u, token, err := userSvc.Login(ctx.Request().Context(), req.Email, req.Password)
		if err != nil {
			fail(ctx, err)
			return
		}
		_ = ctx.JSON(iris.Map{
			"status": "success",
			"token":  token,
			"data":   iris.Map{"user": u},
		})
	})
}

func registerUserRoutes(api iris.Party, userSvc *service.UserService, authed, adminOnly iris.Handler) {
	users := api.Party("/users")

	users.Get("/me", authed, func(ctx iris.Context) {
		success(ctx, iris.StatusOK, "user", middleware.CurrentUser(ctx))
	})
	users.Patch("/updateMe", authed, func(ctx iris.Context) {
		var req service.UpdateMeInput
		if err := ctx.ReadJSON(&req); err != nil {
			fail(ctx, err)
			return
		}
		u, err := userSvc.UpdateMe(ctx.Request().Context(), middleware.CurrentUser(ctx), req)
		if err != nil {
			fail(ctx, err)
			return
		}
		success(ctx, iris.StatusOK, "user", u)
	})
	users.Patch("/updateMyPassword", authed, func(ctx iris.Context) {
		var req struct {
			CurrentPassword string `json:"currentPassword"`
			NewPassword     string `json:"newPassword"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			fail(ctx, err)
			return
		}
		if err := userSvc.UpdatePassword(ctx.Request().Context(), middleware.CurrentUser(ctx), req.CurrentPassword, req.NewPassword); err != nil {
			fail(ctx, err)
			return
		}
		success(ctx, iris.StatusOK, "user", middleware.CurrentUser(ctx))
	})
	users.Delete("/deleteMe", authed, func(ctx iris.Context) {
		if err := userSvc.DeleteMe(ctx.Request().Context(), middleware.CurrentUser(ctx)); err != nil {
			fail(ctx, err)
			return
		}
		ctx.StatusCode(iris.StatusNoContent)
	})

	// 管理端用户接口
	users.Get("/", authed, adminOnly, func(ctx iris.Context) {
		list, err := userSvc.ListUsers(ctx.Request().Context(), ctx.URLParam("role"))
		if err != nil {
			fail(ctx, err)
			return
		}
		successList(ctx, "users", list, len(list))
	})
	users.Get("/{id:int64}", authed, adminOnly, func(ctx iris.Context) {
		u, err := userSvc.GetUser(ctx.Request().Context(), paramInt64(ctx, "id"))
		if err != nil {
			fail(ctx, err)
			return
		}
		success(ctx, iris.StatusOK, "user", u)
	})
	users.Patch("/{id:int64}", authed, adminOnly, func(ctx iris.Context) {
		var req service.AdminUpdateUserInput
		if err := ctx.ReadJSON(&req); err != nil {
			fail(ctx, err)
			return
		}
		u, err := userSvc.AdminUpdateUser(ctx.Request().Context(), middleware.CurrentUser(ctx), paramInt64(ctx, "id"), req)
		if err != nil {
			fail(ctx, err)
			return
		}
		success(ctx, iris.StatusOK, "user", u)
	})
	users.Delete("/{id:int64}", authed, adminOnly, func(ctx iris.Context) {
		if err := userSvc.AdminDeleteUser(ctx.Request().Context(), middleware.CurrentUser(ctx), paramInt64(ctx, "id")); err != nil {
			fail(ctx, err)
			return
		}
		ctx.StatusCode(iris.StatusNoContent)
	})
}

// paramInt64 路径参数快捷读取
func paramInt64(ctx iris.Context, name string) int64 {
	v, _ := strconv.ParseInt(ctx.Params().Get(name), 10, 64)
	return v
}
