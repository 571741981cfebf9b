package main

import (
	"context"
	"log"

	"github.com/kataras/iris/v12"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/example/gomarket/internal/config"
	"github.com/example/gomarket/internal/infra/mq"
	"github.com/example/gomarket/internal/infra/redis"
	"github.com/example/gomarket/internal/logger"
	"github.com/example/gomarket/internal/repository/mysql"
	"github.com/example/gomarket/internal/server"
	"github.com/example/gomarket/internal/service"
	"github.com/example/gomarket/internal/upload"
)

func main() {
	cfg, err := config.Load("./config")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger.Init(false)

	db, err := mysql.Open(&cfg.MySQL)
	if err != nil {
		zap.L().Fatal("failed to connect mysql", zap.Error(err))
	}

	deps := server.Deps{
		DB:     db,
		Images: upload.NewStore(cfg.Upload.Dir),
	}

	// Redis 与 MQ 连不上时降级运行：缓存与通知停摆，下单照常
	if rc, err := redis.Connect(&cfg.Redis); err != nil {
		zap.L().Warn("redis unavailable, cache disabled", zap.Error(err))
	} else {
		deps.Redis = rc
	}
	if conn, err := mq.Connect(&cfg.RabbitMQ); err != nil {
		zap.L().Warn("rabbitmq unavailable, order events disabled", zap.Error(err))
	} else {
		pub, err := mq.NewPublisher(conn)
		if err != nil {
			zap.L().Warn("failed to open mq channel, order events disabled", zap.Error(err))
		} else {
			deps.Publisher = pub
		}
	}

	// 每小时按库存校正商品上下架状态
	productSvc := service.NewProductService(mysql.NewProductRepository(db), mysql.NewCategoryRepository(db), deps.Redis, deps.Images)
	c := cron.New()
	if _, err := c.AddFunc("@hourly", func() {
		if err := productSvc.ReconcileStatus(context.Background()); err != nil {
			zap.L().Error("reconcile product status failed", zap.Error(err))
		}
	}); err != nil {
		zap.L().Fatal("failed to schedule reconcile job", zap.Error(err))
	}
	c.Start()
	defer c.Stop()

	app := iris.New()
	server.RegisterRoutes(app, cfg, deps)

	addr := cfg.Server.Addr()
	zap.L().Info("web server listening", zap.String("addr", addr))
	if err := app.Run(iris.Addr(addr), iris.WithOptimizations, iris.WithoutServerError(iris.ErrServerClosed)); err != nil {
		zap.L().Fatal("failed to run web server", zap.Error(err))
	}
}
