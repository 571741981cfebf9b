package main

import (
	"context"
	"encoding/json"
	"log"

	"go.uber.org/zap"

	"github.com/example/gomarket/internal/config"
	"github.com/example/gomarket/internal/infra/mq"
	"github.com/example/gomarket/internal/logger"
	"github.com/example/gomarket/internal/repository/mysql"
	"github.com/example/gomarket/internal/service"
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
	conn, err := mq.Connect(&cfg.RabbitMQ)
	if err != nil {
		zap.L().Fatal("failed to connect rabbitmq", zap.Error(err))
	}
	defer conn.Close()

	notificationSvc := service.NewNotificationService(
		mysql.NewNotificationRepository(db),
		mysql.NewUserRepository(db),
	)

	ch, err := conn.Channel()
	if err != nil {
		zap.L().Fatal("failed to open channel", zap.Error(err))
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(mq.OrderEventsQueue, true, false, false, false, nil); err != nil {
		zap.L().Fatal("failed to declare queue", zap.Error(err))
	}

	// 手动确认模式，处理失败的消息重新入队
	msgs, err := ch.Consume(mq.OrderEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		zap.L().Fatal("failed to consume", zap.Error(err))
	}

	zap.L().Info("notify worker started, waiting for order events")

	for d := range msgs {
		var ev mq.OrderEvent
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			zap.L().Warn("invalid message, dropping", zap.Error(err))
			// 消息格式错误，拒绝并丢弃
			_ = d.Nack(false, false)
			continue
		}
		if err := notificationSvc.CreateForOrder(context.Background(), ev); err != nil {
			service.GetMonitor().RecordWorkerFailed()
			zap.L().Error("create notifications failed, requeue",
				zap.Int64("order_id", ev.OrderID), zap.Error(err))
			_ = d.Nack(false, true)
			continue
		}
		service.GetMonitor().RecordWorkerProcessed()
		_ = d.Ack(false)
	}
}
