package mq

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/example/gomarket/internal/config"
)

// OrderEventsQueue 订单事件队列，下单后投递、通知 worker 消费
const OrderEventsQueue = "order_events"

// OrderEvent 订单创建事件，消费端按 (收件人, 订单) 幂等落库
type OrderEvent struct {
	OrderID     int64   `json:"order_id"`
	BuyerID     int64   `json:"buyer_id"`
	TotalAmount int64   `json:"total_amount"`
	SellerIDs   []int64 `json:"seller_ids"`
}

// Connect 建立 RabbitMQ 连接，句柄由调用方往下传
func Connect(cfg *config.RabbitMQConfig) (*amqp.Connection, error) {
	return amqp.Dial(cfg.URL)
}

// Publisher 订单事件发布端
type Publisher struct {
	ch *amqp.Channel
}

// NewPublisher 打开发布通道并声明队列
func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(OrderEventsQueue, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, err
	}
	return &Publisher{ch: ch}, nil
}

// PublishOrderEvent 投递订单事件（持久化消息）
func (p *Publisher) PublishOrderEvent(ctx context.Context, ev OrderEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, "", OrderEventsQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// Close 关闭发布通道
func (p *Publisher) Close() error {
	return p.ch.Close()
}
