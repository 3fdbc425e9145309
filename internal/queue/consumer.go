package queue

import (
	"context"
	"encoding/json"
	"log"

	"sneaker_shop/internal/order"

	"github.com/segmentio/kafka-go"
)

// Consumer 消费订单确认事件并模拟发送邮件。
// 这里只打日志占位，不接真实邮件网关，也不做送达确认。
type Consumer struct {
	r *kafka.Reader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	return &Consumer{
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1e3,
			MaxBytes: 1e6,
		}),
	}
}

func (c *Consumer) Close() error { return c.r.Close() }

func (c *Consumer) Run(ctx context.Context) {
	for {
		m, err := c.r.ReadMessage(ctx)
		if err != nil {
			return // ctx cancel / 连接断开等
		}

		var msg order.Confirmation
		if err := json.Unmarshal(m.Value, &msg); err != nil {
			log.Printf("mailer unmarshal: %v", err)
			continue
		}
		if msg.OrderNo == "" || msg.Email == "" {
			// 脏消息直接丢弃，避免阻塞消费。
			log.Printf("mailer skip message with empty order_no/email")
			continue
		}

		// 模拟发信
		log.Printf("[mailer] confirmation email to %s: order %s, total %s",
			msg.Email, msg.OrderNo, msg.TotalAmount)
	}
}
