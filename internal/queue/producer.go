package queue

import (
	"context"
	"encoding/json"
	"time"

	"sneaker_shop/internal/order"

	"github.com/segmentio/kafka-go"
)

// Producer 封装 Kafka 写入器，实现 order.Notifier。
type Producer struct {
	w *kafka.Writer
}

// NewProducer 创建生产者并配置可靠性参数：
// - Hash + Key: 相同订单号尽量落到同一分区。
// - RequireAll: 等待 ISR 副本确认，降低消息丢失风险。
// - MaxAttempts/Timeout: 控制重试与超时边界。
// 注意：发布失败最终由调用方（结算流水线）记日志吞掉，
// 通知本身就是尽力而为，不保证送达。
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			MaxAttempts:  5,
			WriteTimeout: 5 * time.Second,
			ReadTimeout:  5 * time.Second,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

// Close 释放 writer 资源。
func (p *Producer) Close() error { return p.w.Close() }

// OrderConfirmed 同步写入一条订单确认事件，key 取订单号。
func (p *Producer) OrderConfirmed(ctx context.Context, c order.Confirmation) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(c.OrderNo),
		Value: b,
	})
}
