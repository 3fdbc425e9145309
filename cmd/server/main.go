package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"sneaker_shop/internal/config"
	"sneaker_shop/internal/model"
	"sneaker_shop/internal/order"
	"sneaker_shop/internal/queue"
	"sneaker_shop/internal/router"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. 连接 SQLite，自动建表
	db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	// 2. Redis：限流用。连不上时降级为不限流。
	rdb := rd.NewClient(&rd.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis unavailable, rate limiting disabled: %v", err)
		rdb = nil
	}

	// 3. Kafka：订单确认事件。生产者挂到结算流水线上（尽力而为），
	//    消费者在后台模拟发确认邮件。
	producer := queue.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()

	consumer := queue.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID)
	defer consumer.Close()
	go consumer.Run(ctx)

	pipeline := order.NewPipeline(db, producer)

	r := gin.Default()
	router.Setup(r, db, rdb, pipeline, cfg)

	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("http server: %v", err)
	}
}
