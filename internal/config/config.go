package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig 聚合运行时配置，尽量通过环境变量注入，避免硬编码。
type AppConfig struct {
	HTTPAddr string
	DBPath   string

	RedisAddr string
	RedisDB   int

	// Kafka 集群地址（逗号分隔）与订单确认事件 Topic、消费者组
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	// 结算与登录接口限流
	CheckoutRateLimit int
	CheckoutRateWin   time.Duration
	LoginRateLimit    int
	LoginRateWin      time.Duration

	// 会话与密码
	SessionTTL time.Duration
	BcryptCost int
}

// Load 读取并校验配置，缺失时使用默认值。
// .env 文件存在时先行加载（本地开发便利，生产直接用环境变量）。
func Load() (AppConfig, error) {
	_ = godotenv.Load()

	cfg := AppConfig{
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		DBPath:            getEnv("DB_PATH", "sneaker_shop.db"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:           0,
		KafkaBrokers:      splitCSV(getEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "order-confirmations"),
		KafkaGroupID:      getEnv("KAFKA_GROUP_ID", "order-confirmation-mailer"),
		CheckoutRateLimit: 20,
		CheckoutRateWin:   time.Second,
		LoginRateLimit:    10,
		LoginRateWin:      time.Minute,
		SessionTTL:        30 * 24 * time.Hour,
		BcryptCost:        12,
	}

	redisDB, err := getEnvInt("REDIS_DB", cfg.RedisDB)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = redisDB

	checkoutLimit, err := getEnvInt("CHECKOUT_RATE_LIMIT", cfg.CheckoutRateLimit)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid CHECKOUT_RATE_LIMIT: %w", err)
	}
	if checkoutLimit <= 0 {
		return AppConfig{}, fmt.Errorf("CHECKOUT_RATE_LIMIT must be > 0")
	}
	cfg.CheckoutRateLimit = checkoutLimit

	loginLimit, err := getEnvInt("LOGIN_RATE_LIMIT", cfg.LoginRateLimit)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid LOGIN_RATE_LIMIT: %w", err)
	}
	if loginLimit <= 0 {
		return AppConfig{}, fmt.Errorf("LOGIN_RATE_LIMIT must be > 0")
	}
	cfg.LoginRateLimit = loginLimit

	sessionTTLHour, err := getEnvInt("SESSION_TTL_HOUR", int(cfg.SessionTTL.Hours()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid SESSION_TTL_HOUR: %w", err)
	}
	if sessionTTLHour <= 0 {
		return AppConfig{}, fmt.Errorf("SESSION_TTL_HOUR must be > 0")
	}
	cfg.SessionTTL = time.Duration(sessionTTLHour) * time.Hour

	bcryptCost, err := getEnvInt("BCRYPT_COST", cfg.BcryptCost)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}
	if bcryptCost < 4 || bcryptCost > 31 {
		return AppConfig{}, fmt.Errorf("BCRYPT_COST must be in [4,31]")
	}
	cfg.BcryptCost = bcryptCost

	if len(cfg.KafkaBrokers) == 0 {
		return AppConfig{}, fmt.Errorf("KAFKA_BROKERS must not be empty")
	}
	if cfg.KafkaTopic == "" {
		return AppConfig{}, fmt.Errorf("KAFKA_TOPIC must not be empty")
	}
	if cfg.KafkaGroupID == "" {
		return AppConfig{}, fmt.Errorf("KAFKA_GROUP_ID must not be empty")
	}

	return cfg, nil
}

// getEnv 读取字符串环境变量，若为空则返回默认值。
func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// getEnvInt 读取整数环境变量，若为空则返回默认值。
func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

// splitCSV 将逗号分隔字符串解析为字符串切片。
func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
