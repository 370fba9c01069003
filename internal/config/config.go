package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL string // あれば POSTGRES_* より優先

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string

	JWTSecret string // 外部認証プロバイダの署名シークレット（検証のみ）

	GoEnv         string // dev/prod
	FEURL         string // フロントURL（CORS）
	PublicBaseURL string // QRに埋めるURLのベース
	LogLevel      string

	RedisAddr     string // 空ならカートはメモリ保持
	RedisPassword string
	CartTTL       time.Duration // カートの保持期間

	KafkaBrokers     []string // 空なら通知はログのみ
	KafkaNotifyTopic string

	DeliveryFee int64 // 配達料（COP）
	TableCount  int   // テーブル数
	TableSeed   int64 // 初期テーブル選択のシード（0なら固定でテーブル1）

	CheckoutRatePerMin int // POST /orders のレート制限
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port: os.Getenv("PORT"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoEnv:         os.Getenv("GO_ENV"),
		FEURL:         os.Getenv("FE_URL"),
		PublicBaseURL: os.Getenv("PUBLIC_BASE_URL"),
		LogLevel:      getenv("LOG_LEVEL", "info"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		KafkaBrokers:     splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaNotifyTopic: getenv("KAFKA_NOTIFY_TOPIC", "order-notifications"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.DatabaseURL == "" {
		pgPort, err := mustAtoi("POSTGRES_PORT")
		if err != nil {
			return Config{}, err
		}
		cfg.PostgresPort = pgPort

		if cfg.PostgresUser == "" {
			return Config{}, fmt.Errorf("POSTGRES_USER is required")
		}
		if cfg.PostgresPassword == "" {
			return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
		}
		if cfg.PostgresDB == "" {
			return Config{}, fmt.Errorf("POSTGRES_DB is required")
		}
		if cfg.PostgresHost == "" {
			return Config{}, fmt.Errorf("POSTGRES_HOST is required")
		}
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}
	if cfg.FEURL == "" {
		return Config{}, fmt.Errorf("FE_URL is required")
	}
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = cfg.FEURL
	}

	//任意（デフォルトあり）
	var err error
	ttlHours, err := optAtoi("CART_TTL_HOURS", 72)
	if err != nil {
		return Config{}, err
	}
	cfg.CartTTL = time.Duration(ttlHours) * time.Hour

	fee, err := optAtoi("DELIVERY_FEE", 2000)
	if err != nil {
		return Config{}, err
	}
	cfg.DeliveryFee = int64(fee)

	if cfg.TableCount, err = optAtoi("TABLE_COUNT", 6); err != nil {
		return Config{}, err
	}
	seed, err := optAtoi("TABLE_SEED", 0)
	if err != nil {
		return Config{}, err
	}
	cfg.TableSeed = int64(seed)

	if cfg.CheckoutRatePerMin, err = optAtoi("CHECKOUT_RATE_PER_MIN", 10); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// DSN は gorm / pgx 共通の接続文字列
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func optAtoi(key string, def int) (int, error) {
	if os.Getenv(key) == "" {
		return def, nil
	}
	return mustAtoi(key)
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func splitList(v string) []string {
	out := []string{}
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
