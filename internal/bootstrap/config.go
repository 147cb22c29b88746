package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"lunch-picker/internal/domain"
	redisstate "lunch-picker/internal/infra/state/redis"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// 存储后端
const (
	BackendRedis    = "redis"
	BackendMySQL    = "mysql"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config 结构体用于存储从环境变量或 .env 文件加载的配置
type Config struct {
	ServerPort string
	LogLevel   string
	AppEnv     string // development / production

	StoreBackend string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string

	MySQLUser     string
	MySQLPassword string
	MySQLHost     string
	MySQLPort     string
	MySQLDB       string

	DatabaseURL string

	DayOffsetHours  int
	RateLimitMax    int
	RateLimitWindow time.Duration
	CORSOrigin      string
}

// LoadConfig 从环境变量加载配置
func LoadConfig() (*Config, error) {
	// 优先加载 .env 文件 (如果存在)
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		AppEnv:        getEnv("APP_ENV", "development"),
		StoreBackend:  getEnv("STORE_BACKEND", BackendRedis),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		KeyPrefix:     getEnv("REDIS_KEY_PREFIX", redisstate.DefaultKeyPrefix),
		MySQLUser:     os.Getenv("MYSQL_USER"),
		MySQLPassword: os.Getenv("MYSQL_PASSWORD"),
		MySQLHost:     os.Getenv("MYSQL_HOST"),
		MySQLPort:     os.Getenv("MYSQL_PORT"),
		MySQLDB:       os.Getenv("MYSQL_DB"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		CORSOrigin:    getEnv("CORS_ALLOWED_ORIGIN", "http://localhost:3000"),
	}

	var err error
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.DayOffsetHours, err = getEnvInt("DAY_KEY_UTC_OFFSET_HOURS", domain.DefaultDayOffsetHours); err != nil {
		return nil, err
	}
	if cfg.DayOffsetHours < -12 || cfg.DayOffsetHours > 14 {
		return nil, fmt.Errorf("DAY_KEY_UTC_OFFSET_HOURS out of range: %d", cfg.DayOffsetHours)
	}
	if cfg.RateLimitMax, err = getEnvInt("RATE_LIMIT_MAX", 100); err != nil {
		return nil, err
	}
	windowSeconds, err := getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 1)
	if err != nil {
		return nil, err
	}
	cfg.RateLimitWindow = time.Duration(windowSeconds) * time.Second
	if cfg.RateLimitMax <= 0 || cfg.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("rate limit settings must be positive")
	}

	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("environment variable REDIS_ADDR must be set")
	}
	switch cfg.StoreBackend {
	case BackendRedis, BackendMemory:
	case BackendMySQL:
		if cfg.MySQLUser == "" {
			return nil, fmt.Errorf("environment variable MYSQL_USER must be set for the mysql backend")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("environment variable DATABASE_URL must be set for the postgres backend")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	// 验证日志级别
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s must be an integer: %w", key, err)
	}
	return n, nil
}
