package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"lunch-picker/internal/domain"
	httpHandler "lunch-picker/internal/handler/http"
	wsHandler "lunch-picker/internal/handler/websocket"
	"lunch-picker/internal/hub"
	gormpersistence "lunch-picker/internal/infra/persistence/gorm"
	"lunch-picker/internal/infra/persistence/postgres"
	"lunch-picker/internal/infra/setup"
	memorystate "lunch-picker/internal/infra/state/memory"
	redisstate "lunch-picker/internal/infra/state/redis"
	"lunch-picker/internal/repository"
	"lunch-picker/internal/service"
)

// App 结构体包含应用的所有组件和配置
type App struct {
	Config      *Config
	Log         *logrus.Logger
	DB          *gorm.DB
	PG          *pgxpool.Pool
	RedisClient *redis.Client
	Hub         *hub.Hub
	HttpServer  *http.Server

	stopFeed context.CancelFunc
	feedDone chan struct{}
}

// NewLogger 按配置初始化全局 logrus logger
func NewLogger(cfg *Config) *logrus.Logger {
	log := logrus.StandardLogger()
	if cfg.AppEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, ForceColors: true})
	}
	logLevel, _ := logrus.ParseLevel(cfg.LogLevel) // LoadConfig 已校验
	log.SetLevel(logLevel)
	log.SetOutput(os.Stdout)
	return log
}

// NewApp 创建并初始化应用的所有组件
func NewApp() (*App, error) {
	// 1. 加载配置
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, err
	}

	// 2. 初始化 Logger
	log := NewLogger(cfg)
	log.WithFields(logrus.Fields{"backend": cfg.StoreBackend, "env": cfg.AppEnv}).Info("Configuration loaded")

	// 3. 初始化基础设施
	redisClient, err := setup.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}
	redisStore := redisstate.NewRedisStore(redisClient, cfg.KeyPrefix)

	app := &App{Config: cfg, Log: log, RedisClient: redisClient}
	store, err := app.initStore(redisStore)
	if err != nil {
		_ = redisClient.Close()
		return nil, err
	}
	log.Info("Room store initialized")

	// 4. Repository & Service
	rooms := repository.NewKVRoomRepository(store)
	lunchService := service.NewLunchService(rooms, service.LunchOptions{
		Notifier: redisStore,
		DayZone:  domain.DayZone(cfg.DayOffsetHours),
	})

	// 5. Hub & Handlers
	app.Hub = hub.NewHub(lunchService)
	lunchHandler := httpHandler.NewLunchHandler(lunchService)
	ws := wsHandler.NewWebSocketHandler(app.Hub, cfg.CORSOrigin)

	// 6. Router & HTTP Server
	router := NewRouter(cfg, log, redisClient, lunchHandler, ws)
	app.HttpServer = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info("Application assembled successfully")
	return app, nil
}

// initStore 根据 STORE_BACKEND 选择房间存储
func (a *App) initStore(redisStore *redisstate.RedisStore) (repository.KVStore, error) {
	cfg := a.Config
	switch cfg.StoreBackend {
	case BackendMySQL:
		db, err := setup.InitDB(cfg.MySQLUser, cfg.MySQLPassword, cfg.MySQLHost, cfg.MySQLPort, cfg.MySQLDB)
		if err != nil {
			return nil, fmt.Errorf("failed to init DB: %w", err)
		}
		if err := setup.MigrateDB(db); err != nil {
			return nil, fmt.Errorf("failed to migrate DB: %w", err)
		}
		a.DB = db
		return gormpersistence.NewGormKVStore(db), nil
	case BackendPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		pool, err := setup.InitPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store := postgres.NewKVStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		a.PG = pool
		return store, nil
	case BackendMemory:
		a.Log.Warn("Using in-memory room store, data is lost on restart")
		return memorystate.NewStore(), nil
	default:
		return redisStore, nil
	}
}

// Start 启动 Hub、变更订阅和 HTTP 服务器
func (a *App) Start() {
	go a.Hub.Run()

	ctx, cancel := context.WithCancel(context.Background())
	a.stopFeed = cancel
	a.feedDone = make(chan struct{})
	go func() {
		defer close(a.feedDone)
		pattern := redisstate.ChangeChannelPattern(a.Config.KeyPrefix)
		if err := a.Hub.ListenChanges(ctx, a.RedisClient, pattern); err != nil {
			a.Log.WithError(err).Error("Change feed subscription stopped")
		}
	}()

	go func() {
		a.Log.Infof("HTTP server starting to listen on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
}

// Shutdown 优雅地关闭应用
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	}

	// 停止变更订阅
	if a.stopFeed != nil {
		a.stopFeed()
		<-a.feedDone
	}

	if a.PG != nil {
		a.PG.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := a.RedisClient.Close(); err != nil {
		a.Log.Errorf("Error closing Redis connection: %v", err)
	}
	a.Log.Info("Application shutdown complete.")
}
