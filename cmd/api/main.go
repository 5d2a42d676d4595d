package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"musicportal/internal/cache"
	"musicportal/internal/config"
	"musicportal/internal/database"
	"musicportal/internal/middleware"
	"musicportal/internal/modules/audit"
	"musicportal/internal/modules/catalog"
	"musicportal/internal/modules/inventory"
	"musicportal/internal/modules/reservation"
	jwtsvc "musicportal/internal/pkg/jwt"
	"musicportal/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.CacheEnabled() {
		redisCfg := cache.DefaultConfig()
		redisCfg.Addr = cfg.RedisAddr
		redisCfg.Password = cfg.RedisPassword
		redisCfg.DB = cfg.RedisDB
		redisClient, err = cache.NewClient(ctx, redisCfg)
		if err != nil {
			logger.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer func() { _ = redisClient.Close() }()
		}
	}
	catalogCache := cache.NewCatalog(redisClient, cfg.CatalogCacheTTL, logger)

	router := newRouter(cfg, db, catalogCache, logger)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("musicportal API listening", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.AppEnv))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

func newRouter(cfg *config.Config, db *gorm.DB, catalogCache *cache.Catalog, logger *zap.Logger) *gin.Engine {
	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	users := repository.NewUserRepository(db)
	j := jwtsvc.New(cfg.JWTSecret, 24*time.Hour)

	auditService := audit.NewService(db, users, audit.WithLogger(logger))
	catalogService := catalog.NewService(
		repository.NewResourceRepository(db),
		repository.NewEquipmentRepository(db),
		catalogCache,
		logger,
	)
	inventoryService := inventory.NewService(db, auditService, users,
		inventory.WithLogger(logger),
		inventory.WithCache(catalogCache),
		inventory.WithLoanPeriod(cfg.DefaultLoanPeriod),
	)
	reservationService := reservation.NewService(db, auditService, users, reservation.WithLogger(logger))

	r := gin.New()
	r.Use(
		middleware.ErrorLogger(logger),
		middleware.RequestLogger(logger),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "cache": catalogCache.Enabled()})
	})

	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(j))
	{
		catalog.NewHandler(catalogService).RegisterRoutes(v1)
		inventory.NewHandler(inventoryService).RegisterRoutes(v1)
		reservation.NewHandler(reservationService).RegisterRoutes(v1)
		audit.NewHandler(auditService).RegisterRoutes(v1)
	}

	return r
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.IsProdLike() {
		zcfg = zap.NewProductionConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zcfg.Build()
}
