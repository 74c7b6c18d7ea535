package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cartapp "github.com/craftshop/backend/internal/application/cart"
	catalogapp "github.com/craftshop/backend/internal/application/catalog"
	checkoutapp "github.com/craftshop/backend/internal/application/checkout"
	couponapp "github.com/craftshop/backend/internal/application/coupon"
	identityapp "github.com/craftshop/backend/internal/application/identity"
	orderapp "github.com/craftshop/backend/internal/application/order"
	"github.com/craftshop/backend/internal/domain/shared"
	"github.com/craftshop/backend/internal/infrastructure/auth"
	"github.com/craftshop/backend/internal/infrastructure/cache"
	"github.com/craftshop/backend/internal/infrastructure/config"
	"github.com/craftshop/backend/internal/infrastructure/logger"
	"github.com/craftshop/backend/internal/infrastructure/payment"
	"github.com/craftshop/backend/internal/infrastructure/persistence"
	"github.com/craftshop/backend/internal/interfaces/http/handler"
	"github.com/craftshop/backend/internal/interfaces/http/middleware"
	"github.com/craftshop/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting craftshop backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := db.AutoMigrate(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connected")

	// Webhook idempotency store: Redis when configured, in-memory otherwise
	var idempotencyStore shared.IdempotencyStore
	if cfg.Redis.Enabled {
		redisStore, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			_ = redisStore.Close()
		}()
		idempotencyStore = redisStore
		log.Info("Using Redis idempotency store")
	} else {
		memStore := cache.NewInMemoryIdempotencyStore()
		defer func() {
			_ = memStore.Close()
		}()
		idempotencyStore = memStore
		log.Info("Using in-memory idempotency store")
	}

	// Payment provider
	stripeAdapter, err := payment.NewStripeAdapter(&payment.StripeConfig{
		SecretKey:       cfg.Stripe.SecretKey,
		PublishableKey:  cfg.Stripe.PublishableKey,
		WebhookSecret:   cfg.Stripe.WebhookSecret,
		Currency:        cfg.Stripe.Currency,
		FrontendBaseURL: cfg.Stripe.FrontendBaseURL,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize payment provider", zap.Error(err))
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	couponRepo := persistence.NewGormCouponRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Services
	productService := catalogapp.NewProductService(productRepo, log)
	cartService := cartapp.NewCartService(cartapp.CartServiceConfig{
		CartRepo:    cartRepo,
		ProductRepo: productRepo,
		CouponRepo:  couponRepo,
		Logger:      log,
	})
	couponService := couponapp.NewCouponService(couponRepo, log)
	orderService := orderapp.NewOrderService(orderapp.OrderServiceConfig{
		OrderRepo:   orderRepo,
		CartRepo:    cartRepo,
		ProductRepo: productRepo,
		Logger:      log,
	})
	checkoutService := checkoutapp.NewCheckoutService(checkoutapp.CheckoutServiceConfig{
		CartRepo: cartRepo,
		UserRepo: userRepo,
		Gateway:  stripeAdapter,
		Logger:   log,
	})
	webhookService := checkoutapp.NewWebhookService(checkoutapp.WebhookServiceConfig{
		Gateway:      stripeAdapter,
		OrderService: orderService,
		UserRepo:     userRepo,
		Idempotency:  idempotencyStore,
		EventTTL:     cfg.Stripe.EventTTL,
		Logger:       log,
	})
	userService := identityapp.NewUserService(userRepo, log)

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT)
	authMiddleware := middleware.JWTAuth(jwtService)

	// Handlers
	productHandler := handler.NewProductHandler(productService, authMiddleware)
	cartHandler := handler.NewCartHandler(cartService, authMiddleware)
	couponHandler := handler.NewCouponHandler(couponService, authMiddleware)
	orderHandler := handler.NewOrderHandler(orderService, authMiddleware)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, authMiddleware)
	webhookHandler := handler.NewWebhookHandler(webhookService)
	userHandler := handler.NewUserHandler(userService, authMiddleware)

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.GinRecovery(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	engine.GET("/health", healthHandler(db))

	// Routes
	r := router.NewRouter(engine)
	r.Register(productHandler).
		Register(cartHandler).
		Register(couponHandler).
		Register(orderHandler).
		Register(checkoutHandler).
		Register(webhookHandler).
		Register(userHandler)
	r.Setup()

	// HTTP server
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
