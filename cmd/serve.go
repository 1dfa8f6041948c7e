package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zylpheon/TheZylpheonAdmin/cache"
	"github.com/zylpheon/TheZylpheonAdmin/config"
	"github.com/zylpheon/TheZylpheonAdmin/controllers"
	"github.com/zylpheon/TheZylpheonAdmin/middleware"
	"github.com/zylpheon/TheZylpheonAdmin/repository"
	"github.com/zylpheon/TheZylpheonAdmin/services"
)

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
		return serve(cfg, log)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", true, "Run database migrations before serving")
	rootCmd.AddCommand(serveCmd)
}

func serve(cfg *config.Config, log *zap.Logger) error {
	db, err := repository.InitDB(cfg, log)
	if err != nil {
		return err
	}
	if autoMigrate {
		log.Info("running database migrations")
		if err := repository.Migrate(db); err != nil {
			return err
		}
	}

	catalogCache, closeCache := newCatalogCache(cfg, log)
	defer closeCache()

	kafkaSvc := newKafkaService(cfg, log)
	defer func() {
		if err := kafkaSvc.Close(); err != nil {
			log.Warn("failed to close kafka producer", zap.Error(err))
		}
	}()

	orderRepo := repository.NewOrderRepository(db)
	cartRepo := repository.NewCartRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	userRepo := repository.NewUserRepository(db)

	authSvc := services.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	catalogSvc := services.NewCatalogService(catalogRepo, catalogCache, log)
	cartSvc := services.NewCartService(cartRepo, log)
	orderSvc := services.NewOrderService(orderRepo, kafkaSvc, catalogCache, services.OrderServiceConfig{
		Topic:                   cfg.Kafka.Topic,
		StrictStatusTransitions: cfg.Orders.StrictStatusTransitions,
		CheckoutTimeout:         cfg.Orders.CheckoutTimeout,
	}, log)
	userSvc := services.NewUserService(userRepo, log)

	app := newApp(cfg, log)
	controllers.RegisterRoutes(app, middleware.NewAccessGuard(authSvc), controllers.Handlers{
		Auth:    controllers.NewAuthController(authSvc),
		Catalog: controllers.NewCatalogController(catalogSvc),
		Cart:    controllers.NewCartController(cartSvc),
		Order:   controllers.NewOrderController(orderSvc),
		Admin:   controllers.NewAdminController(catalogSvc, orderSvc, userSvc),
		Health: controllers.NewHealthController(func(ctx context.Context) error {
			return repository.Ping(ctx, db)
		}),
	})

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-shutdown
		log.Info("gracefully shutting down")
		if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Server.Port
	log.Info("server is starting", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	closeDB(db, log)
	return nil
}

func newApp(cfg *config.Config, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		ErrorHandler: controllers.ErrorHandler(log),
	})
	app.Use(requestid.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.Server.AllowedOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.RequestLogger(log))
	return app
}

func newCatalogCache(cfg *config.Config, log *zap.Logger) (cache.CatalogCache, func()) {
	if !cfg.Redis.Enabled {
		return cache.NoopCache{}, func() {}
	}
	redisCache, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL, log)
	if err != nil {
		log.Warn("catalog cache disabled", zap.Error(err))
		return cache.NoopCache{}, func() {}
	}
	return redisCache, func() { _ = redisCache.Close() }
}

func newKafkaService(cfg *config.Config, log *zap.Logger) services.IKafkaService {
	if !cfg.Kafka.Enabled {
		return services.NoopKafkaService{}
	}
	kafkaSvc, err := services.NewKafkaService(cfg.Kafka.Brokers, log)
	if err != nil {
		log.Warn("order events disabled", zap.Error(err))
		return services.NoopKafkaService{}
	}
	return kafkaSvc
}

func closeDB(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
