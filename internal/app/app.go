// Package app wires configuration, storage, services and HTTP handlers into a
// runnable storefront.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/payments"
	"storefront/internal/pricing"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/redis/go-redis/v9"
	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the external resources the HTTP stack runs on. Only DB is
// required.
type Dependencies struct {
	DB      *gorm.DB
	Redis   redis.UniversalClient
	Events  services.EventPublisher
	Gateway payments.Gateway
}

// App is a running storefront and the connections it owns.
type App struct {
	Fiber  *fiber.App
	cfg    config.Config
	logger *zap.Logger
	db     *gorm.DB
	redis  *redis.Client
	mq     *rabbitmq.Client
}

// New opens every connection cfg names and builds the HTTP stack on top. Redis and
// RabbitMQ are skipped when their address is empty.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, logger: logger, db: db}
	deps := Dependencies{DB: db}

	if cfg.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		deps.Redis = a.redis
	}

	if cfg.RabbitMQURL != "" {
		a.mq, err = rabbitmq.NewClient(rabbitmq.Config{
			URL:        cfg.RabbitMQURL,
			Exchange:   services.OrderExchange,
			Queue:      "order_queue",
			BindingKey: "order.#",
		}, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		deps.Events = a.mq
	}

	a.Fiber = NewServer(cfg, deps, logger)
	return a, nil
}

// NewServer builds the fiber app with every route registered.
func NewServer(cfg config.Config, deps Dependencies, logger *zap.Logger) *fiber.App {
	engine := pricing.NewEngine(cfg.TaxRate)

	var productRepo repositories.ProductRepository = repositories.NewGORMProductRepository(deps.DB)
	if deps.Redis != nil {
		productRepo = cache.NewCachedProductRepository(productRepo, cache.NewRedisCache(deps.Redis, cfg.ProductCacheTTL), logger)
	}
	userRepo := repositories.NewGORMUserRepository(deps.DB)
	brandRepo := repositories.NewGORMBrandRepository(deps.DB)
	categoryRepo := repositories.NewGORMCategoryRepository(deps.DB)
	cartRepo := repositories.NewGORMCartRepository(deps.DB)
	orderRepo := repositories.NewGORMOrderRepository(deps.DB)

	gateway := deps.Gateway
	if gateway == nil {
		gateway = NewGateway(cfg, logger)
	}

	authService := services.NewAuthService(userRepo, cfg.JWTSecret, logger)
	catalogService := services.NewCatalogService(productRepo, brandRepo, categoryRepo, cfg.CatalogPageSize, cfg.SearchLimit)
	cartService := services.NewCartService(cartRepo, productRepo, engine, logger)
	orderService := services.NewOrderService(orderRepo, userRepo, engine, deps.Events, logger)
	paymentService := services.NewPaymentService(orderService, gateway, logger)

	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		ErrorHandler: errorHandler(logger),
	})
	app.Use(recover.New())
	if cfg.AppEnv != "test" {
		app.Use(fiberlogger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	authRequired := middleware.AuthRequired(authService)
	apiV1 := app.Group("/api/v1", middleware.Session())

	handlers.NewAuthHandler(authService, logger).RegisterRoutes(apiV1)
	handlers.NewCatalogHandler(catalogService, logger).RegisterRoutes(apiV1, authRequired)
	handlers.NewCartHandler(cartService, logger).RegisterRoutes(apiV1)
	handlers.NewOrderHandler(orderService, cartService, logger).RegisterRoutes(apiV1, authRequired)
	handlers.NewPaymentHandler(paymentService, cfg.StripePublishableKey, logger).RegisterRoutes(apiV1, authRequired)

	return app
}

// NewGateway returns the configured payment gateway wrapped with timeout, retry and
// circuit breaking.
func NewGateway(cfg config.Config, logger *zap.Logger) payments.Gateway {
	var gateway payments.Gateway
	switch cfg.PaymentProvider {
	case "stripe":
		gateway = payments.NewStripeGateway(cfg.StripeAPIURL, cfg.StripeSecretKey)
	default:
		gateway = payments.NewFakeGateway()
	}
	return payments.NewResilientGateway(gateway, cfg.PaymentTimeout, logger)
}

// errorHandler answers errors no handler turned into a response, such as unknown
// routes and recovered panics, in the same shape the handlers use.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := utils.StatusMessage(code)
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		}
		return c.Status(code).JSON(fiber.Map{
			"message":  message,
			"redirect": "/api/v1/products",
		})
	}
}

// StartConsumer subscribes to order events when RabbitMQ is configured.
func (a *App) StartConsumer() error {
	if a.mq == nil {
		a.logger.Info("RABBITMQ_URL not set, order event consumer disabled")
		return nil
	}
	return a.mq.ConsumeOrderEvents(OrderEventHandler(a.logger))
}

// OrderEventHandler logs every order event it receives.
func OrderEventHandler(logger *zap.Logger) func(msg amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var event services.OrderEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			return fmt.Errorf("%w: %v", rabbitmq.ErrMalformed, err)
		}
		logger.Info("order event",
			zap.String("event", event.Event),
			zap.String("invoice", event.Invoice),
			zap.String("customer_id", event.CustomerID),
			zap.String("status", event.Status),
			zap.String("grand_total", event.GrandTotal.StringFixed(2)))
		return nil
	}
}

// Listen serves HTTP on the configured port until Shutdown.
func (a *App) Listen() error {
	a.logger.Info("starting server", zap.String("port", a.cfg.AppPort))
	return a.Fiber.Listen(a.cfg.AppPort)
}

// Shutdown stops the HTTP server and closes every connection.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Fiber.ShutdownWithContext(ctx)
	return errors.Join(err, a.Close())
}

// Close releases the database, Redis and RabbitMQ connections.
func (a *App) Close() error {
	var errs []error
	if a.mq != nil {
		errs = append(errs, a.mq.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
