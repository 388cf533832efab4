package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/sirupsen/logrus"

	"github.com/wichananm65/marketplace-backend/internal/address"
	"github.com/wichananm65/marketplace-backend/internal/apperr"
	"github.com/wichananm65/marketplace-backend/internal/cart"
	"github.com/wichananm65/marketplace-backend/internal/category"
	"github.com/wichananm65/marketplace-backend/internal/config"
	"github.com/wichananm65/marketplace-backend/internal/favorite"
	"github.com/wichananm65/marketplace-backend/internal/logger"
	"github.com/wichananm65/marketplace-backend/internal/media"
	"github.com/wichananm65/marketplace-backend/internal/messaging"
	"github.com/wichananm65/marketplace-backend/internal/order"
	"github.com/wichananm65/marketplace-backend/internal/product"
	"github.com/wichananm65/marketplace-backend/internal/user"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("open storage")
	}
	defer repos.Close()

	userService := user.NewService(repos.users, user.TokenConfig{Secret: []byte(cfg.JWTSecret), TTL: cfg.JWTTTL}, log)
	if err := userService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.WithError(err).Fatal("bootstrap admin")
	}

	categoryService := category.NewService(repos.categories, repos.products, log)
	productService := product.NewService(repos.products, categoryService, log)
	images := cart.NewImageResolver(repos.blobs, productService, cfg.PlaceholderImage, log)
	cartService := cart.NewService(repos.carts, productService, images, log)
	favoriteService := favorite.NewService(repos.favorites, productService, cartService, log)
	addressService := address.NewService(repos.addresses, log)

	var notifier order.Notifier
	if cfg.AMQPURL != "" {
		client := messaging.NewClient(messaging.Config{URL: cfg.AMQPURL, Exchange: cfg.AMQPExchange}, log)
		if err := client.Connect(ctx); err != nil {
			log.WithError(err).Fatal("connect rabbitmq")
		}
		defer client.Close()
		notifier = messaging.NewOrderPublisher(client, log)
	}

	orderService := order.NewService(repos.orders, order.Deps{
		Carts:     cartService,
		Catalog:   productService,
		Addresses: addressService,
		Users:     userService,
		Images:    images,
		Hub:       order.NewHub(),
		Notifier:  notifier,
		PageSize:  cfg.AdminPageSize,
	}, log)

	userHandler := user.NewHandler(userService)
	categoryHandler := category.NewHandler(categoryService)
	productHandler := product.NewHandler(productService, userService)
	mediaHandler := media.NewHandler(repos.blobs)
	favoriteHandler := favorite.NewHandler(favoriteService)
	cartHandler := cart.NewHandler(cartService)
	addressHandler := address.NewHandler(addressService)
	orderHandler := order.NewHandler(orderService, userService)

	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler(log)})
	app.Use(recover.New())
	app.Use(requestLogger(log))
	setupCORS(app)

	userHandler.RegisterPublicRoutes(app)
	categoryHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)
	mediaHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		},
	}))

	userHandler.RegisterProtectedRoutes(app)
	categoryHandler.RegisterProtectedRoutes(app)
	productHandler.RegisterProtectedRoutes(app)
	mediaHandler.RegisterProtectedRoutes(app)
	favoriteHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	addressHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.WithError(err).Error("shutdown")
		}
	}()

	log.WithField("addr", cfg.Addr).Info("listening")
	if err := app.Listen(cfg.Addr); err != nil {
		log.WithError(err).Error("server stopped")
	}
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func requestLogger(log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.WithFields(logrus.Fields{
			"method":   c.Method(),
			"path":     c.OriginalURL(),
			"status":   c.Response().StatusCode(),
			"duration": time.Since(start).String(),
		}).Debug("request")
		return err
	}
}
