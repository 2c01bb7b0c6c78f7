package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Neruaka/jana-distribution/internal/config"
	"github.com/Neruaka/jana-distribution/internal/database"
	"github.com/Neruaka/jana-distribution/internal/handler"
	"github.com/Neruaka/jana-distribution/internal/middleware"
	"github.com/Neruaka/jana-distribution/internal/queue"
	"github.com/Neruaka/jana-distribution/internal/repository"
	"github.com/Neruaka/jana-distribution/internal/router"
	"github.com/Neruaka/jana-distribution/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if err := database.EnsureSchema(context.Background(), db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("WARN: redis unavailable, cache and rate limiting disabled")
	}

	// Repositories.
	userRepo := repository.NewUserRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	productRepo := repository.NewProductRepo(db)
	cartRepo := repository.NewCartRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	settingRepo := repository.NewSettingRepo(db)
	statsRepo := repository.NewStatsRepo(db)

	// Outbound mail: publisher plus a background consumer draining the
	// queue into the mail log.  Both are optional, gated on AMQP_URL.
	amqpURL := os.Getenv("AMQP_URL")
	if amqpURL == "" {
		amqpURL = os.Getenv("RABBITMQ_URL")
	}
	mailer := service.NewMailer(amqpURL)
	defer mailer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if amqpURL != "" {
		consumer := queue.NewMailConsumer(amqpURL, service.MailQueue, "logs/mail.log")
		go consumer.Start(ctx)
	} else {
		log.Println("WARN: AMQP_URL not set, mail notifications disabled")
	}

	// Services.
	var settings *service.SettingsService
	if rdb != nil {
		settings = service.NewSettingsService(settingRepo, service.RedisSettingsCache{C: rdb})
	} else {
		settings = service.NewSettingsService(settingRepo, nil)
	}
	authSvc := service.NewAuthService(userRepo, mailer, cfg.JWTSecret, cfg.AccessTTLMin, cfg.ResetTTLMin, cfg.BcryptCost)
	cartSvc := service.NewCartService(db, userRepo, cartRepo, productRepo, settings)
	orderSvc := service.NewOrderService(db, orderRepo, productRepo, cartRepo, userRepo, settings, mailer)
	productSvc := service.NewProductService(productRepo)
	categorySvc := service.NewCategoryService(categoryRepo)
	statsSvc := service.NewStatsService(statsRepo, productRepo)

	// HTTP server.
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = middleware.NewErrorHandler(cfg.Env)
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	router.Register(e, router.Deps{
		JWTSecret: cfg.JWTSecret,
		Redis:     rdb,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),

		Health:     handler.NewHealthHandler(db),
		Auth:       handler.NewAuthHandler(authSvc),
		Cart:       handler.NewCartHandler(cartSvc),
		Products:   handler.NewProductHandler(productSvc),
		Categories: handler.NewCategoryHandler(categorySvc),
		Orders:     handler.NewOrderHandler(orderSvc),
		Settings:   handler.NewSettingsHandler(settings),
		Stats:      handler.NewStatsHandler(statsSvc),
		Users:      handler.NewUserHandler(userRepo),
	})

	go func() {
		<-ctx.Done()
		log.Println("shutting down")
		_ = e.Shutdown(context.Background())
	}()

	if err := e.Start(":" + cfg.Port); err != nil {
		log.Println(err)
	}
}
