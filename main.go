package main

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/joinit/events-api/config"
	"github.com/joinit/events-api/internal/consumer"
	"github.com/joinit/events-api/internal/handler"
	"github.com/joinit/events-api/internal/identity"
	"github.com/joinit/events-api/internal/middleware"
	"github.com/joinit/events-api/internal/repository"
	"github.com/joinit/events-api/internal/service"
	"github.com/joinit/events-api/pkg/database"
	"github.com/joinit/events-api/pkg/filestore"
	"github.com/joinit/events-api/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	// Repositories
	eventRepo := repository.NewEventRepository(db)
	participationRepo := repository.NewParticipationRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	fileRepo := repository.NewFileRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	txRunner := repository.NewTxRunner(db, cfg.TxMaxRetries)

	// RabbitMQ: lifecycle publisher + activity consumer
	var publisher service.Publisher
	if cfg.RabbitURL != "" {
		mqPublisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer mqPublisher.Close()
		publisher = mqPublisher

		mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer mqConsumer.Close()

		msgs, err := mqConsumer.Consume()
		if err != nil {
			log.Fatalf("failed to start consuming: %v", err)
		}
		consumer.NewActivityConsumer(activityRepo).Start(msgs)
	} else {
		log.Println("[RabbitMQ] RABBITMQ_URL not set, lifecycle messages disabled")
	}

	// File store
	var store filestore.Store
	if cfg.CloudinaryEnabled() {
		cld, err := filestore.NewCloudinary(cfg.CloudinaryCloud, cfg.CloudinaryAPIKey, cfg.CloudinarySecret, cfg.CloudinaryFolder)
		if err != nil {
			log.Fatalf("failed to configure Cloudinary: %v", err)
		}
		store = cld
	} else {
		local, err := filestore.NewLocal(cfg.FileStoreDir)
		if err != nil {
			log.Fatalf("failed to prepare file store: %v", err)
		}
		store = local
	}

	// Services
	opts := service.Options{PageSize: cfg.PageSize, Location: cfg.Location()}
	eventSvc := service.NewEventService(txRunner, eventRepo, fileRepo, store, publisher, opts)
	participationSvc := service.NewParticipationService(txRunner, eventRepo, participationRepo, publisher, nil)
	ratingSvc := service.NewRatingService(txRunner, eventRepo, participationRepo, ratingRepo, publisher, nil)
	favoriteSvc := service.NewFavoriteService(txRunner, eventRepo, favoriteRepo, publisher, nil)
	activitySvc := service.NewActivityService(eventRepo, activityRepo)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Validator = handler.NewRequestValidator()
	e.Use(echoMw.RequestIDWithConfig(echoMw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogRequestID: true,
		LogLatency:   true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d %s id=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	}))
	e.Use(echoMw.Recover())
	e.Use(echoMw.RateLimiterWithConfig(echoMw.RateLimiterConfig{
		Store: echoMw.NewRateLimiterMemoryStoreWithConfig(echoMw.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.RateLimitRPS),
			Burst:     cfg.RateLimitRPS * 2,
			ExpiresIn: 3 * time.Minute,
		}),
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "events-api"})
	})

	api := e.Group("/api/v1/events", middleware.Auth(identity.NewProvider(cfg.JWTSecret, cfg.JWTIssuer)))
	handler.NewEventHandler(eventSvc, cfg.MaxUploadBytes).RegisterRoutes(api)
	handler.NewParticipationHandler(participationSvc).RegisterRoutes(api)
	handler.NewRatingHandler(ratingSvc).RegisterRoutes(api)
	handler.NewFavoriteHandler(favoriteSvc).RegisterRoutes(api)
	handler.NewActivityHandler(activitySvc).RegisterRoutes(api)

	log.Printf("Events API starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
