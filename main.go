package main

import (
	"context"
	"log"
	"strings"

	"runclub-backend/config"
	"runclub-backend/controllers"
	"runclub-backend/database"
	"runclub-backend/kafka"
	"runclub-backend/logger"
	"runclub-backend/models"
	"runclub-backend/queue"
	"runclub-backend/repository"
	"runclub-backend/routes"
	"runclub-backend/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[RunClub] No .env file found, using system environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[RunClub] Failed to load config: ", err)
	}

	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()

	db, err := database.Connect(cfg, logger.Log,
		&models.PaymentTransaction{},
		&models.EventRegistration{},
		&models.Attendee{},
		&models.PushSubscription{},
		&models.ClubEvent{},
	)
	if err != nil {
		log.Fatal("[RunClub] Failed to connect to DB: ", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	// Repositories
	ledger := repository.NewGormTransactionLedger(db)
	registrations := repository.NewGormRegistrationRepo(db)
	subscriptions := repository.NewGormSubscriptionRepo(db)
	events := repository.NewGormEventRepo(db)

	// External collaborators
	stripeSvc := services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookKey)
	transport := services.NewWebPushTransport(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject)

	// Core services
	projector := services.NewProjectionService(registrations, logger.Log)
	reconcileQueue := queue.NewRedisReconcileQueue(rdb)
	refunds := services.NewRefundService(ledger, stripeSvc, projector, reconcileQueue, logger.Log)
	dispatcher := services.NewDispatchService(subscriptions, transport, logger.Log)

	// Background workers
	ctx := context.Background()
	worker := services.NewReconcileWorker(reconcileQueue, ledger, projector, logger.Log)
	worker.Start(ctx)

	brokers := strings.Split(cfg.KafkaBrokers, ",")
	producer := kafka.NewEventProducer(brokers, cfg.EventTopic, logger.Log)
	defer producer.Close()

	consumer := services.NewEventConsumer(brokers, cfg.EventTopic, "runclub-dispatch-group", dispatcher, logger.Log)
	go consumer.Start(ctx)
	defer consumer.Close()

	// HTTP server
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())
	r.Use(cors.Default())

	routes.RegisterRoutes(r,
		&controllers.RefundController{Refunds: refunds},
		&controllers.PushController{Subs: subscriptions, Logger: logger.Log},
		&controllers.EventController{
			Events:        events,
			Registrations: registrations,
			Ledger:        ledger,
			Stripe:        stripeSvc,
			Producer:      producer,
			Currency:      cfg.Currency,
			SuccessURL:    cfg.SuccessURL,
			CancelURL:     cfg.CancelURL,
			Logger:        logger.Log,
		},
		&controllers.PaymentController{Stripe: stripeSvc, Logger: logger.Log},
		&controllers.WebhookController{
			Stripe:    stripeSvc,
			Ledger:    ledger,
			Projector: projector,
			Logger:    logger.Log,
		},
	)

	logger.Log.Info("runclub-backend running on port " + cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("[RunClub] Server failed: ", err)
	}
}
