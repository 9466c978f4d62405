package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-booking/internal/auth"
	"ms-booking/internal/catalog"
	catalog_api "ms-booking/internal/catalog/api"
	catalog_db "ms-booking/internal/catalog/db"
	"ms-booking/internal/config"
	"ms-booking/internal/database/migrations"
	"ms-booking/internal/kafka"
	"ms-booking/internal/logger"
	"ms-booking/internal/order"
	order_api "ms-booking/internal/order/api"
	order_db "ms-booking/internal/order/db"
	"ms-booking/internal/payment"
	payment_api "ms-booking/internal/payment/api"
	"ms-booking/internal/storage"
	"ms-booking/internal/tickets"
	tickets_api "ms-booking/internal/tickets/api"
	tickets_db "ms-booking/internal/tickets/db"
	"ms-booking/internal/tickets/qr"
	"ms-booking/internal/webhook"
)

func connectPostgres(cfg config.DatabaseConfig, log *logger.Logger) *bun.DB {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.DSN)
		if err == nil {
			err = sqldb.Ping()
			if err == nil {
				break
			}
		}

		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	log.Info("DATABASE", "PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Addr))
	return client
}

func buildVerifier(ctx context.Context, cfg config.AuthConfig, log *logger.Logger) auth.Verifier {
	if cfg.OIDCIssuer != "" {
		verifier, err := auth.NewOIDCVerifier(ctx, cfg.OIDCIssuer)
		if err != nil {
			log.Fatal("AUTH", fmt.Sprintf("Failed to create OIDC verifier: %v", err))
		}
		log.Info("AUTH", fmt.Sprintf("Using OIDC verifier with issuer %s", cfg.OIDCIssuer))
		return verifier
	}

	if cfg.DevSecret != "" {
		log.Warn("AUTH", "OIDC_ISSUER not set, using shared-secret HS256 verifier")
		return auth.NewHS256Verifier(cfg.DevSecret)
	}

	log.Fatal("AUTH", "Neither OIDC_ISSUER nor AUTH_DEV_SECRET is set")
	return nil
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting booking service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	bunDB := connectPostgres(cfg.Database, log)
	defer bunDB.Close()

	redisClient := connectRedis(ctx, cfg.Redis, log)
	defer redisClient.Close()

	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
	if err := runner.MigrateUp(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
	}
	if version, dirty, err := runner.Version(); err == nil {
		log.Info("DATABASE", fmt.Sprintf("Schema version %d (dirty=%v)", version, dirty))
	}

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, kafka.RequiredTopics()); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Required topics ensured successfully")
		}
	} else {
		log.Warn("KAFKA", "Kafka disabled, lifecycle events will not be published")
	}

	store, err := storage.NewClient(cfg.Storage)
	if err != nil {
		log.Fatal("STORAGE", fmt.Sprintf("Failed to create object store client: %v", err))
	}

	verifier := buildVerifier(ctx, cfg.Auth, log)
	authorizer := auth.NewAuthorizer(bunDB, redisClient)

	var orderPub order.Publisher
	var ticketPub tickets.Publisher
	var userPub webhook.Publisher
	if producer != nil {
		orderPub = producer
		ticketPub = producer
		userPub = producer
	}

	catalogService := catalog.NewService(&catalog_db.DB{Bun: bunDB}, store, catalog.NewEventCache(redisClient), log)
	orderService := order.NewService(&order_db.DB{Bun: bunDB}, orderPub, log)
	ticketService := tickets.NewService(&tickets_db.DB{Bun: bunDB}, orderService, authorizer, ticketPub, qr.NewGenerator(cfg.Auth.QRSecret), log)
	paymentService := payment.NewService(orderService, ticketService, payment.NewGatewayClient(cfg.Gateway), cfg.Gateway, log)

	catalogHandler := catalog_api.NewHandler(catalogService, log)
	orderHandler := order_api.NewHandler(orderService, log)
	paymentHandler := payment_api.NewHandler(paymentService, log)
	ticketHandler := tickets_api.NewHandler(ticketService, authorizer, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	// --- Public routes ---
	r.Get("/api/events", catalogHandler.ListPublishedEvents)
	r.Get("/api/events/{eventId}", catalogHandler.GetPublishedEvent)

	if cfg.Webhook.SigningSecret != "" {
		webhookHandler, err := webhook.NewHandler(cfg.Webhook.SigningSecret, webhook.NewStore(bunDB), userPub, log)
		if err != nil {
			log.Fatal("WEBHOOK", fmt.Sprintf("Failed to create webhook handler: %v", err))
		}
		r.Post("/api/webhook", webhookHandler.HandleUserWebhook)
		log.Info("ROUTER", "Identity webhook registered at /api/webhook")
	} else {
		log.Warn("WEBHOOK", "SIGNING_SECRET not set, identity webhook disabled")
	}

	// --- Authenticated routes ---
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(verifier))

		r.Route("/api/order", func(r chi.Router) {
			r.Post("/", orderHandler.CreateOrder)
			r.Get("/create", paymentHandler.CreateBareOrder)
			r.Get("/{orderId}", orderHandler.GetOrder)
			r.Post("/{orderId}/pay", paymentHandler.PayOrder)
		})
		r.Get("/api/orders", orderHandler.ListMyOrders)
		r.Post("/api/payment/verify", paymentHandler.VerifyPayment)

		r.Route("/api/ticket", func(r chi.Router) {
			r.Get("/", ticketHandler.ListMyTickets)
			r.Get("/{ticketId}", ticketHandler.GetTicket)
			r.Post("/{ticketId}/validate", ticketHandler.ValidateTicket)
		})

		// --- Admin routes ---
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireCapability(authorizer, auth.CapabilityAdmin))

			r.Route("/api/admin/events", func(r chi.Router) {
				r.Get("/", catalogHandler.ListAllEvents)
				r.Post("/create", catalogHandler.CreateEvent)
				r.Put("/{eventId}", catalogHandler.UpdateEvent)
				r.Delete("/{eventId}", catalogHandler.DeleteEvent)
				r.Post("/{eventId}/publish", catalogHandler.PublishEvent)
				r.Post("/{eventId}/unpublish", catalogHandler.UnpublishEvent)
				r.Post("/{eventId}/images", catalogHandler.AttachImage)
				r.Delete("/{eventId}/image/{imageId}", catalogHandler.RemoveImage)
				r.Get("/{eventId}/orders", orderHandler.ListEventOrders)
				r.Get("/{eventId}/tickets", ticketHandler.ListEventTickets)
			})
			r.Post("/api/admin/upload-image", catalogHandler.PresignUpload)
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Booking service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	}
	log.Info("APP", "Shutdown complete")
}
