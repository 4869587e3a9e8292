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
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"ewaste-pickup/internal/auth"
	"ewaste-pickup/internal/catalog"
	catalog_api "ewaste-pickup/internal/catalog/api"
	catalog_db "ewaste-pickup/internal/catalog/db"
	"ewaste-pickup/internal/config"
	"ewaste-pickup/internal/database/migrations"
	"ewaste-pickup/internal/idgen"
	"ewaste-pickup/internal/kafka"
	"ewaste-pickup/internal/logger"
	"ewaste-pickup/internal/models"
	"ewaste-pickup/internal/order"
	order_api "ewaste-pickup/internal/order/api"
	order_db "ewaste-pickup/internal/order/db"
	"ewaste-pickup/internal/support"
	support_api "ewaste-pickup/internal/support/api"
	support_db "ewaste-pickup/internal/support/db"
	"ewaste-pickup/internal/users"
	users_api "ewaste-pickup/internal/users/api"
	users_db "ewaste-pickup/internal/users/db"
)

func connectPostgres(cfg config.DatabaseConfig, log *logger.Logger) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	maxRetries := 5
	var err error
	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Connecting to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		if err = sqldb.Ping(); err == nil {
			break
		}
		log.Error("DATABASE", fmt.Sprintf("PostgreSQL ping failed: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}
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

// seedSequencers raises the redis counters to the current row counts so
// display numbers keep increasing across restarts and cache flushes.
func seedSequencers(ctx context.Context, seq *idgen.RedisSequencer, orders *order_db.DB, tickets *support_db.DB, log *logger.Logger) {
	if n, err := orders.CountOrders(ctx); err != nil {
		log.Warn("APP", fmt.Sprintf("Could not count orders for sequencer seed: %v", err))
	} else if err := seq.Seed(ctx, idgen.OrderSequence, int64(n)); err != nil {
		log.Warn("APP", fmt.Sprintf("Could not seed order sequencer: %v", err))
	}
	if n, err := tickets.CountTickets(ctx); err != nil {
		log.Warn("APP", fmt.Sprintf("Could not count tickets for sequencer seed: %v", err))
	} else if err := seq.Seed(ctx, idgen.TicketSequence, int64(n)); err != nil {
		log.Warn("APP", fmt.Sprintf("Could not seed ticket sequencer: %v", err))
	}
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting e-waste pickup service")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()

	ctx := context.Background()

	bunDB := connectPostgres(cfg.Database, log)
	defer bunDB.Close()

	if cfg.Database.AutoMigrate {
		runner := migrations.NewRunner(bunDB, log, migrations.DefaultOptions())
		if err := runner.Up(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
		}
	}

	redisClient := connectRedis(ctx, cfg.Redis, log)
	defer redisClient.Close()

	sequencer := idgen.NewRedisSequencer(redisClient)
	sessions := auth.NewSessionCache(redisClient)

	orderStore := &order_db.DB{Bun: bunDB}
	ticketStore := &support_db.DB{Bun: bunDB}
	catalogStore := &catalog_db.DB{Bun: bunDB}
	userStore := &users_db.DB{Bun: bunDB}

	seedSequencers(ctx, sequencer, orderStore, ticketStore, log)

	var orderEvents, ticketEvents *kafka.Producer
	if cfg.Kafka.Enabled {
		orderEvents = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.OrderEvents)
		ticketEvents = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.TicketEvents)
		defer orderEvents.Close()
		defer ticketEvents.Close()
		log.Info("KAFKA", "Kafka producers initialized")
	} else {
		log.Warn("KAFKA", "Kafka disabled, notification events will not be published")
	}

	catalogService := catalog.NewService(catalogStore, log)
	userService := users.NewService(userStore, sessions, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)

	var orderPublisher order.EventPublisher
	if orderEvents != nil {
		orderPublisher = orderEvents
	}
	var ticketPublisher support.EventPublisher
	if ticketEvents != nil {
		ticketPublisher = ticketEvents
	}

	orderService := order.NewService(orderStore, catalogService, userStore, sequencer, orderPublisher, log)
	supportService := support.NewService(ticketStore, userStore, sequencer, ticketPublisher, log)

	orderHandler := order_api.NewHandler(orderService, log)
	supportHandler := support_api.NewHandler(supportService, log)
	catalogHandler := catalog_api.NewHandler(catalogService, log)
	userHandler := users_api.NewHandler(userService, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		// --- Public routes ---
		r.Post("/auth/register", userHandler.Register)
		r.Post("/auth/login", userHandler.Login)
		r.Get("/pincodes/check/{pincode}", catalogHandler.CheckPincode)
		r.Get("/categories", catalogHandler.ListCategories)

		// --- Authenticated routes ---
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(cfg.Auth.JWTSecret, sessions))

			r.Post("/auth/logout", userHandler.Logout)
			r.Get("/auth/profile", userHandler.Profile)

			r.Route("/orders", func(r chi.Router) {
				r.With(auth.RequireRoles(models.RoleCustomer)).Post("/", orderHandler.CreateOrder)
				r.With(auth.RequireRoles(models.RoleCustomer)).Get("/", orderHandler.ListMyOrders)
				r.With(auth.RequireRoles(models.RoleManager, models.RoleAdmin)).Get("/all", orderHandler.ListAllOrders)
				r.With(auth.RequireRoles(models.RolePickupAgent)).Get("/assigned", orderHandler.ListAssignedOrders)
				r.Get("/{orderId}", orderHandler.GetOrder)
				r.Get("/{orderId}/slip", orderHandler.PickupSlip)
				r.Put("/{orderId}/cancel", orderHandler.CancelOrder)
				r.With(auth.RequireRoles(models.RolePickupAgent, models.RoleManager, models.RoleAdmin)).Put("/{orderId}/status", orderHandler.UpdateOrderStatus)
				r.With(auth.RequireRoles(models.RoleManager, models.RoleAdmin)).Put("/{orderId}/assign", orderHandler.AssignPickupAgent)
				r.With(auth.RequireRoles(models.RolePickupAgent)).Put("/{orderId}/verify", orderHandler.VerifyPickupPin)
			})

			r.Route("/support", func(r chi.Router) {
				r.With(auth.RequireRoles(models.RoleCustomer)).Post("/", supportHandler.CreateTicket)
				r.With(auth.RequireRoles(models.RoleCustomer)).Get("/", supportHandler.ListMyTickets)
				r.With(auth.RequireRoles(models.RoleManager, models.RoleAdmin)).Get("/all", supportHandler.ListAllTickets)
				r.With(auth.RequireRoles(models.RoleManager, models.RoleAdmin)).Get("/stats", supportHandler.TicketStats)
				r.Get("/{ticketId}", supportHandler.GetTicket)
				r.Post("/{ticketId}/messages", supportHandler.AddMessage)
				r.With(auth.RequireRoles(models.RoleManager, models.RoleAdmin)).Put("/{ticketId}/status", supportHandler.UpdateTicketStatus)
				r.With(auth.RequireRoles(models.RoleManager, models.RoleAdmin)).Put("/{ticketId}/assign", supportHandler.AssignTicket)
				r.With(auth.RequireRoles(models.RoleCustomer)).Put("/{ticketId}/rate", supportHandler.RateTicket)
			})

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRoles(models.RoleAdmin))
				r.Post("/categories", catalogHandler.CreateCategory)
				r.Put("/categories/{categoryId}", catalogHandler.UpdateCategory)
				r.Get("/pincodes", catalogHandler.ListPincodes)
				r.Post("/pincodes", catalogHandler.CreatePincode)
			})
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
		log.Info("HTTP", fmt.Sprintf("E-waste pickup service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	}
	log.Info("APP", "Shutdown complete")
}
