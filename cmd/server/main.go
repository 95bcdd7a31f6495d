package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/pharmakart/cart-service/internal/checkout"
	"github.com/pharmakart/cart-service/internal/client"
	"github.com/pharmakart/cart-service/internal/events"
	h "github.com/pharmakart/cart-service/internal/http"
	"github.com/pharmakart/cart-service/internal/store"
	"github.com/pharmakart/cart-service/pkg/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx := context.Background()

	snapshots, cleanup, err := buildSnapshotStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to set up cart storage", zap.Error(err))
	}
	defer cleanup()

	carts := store.NewManager(snapshots, logger)
	defer carts.Close()
	catalog := client.NewCatalog(cfg.CatalogBaseURL, cfg.RequestTimeout, logger)
	orders := client.NewOrders(cfg.OrderBaseURL, cfg.RequestTimeout, logger)

	var publisher checkout.EventPublisher
	if cfg.KafkaBrokers != "" {
		producer := events.NewProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.OrderEventsTopic, logger)
		defer producer.Close()
		publisher = producer
		logger.Info("order event publishing enabled",
			zap.String("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.OrderEventsTopic))
	}

	orchestrator := checkout.NewOrchestrator(orders, publisher, logger)

	cartHandler := h.NewCartHandler(carts, catalog)
	checkoutHandler := h.NewCheckoutHandler(carts, orchestrator, catalog)
	catalogHandler := h.NewCatalogHandler(catalog)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.CartIDMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Get("/count", cartHandler.GetItemCount)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkoutHandler.Submit)
			r.Post("/buy-now", checkoutHandler.BuyNow)
		})
		r.Get("/products", catalogHandler.ListProducts)
		r.Get("/products/{product_id}", catalogHandler.GetProduct)
		r.Get("/pharmacies", catalogHandler.ListPharmacies)
		r.Get("/pharmacies/{pharmacy_id}", catalogHandler.GetPharmacy)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: otelhttp.NewHandler(r, "cart-service"),
	}

	go func() {
		logger.Info("starting HTTP server", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildSnapshotStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.SnapshotStore, func(), error) {
	switch cfg.StorageBackend {
	case "redis":
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return nil, nil, err
		}
		logger.Info("cart snapshots stored in redis", zap.String("addr", cfg.RedisAddr))
		return store.NewRedisSnapshotStore(redisClient), func() { redisClient.Close() }, nil

	case "mongo":
		db, err := store.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("cart snapshots stored in mongo", zap.String("database", cfg.MongoDatabase))
		return store.NewMongoSnapshotStore(db), func() { db.Client().Disconnect(context.Background()) }, nil

	default:
		logger.Info("cart snapshots stored in memory")
		return store.NewMemorySnapshotStore(), func() {}, nil
	}
}
