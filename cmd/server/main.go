package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ekurin/go_storefront/internal/analytics"
	"github.com/ekurin/go_storefront/internal/api"
	"github.com/ekurin/go_storefront/internal/cart"
	"github.com/ekurin/go_storefront/internal/cart/cache"
	cartrepo "github.com/ekurin/go_storefront/internal/cart/repository"
	"github.com/ekurin/go_storefront/internal/catalog"
	"github.com/ekurin/go_storefront/internal/checkout"
	"github.com/ekurin/go_storefront/internal/domain"
	"github.com/ekurin/go_storefront/internal/order"
	orderrepo "github.com/ekurin/go_storefront/internal/order/repository"
	"github.com/ekurin/go_storefront/internal/payment/paypalapi"
	"github.com/ekurin/go_storefront/internal/payment/stripeapi"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	MongoURI    string
	MongoDBName string

	RedisAddr     string
	RedisPassword string

	KafkaBrokers string

	Postgres orderrepo.Credentials

	PayPalBaseURL  string
	PayPalClientID string
	PayPalSecret   string

	StripeAPIKey string
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,

		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "storefront"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		KafkaBrokers: getEnv("KAFKA_BROKERS", ""),

		Postgres: orderrepo.Credentials{
			Host:              getEnv("POSTGRES_HOST", "localhost"),
			Port:              getEnvInt("POSTGRES_PORT", 5432),
			User:              getEnv("POSTGRES_USER", "postgres"),
			Password:          getEnv("POSTGRES_PASSWORD", "postgres"),
			DBName:            getEnv("POSTGRES_DB", "storefront"),
			MigrationsDirPath: getEnv("MIGRATIONS_DIR", "internal/order/repository/migrations"),
		},

		PayPalBaseURL:  getEnv("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
		PayPalClientID: getEnv("PAYPAL_CLIENT_ID", ""),
		PayPalSecret:   getEnv("PAYPAL_SECRET", ""),

		StripeAPIKey: getEnv("STRIPE_API_KEY", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func main() {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	cfg := loadConfig()
	ctx := context.Background()

	// Durable cart storage
	mongoDB, err := cartrepo.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoDB.Client().Disconnect(ctx)

	cartRepository := cartrepo.NewMongoRepository(mongoDB)
	if err := cartRepository.CreateIndexes(ctx); err != nil {
		log.Fatalf("Failed to create cart indexes: %v", err)
	}
	log.Printf("Connected to MongoDB at %s", cfg.MongoURI)

	// Cart cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")

	// Analytics
	var events analytics.Publisher = analytics.Nop{}
	if cfg.KafkaBrokers != "" {
		kafkaPublisher := analytics.NewKafkaPublisher(strings.Split(cfg.KafkaBrokers, ",")...)
		defer kafkaPublisher.Close()
		events = kafkaPublisher
		log.Printf("Publishing analytics events to %s", cfg.KafkaBrokers)
	}

	// Order storage
	orderRepository, err := orderrepo.NewRepository(&cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer orderRepository.Close()
	if err := orderRepository.RunMigrations(&cfg.Postgres); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Product catalog. TODO: replace the seed data with the product service
	// once it exposes stock levels.
	products := catalog.NewMemoryStore()
	seedCatalog(products)

	// Payment gateways
	paypalGateway := paypalapi.New(cfg.PayPalBaseURL, cfg.PayPalClientID, cfg.PayPalSecret)
	cardGateway := stripeapi.New(cfg.StripeAPIKey)

	cartStore := cart.NewStore(cartRepository, cache.NewRedisCache(redisClient), products, events)
	orderService := order.NewService(orderRepository, cartStore, events)
	sessions := checkout.NewSessionManager()
	coordinator := checkout.NewCoordinator(cartStore, orderService, paypalGateway, cardGateway)

	cartHandler := api.NewCartHandler(cartStore, products, cfg.RequestTimeout)
	checkoutHandler := api.NewCheckoutHandler(sessions, coordinator, cfg.RequestTimeout)
	ordersHandler := api.NewOrdersHandler(orderService, paypalGateway, cardGateway, cfg.RequestTimeout)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(api.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(api.HeaderAuthMiddleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			r.Post("/check-quantities", cartHandler.CheckQuantities)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkoutHandler.Begin)
			r.Get("/", checkoutHandler.GetSession)
			r.Post("/next", checkoutHandler.NextStep)
			r.Post("/prev", checkoutHandler.PrevStep)
			r.Post("/pay", checkoutHandler.Pay)
		})
	})

	// Provider-facing order routes kept at their historical paths.
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", ordersHandler.PayPalAction)
		r.Post("/create-payment-intent", ordersHandler.CreatePaymentIntent)
		r.Post("/confirm-payment-intent", ordersHandler.ConfirmPaymentIntent)
		r.Post("/paypal-order", ordersHandler.PlacePayPalOrder)
		r.Post("/credit-card-order", ordersHandler.PlaceCardOrder)
		r.Get("/history/{user_id}", ordersHandler.History)
		r.Get("/{order_id}", ordersHandler.GetOrder)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

func seedCatalog(store *catalog.MemoryStore) {
	seed := []domain.Product{
		{ID: 1, Name: "Wireless Mouse", Description: "2.4GHz wireless mouse", Price: 24.99, Stock: 50},
		{ID: 2, Name: "Mechanical Keyboard", Description: "Tenkeyless, brown switches", Price: 89.90, Stock: 25},
		{ID: 3, Name: "USB-C Hub", Description: "7-in-1 hub with HDMI", Price: 39.50, Stock: 40},
		{ID: 4, Name: "Laptop Stand", Description: "Adjustable aluminium stand", Price: 31.00, Stock: 15},
		{ID: 5, Name: "Webcam", Description: "1080p webcam with microphone", Price: 54.00, Stock: 10},
	}
	for _, p := range seed {
		store.SetProduct(p)
	}
}
