package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hoteliq/backend/docs"
	"github.com/hoteliq/backend/internal/database"
	"github.com/hoteliq/backend/internal/handlers"
	mW "github.com/hoteliq/backend/internal/middleware"
	"github.com/hoteliq/backend/internal/services"
	"github.com/hoteliq/backend/internal/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Hotel Folio Billing API
// @version 1.0
// @description API for hotel folio ledgers, POS orders and billing reports
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

func main() {
	// Initialize config
	viper.SetConfigFile(".env") // explicitly point to .env file
	viper.AutomaticEnv()        // allow environment variables to override .env
	viper.ReadInConfig()        // read .env file

	viper.SetEnvPrefix("")

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("jwt.expiry_hours", "JWT_EXPIRY_HOURS")
	viper.BindEnv("settlement.property_bic", "SETTLEMENT_PROPERTY_BIC")
	viper.BindEnv("settlement.clearing_id", "SETTLEMENT_CLEARING_ID")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	// Initialize Swagger docs
	docs.SwaggerInfo.Title = "Hotel Folio Billing API"
	docs.SwaggerInfo.Description = "API for hotel folio ledgers, POS orders and billing reports"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:8080"
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	// Initialize services
	db := database.InitDatabase()
	defer db.Close()

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	folioStore := store.NewPostgresFolioStore(db)
	folioService := services.NewFolioService(folioStore)
	aggregator := services.NewAggregator(folioService, redisClient)
	orderService := services.NewOrderService(aggregator)
	reportService := services.NewReportService(folioService, redisClient)
	qrService := services.NewQRService(folioService, redisClient)
	settlementService := services.NewSettlementService(
		viper.GetString("settlement.property_bic"),
		viper.GetString("settlement.clearing_id"),
	)

	folioHandler := handlers.NewFolioHandler(folioService, aggregator, settlementService)
	orderHandler := handlers.NewOrderHandler(orderService)
	reportHandler := handlers.NewReportHandler(reportService)
	qrHandler := handlers.NewQRHandler(qrService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(mW.MetricsMiddleware)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Access-Control-Allow-Origin"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			// Folio endpoints
			r.Post("/folios", folioHandler.OpenFolio)
			r.Get("/folios/{folioId}", folioHandler.GetFolio)
			r.Get("/folios/{folioId}/balance", folioHandler.GetBalance)
			r.Post("/folios/{folioId}/transactions", folioHandler.PostTransaction)
			r.Post("/folios/{folioId}/payments", folioHandler.PostPayment)
			r.Post("/folios/{folioId}/charges/{chargeId}/void", folioHandler.VoidCharge)
			r.Post("/folios/{folioId}/close", folioHandler.CloseFolio)
			r.Get("/folios/{folioId}/settlement", folioHandler.ExportSettlement)
			r.Post("/folios/{folioId}/qr", qrHandler.GenerateQR)

			// Order endpoints
			r.Post("/orders", orderHandler.CreateOrder)
			r.Get("/orders/{orderId}", orderHandler.GetOrder)
			r.Post("/orders/{orderId}/status", orderHandler.TransitionOrder)

			// Report endpoints
			r.Get("/reports/summary", reportHandler.GetSummary)

			// QR endpoints
			r.Post("/qr/process", qrHandler.ProcessQR)
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
