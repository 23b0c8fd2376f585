package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/canteen-orders/config"
	"github.com/kendall-kelly/canteen-orders/controllers"
	"github.com/kendall-kelly/canteen-orders/middleware"
	"github.com/kendall-kelly/canteen-orders/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	config.SetConfig(cfg)
	logger := config.NewLogger(cfg)
	logger.Info("starting Canteen Orders API server", "env", cfg.GoEnv)

	if err := config.ConnectDatabase(cfg.DatabaseURL); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	db := config.GetDB()
	if err := config.Migrate(db); err != nil {
		logger.Error("database migration failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database migration completed successfully")

	events := newEventPublisher(cfg, logger)
	defer events.Close()

	store := services.NewGormOrderStore(db)
	controllers.SetOrderService(services.NewOrderService(store, events, logger, cfg.PositionsPageSize))
	controllers.SetSessionStore(services.NewGormSessionStore(db))
	controllers.SetExportService(newExportService(cfg, store, logger))
	if cfg.Auth0Domain != "" {
		controllers.SetOperatorDirectory(services.NewAuth0Directory(cfg.Auth0Domain))
	}

	operatorAuth, err := middleware.OperatorAuth(cfg)
	if err != nil {
		logger.Error("failed to set up operator authentication", "error", err)
		_ = events.Close()
		os.Exit(1)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := setupRouter(operatorAuth)

	port := ":" + cfg.Port
	logger.Info("server is running", "addr", "http://localhost"+port)
	if err := router.Run(port); err != nil {
		logger.Error("failed to start server", "error", err)
		_ = events.Close()
		os.Exit(1)
	}
}

// setupRouter builds the engine with every route and the shared middleware
func setupRouter(operatorAuth gin.HandlerFunc) *gin.Engine {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:          12 * time.Hour,
	}))
	router.Use(middleware.Metrics())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	controllers.RegisterRoutes(router, operatorAuth)
	return router
}

// newEventPublisher falls back to logging events when no broker is configured
// or the broker cannot be reached.
func newEventPublisher(cfg *config.Config, logger *slog.Logger) services.EventPublisher {
	if !cfg.EventsEnabled() {
		logger.Info("RABBITMQ_URL not set, order events are logged only")
		return services.NewLogEventPublisher(logger)
	}
	publisher, err := services.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.EventsExchange, logger)
	if err != nil {
		logger.Warn("order events are logged only", "error", err)
		return services.NewLogEventPublisher(logger)
	}
	logger.Info("publishing order events", "exchange", cfg.EventsExchange)
	return publisher
}

func newExportService(cfg *config.Config, store services.OrderStore, logger *slog.Logger) *services.ExportService {
	if !cfg.ExportEnabled() {
		logger.Info("AWS_S3_BUCKET not set, order export is disabled")
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	storage, err := services.NewS3Service(ctx, cfg)
	if err != nil {
		logger.Warn("order export is disabled", "error", err)
		return nil
	}
	return services.NewExportService(store, storage, cfg.ExportPrefix, logger)
}
