package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dhoini/CRM-service/internal/api/rest"
	"github.com/Dhoini/CRM-service/internal/config"
	"github.com/Dhoini/CRM-service/internal/kafka"
	"github.com/Dhoini/CRM-service/internal/metrics"
	"github.com/Dhoini/CRM-service/internal/repository"
	"github.com/Dhoini/CRM-service/internal/repository/postgres"
	"github.com/Dhoini/CRM-service/internal/service"
	"github.com/Dhoini/CRM-service/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// .env опционален, в контейнере конфигурация приходит из окружения
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := initLogger(cfg.Logging.Level)

	// Фатальный выход только здесь: в run все defer успевают отработать
	if err := run(cfg, log); err != nil {
		log.Fatalw("CRM service terminated", "error", err)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	log.Infow("CRM service starting up...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Подключаемся к базе данных
	pool, err := postgres.Connect(ctx, cfg.Database.GetDSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Infow("Database connection established")

	// Инициализируем базовые репозитории
	var customerRepo repository.CustomerRepository = postgres.NewPostgresCustomerRepository(pool, log)
	productRepo := postgres.NewPostgresProductRepository(pool, log)
	orderRepo := postgres.NewPostgresOrderRepository(pool, log)

	// Инициализируем Redis кеш
	redisCache, err := repository.NewRedisCacheRepository(
		cfg.Redis.Addr,
		cfg.Redis.Password,
		cfg.Redis.DB,
		log,
	)
	if err != nil {
		// Не фатально, но предупреждаем
		log.Warnw("Failed to initialize Redis cache, continuing without caching", "error", err)
	} else {
		log.Infow("Redis cache initialized successfully")
		customerRepo = repository.NewCachedCustomerRepository(customerRepo, redisCache, log)
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Errorw("Error closing Redis connection", "error", err)
			}
		}()
	}

	// Инициализируем Kafka Producer
	producer, err := kafka.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
	if err != nil {
		log.Errorw("Failed to initialize Kafka producer, continuing without event publishing", "error", err)
		producer = nil
	} else {
		log.Infow("Kafka producer initialized")
		defer func() {
			if err := producer.Close(); err != nil {
				log.Errorw("Error closing Kafka producer", "error", err)
			}
		}()
	}

	// Метрики Prometheus
	registry := prometheus.NewRegistry()
	m := metrics.NewCRMMetrics(registry, log)

	// Инициализируем service layer
	customerService := service.NewCustomerService(customerRepo, m, log)
	productService := service.NewProductService(productRepo, m, log)
	orderService := service.NewOrderService(orderRepo, customerRepo, productRepo, producer, m, log)

	// Инициализируем HTTP сервер с роутами
	router := rest.SetupRouter(log, registry, rest.Services{
		Customers: customerService,
		Products:  productService,
		Orders:    orderService,
	})
	server := rest.NewServer(router, cfg, log)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-quit:
		log.Infow("Shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown error", "error", err)
	} else {
		log.Infow("HTTP server gracefully stopped")
	}

	log.Infow("Cleanup finished. Goodbye!")
	return nil
}

// initLogger инициализирует логгер с уровнем из конфигурации
func initLogger(level string) *logger.Logger {
	switch level {
	case "debug":
		return logger.New(logger.DEBUG)
	case "warn":
		return logger.New(logger.WARN)
	case "error":
		return logger.New(logger.ERROR)
	default:
		return logger.New(logger.INFO)
	}
}
