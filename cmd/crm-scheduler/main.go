package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dhoini/CRM-service/internal/config"
	"github.com/Dhoini/CRM-service/internal/jobs"
	"github.com/Dhoini/CRM-service/internal/metrics"
	"github.com/Dhoini/CRM-service/internal/repository/postgres"
	"github.com/Dhoini/CRM-service/internal/service"
	"github.com/Dhoini/CRM-service/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	heartbeatInterval = 5 * time.Minute
	restockInterval   = 12 * time.Hour
	remindersInterval = 24 * time.Hour
	reportInterval    = 7 * 24 * time.Hour
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := initLogger(cfg.Logging.Level)
	log.Infow("CRM scheduler starting up...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.Database.GetDSN())
	if err != nil {
		log.Fatalw("Failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Infow("Database connection established")

	customerRepo := postgres.NewPostgresCustomerRepository(pool, log)
	productRepo := postgres.NewPostgresProductRepository(pool, log)
	orderRepo := postgres.NewPostgresOrderRepository(pool, log)

	registry := prometheus.NewRegistry()
	m := metrics.NewCRMMetrics(registry, log)

	customerService := service.NewCustomerService(customerRepo, m, log)
	productService := service.NewProductService(productRepo, m, log)
	orderService := service.NewOrderService(orderRepo, customerRepo, productRepo, nil, m, log)

	runner := jobs.NewRunner(customerService, productService, orderService, cfg.Jobs, log)

	go runEvery(ctx, heartbeatInterval, runner.Heartbeat)
	go runEvery(ctx, restockInterval, runner.RestockLowStock)
	go runEvery(ctx, remindersInterval, runner.SendOrderReminders)
	go runEvery(ctx, reportInterval, runner.GenerateReport)

	log.Infow("Scheduler started",
		"heartbeat", heartbeatInterval.String(),
		"restock", restockInterval.String(),
		"reminders", remindersInterval.String(),
		"report", reportInterval.String(),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infow("Shutdown signal received")

	cancel()
	log.Infow("Scheduler stopped. Goodbye!")
}

// runEvery выполняет задачу сразу и далее с фиксированным интервалом
func runEvery(ctx context.Context, interval time.Duration, job func(context.Context)) {
	job(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job(ctx)
		}
	}
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
