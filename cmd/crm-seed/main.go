package main

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/Dhoini/CRM-service/internal/config"
	"github.com/Dhoini/CRM-service/internal/domain"
	"github.com/Dhoini/CRM-service/internal/metrics"
	"github.com/Dhoini/CRM-service/internal/repository/postgres"
	"github.com/Dhoini/CRM-service/internal/service"
	"github.com/Dhoini/CRM-service/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// seedCustomers тестовые клиенты
var seedCustomers = []domain.CreateCustomerRequest{
	{Name: "Alice", Email: "alice@example.com", Phone: "+1234567890"},
	{Name: "Bob", Email: "bob@example.com", Phone: "123-456-7890"},
	{Name: "Charlie", Email: "charlie@example.com"},
}

// seedProducts тестовые товары
var seedProducts = []struct {
	Name  string
	Price string
	Stock int
}{
	{"Laptop", "999.99", 10},
	{"Mouse", "25.50", 50},
	{"Keyboard", "75.00", 30},
	{"Monitor", "300.00", 15},
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.INFO)

	// Фатальный выход только здесь: в run все defer успевают отработать
	if err := run(cfg, log); err != nil {
		log.Fatalw("Seeding failed", "error", err)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	log.Infow("Seeding CRM database...")

	ctx := context.Background()

	pool, err := postgres.Connect(ctx, cfg.Database.GetDSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	customerRepo := postgres.NewPostgresCustomerRepository(pool, log)
	productRepo := postgres.NewPostgresProductRepository(pool, log)
	orderRepo := postgres.NewPostgresOrderRepository(pool, log)

	registry := prometheus.NewRegistry()
	m := metrics.NewCRMMetrics(registry, log)

	customerService := service.NewCustomerService(customerRepo, m, log)
	productService := service.NewProductService(productRepo, m, log)
	orderService := service.NewOrderService(orderRepo, customerRepo, productRepo, nil, m, log)

	// Очистка: сначала заказы, затем клиенты и товары
	if err := orderRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear orders: %w", err)
	}
	if err := customerRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear customers: %w", err)
	}
	if err := productRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear products: %w", err)
	}
	log.Infow("Existing data cleared")

	customers := make([]domain.Customer, 0, len(seedCustomers))
	for _, req := range seedCustomers {
		customer, err := customerService.Create(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to seed customer %s: %w", req.Email, err)
		}
		customers = append(customers, customer)
	}
	log.Infow("Customers seeded", "count", len(customers))

	products := make([]domain.Product, 0, len(seedProducts))
	for _, sp := range seedProducts {
		price, err := decimal.NewFromString(sp.Price)
		if err != nil {
			return fmt.Errorf("invalid seed price for %s: %w", sp.Name, err)
		}
		stock := sp.Stock
		product, err := productService.Create(ctx, domain.CreateProductRequest{
			Name:  sp.Name,
			Price: price,
			Stock: &stock,
		})
		if err != nil {
			return fmt.Errorf("failed to seed product %s: %w", sp.Name, err)
		}
		products = append(products, product)
	}
	log.Infow("Products seeded", "count", len(products))

	// Каждому клиенту от 1 до 3 заказов со случайным набором товаров
	orderCount := 0
	for _, customer := range customers {
		for i := 0; i < 1+rand.Intn(3); i++ {
			picked := rand.Perm(len(products))[:1+rand.Intn(len(products))]
			productIDs := make([]string, 0, len(picked))
			for _, idx := range picked {
				productIDs = append(productIDs, products[idx].ID.String())
			}

			order, err := orderService.Create(ctx, domain.CreateOrderRequest{
				CustomerID: customer.ID.String(),
				ProductIDs: productIDs,
			})
			if err != nil {
				return fmt.Errorf("failed to seed order for %s: %w", customer.Email, err)
			}
			orderCount++
			log.Infow("Order seeded",
				"customer", customer.Email,
				"products", len(order.Products),
				"total", order.TotalAmount.StringFixed(2),
			)
		}
	}

	log.Infow("Seeding finished", "customers", len(customers), "products", len(products), "orders", orderCount)
	return nil
}
