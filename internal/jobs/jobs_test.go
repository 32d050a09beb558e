package jobs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Dhoini/CRM-service/internal/config"
	"github.com/Dhoini/CRM-service/internal/domain"
	"github.com/Dhoini/CRM-service/internal/metrics"
	"github.com/Dhoini/CRM-service/internal/repository"
	"github.com/Dhoini/CRM-service/internal/service"
	"github.com/Dhoini/CRM-service/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jobFixture struct {
	runner    *Runner
	cfg       config.JobsConfig
	customers service.CustomerService
	products  service.ProductService
	orders    service.OrderService
	custRepo  *repository.InMemoryCustomerRepository
	prodRepo  *repository.InMemoryProductRepository
}

func newJobFixture(t *testing.T, apiBaseURL string) *jobFixture {
	t.Helper()

	log := logger.New(logger.ERROR)
	m := metrics.NewCRMMetrics(prometheus.NewRegistry(), log)

	custRepo := repository.NewInMemoryCustomerRepository(log)
	prodRepo := repository.NewInMemoryProductRepository(log)
	orderRepo := repository.NewInMemoryOrderRepository(log)

	customers := service.NewCustomerService(custRepo, m, log)
	products := service.NewProductService(prodRepo, m, log)
	orders := service.NewOrderService(orderRepo, custRepo, prodRepo, nil, m, log)

	dir := t.TempDir()
	cfg := config.JobsConfig{
		APIBaseURL:       apiBaseURL,
		HeartbeatLog:     filepath.Join(dir, "crm_heartbeat_log.txt"),
		LowStockLog:      filepath.Join(dir, "low_stock_updates_log.txt"),
		RemindersLog:     filepath.Join(dir, "order_reminders_log.txt"),
		ReportLog:        filepath.Join(dir, "crm_report_log.txt"),
		RestockThreshold: 10,
		RestockAmount:    10,
		ReminderDays:     7,
	}

	return &jobFixture{
		runner:    NewRunner(customers, products, orders, cfg, log),
		cfg:       cfg,
		customers: customers,
		products:  products,
		orders:    orders,
		custRepo:  custRepo,
		prodRepo:  prodRepo,
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestHeartbeat_Responsive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := newJobFixture(t, srv.URL)
	f.runner.Heartbeat(context.Background())

	lines := readLines(t, f.cfg.HeartbeatLog)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "CRM is alive (API endpoint is responsive)")
}

func TestHeartbeat_Unreachable(t *testing.T) {
	// закрытый сервер гарантирует ошибку соединения
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	f := newJobFixture(t, srv.URL)
	f.runner.Heartbeat(context.Background())

	lines := readLines(t, f.cfg.HeartbeatLog)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "API endpoint is unresponsive")
	assert.NotContains(t, lines[0], "API endpoint is responsive")
}

func TestHeartbeat_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := newJobFixture(t, srv.URL)
	f.runner.Heartbeat(context.Background())

	lines := readLines(t, f.cfg.HeartbeatLog)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "API endpoint is unresponsive: status 503")
}

func TestRestockLowStock(t *testing.T) {
	f := newJobFixture(t, "http://localhost:8080")
	ctx := context.Background()

	mustCreate := func(name string, price float64, stock int) {
		s := stock
		_, err := f.products.Create(ctx, domain.CreateProductRequest{
			Name:  name,
			Price: decimal.NewFromFloat(price),
			Stock: &s,
		})
		require.NoError(t, err)
	}
	mustCreate("Laptop", 999.99, 3)
	mustCreate("Mouse", 25.50, 50)

	f.runner.RestockLowStock(ctx)

	lines := readLines(t, f.cfg.LowStockLog)
	assert.Contains(t, lines[0], "Low Stock Update")
	assert.Contains(t, lines[1], "Restocked Laptop to new stock level of 13")
	assert.Contains(t, lines[2], "Summary: Restocked 1 products")

	products, err := f.products.List(ctx, domain.ProductFilter{})
	require.NoError(t, err)
	for _, p := range products {
		assert.GreaterOrEqual(t, p.Stock, f.cfg.RestockThreshold)
	}
}

func TestRestockLowStock_NothingBelowThreshold(t *testing.T) {
	f := newJobFixture(t, "http://localhost:8080")

	f.runner.RestockLowStock(context.Background())

	// файл не создается, если пополнять нечего
	_, err := os.Stat(f.cfg.LowStockLog)
	assert.True(t, os.IsNotExist(err))
}

func TestSendOrderReminders_RecentOrdersOnly(t *testing.T) {
	f := newJobFixture(t, "http://localhost:8080")
	ctx := context.Background()

	customer, err := f.customers.Create(ctx, domain.CreateCustomerRequest{
		Name:  "Alice",
		Email: "alice@example.com",
	})
	require.NoError(t, err)

	stock := 10
	product, err := f.products.Create(ctx, domain.CreateProductRequest{
		Name:  "Laptop",
		Price: decimal.NewFromFloat(999.99),
		Stock: &stock,
	})
	require.NoError(t, err)

	oldDate := time.Now().AddDate(0, 0, -30)
	_, err = f.orders.Create(ctx, domain.CreateOrderRequest{
		CustomerID: customer.ID.String(),
		ProductIDs: []string{product.ID.String()},
		OrderDate:  &oldDate,
	})
	require.NoError(t, err)

	recent, err := f.orders.Create(ctx, domain.CreateOrderRequest{
		CustomerID: customer.ID.String(),
		ProductIDs: []string{product.ID.String()},
	})
	require.NoError(t, err)

	f.runner.SendOrderReminders(ctx)

	lines := readLines(t, f.cfg.RemindersLog)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "Sending reminder for Order ID "+recent.ID.String())
	assert.Contains(t, lines[0], "to customer alice@example.com.")
}

func TestGenerateReport(t *testing.T) {
	f := newJobFixture(t, "http://localhost:8080")
	ctx := context.Background()

	customer, err := f.customers.Create(ctx, domain.CreateCustomerRequest{
		Name:  "Alice",
		Email: "alice@example.com",
	})
	require.NoError(t, err)

	stock := 10
	product, err := f.products.Create(ctx, domain.CreateProductRequest{
		Name:  "Laptop",
		Price: decimal.NewFromFloat(999.99),
		Stock: &stock,
	})
	require.NoError(t, err)

	_, err = f.orders.Create(ctx, domain.CreateOrderRequest{
		CustomerID: customer.ID.String(),
		ProductIDs: []string{product.ID.String()},
	})
	require.NoError(t, err)

	f.runner.GenerateReport(ctx)

	lines := readLines(t, f.cfg.ReportLog)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "Report: 1 customers, 1 orders, $999.99 revenue")
}

func TestGenerateReport_EmptyStore(t *testing.T) {
	f := newJobFixture(t, "http://localhost:8080")

	f.runner.GenerateReport(context.Background())

	lines := readLines(t, f.cfg.ReportLog)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "Report: 0 customers, 0 orders, $0.00 revenue")
}

func TestGenerateReport_RepeatedRunsAppend(t *testing.T) {
	f := newJobFixture(t, "http://localhost:8080")
	ctx := context.Background()

	f.runner.GenerateReport(ctx)
	f.runner.GenerateReport(ctx)

	lines := readLines(t, f.cfg.ReportLog)
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Contains(t, line, "Report: 0 customers, 0 orders, $0.00 revenue")
	}
}
