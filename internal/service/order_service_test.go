package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Dhoini/CRM-service/internal/domain"
	"github.com/Dhoini/CRM-service/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingProducer записывает опубликованные заказы вместо отправки в Kafka
type capturingProducer struct {
	mu     sync.Mutex
	orders []domain.Order
}

func (p *capturingProducer) PublishOrderCreated(ctx context.Context, order domain.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, order)
	return nil
}

func (p *capturingProducer) Close() error { return nil }

type orderFixture struct {
	svc      OrderService
	custRepo *repository.InMemoryCustomerRepository
	prodRepo *repository.InMemoryProductRepository
	repo     *repository.InMemoryOrderRepository
	producer *capturingProducer
	customer domain.Customer
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	m, log := newTestDeps(t)

	custRepo := repository.NewInMemoryCustomerRepository(log)
	prodRepo := repository.NewInMemoryProductRepository(log)
	orderRepo := repository.NewInMemoryOrderRepository(log)
	producer := &capturingProducer{}

	customer, err := custRepo.Create(context.Background(), domain.Customer{
		ID:    uuid.New(),
		Name:  "Alice",
		Email: "alice@example.com",
	})
	require.NoError(t, err)

	return &orderFixture{
		svc:      NewOrderService(orderRepo, custRepo, prodRepo, producer, m, log),
		custRepo: custRepo,
		prodRepo: prodRepo,
		repo:     orderRepo,
		producer: producer,
		customer: customer,
	}
}

func (f *orderFixture) addProduct(t *testing.T, name string, price float64) domain.Product {
	t.Helper()
	p, err := f.prodRepo.Create(context.Background(), domain.Product{
		ID:    uuid.New(),
		Name:  name,
		Price: decimal.NewFromFloat(price),
		Stock: 10,
	})
	require.NoError(t, err)
	return p
}

func TestCreateOrder_TotalAmount(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	laptop := f.addProduct(t, "Laptop", 999.99)
	mouse := f.addProduct(t, "Mouse", 25.50)

	order, err := f.svc.Create(ctx, domain.CreateOrderRequest{
		CustomerID: f.customer.ID.String(),
		ProductIDs: []string{laptop.ID.String(), mouse.ID.String()},
	})
	require.NoError(t, err)

	assert.True(t, order.TotalAmount.Equal(decimal.NewFromFloat(1025.49)),
		"expected 1025.49, got %s", order.TotalAmount)
	assert.Equal(t, f.customer.ID, order.CustomerID)
	require.Len(t, order.Products, 2)
	assert.False(t, order.OrderDate.IsZero())

	// событие опубликовано
	require.Len(t, f.producer.orders, 1)
	assert.Equal(t, order.ID, f.producer.orders[0].ID)
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	laptop := f.addProduct(t, "Laptop", 999.99)
	missing := uuid.New()

	_, err := f.svc.Create(ctx, domain.CreateOrderRequest{
		CustomerID: f.customer.ID.String(),
		ProductIDs: []string{laptop.ID.String(), missing.String()},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Contains(t, err.Error(), missing.String())

	// заказ не создан
	count, countErr := f.repo.Count(ctx)
	require.NoError(t, countErr)
	assert.Equal(t, 0, count)
	assert.Empty(t, f.producer.orders)
}

func TestCreateOrder_UnknownCustomer(t *testing.T) {
	f := newOrderFixture(t)

	laptop := f.addProduct(t, "Laptop", 999.99)

	_, err := f.svc.Create(context.Background(), domain.CreateOrderRequest{
		CustomerID: uuid.New().String(),
		ProductIDs: []string{laptop.ID.String()},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	var nfe *domain.NotFoundError
	require.True(t, errors.As(err, &nfe))
	assert.Equal(t, "customer", nfe.Entity)
}

func TestCreateOrder_EmptyProductList(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.Create(context.Background(), domain.CreateOrderRequest{
		CustomerID: f.customer.ID.String(),
		ProductIDs: nil,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestCreateOrder_ExplicitOrderDate(t *testing.T) {
	f := newOrderFixture(t)

	laptop := f.addProduct(t, "Laptop", 999.99)
	date := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	order, err := f.svc.Create(context.Background(), domain.CreateOrderRequest{
		CustomerID: f.customer.ID.String(),
		ProductIDs: []string{laptop.ID.String()},
		OrderDate:  &date,
	})
	require.NoError(t, err)
	assert.True(t, order.OrderDate.Equal(date))
}

func TestTotalRevenue_NoOrders(t *testing.T) {
	f := newOrderFixture(t)

	total, err := f.svc.TotalRevenue(context.Background())
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.Zero))
}

func TestOrderList_DateWindow(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	laptop := f.addProduct(t, "Laptop", 999.99)

	oldDate := time.Now().AddDate(0, 0, -30)
	recentDate := time.Now().AddDate(0, 0, -2)

	_, err := f.svc.Create(ctx, domain.CreateOrderRequest{
		CustomerID: f.customer.ID.String(),
		ProductIDs: []string{laptop.ID.String()},
		OrderDate:  &oldDate,
	})
	require.NoError(t, err)

	recent, err := f.svc.Create(ctx, domain.CreateOrderRequest{
		CustomerID: f.customer.ID.String(),
		ProductIDs: []string{laptop.ID.String()},
		OrderDate:  &recentDate,
	})
	require.NoError(t, err)

	since := time.Now().AddDate(0, 0, -7)
	orders, err := f.svc.List(ctx, domain.OrderFilter{OrderedAfter: &since})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, recent.ID, orders[0].ID)
}
