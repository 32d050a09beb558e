package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dhoini/CRM-service/internal/domain"
	"github.com/Dhoini/CRM-service/internal/kafka"
	"github.com/Dhoini/CRM-service/internal/metrics"
	"github.com/Dhoini/CRM-service/internal/repository"
	"github.com/Dhoini/CRM-service/internal/validation"
	"github.com/Dhoini/CRM-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderService интерфейс сервиса для работы с заказами
type OrderService interface {
	GetByID(ctx context.Context, id string) (domain.Order, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	Count(ctx context.Context) (int, error)
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
	Create(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error)
}

type orderService struct {
	repo     repository.OrderRepository
	custRepo repository.CustomerRepository
	prodRepo repository.ProductRepository
	producer kafka.Producer
	metrics  metrics.CRMMetrics
	log      *logger.Logger
}

// NewOrderService создает новый сервис для работы с заказами.
// producer может быть nil: публикация событий тогда пропускается.
func NewOrderService(
	repo repository.OrderRepository,
	custRepo repository.CustomerRepository,
	prodRepo repository.ProductRepository,
	producer kafka.Producer,
	m metrics.CRMMetrics,
	log *logger.Logger,
) OrderService {
	return &orderService{
		repo:     repo,
		custRepo: custRepo,
		prodRepo: prodRepo,
		producer: producer,
		metrics:  m,
		log:      log,
	}
}

func (s *orderService) GetByID(ctx context.Context, id string) (domain.Order, error) {
	s.log.Debug("Getting order by ID: %s", id)

	uuidID, err := uuid.Parse(id)
	if err != nil {
		s.log.Warn("Invalid UUID format: %s", id)
		return domain.Order{}, repository.ErrInvalidData
	}

	order, err := s.repo.GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Order{}, domain.NewNotFoundError("order", id)
		}
		return domain.Order{}, err
	}

	return order, nil
}

func (s *orderService) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	s.log.Debug("Listing orders")
	return s.repo.List(ctx, filter)
}

func (s *orderService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *orderService) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	return s.repo.TotalRevenue(ctx)
}

// Create создает заказ: проверяет клиента и все товары, считает сумму по
// текущим ценам и сохраняет заказ со связями атомарно. Любая ошибка проверки
// отменяет операцию целиком.
func (s *orderService) Create(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error) {
	s.log.Debug("Creating order for customer: %s", req.CustomerID)

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return domain.Order{}, domain.NewValidationError("customer_id", "Invalid customer ID.")
	}

	if _, err := s.custRepo.GetByID(ctx, customerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Order{}, domain.NewNotFoundError("customer", req.CustomerID)
		}
		return domain.Order{}, fmt.Errorf("failed to resolve customer: %w", err)
	}

	if err := validation.NonEmpty("product_ids", "product", len(req.ProductIDs)); err != nil {
		return domain.Order{}, err
	}

	products := make([]domain.Product, 0, len(req.ProductIDs))
	total := decimal.Zero
	for _, pid := range req.ProductIDs {
		productID, err := uuid.Parse(pid)
		if err != nil {
			return domain.Order{}, domain.NewValidationError("product_ids", fmt.Sprintf("Invalid product ID: %s", pid))
		}

		product, err := s.prodRepo.GetByID(ctx, productID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.Order{}, domain.NewNotFoundError("product", pid)
			}
			return domain.Order{}, fmt.Errorf("failed to resolve product %s: %w", pid, err)
		}

		products = append(products, product)
		total = total.Add(product.Price)
	}

	orderDate := time.Now()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	order := domain.Order{
		ID:          uuid.New(),
		CustomerID:  customerID,
		Products:    products,
		OrderDate:   orderDate,
		TotalAmount: total,
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return domain.Order{}, fmt.Errorf("failed to create order: %w", err)
	}

	s.metrics.IncOrdersCreated()
	s.metrics.ObserveOrderAmount(total.InexactFloat64())

	// Публикация события не влияет на результат операции
	if s.producer != nil {
		if pubErr := s.producer.PublishOrderCreated(ctx, created); pubErr != nil {
			s.log.Warnw("Failed to publish order created event", "error", pubErr, "orderID", created.ID)
		}
	}

	return created, nil
}
