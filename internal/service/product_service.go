package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dhoini/CRM-service/internal/domain"
	"github.com/Dhoini/CRM-service/internal/metrics"
	"github.com/Dhoini/CRM-service/internal/repository"
	"github.com/Dhoini/CRM-service/internal/validation"
	"github.com/Dhoini/CRM-service/pkg/logger"
	"github.com/google/uuid"
)

// ProductService интерфейс сервиса для работы с товарами
type ProductService interface {
	GetByID(ctx context.Context, id string) (domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Create(ctx context.Context, req domain.CreateProductRequest) (domain.Product, error)
	// RestockBelow увеличивает остаток товаров ниже порога на amount и
	// возвращает обновленный набор. Обновление применяется атомарно.
	RestockBelow(ctx context.Context, threshold, amount int) ([]domain.Product, error)
}

type productService struct {
	repo    repository.ProductRepository
	metrics metrics.CRMMetrics
	log     *logger.Logger
}

// NewProductService создает новый сервис для работы с товарами
func NewProductService(repo repository.ProductRepository, m metrics.CRMMetrics, log *logger.Logger) ProductService {
	return &productService{
		repo:    repo,
		metrics: m,
		log:     log,
	}
}

func (s *productService) GetByID(ctx context.Context, id string) (domain.Product, error) {
	s.log.Debug("Getting product by ID: %s", id)

	uuidID, err := uuid.Parse(id)
	if err != nil {
		s.log.Warn("Invalid UUID format: %s", id)
		return domain.Product{}, repository.ErrInvalidData
	}

	product, err := s.repo.GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Product{}, domain.NewNotFoundError("product", id)
		}
		return domain.Product{}, err
	}

	return product, nil
}

func (s *productService) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	s.log.Debug("Listing products")
	return s.repo.List(ctx, filter)
}

func (s *productService) Create(ctx context.Context, req domain.CreateProductRequest) (domain.Product, error) {
	s.log.Debug("Creating product: %s", req.Name)

	if err := validation.Price(req.Price); err != nil {
		return domain.Product{}, err
	}

	// Отсутствующий stock трактуется как 0
	stock := 0
	if req.Stock != nil {
		stock = *req.Stock
	}
	if err := validation.Stock(stock); err != nil {
		return domain.Product{}, err
	}

	product := domain.Product{
		ID:        uuid.New(),
		Name:      req.Name,
		Price:     req.Price,
		Stock:     stock,
		CreatedAt: time.Now(),
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to create product: %w", err)
	}

	s.metrics.IncProductsCreated()
	return created, nil
}

func (s *productService) RestockBelow(ctx context.Context, threshold, amount int) ([]domain.Product, error) {
	s.log.Debug("Restocking products with stock below %d", threshold)

	lowStock, err := s.repo.ListStockBelow(ctx, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to list low-stock products: %w", err)
	}
	if len(lowStock) == 0 {
		return nil, nil
	}

	updates := make([]repository.StockUpdate, 0, len(lowStock))
	updated := make([]domain.Product, 0, len(lowStock))
	for _, p := range lowStock {
		newStock := p.Stock + amount
		if err := validation.Stock(newStock); err != nil {
			return nil, err
		}

		updates = append(updates, repository.StockUpdate{ID: p.ID, Stock: newStock})
		p.Stock = newStock
		updated = append(updated, p)
	}

	if err := s.repo.UpdateStocks(ctx, updates); err != nil {
		return nil, fmt.Errorf("failed to update stocks: %w", err)
	}

	s.log.Info("Restocked %d products", len(updated))
	return updated, nil
}
