package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/Dhoini/CRM-service/internal/domain"
	"github.com/Dhoini/CRM-service/pkg/logger"
	"github.com/google/uuid"
)

// StockUpdate задает новое значение остатка для товара
type StockUpdate struct {
	ID    uuid.UUID
	Stock int
}

// ProductRepository интерфейс для работы с товарами
type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	ListStockBelow(ctx context.Context, threshold int) ([]domain.Product, error)
	Create(ctx context.Context, product domain.Product) (domain.Product, error)
	// UpdateStocks применяет весь набор обновлений атомарно
	UpdateStocks(ctx context.Context, updates []StockUpdate) error
	DeleteAll(ctx context.Context) error
}

// InMemoryProductRepository реализация репозитория товаров в памяти.
// Хранит записи в порядке вставки.
type InMemoryProductRepository struct {
	products []domain.Product
	byID     map[uuid.UUID]int
	mutex    sync.RWMutex
	log      *logger.Logger
}

// NewInMemoryProductRepository создает новый репозиторий товаров в памяти
func NewInMemoryProductRepository(log *logger.Logger) *InMemoryProductRepository {
	return &InMemoryProductRepository{
		byID: make(map[uuid.UUID]int),
		log:  log,
	}
}

// GetByID возвращает товар по ID
func (r *InMemoryProductRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	idx, exists := r.byID[id]
	if !exists {
		return domain.Product{}, ErrNotFound
	}

	return r.products[idx], nil
}

// List возвращает товары, удовлетворяющие фильтру, в порядке создания
func (r *InMemoryProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	matched := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		if !matchProduct(p, filter) {
			continue
		}
		matched = append(matched, p)
	}

	return paginate(matched, filter.Limit, filter.Offset), nil
}

// ListStockBelow возвращает товары с остатком ниже порога
func (r *InMemoryProductRepository) ListStockBelow(ctx context.Context, threshold int) ([]domain.Product, error) {
	return r.List(ctx, domain.ProductFilter{StockBelow: &threshold})
}

// Create создает новый товар
func (r *InMemoryProductRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.byID[product.ID] = len(r.products)
	r.products = append(r.products, product)

	return product, nil
}

// UpdateStocks применяет обновления остатков атомарно
func (r *InMemoryProductRepository) UpdateStocks(ctx context.Context, updates []StockUpdate) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	// Проверяем весь набор до применения
	for _, u := range updates {
		if _, exists := r.byID[u.ID]; !exists {
			return ErrNotFound
		}
		if u.Stock < 0 {
			return ErrInvalidData
		}
	}

	for _, u := range updates {
		r.products[r.byID[u.ID]].Stock = u.Stock
	}

	return nil
}

// DeleteAll удаляет все товары
func (r *InMemoryProductRepository) DeleteAll(ctx context.Context) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.products = nil
	r.byID = make(map[uuid.UUID]int)

	return nil
}

// matchProduct проверяет товар на соответствие всем условиям фильтра
func matchProduct(p domain.Product, f domain.ProductFilter) bool {
	if f.NameContains != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.NameContains)) {
		return false
	}
	if f.PriceMin != nil && p.Price.Cmp(*f.PriceMin) < 0 {
		return false
	}
	if f.PriceMax != nil && p.Price.Cmp(*f.PriceMax) > 0 {
		return false
	}
	if f.StockBelow != nil && p.Stock >= *f.StockBelow {
		return false
	}
	return true
}
