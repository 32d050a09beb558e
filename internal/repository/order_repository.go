package repository

import (
	"context"
	"sync"

	"github.com/Dhoini/CRM-service/internal/domain"
	"github.com/Dhoini/CRM-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderRepository интерфейс для работы с заказами
type OrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Order, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	Count(ctx context.Context) (int, error)
	// TotalRevenue возвращает сумму total_amount по всем заказам, 0 при отсутствии заказов
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
	// Create сохраняет заказ вместе со связями с товарами атомарно
	Create(ctx context.Context, order domain.Order) (domain.Order, error)
	DeleteAll(ctx context.Context) error
}

// InMemoryOrderRepository реализация репозитория заказов в памяти.
// Хранит записи в порядке вставки.
type InMemoryOrderRepository struct {
	orders []domain.Order
	byID   map[uuid.UUID]int
	mutex  sync.RWMutex
	log    *logger.Logger
}

// NewInMemoryOrderRepository создает новый репозиторий заказов в памяти
func NewInMemoryOrderRepository(log *logger.Logger) *InMemoryOrderRepository {
	return &InMemoryOrderRepository{
		byID: make(map[uuid.UUID]int),
		log:  log,
	}
}

// GetByID возвращает заказ по ID
func (r *InMemoryOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	idx, exists := r.byID[id]
	if !exists {
		return domain.Order{}, ErrNotFound
	}

	return r.orders[idx], nil
}

// List возвращает заказы, удовлетворяющие фильтру, в порядке создания
func (r *InMemoryOrderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	matched := make([]domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if !matchOrder(o, filter) {
			continue
		}
		matched = append(matched, o)
	}

	return paginate(matched, filter.Limit, filter.Offset), nil
}

// Count возвращает количество заказов
func (r *InMemoryOrderRepository) Count(ctx context.Context) (int, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.orders), nil
}

// TotalRevenue возвращает сумму total_amount по всем заказам
func (r *InMemoryOrderRepository) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	total := decimal.Zero
	for _, o := range r.orders {
		total = total.Add(o.TotalAmount)
	}

	return total, nil
}

// Create сохраняет заказ
func (r *InMemoryOrderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.byID[order.ID] = len(r.orders)
	r.orders = append(r.orders, order)

	return order, nil
}

// DeleteAll удаляет все заказы
func (r *InMemoryOrderRepository) DeleteAll(ctx context.Context) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.orders = nil
	r.byID = make(map[uuid.UUID]int)

	return nil
}

// matchOrder проверяет заказ на соответствие всем условиям фильтра
func matchOrder(o domain.Order, f domain.OrderFilter) bool {
	if f.CustomerID != nil && o.CustomerID != *f.CustomerID {
		return false
	}
	if f.OrderedAfter != nil && o.OrderDate.Before(*f.OrderedAfter) {
		return false
	}
	if f.OrderedBefore != nil && o.OrderDate.After(*f.OrderedBefore) {
		return false
	}
	if f.TotalMin != nil && o.TotalAmount.Cmp(*f.TotalMin) < 0 {
		return false
	}
	return true
}
