package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Dhoini/CRM-service/internal/domain"
	"github.com/Dhoini/CRM-service/pkg/logger"
	"github.com/google/uuid"
)

// CustomerRepository интерфейс для работы с клиентами
type CustomerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Customer, error)
	List(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, error)
	Count(ctx context.Context) (int, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, customer domain.Customer) (domain.Customer, error)
	// CreateAll сохраняет весь набор атомарно: либо все записи, либо ни одной
	CreateAll(ctx context.Context, customers []domain.Customer) error
	DeleteAll(ctx context.Context) error
}

// InMemoryCustomerRepository реализация репозитория клиентов в памяти.
// Хранит записи в порядке вставки.
type InMemoryCustomerRepository struct {
	customers []domain.Customer
	byID      map[uuid.UUID]int
	mutex     sync.RWMutex
	log       *logger.Logger
}

// NewInMemoryCustomerRepository создает новый репозиторий клиентов в памяти
func NewInMemoryCustomerRepository(log *logger.Logger) *InMemoryCustomerRepository {
	return &InMemoryCustomerRepository{
		byID: make(map[uuid.UUID]int),
		log:  log,
	}
}

// GetByID возвращает клиента по ID
func (r *InMemoryCustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Customer, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	idx, exists := r.byID[id]
	if !exists {
		return domain.Customer{}, ErrNotFound
	}

	return r.customers[idx], nil
}

// List возвращает клиентов, удовлетворяющих фильтру, в порядке создания
func (r *InMemoryCustomerRepository) List(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	matched := make([]domain.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		if !matchCustomer(c, filter) {
			continue
		}
		matched = append(matched, c)
	}

	return paginate(matched, filter.Limit, filter.Offset), nil
}

// Count возвращает количество клиентов
func (r *InMemoryCustomerRepository) Count(ctx context.Context) (int, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.customers), nil
}

// EmailExists проверяет наличие клиента с указанным email
func (r *InMemoryCustomerRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, c := range r.customers {
		if strings.EqualFold(c.Email, email) {
			return true, nil
		}
	}

	return false, nil
}

// Create создает нового клиента
func (r *InMemoryCustomerRepository) Create(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	// Проверка на уникальность email
	for _, c := range r.customers {
		if strings.EqualFold(c.Email, customer.Email) {
			return domain.Customer{}, ErrDuplicate
		}
	}

	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now()
	}

	r.byID[customer.ID] = len(r.customers)
	r.customers = append(r.customers, customer)

	return customer, nil
}

// CreateAll сохраняет набор клиентов атомарно
func (r *InMemoryCustomerRepository) CreateAll(ctx context.Context, customers []domain.Customer) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	// Сначала проверяем весь набор, чтобы не оставить частичную запись
	seen := make(map[string]struct{}, len(customers))
	for _, nc := range customers {
		key := strings.ToLower(nc.Email)
		if _, dup := seen[key]; dup {
			return ErrDuplicate
		}
		seen[key] = struct{}{}

		for _, c := range r.customers {
			if strings.EqualFold(c.Email, nc.Email) {
				return ErrDuplicate
			}
		}
	}

	now := time.Now()
	for _, nc := range customers {
		if nc.CreatedAt.IsZero() {
			nc.CreatedAt = now
		}
		r.byID[nc.ID] = len(r.customers)
		r.customers = append(r.customers, nc)
	}

	return nil
}

// DeleteAll удаляет всех клиентов
func (r *InMemoryCustomerRepository) DeleteAll(ctx context.Context) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.customers = nil
	r.byID = make(map[uuid.UUID]int)

	return nil
}

// matchCustomer проверяет клиента на соответствие всем условиям фильтра
func matchCustomer(c domain.Customer, f domain.CustomerFilter) bool {
	if f.NameContains != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.NameContains)) {
		return false
	}
	if f.EmailContains != "" && !strings.Contains(strings.ToLower(c.Email), strings.ToLower(f.EmailContains)) {
		return false
	}
	if f.CreatedAfter != nil && c.CreatedAt.Before(*f.CreatedAfter) {
		return false
	}
	if f.CreatedBefore != nil && c.CreatedAt.After(*f.CreatedBefore) {
		return false
	}
	return true
}

// paginate применяет limit/offset к отфильтрованному срезу
func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
