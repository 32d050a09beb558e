package repository

import (
	"context"

	"github.com/Dhoini/CRM-service/internal/domain"
	"github.com/Dhoini/CRM-service/pkg/logger"
	"github.com/google/uuid"
)

// CachedCustomerRepository декоратор над CustomerRepository с кешированием чтения по ID
type CachedCustomerRepository struct {
	base  CustomerRepository
	cache *RedisCacheRepository
	log   *logger.Logger
}

// NewCachedCustomerRepository создает репозиторий клиентов с кешированием
func NewCachedCustomerRepository(base CustomerRepository, cache *RedisCacheRepository, log *logger.Logger) *CachedCustomerRepository {
	return &CachedCustomerRepository{
		base:  base,
		cache: cache,
		log:   log,
	}
}

// GetByID возвращает клиента по ID, сначала проверяя кеш
func (r *CachedCustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Customer, error) {
	cached, err := r.cache.GetCachedCustomer(ctx, id)
	if err == nil && cached != nil {
		return *cached, nil
	}

	customer, err := r.base.GetByID(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}

	// Ошибка кеширования не влияет на результат
	if cacheErr := r.cache.CacheCustomer(ctx, customer); cacheErr != nil {
		r.log.Warnw("Failed to cache customer after read", "error", cacheErr, "customerID", id)
	}

	return customer, nil
}

// List возвращает клиентов, удовлетворяющих фильтру
func (r *CachedCustomerRepository) List(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, error) {
	return r.base.List(ctx, filter)
}

// Count возвращает количество клиентов
func (r *CachedCustomerRepository) Count(ctx context.Context) (int, error) {
	return r.base.Count(ctx)
}

// EmailExists проверяет наличие клиента с указанным email
func (r *CachedCustomerRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.base.EmailExists(ctx, email)
}

// Create создает нового клиента и кеширует его
func (r *CachedCustomerRepository) Create(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	created, err := r.base.Create(ctx, customer)
	if err != nil {
		return domain.Customer{}, err
	}

	if cacheErr := r.cache.CacheCustomer(ctx, created); cacheErr != nil {
		r.log.Warnw("Failed to cache customer after create", "error", cacheErr, "customerID", created.ID)
	}

	return created, nil
}

// CreateAll сохраняет набор клиентов атомарно
func (r *CachedCustomerRepository) CreateAll(ctx context.Context, customers []domain.Customer) error {
	return r.base.CreateAll(ctx, customers)
}

// DeleteAll удаляет всех клиентов и инвалидирует кеш известных записей
func (r *CachedCustomerRepository) DeleteAll(ctx context.Context) error {
	customers, err := r.base.List(ctx, domain.CustomerFilter{})
	if err == nil {
		for _, c := range customers {
			if delErr := r.cache.DeleteCachedCustomer(ctx, c.ID); delErr != nil {
				r.log.Warnw("Failed to invalidate cached customer", "error", delErr, "customerID", c.ID)
			}
		}
	}

	return r.base.DeleteAll(ctx)
}
