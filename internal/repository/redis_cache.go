package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dhoini/CRM-service/internal/domain"
	"github.com/Dhoini/CRM-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// Префикс ключей для кешируемых клиентов
	customerKeyPrefix = "customer:"

	// TTL для кэша
	defaultCacheTTL = 15 * time.Minute
)

// RedisCacheRepository реализует кеширование для репозиториев с использованием Redis
type RedisCacheRepository struct {
	client *redis.Client
	log    *logger.Logger
}

// NewRedisCacheRepository создает новый экземпляр Redis репозитория
func NewRedisCacheRepository(redisAddr, redisPassword string, redisDB int, log *logger.Logger) (*RedisCacheRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})

	// Проверяем соединение с Redis
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Errorw("Failed to connect to Redis", "error", err)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Infow("Connected to Redis successfully", "addr", redisAddr)
	return &RedisCacheRepository{
		client: client,
		log:    log,
	}, nil
}

// Close закрывает соединение с Redis
func (r *RedisCacheRepository) Close() error {
	return r.client.Close()
}

// CacheCustomer кеширует клиента в Redis
func (r *RedisCacheRepository) CacheCustomer(ctx context.Context, customer domain.Customer) error {
	key := customerKeyPrefix + customer.ID.String()

	data, err := json.Marshal(customer)
	if err != nil {
		r.log.Errorw("Failed to marshal customer for caching", "error", err, "customerID", customer.ID)
		return fmt.Errorf("failed to marshal customer: %w", err)
	}

	if err := r.client.Set(ctx, key, data, defaultCacheTTL).Err(); err != nil {
		r.log.Errorw("Failed to cache customer in Redis", "error", err, "customerID", customer.ID)
		return fmt.Errorf("failed to cache customer: %w", err)
	}

	r.log.Debugw("Customer cached successfully", "customerID", customer.ID)
	return nil
}

// GetCachedCustomer получает клиента из кеша. Возвращает nil при промахе.
func (r *RedisCacheRepository) GetCachedCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	key := customerKeyPrefix + id.String()

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			r.log.Debugw("Customer not found in cache", "customerID", id)
			return nil, nil
		}
		r.log.Errorw("Error getting customer from Redis", "error", err, "customerID", id)
		return nil, fmt.Errorf("failed to get customer from cache: %w", err)
	}

	var customer domain.Customer
	if err := json.Unmarshal(data, &customer); err != nil {
		r.log.Errorw("Failed to unmarshal cached customer", "error", err, "customerID", id)
		return nil, fmt.Errorf("failed to unmarshal cached customer: %w", err)
	}

	r.log.Debugw("Customer retrieved from cache", "customerID", id)
	return &customer, nil
}

// DeleteCachedCustomer удаляет клиента из кеша
func (r *RedisCacheRepository) DeleteCachedCustomer(ctx context.Context, id uuid.UUID) error {
	key := customerKeyPrefix + id.String()

	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.log.Errorw("Failed to delete customer from cache", "error", err, "customerID", id)
		return fmt.Errorf("failed to delete customer from cache: %w", err)
	}

	r.log.Debugw("Customer deleted from cache", "customerID", id)
	return nil
}
