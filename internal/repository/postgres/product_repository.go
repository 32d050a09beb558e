package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dhoini/CRM-service/internal/domain"
	"github.com/Dhoini/CRM-service/internal/repository"
	"github.com/Dhoini/CRM-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresProductRepository реализация репозитория товаров через PostgreSQL
type PostgresProductRepository struct {
	db  *pgxpool.Pool
	log *logger.Logger
}

// NewPostgresProductRepository создает новый репозиторий товаров через PostgreSQL
func NewPostgresProductRepository(db *pgxpool.Pool, log *logger.Logger) *PostgresProductRepository {
	return &PostgresProductRepository{
		db:  db,
		log: log,
	}
}

// GetByID возвращает товар по ID
func (r *PostgresProductRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	query := `SELECT id, name, price, stock, created_at FROM products WHERE id = $1`

	var product domain.Product
	err := r.db.QueryRow(ctx, query, id).Scan(&product.ID, &product.Name, &product.Price, &product.Stock, &product.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, repository.ErrNotFound
		}
		return domain.Product{}, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// List возвращает товары, удовлетворяющие фильтру, в порядке создания
func (r *PostgresProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	query := `SELECT id, name, price, stock, created_at FROM products`

	var conditions []string
	var args []any

	if filter.NameContains != "" {
		args = append(args, "%"+filter.NameContains+"%")
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if filter.PriceMin != nil {
		args = append(args, *filter.PriceMin)
		conditions = append(conditions, fmt.Sprintf("price >= $%d", len(args)))
	}
	if filter.PriceMax != nil {
		args = append(args, *filter.PriceMax)
		conditions = append(conditions, fmt.Sprintf("price <= $%d", len(args)))
	}
	if filter.StockBelow != nil {
		args = append(args, *filter.StockBelow)
		conditions = append(conditions, fmt.Sprintf("stock < $%d", len(args)))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at, id"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(&product.ID, &product.Name, &product.Price, &product.Stock, &product.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// ListStockBelow возвращает товары с остатком ниже порога
func (r *PostgresProductRepository) ListStockBelow(ctx context.Context, threshold int) ([]domain.Product, error) {
	return r.List(ctx, domain.ProductFilter{StockBelow: &threshold})
}

// Create создает новый товар
func (r *PostgresProductRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	query := `
		INSERT INTO products (id, name, price, stock, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query, product.ID, product.Name, product.Price, product.Stock, product.CreatedAt)
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// UpdateStocks применяет обновления остатков в одной транзакции
func (r *PostgresProductRepository) UpdateStocks(ctx context.Context, updates []repository.StockUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, u := range updates {
		if u.Stock < 0 {
			return repository.ErrInvalidData
		}

		res, err := tx.Exec(ctx, `UPDATE products SET stock = $1 WHERE id = $2`, u.Stock, u.ID)
		if err != nil {
			return fmt.Errorf("failed to update stock for product %s: %w", u.ID, err)
		}
		if res.RowsAffected() == 0 {
			return repository.ErrNotFound
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteAll удаляет все товары
func (r *PostgresProductRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("failed to delete products: %w", err)
	}
	return nil
}
