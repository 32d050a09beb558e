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
	"github.com/shopspring/decimal"
)

// PostgresOrderRepository реализация репозитория заказов через PostgreSQL
type PostgresOrderRepository struct {
	db  *pgxpool.Pool
	log *logger.Logger
}

// NewPostgresOrderRepository создает новый репозиторий заказов через PostgreSQL
func NewPostgresOrderRepository(db *pgxpool.Pool, log *logger.Logger) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		db:  db,
		log: log,
	}
}

// GetByID возвращает заказ по ID вместе с товарами
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	query := `
		SELECT id, customer_id, order_date, total_amount
		FROM orders
		WHERE id = $1
	`

	var order domain.Order
	err := r.db.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.CustomerID,
		&order.OrderDate,
		&order.TotalAmount,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, repository.ErrNotFound
		}
		return domain.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	products, err := r.loadProducts(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Products = products

	return order, nil
}

// List возвращает заказы, удовлетворяющие фильтру, в порядке создания
func (r *PostgresOrderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	query := `
		SELECT id, customer_id, order_date, total_amount
		FROM orders
	`

	var conditions []string
	var args []any

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if filter.OrderedAfter != nil {
		args = append(args, *filter.OrderedAfter)
		conditions = append(conditions, fmt.Sprintf("order_date >= $%d", len(args)))
	}
	if filter.OrderedBefore != nil {
		args = append(args, *filter.OrderedBefore)
		conditions = append(conditions, fmt.Sprintf("order_date <= $%d", len(args)))
	}
	if filter.TotalMin != nil {
		args = append(args, *filter.TotalMin)
		conditions = append(conditions, fmt.Sprintf("total_amount >= $%d", len(args)))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY order_date, id"

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
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.CustomerID, &order.OrderDate, &order.TotalAmount); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for i := range orders {
		products, err := r.loadProducts(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Products = products
	}

	return orders, nil
}

// Count возвращает количество заказов
func (r *PostgresOrderRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// TotalRevenue возвращает сумму total_amount по всем заказам
func (r *PostgresOrderRepository) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(total_amount), 0) FROM orders`).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum order totals: %w", err)
	}
	return total, nil
}

// Create сохраняет заказ и связи с товарами в одной транзакции
func (r *PostgresOrderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Order{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, customer_id, order_date, total_amount)
		VALUES ($1, $2, $3, $4)`,
		order.ID, order.CustomerID, order.OrderDate, order.TotalAmount,
	)
	if err != nil {
		return domain.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	// seq сохраняет порядок товаров из запроса
	for i, p := range order.Products {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_products (order_id, product_id, seq)
			VALUES ($1, $2, $3)`,
			order.ID, p.ID, i,
		)
		if err != nil {
			return domain.Order{}, fmt.Errorf("failed to link product %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Order{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return order, nil
}

// DeleteAll удаляет все заказы
func (r *PostgresOrderRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM orders`); err != nil {
		return fmt.Errorf("failed to delete orders: %w", err)
	}
	return nil
}

// loadProducts загружает товары заказа в порядке их привязки
func (r *PostgresOrderRepository) loadProducts(ctx context.Context, orderID uuid.UUID) ([]domain.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.name, p.price, p.stock, p.created_at
		FROM order_products op
		JOIN products p ON p.id = op.product_id
		WHERE op.order_id = $1
		ORDER BY op.seq`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query order products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order product: %w", err)
		}
		products = append(products, p)
	}

	return products, rows.Err()
}
