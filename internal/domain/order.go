package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order представляет собой модель заказа.
// TotalAmount — производное поле: сумма цен товаров на момент последнего пересчета.
type Order struct {
	ID          uuid.UUID       `json:"id"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	Products    []Product       `json:"products"`
	OrderDate   time.Time       `json:"order_date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// CreateOrderRequest представляет запрос на создание заказа
type CreateOrderRequest struct {
	CustomerID string     `json:"customer_id" binding:"required"`
	ProductIDs []string   `json:"product_ids" binding:"required"`
	OrderDate  *time.Time `json:"order_date"`
}

// OrderFilter задает условия выборки заказов, объединяемые через AND
type OrderFilter struct {
	CustomerID    *uuid.UUID
	OrderedAfter  *time.Time
	OrderedBefore *time.Time
	TotalMin      *decimal.Decimal
	Limit         int
	Offset        int
}
