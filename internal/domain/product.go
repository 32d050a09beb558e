package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product представляет собой модель товара
type Product struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
}

// CreateProductRequest представляет запрос на создание товара.
// Отсутствующий stock трактуется как 0.
type CreateProductRequest struct {
	Name  string          `json:"name" binding:"required"`
	Price decimal.Decimal `json:"price" binding:"required"`
	Stock *int            `json:"stock"`
}

// ProductFilter задает условия выборки товаров, объединяемые через AND
type ProductFilter struct {
	NameContains string
	PriceMin     *decimal.Decimal
	PriceMax     *decimal.Decimal
	StockBelow   *int
	Limit        int
	Offset       int
}
