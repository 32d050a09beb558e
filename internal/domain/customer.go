package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer представляет собой модель клиента CRM
type Customer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCustomerRequest представляет запрос на создание клиента
type CreateCustomerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
}

// BulkCreateCustomersRequest представляет запрос на массовое создание клиентов
type BulkCreateCustomersRequest struct {
	Customers []CreateCustomerRequest `json:"customers" binding:"required"`
}

// BulkCustomerError описывает ошибку валидации одного элемента батча
type BulkCustomerError struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// BulkCreateResult результат массового создания клиентов
type BulkCreateResult struct {
	Customers []Customer          `json:"customers"`
	Errors    []BulkCustomerError `json:"errors"`
}

// CustomerFilter задает условия выборки клиентов, объединяемые через AND
type CustomerFilter struct {
	NameContains  string
	EmailContains string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Limit         int
	Offset        int
}
