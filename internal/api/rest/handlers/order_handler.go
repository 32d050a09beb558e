package handlers

import (
	"net/http"

	"github.com/Dhoini/CRM-service/internal/domain"
	"github.com/Dhoini/CRM-service/internal/service"
	"github.com/Dhoini/CRM-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler обработчик для заказов
type OrderHandler struct {
	service service.OrderService
	log     *logger.Logger
}

// NewOrderHandler создает новый обработчик заказов
func NewOrderHandler(svc service.OrderService, log *logger.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		log:     log,
	}
}

// GetOrders возвращает список заказов с учетом фильтров запроса
func (h *OrderHandler) GetOrders(c *gin.Context) {
	var filter domain.OrderFilter

	if raw := c.Query("customer_id"); raw != "" {
		customerID, err := uuid.Parse(raw)
		if err != nil {
			h.log.Warn("Invalid customer_id filter: %s", raw)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID format", "field": "customer_id"})
			return
		}
		filter.CustomerID = &customerID
	}

	var err error
	if filter.OrderedAfter, err = queryTime(c, "ordered_after"); err != nil {
		writeServiceError(c, h.log, err, "Failed to get orders")
		return
	}
	if filter.OrderedBefore, err = queryTime(c, "ordered_before"); err != nil {
		writeServiceError(c, h.log, err, "Failed to get orders")
		return
	}
	if filter.TotalMin, err = queryDecimal(c, "total_min"); err != nil {
		writeServiceError(c, h.log, err, "Failed to get orders")
		return
	}
	if filter.Limit, _, err = queryInt(c, "limit"); err != nil {
		writeServiceError(c, h.log, err, "Failed to get orders")
		return
	}
	if filter.Offset, _, err = queryInt(c, "offset"); err != nil {
		writeServiceError(c, h.log, err, "Failed to get orders")
		return
	}

	orders, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, h.log, err, "Failed to get orders")
		return
	}

	h.log.Info("Returned %d orders", len(orders))
	c.JSON(http.StatusOK, orders)
}

// GetOrder возвращает заказ по ID
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id := c.Param("id")

	order, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err, "Failed to get order")
		return
	}

	h.log.Info("Returned order with ID: %s", id)
	c.JSON(http.StatusOK, order)
}

// CreateOrder создает новый заказ
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req domain.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, h.log, err, "Failed to create order")
		return
	}

	h.log.Info("Created order with ID: %s, total: %s", order.ID, order.TotalAmount.StringFixed(2))
	c.JSON(http.StatusCreated, order)
}
