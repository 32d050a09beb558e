package handlers

import (
	"net/http"

	"github.com/Dhoini/CRM-service/internal/domain"
	"github.com/Dhoini/CRM-service/internal/service"
	"github.com/Dhoini/CRM-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

// CustomerHandler обработчик для клиентов
type CustomerHandler struct {
	service service.CustomerService
	log     *logger.Logger
}

// NewCustomerHandler создает новый обработчик клиентов
func NewCustomerHandler(svc service.CustomerService, log *logger.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: svc,
		log:     log,
	}
}

// GetCustomers возвращает список клиентов с учетом фильтров запроса
func (h *CustomerHandler) GetCustomers(c *gin.Context) {
	filter := domain.CustomerFilter{
		NameContains:  c.Query("name_contains"),
		EmailContains: c.Query("email_contains"),
	}

	var err error
	if filter.CreatedAfter, err = queryTime(c, "created_after"); err != nil {
		writeServiceError(c, h.log, err, "Failed to get customers")
		return
	}
	if filter.CreatedBefore, err = queryTime(c, "created_before"); err != nil {
		writeServiceError(c, h.log, err, "Failed to get customers")
		return
	}
	if filter.Limit, _, err = queryInt(c, "limit"); err != nil {
		writeServiceError(c, h.log, err, "Failed to get customers")
		return
	}
	if filter.Offset, _, err = queryInt(c, "offset"); err != nil {
		writeServiceError(c, h.log, err, "Failed to get customers")
		return
	}

	customers, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, h.log, err, "Failed to get customers")
		return
	}

	h.log.Info("Returned %d customers", len(customers))
	c.JSON(http.StatusOK, customers)
}

// GetCustomer возвращает клиента по ID
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id := c.Param("id")

	customer, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err, "Failed to get customer")
		return
	}

	h.log.Info("Returned customer with ID: %s", id)
	c.JSON(http.StatusOK, customer)
}

// CreateCustomer создает нового клиента
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req domain.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, h.log, err, "Failed to create customer")
		return
	}

	h.log.Info("Created customer with ID: %s", customer.ID)
	c.JSON(http.StatusCreated, customer)
}

// BulkCreateCustomers создает пачку клиентов. Валидные записи сохраняются
// атомарно, невалидные возвращаются в списке ошибок с индексом и полем.
func (h *CustomerHandler) BulkCreateCustomers(c *gin.Context) {
	var req domain.BulkCreateCustomersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.BulkCreate(c.Request.Context(), req.Customers)
	if err != nil {
		h.log.Error("Failed to bulk create customers: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to bulk create customers"})
		return
	}

	h.log.Info("Bulk create finished: %d created, %d rejected", len(result.Customers), len(result.Errors))
	c.JSON(http.StatusOK, result)
}
