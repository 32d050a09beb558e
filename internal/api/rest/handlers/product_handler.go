package handlers

import (
	"net/http"

	"github.com/Dhoini/CRM-service/internal/domain"
	"github.com/Dhoini/CRM-service/internal/service"
	"github.com/Dhoini/CRM-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

// ProductHandler обработчик для товаров
type ProductHandler struct {
	service service.ProductService
	log     *logger.Logger
}

// NewProductHandler создает новый обработчик товаров
func NewProductHandler(svc service.ProductService, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		log:     log,
	}
}

// GetProducts возвращает список товаров с учетом фильтров запроса
func (h *ProductHandler) GetProducts(c *gin.Context) {
	filter := domain.ProductFilter{
		NameContains: c.Query("name_contains"),
	}

	var err error
	if filter.PriceMin, err = queryDecimal(c, "price_min"); err != nil {
		writeServiceError(c, h.log, err, "Failed to get products")
		return
	}
	if filter.PriceMax, err = queryDecimal(c, "price_max"); err != nil {
		writeServiceError(c, h.log, err, "Failed to get products")
		return
	}
	if below, ok, err := queryInt(c, "stock_below"); err != nil {
		writeServiceError(c, h.log, err, "Failed to get products")
		return
	} else if ok {
		filter.StockBelow = &below
	}
	if filter.Limit, _, err = queryInt(c, "limit"); err != nil {
		writeServiceError(c, h.log, err, "Failed to get products")
		return
	}
	if filter.Offset, _, err = queryInt(c, "offset"); err != nil {
		writeServiceError(c, h.log, err, "Failed to get products")
		return
	}

	products, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, h.log, err, "Failed to get products")
		return
	}

	h.log.Info("Returned %d products", len(products))
	c.JSON(http.StatusOK, products)
}

// GetProduct возвращает товар по ID
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id := c.Param("id")

	product, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err, "Failed to get product")
		return
	}

	h.log.Info("Returned product with ID: %s", id)
	c.JSON(http.StatusOK, product)
}

// CreateProduct создает новый товар
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req domain.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, h.log, err, "Failed to create product")
		return
	}

	h.log.Info("Created product with ID: %s", product.ID)
	c.JSON(http.StatusCreated, product)
}
