package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Dhoini/CRM-service/internal/domain"
	"github.com/Dhoini/CRM-service/internal/repository"
	"github.com/Dhoini/CRM-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// writeServiceError преобразует ошибку сервиса в HTTP ответ
func writeServiceError(c *gin.Context, log *logger.Logger, err error, fallback string) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		log.Warn("Validation failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
		return
	}

	var notFoundErr *domain.NotFoundError
	if errors.As(err, &notFoundErr) {
		log.Warn("Not found: %v", err)
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
		return
	}

	var duplicateErr *domain.DuplicateError
	if errors.As(err, &duplicateErr) {
		log.Warn("Duplicate: %v", err)
		c.JSON(http.StatusConflict, gin.H{"error": duplicateErr.Error()})
		return
	}

	if errors.Is(err, repository.ErrInvalidData) || errors.Is(err, domain.ErrInvalidInput) {
		log.Warn("Invalid data: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, domain.ErrNotFound) {
		log.Warn("Not found: %v", err)
		c.JSON(http.StatusNotFound, gin.H{"error": fallback})
		return
	}

	log.Error("%s: %v", fallback, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}

// queryInt разбирает целочисленный query параметр, 0 если параметр отсутствует
func queryInt(c *gin.Context, name string) (int, bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, domain.NewValidationError(name, "Must be an integer.")
	}
	return v, true, nil
}

// queryTime разбирает query параметр с датой в формате RFC3339
func queryTime(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.NewValidationError(name, "Must be an RFC3339 timestamp.")
	}
	return &t, nil
}

// queryDecimal разбирает десятичный query параметр
func queryDecimal(c *gin.Context, name string) (*decimal.Decimal, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, domain.NewValidationError(name, "Must be a decimal number.")
	}
	return &d, nil
}
