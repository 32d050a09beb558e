package metrics

import (
	"github.com/Dhoini/CRM-service/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CRMMetrics интерфейс для метрик CRM
type CRMMetrics interface {
	IncCustomersCreated(count int)
	IncBulkValidationError(field string)
	IncProductsCreated()
	IncOrdersCreated()
	ObserveOrderAmount(amount float64)
}

type crmMetrics struct {
	log              *logger.Logger
	customersCreated prometheus.Counter
	bulkErrors       *prometheus.CounterVec
	productsCreated  prometheus.Counter
	ordersCreated    prometheus.Counter
	orderAmount      prometheus.Histogram
}

// NewCRMMetrics создает новые метрики CRM
func NewCRMMetrics(registry *prometheus.Registry, log *logger.Logger) CRMMetrics {
	customersCreated := promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "crm_customers_created_total",
			Help: "The total number of created customers",
		},
	)

	bulkErrors := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_bulk_validation_errors_total",
			Help: "The total number of per-item validation errors in bulk customer creation",
		},
		[]string{"field"},
	)

	productsCreated := promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "crm_products_created_total",
			Help: "The total number of created products",
		},
	)

	ordersCreated := promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "crm_orders_created_total",
			Help: "The total number of created orders",
		},
	)

	orderAmount := promauto.With(registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crm_order_amount",
			Help:    "Order total amounts distribution",
			Buckets: prometheus.ExponentialBuckets(10, 10, 5), // 10, 100, 1000, 10000, 100000
		},
	)

	return &crmMetrics{
		log:              log,
		customersCreated: customersCreated,
		bulkErrors:       bulkErrors,
		productsCreated:  productsCreated,
		ordersCreated:    ordersCreated,
		orderAmount:      orderAmount,
	}
}

// IncCustomersCreated увеличивает счетчик созданных клиентов
func (m *crmMetrics) IncCustomersCreated(count int) {
	m.customersCreated.Add(float64(count))
}

// IncBulkValidationError увеличивает счетчик ошибок валидации в батче
func (m *crmMetrics) IncBulkValidationError(field string) {
	m.bulkErrors.WithLabelValues(field).Inc()
}

// IncProductsCreated увеличивает счетчик созданных товаров
func (m *crmMetrics) IncProductsCreated() {
	m.productsCreated.Inc()
}

// IncOrdersCreated увеличивает счетчик созданных заказов
func (m *crmMetrics) IncOrdersCreated() {
	m.ordersCreated.Inc()
}

// ObserveOrderAmount записывает сумму заказа
func (m *crmMetrics) ObserveOrderAmount(amount float64) {
	m.orderAmount.Observe(amount)
}
