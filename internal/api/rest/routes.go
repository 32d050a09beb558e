package rest

import (
	"github.com/Dhoini/CRM-service/internal/api/rest/handlers"
	"github.com/Dhoini/CRM-service/internal/api/rest/middleware"
	"github.com/Dhoini/CRM-service/internal/service"
	"github.com/Dhoini/CRM-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services сервисы, публикуемые через REST API
type Services struct {
	Customers service.CustomerService
	Products  service.ProductService
	Orders    service.OrderService
}

// SetupRouter настраивает маршрутизатор Gin с маршрутами и middleware
func SetupRouter(log *logger.Logger, registry *prometheus.Registry, svcs Services) *gin.Engine {
	r := gin.New()

	// Подключение middleware
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(gin.Recovery())

	// Endpoint для проверки работоспособности сервиса
	r.GET("/health", handlers.HealthCheck)

	// Prometheus метрики
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Инициализация обработчиков
	customerHandler := handlers.NewCustomerHandler(svcs.Customers, log)
	productHandler := handlers.NewProductHandler(svcs.Products, log)
	orderHandler := handlers.NewOrderHandler(svcs.Orders, log)

	v1 := r.Group("/api/v1")
	{
		// Клиенты
		customers := v1.Group("/customers")
		{
			customers.GET("", customerHandler.GetCustomers)
			customers.GET("/:id", customerHandler.GetCustomer)
			customers.POST("", customerHandler.CreateCustomer)
			customers.POST("/bulk", customerHandler.BulkCreateCustomers)
		}

		// Товары
		products := v1.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/:id", productHandler.GetProduct)
			products.POST("", productHandler.CreateProduct)
		}

		// Заказы
		orders := v1.Group("/orders")
		{
			orders.GET("", orderHandler.GetOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.POST("", orderHandler.CreateOrder)
		}
	}

	return r
}
