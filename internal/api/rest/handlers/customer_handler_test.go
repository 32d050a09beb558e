package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dhoini/CRM-service/internal/domain"
	"github.com/Dhoini/CRM-service/internal/metrics"
	"github.com/Dhoini/CRM-service/internal/repository"
	"github.com/Dhoini/CRM-service/internal/service"
	"github.com/Dhoini/CRM-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCustomerRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New(logger.ERROR)
	m := metrics.NewCRMMetrics(prometheus.NewRegistry(), log)
	repo := repository.NewInMemoryCustomerRepository(log)
	h := NewCustomerHandler(service.NewCustomerService(repo, m, log), log)

	r := gin.New()
	r.GET("/api/v1/customers", h.GetCustomers)
	r.GET("/api/v1/customers/:id", h.GetCustomer)
	r.POST("/api/v1/customers", h.CreateCustomer)
	r.POST("/api/v1/customers/bulk", h.BulkCreateCustomers)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateCustomerEndpoint(t *testing.T) {
	r := newCustomerRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/customers", domain.CreateCustomerRequest{
		Name:  "Alice",
		Email: "alice@example.com",
		Phone: "+1234567890",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created domain.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "alice@example.com", created.Email)

	// повторный email дает конфликт
	w = doJSON(t, r, http.MethodPost, "/api/v1/customers", domain.CreateCustomerRequest{
		Name:  "Other",
		Email: "alice@example.com",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateCustomerEndpoint_MissingEmail(t *testing.T) {
	r := newCustomerRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/customers", map[string]string{"name": "NoEmail"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCustomerEndpoint_NotFound(t *testing.T) {
	r := newCustomerRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/customers/b9e7f1f2-3c4d-4e5f-8a9b-0c1d2e3f4a5b", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/customers/42", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBulkCreateCustomersEndpoint(t *testing.T) {
	r := newCustomerRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/customers/bulk", domain.BulkCreateCustomersRequest{
		Customers: []domain.CreateCustomerRequest{
			{Name: "Alice", Email: "alice@example.com"},
			{Name: "BadEmail", Email: "not-an-email"},
			{Name: "Bob", Email: "bob@example.com"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result domain.BulkCreateResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Len(t, result.Customers, 2)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].Index)
	assert.Equal(t, "email", result.Errors[0].Field)
}

func TestGetCustomersEndpoint_Filters(t *testing.T) {
	r := newCustomerRouter(t)

	for _, req := range []domain.CreateCustomerRequest{
		{Name: "Alice", Email: "alice@example.com"},
		{Name: "Bob", Email: "bob@example.com"},
		{Name: "Alicia", Email: "alicia@other.org"},
	} {
		w := doJSON(t, r, http.MethodPost, "/api/v1/customers", req)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/api/v1/customers?name_contains=Ali", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var customers []domain.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &customers))
	require.Len(t, customers, 2)
	assert.Equal(t, "Alice", customers[0].Name)
	assert.Equal(t, "Alicia", customers[1].Name)

	// неверный параметр фильтра дает 400
	w = doJSON(t, r, http.MethodGet, "/api/v1/customers?created_after=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
