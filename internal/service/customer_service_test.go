package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Dhoini/CRM-service/internal/domain"
	"github.com/Dhoini/CRM-service/internal/metrics"
	"github.com/Dhoini/CRM-service/internal/repository"
	"github.com/Dhoini/CRM-service/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeps(t *testing.T) (metrics.CRMMetrics, *logger.Logger) {
	t.Helper()
	log := logger.New(logger.ERROR)
	return metrics.NewCRMMetrics(prometheus.NewRegistry(), log), log
}

func newCustomerService(t *testing.T) (CustomerService, *repository.InMemoryCustomerRepository) {
	t.Helper()
	m, log := newTestDeps(t)
	repo := repository.NewInMemoryCustomerRepository(log)
	return NewCustomerService(repo, m, log), repo
}

func TestCreate_Valid(t *testing.T) {
	svc, repo := newCustomerService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name:  "Alice",
		Email: "alice@example.com",
		Phone: "+1234567890",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", created.Name)
	assert.Equal(t, "alice@example.com", created.Email)
	assert.Equal(t, "+1234567890", created.Phone)
	assert.False(t, created.CreatedAt.IsZero())

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, stored)
}

func TestCreate_WithoutPhone(t *testing.T) {
	svc, _ := newCustomerService(t)

	created, err := svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:  "Charlie",
		Email: "charlie@example.com",
	})
	require.NoError(t, err)
	assert.Empty(t, created.Phone)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	svc, repo := newCustomerService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateCustomerRequest{Name: "Other", Email: "alice@example.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicate))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCreate_InvalidPhone(t *testing.T) {
	svc, repo := newCustomerService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name:  "Bob",
		Email: "bob@example.com",
		Phone: "not-a-phone",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	// no side effect on failure
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestBulkCreate_AllValid(t *testing.T) {
	svc, repo := newCustomerService(t)
	ctx := context.Background()

	input := []domain.CreateCustomerRequest{
		{Name: "Alice", Email: "alice@example.com", Phone: "+1234567890"},
		{Name: "Bob", Email: "bob@example.com", Phone: "123-456-7890"},
		{Name: "Charlie", Email: "charlie@example.com"},
	}

	result, err := svc.BulkCreate(ctx, input)
	require.NoError(t, err)
	require.Len(t, result.Customers, 3)
	require.Empty(t, result.Errors)

	// created customers keep input order
	assert.Equal(t, "alice@example.com", result.Customers[0].Email)
	assert.Equal(t, "bob@example.com", result.Customers[1].Email)
	assert.Equal(t, "charlie@example.com", result.Customers[2].Email)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestBulkCreate_PartialFailure(t *testing.T) {
	svc, repo := newCustomerService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)

	input := []domain.CreateCustomerRequest{
		{Name: "Dup", Email: "alice@example.com"},            // persisted duplicate
		{Name: "Bob", Email: "bob@example.com"},              // valid
		{Name: "BadPhone", Email: "eve@example.com", Phone: "abc"}, // invalid phone
		{Name: "BadEmail", Email: "not-an-email"},            // invalid format
	}

	result, err := svc.BulkCreate(ctx, input)
	require.NoError(t, err)

	// |created| + |errors| == |input|
	assert.Equal(t, len(input), len(result.Customers)+len(result.Errors))
	require.Len(t, result.Customers, 1)
	require.Len(t, result.Errors, 3)

	assert.Equal(t, "bob@example.com", result.Customers[0].Email)

	byIndex := make(map[int]domain.BulkCustomerError)
	for _, e := range result.Errors {
		_, dup := byIndex[e.Index]
		assert.False(t, dup, "duplicate error index %d", e.Index)
		assert.GreaterOrEqual(t, e.Index, 0)
		assert.Less(t, e.Index, len(input))
		byIndex[e.Index] = e
	}

	assert.Equal(t, "email", byIndex[0].Field)
	assert.Contains(t, byIndex[0].Message, "alice@example.com")
	assert.Equal(t, "phone", byIndex[2].Field)
	assert.Equal(t, "email", byIndex[3].Field)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count) // alice from before + bob
}

func TestBulkCreate_DuplicateEmailWithinBatch(t *testing.T) {
	svc, repo := newCustomerService(t)
	ctx := context.Background()

	input := []domain.CreateCustomerRequest{
		{Name: "First", Email: "same@example.com"},
		{Name: "Second", Email: "same@example.com"},
	}

	result, err := svc.BulkCreate(ctx, input)
	require.NoError(t, err)

	// the first occurrence wins, the second is rejected
	require.Len(t, result.Customers, 1)
	assert.Equal(t, "First", result.Customers[0].Name)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].Index)
	assert.Equal(t, "email", result.Errors[0].Field)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBulkCreate_EmptyInput(t *testing.T) {
	svc, _ := newCustomerService(t)

	result, err := svc.BulkCreate(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Customers)
	assert.Empty(t, result.Errors)
}

// failingCustomerRepository симулирует сбой хранилища при сохранении батча
type failingCustomerRepository struct {
	*repository.InMemoryCustomerRepository
	failCreateAll bool
}

func (r *failingCustomerRepository) CreateAll(ctx context.Context, customers []domain.Customer) error {
	if r.failCreateAll {
		return errors.New("store unavailable")
	}
	return r.InMemoryCustomerRepository.CreateAll(ctx, customers)
}

func TestBulkCreate_InfrastructureFailureAbortsWholeBatch(t *testing.T) {
	m, log := newTestDeps(t)
	repo := &failingCustomerRepository{
		InMemoryCustomerRepository: repository.NewInMemoryCustomerRepository(log),
		failCreateAll:              true,
	}
	svc := NewCustomerService(repo, m, log)
	ctx := context.Background()

	input := []domain.CreateCustomerRequest{
		{Name: "Alice", Email: "alice@example.com"},
		{Name: "Bob", Email: "bob@example.com"},
	}

	result, err := svc.BulkCreate(ctx, input)
	require.Error(t, err)
	assert.Empty(t, result.Customers)
	assert.Empty(t, result.Errors)

	// nothing persisted
	count, countErr := repo.Count(ctx)
	require.NoError(t, countErr)
	assert.Equal(t, 0, count)
}

func TestGetByID_NotFound(t *testing.T) {
	svc, _ := newCustomerService(t)

	_, err := svc.GetByID(context.Background(), "b9e7f1f2-3c4d-4e5f-8a9b-0c1d2e3f4a5b")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestGetByID_InvalidUUID(t *testing.T) {
	svc, _ := newCustomerService(t)

	_, err := svc.GetByID(context.Background(), "42")
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrInvalidData))
}
