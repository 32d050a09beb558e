package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dhoini/CRM-service/internal/domain"
	"github.com/Dhoini/CRM-service/internal/metrics"
	"github.com/Dhoini/CRM-service/internal/repository"
	"github.com/Dhoini/CRM-service/internal/validation"
	"github.com/Dhoini/CRM-service/pkg/logger"
	"github.com/google/uuid"
)

// CustomerService интерфейс сервиса для работы с клиентами
type CustomerService interface {
	GetByID(ctx context.Context, id string) (domain.Customer, error)
	List(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error)
	BulkCreate(ctx context.Context, reqs []domain.CreateCustomerRequest) (domain.BulkCreateResult, error)
}

type customerService struct {
	repo    repository.CustomerRepository
	metrics metrics.CRMMetrics
	log     *logger.Logger
}

// NewCustomerService создает новый сервис для работы с клиентами
func NewCustomerService(repo repository.CustomerRepository, m metrics.CRMMetrics, log *logger.Logger) CustomerService {
	return &customerService{
		repo:    repo,
		metrics: m,
		log:     log,
	}
}

func (s *customerService) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	s.log.Debug("Getting customer by ID: %s", id)

	uuidID, err := uuid.Parse(id)
	if err != nil {
		s.log.Warn("Invalid UUID format: %s", id)
		return domain.Customer{}, repository.ErrInvalidData
	}

	customer, err := s.repo.GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Customer{}, domain.NewNotFoundError("customer", id)
		}
		return domain.Customer{}, err
	}

	return customer, nil
}

func (s *customerService) List(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, error) {
	s.log.Debug("Listing customers")
	return s.repo.List(ctx, filter)
}

func (s *customerService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *customerService) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	s.log.Debug("Creating customer with email: %s", req.Email)

	if err := validation.Email(req.Email); err != nil {
		return domain.Customer{}, err
	}

	phone, err := validation.Phone(req.Phone)
	if err != nil {
		return domain.Customer{}, err
	}

	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if exists {
		return domain.Customer{}, domain.NewDuplicateError("customer", "email", req.Email)
	}

	customer := domain.Customer{
		ID:        uuid.New(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     phone,
		CreatedAt: time.Now(),
	}

	created, err := s.repo.Create(ctx, customer)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.Customer{}, domain.NewDuplicateError("customer", "email", req.Email)
		}
		return domain.Customer{}, fmt.Errorf("failed to create customer: %w", err)
	}

	s.metrics.IncCustomersCreated(1)
	return created, nil
}

// BulkCreate создает клиентов пачкой. Ошибки валидации отдельных элементов
// собираются и не прерывают обработку; прошедшие проверку записи сохраняются
// атомарно одним набором. Инфраструктурная ошибка отменяет весь вызов.
func (s *customerService) BulkCreate(ctx context.Context, reqs []domain.CreateCustomerRequest) (domain.BulkCreateResult, error) {
	s.log.Debug("Bulk creating %d customers", len(reqs))

	staged := make([]domain.Customer, 0, len(reqs))
	bulkErrors := make([]domain.BulkCustomerError, 0)

	// Email, принятые ранее в этом же батче: дубликат внутри батча
	// отклоняется так же, как дубликат в хранилище
	batchEmails := make(map[string]struct{}, len(reqs))

	now := time.Now()
	for i, req := range reqs {
		if err := validation.Email(req.Email); err != nil {
			bulkErrors = append(bulkErrors, bulkError(i, err))
			s.metrics.IncBulkValidationError("email")
			continue
		}

		if err := validation.EmailUnique(req.Email, batchEmails); err != nil {
			bulkErrors = append(bulkErrors, bulkError(i, err))
			s.metrics.IncBulkValidationError("email")
			continue
		}

		exists, err := s.repo.EmailExists(ctx, req.Email)
		if err != nil {
			// Сбой хранилища: весь батч завершается ошибкой, ничего не сохранено
			return domain.BulkCreateResult{}, fmt.Errorf("failed to check email uniqueness: %w", err)
		}
		if exists {
			bulkErrors = append(bulkErrors, domain.BulkCustomerError{
				Index:   i,
				Field:   "email",
				Message: fmt.Sprintf("Email %s already exists.", req.Email),
			})
			s.metrics.IncBulkValidationError("email")
			continue
		}

		phone, err := validation.Phone(req.Phone)
		if err != nil {
			bulkErrors = append(bulkErrors, bulkError(i, err))
			s.metrics.IncBulkValidationError("phone")
			continue
		}

		staged = append(staged, domain.Customer{
			ID:        uuid.New(),
			Name:      req.Name,
			Email:     req.Email,
			Phone:     phone,
			CreatedAt: now,
		})
		batchEmails[strings.ToLower(req.Email)] = struct{}{}
	}

	if err := s.repo.CreateAll(ctx, staged); err != nil {
		return domain.BulkCreateResult{}, fmt.Errorf("failed to persist customer batch: %w", err)
	}

	s.metrics.IncCustomersCreated(len(staged))
	s.log.Info("Bulk create finished: %d created, %d errors", len(staged), len(bulkErrors))

	return domain.BulkCreateResult{
		Customers: staged,
		Errors:    bulkErrors,
	}, nil
}

// bulkError преобразует ошибку валидации в ошибку элемента батча
func bulkError(index int, err error) domain.BulkCustomerError {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return domain.BulkCustomerError{
			Index:   index,
			Field:   verr.Field,
			Message: verr.Message,
		}
	}
	return domain.BulkCustomerError{
		Index:   index,
		Field:   "",
		Message: err.Error(),
	}
}
