package services

import (
	"context"
	"time"

	"example.com/cartonbox/internal/apperrors"
	"example.com/cartonbox/internal/models"
	"example.com/cartonbox/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CustomerService manages the customer directory
type CustomerService struct {
	customerRepo *repositories.CustomerRepository
	poRepo       *repositories.PurchaseOrderRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(db *gorm.DB, readOnlyDB *gorm.DB) *CustomerService {
	return &CustomerService{
		customerRepo: repositories.NewCustomerRepository(db, readOnlyDB),
		poRepo:       repositories.NewPurchaseOrderRepository(db, readOnlyDB),
	}
}

// CustomerDraft is the input for creating or updating a customer
type CustomerDraft struct {
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,min=5"`
	Address string `json:"address" validate:"required,min=5"`
}

// ListCustomers returns a page of customers, optionally filtered by a name
// search, with the total match count
func (s *CustomerService) ListCustomers(ctx context.Context, params repositories.ListParams) ([]models.Customer, int64, error) {
	return s.customerRepo.List(ctx, params)
}

// GetCustomer returns one customer
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	return s.customerRepo.GetByID(ctx, id)
}

// CreateCustomer registers a new customer
func (s *CustomerService) CreateCustomer(ctx context.Context, draft CustomerDraft) (*models.Customer, error) {
	if err := validateStruct(draft); err != nil {
		return nil, err
	}

	customer := &models.Customer{
		ID:         uuid.New(),
		Name:       draft.Name,
		Email:      draft.Email,
		Phone:      draft.Phone,
		Address:    draft.Address,
		Registered: time.Now(),
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, apperrors.NewDatabaseError("failed to create customer: %v", err)
	}

	log.Info().
		Str("customer_id", customer.ID.String()).
		Str("name", customer.Name).
		Msg("Customer created")
	return customer, nil
}

// UpdateCustomer edits an existing customer. The denormalized customer name
// on past purchase orders and delivery notes is a snapshot and stays as it
// was.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id uuid.UUID, draft CustomerDraft) (*models.Customer, error) {
	if err := validateStruct(draft); err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	customer.Name = draft.Name
	customer.Email = draft.Email
	customer.Phone = draft.Phone
	customer.Address = draft.Address
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, apperrors.NewDatabaseError("failed to update customer: %v", err)
	}
	return customer, nil
}

// DeleteCustomer removes a customer. A customer with open purchase orders
// cannot be removed.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	open, err := s.poRepo.ListOpenByCustomer(ctx, id)
	if err != nil {
		return err
	}
	if len(open) > 0 {
		return apperrors.NewValidationError("customer has %d open purchase orders", len(open))
	}

	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Info().Str("customer_id", id.String()).Msg("Customer deleted")
	return nil
}
