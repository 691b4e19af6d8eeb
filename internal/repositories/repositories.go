package repositories

import (
	"context"
	"strings"
	"time"

	"example.com/cartonbox/internal/apperrors"
	"example.com/cartonbox/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ListParams controls paginated listings
type ListParams struct {
	Page   int
	Limit  int
	Search string
}

func (p ListParams) normalized() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}

// CustomerRepository provides access to customer data
type CustomerRepository struct {
	db         *gorm.DB // Write database
	readOnlyDB *gorm.DB // Read-only database
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB, readOnlyDB *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db, readOnlyDB: readOnlyDB}
}

// List returns customers newest-first, optionally filtered by a name/email
// search term, with the total count before pagination
func (r *CustomerRepository) List(ctx context.Context, params ListParams) ([]models.Customer, int64, error) {
	params = params.normalized()

	query := r.readOnlyDB.WithContext(ctx).Model(&models.Customer{})
	if params.Search != "" {
		term := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.WrapDatabaseError(err, "failed to count customers")
	}

	var customers []models.Customer
	err := query.
		Order("registered DESC").
		Offset((params.Page - 1) * params.Limit).
		Limit(params.Limit).
		Find(&customers).Error
	if err != nil {
		return nil, 0, apperrors.WrapDatabaseError(err, "failed to list customers")
	}

	return customers, total, nil
}

// GetByID gets a customer by ID
func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.readOnlyDB.WithContext(ctx).First(&customer, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("customer %s not found", id)
		}
		return nil, apperrors.WrapDatabaseError(err, "failed to get customer by ID")
	}
	return &customer, nil
}

// Create creates a new customer
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return apperrors.WrapDatabaseError(err, "failed to create customer")
	}
	return nil
}

// Update saves contact-field changes to an existing customer
func (r *CustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	if err := r.db.WithContext(ctx).Save(customer).Error; err != nil {
		return apperrors.WrapDatabaseError(err, "failed to update customer")
	}
	return nil
}

// Delete removes a customer. Existing orders referencing the customer are
// left untouched; there is no cascade.
func (r *CustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Customer{}, "id = ?", id)
	if result.Error != nil {
		return apperrors.WrapDatabaseError(result.Error, "failed to delete customer")
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("customer %s not found", id)
	}
	return nil
}

// PurchaseOrderRepository provides access to purchase order data
type PurchaseOrderRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewPurchaseOrderRepository creates a new purchase order repository
func NewPurchaseOrderRepository(db *gorm.DB, readOnlyDB *gorm.DB) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{db: db, readOnlyDB: readOnlyDB}
}

// List returns all purchase orders newest-first
func (r *PurchaseOrderRepository) List(ctx context.Context) ([]models.PurchaseOrder, error) {
	var orders []models.PurchaseOrder
	err := r.readOnlyDB.WithContext(ctx).Order("order_date DESC").Find(&orders).Error
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err, "failed to list purchase orders")
	}
	return orders, nil
}

// ListOpenByCustomer returns a customer's open purchase orders
func (r *PurchaseOrderRepository) ListOpenByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.PurchaseOrder, error) {
	var orders []models.PurchaseOrder
	err := r.readOnlyDB.WithContext(ctx).
		Where("customer_id = ? AND status = ?", customerID, models.OrderStatusOpen).
		Find(&orders).Error
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err, "failed to list open purchase orders")
	}
	return orders, nil
}

// ListByStatus returns all purchase orders with the given status
func (r *PurchaseOrderRepository) ListByStatus(ctx context.Context, status models.OrderStatus) ([]models.PurchaseOrder, error) {
	var orders []models.PurchaseOrder
	err := r.readOnlyDB.WithContext(ctx).
		Where("status = ?", status).
		Order("order_date DESC").
		Find(&orders).Error
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err, "failed to list purchase orders by status")
	}
	return orders, nil
}

// CountByStatus counts purchase orders with the given status
func (r *PurchaseOrderRepository) CountByStatus(ctx context.Context, status models.OrderStatus) (int64, error) {
	var count int64
	err := r.readOnlyDB.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Where("status = ?", status).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.WrapDatabaseError(err, "failed to count purchase orders")
	}
	return count, nil
}

// ListRecent returns the most recently dated purchase orders
func (r *PurchaseOrderRepository) ListRecent(ctx context.Context, limit int) ([]models.PurchaseOrder, error) {
	var orders []models.PurchaseOrder
	err := r.readOnlyDB.WithContext(ctx).
		Order("order_date DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err, "failed to list recent purchase orders")
	}
	return orders, nil
}

// GetByID gets a purchase order by ID
func (r *PurchaseOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	err := r.readOnlyDB.WithContext(ctx).First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("purchase order %s not found", id)
		}
		return nil, apperrors.WrapDatabaseError(err, "failed to get purchase order by ID")
	}
	return &order, nil
}

// Create creates a new purchase order
func (r *PurchaseOrderRepository) Create(ctx context.Context, order *models.PurchaseOrder) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return apperrors.WrapDatabaseError(err, "failed to create purchase order")
	}
	return nil
}

// Update saves changes to an existing purchase order
func (r *PurchaseOrderRepository) Update(ctx context.Context, order *models.PurchaseOrder) error {
	if err := r.db.WithContext(ctx).Save(order).Error; err != nil {
		return apperrors.WrapDatabaseError(err, "failed to update purchase order")
	}
	return nil
}

// UpdateItems writes a purchase order's items array back without touching
// the order status
func (r *PurchaseOrderRepository) UpdateItems(ctx context.Context, id uuid.UUID, items models.OrderItems) error {
	result := r.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Where("id = ?", id).
		Update("items", items)
	if result.Error != nil {
		return apperrors.WrapDatabaseError(result.Error, "failed to update purchase order items")
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("purchase order %s not found", id)
	}
	return nil
}

// Delete removes a purchase order
func (r *PurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PurchaseOrder{}, "id = ?", id)
	if result.Error != nil {
		return apperrors.WrapDatabaseError(result.Error, "failed to delete purchase order")
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("purchase order %s not found", id)
	}
	return nil
}

// DeliveryRepository provides access to delivery note data
type DeliveryRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewDeliveryRepository creates a new delivery repository
func NewDeliveryRepository(db *gorm.DB, readOnlyDB *gorm.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db, readOnlyDB: readOnlyDB}
}

// List returns all delivery notes newest-first
func (r *DeliveryRepository) List(ctx context.Context) ([]models.Delivery, error) {
	var deliveries []models.Delivery
	err := r.readOnlyDB.WithContext(ctx).Order("delivery_date DESC").Find(&deliveries).Error
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err, "failed to list deliveries")
	}
	return deliveries, nil
}

// GetByID gets a delivery note by ID
func (r *DeliveryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	var delivery models.Delivery
	err := r.readOnlyDB.WithContext(ctx).First(&delivery, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("delivery note %s not found", id)
		}
		return nil, apperrors.WrapDatabaseError(err, "failed to get delivery by ID")
	}
	return &delivery, nil
}

// CountSince counts delivery notes dated on or after the given time
func (r *DeliveryRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.readOnlyDB.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("delivery_date >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.WrapDatabaseError(err, "failed to count deliveries")
	}
	return count, nil
}

// ListRecent returns the most recent delivery notes, newest-first
func (r *DeliveryRepository) ListRecent(ctx context.Context, limit int) ([]models.Delivery, error) {
	var deliveries []models.Delivery
	err := r.readOnlyDB.WithContext(ctx).
		Order("delivery_date DESC").
		Limit(limit).
		Find(&deliveries).Error
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err, "failed to list recent deliveries")
	}
	return deliveries, nil
}

// UserRepository provides access to user accounts
type UserRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB, readOnlyDB *gorm.DB) *UserRepository {
	return &UserRepository{db: db, readOnlyDB: readOnlyDB}
}

// List returns all user accounts
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.readOnlyDB.WithContext(ctx).Order("created_at ASC").Find(&users).Error
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err, "failed to list users")
	}
	return users, nil
}

// GetByID gets a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.readOnlyDB.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("user %s not found", id)
		}
		return nil, apperrors.WrapDatabaseError(err, "failed to get user by ID")
	}
	return &user, nil
}

// GetByEmail gets a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.readOnlyDB.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("user %s not found", email)
		}
		return nil, apperrors.WrapDatabaseError(err, "failed to get user by email")
	}
	return &user, nil
}

// Create creates a new user account
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return apperrors.WrapDatabaseError(err, "failed to create user")
	}
	return nil
}

// Update saves changes to an existing user account
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return apperrors.WrapDatabaseError(err, "failed to update user")
	}
	return nil
}

// Delete removes a user account
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return apperrors.WrapDatabaseError(result.Error, "failed to delete user")
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("user %s not found", id)
	}
	return nil
}
