package services

import (
	"context"
	"time"

	"example.com/cartonbox/internal/apperrors"
	"example.com/cartonbox/internal/cache"
	"example.com/cartonbox/internal/metrics"
	"example.com/cartonbox/internal/models"
	"example.com/cartonbox/internal/repositories"
	"example.com/cartonbox/internal/storage"
	"example.com/cartonbox/internal/tracing"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// OrderService manages purchase orders and their embedded line items
type OrderService struct {
	poRepo       *repositories.PurchaseOrderRepository
	customerRepo *repositories.CustomerRepository
	cache        *cache.RedisCache
	store        storage.Uploader
	tracer       tracing.Tracer
	metrics      *metrics.Metrics
}

// NewOrderService creates a new purchase order service
func NewOrderService(db *gorm.DB, readOnlyDB *gorm.DB, projectionCache *cache.RedisCache, store storage.Uploader, tracer tracing.Tracer, collector *metrics.Metrics) *OrderService {
	return &OrderService{
		poRepo:       repositories.NewPurchaseOrderRepository(db, readOnlyDB),
		customerRepo: repositories.NewCustomerRepository(db, readOnlyDB),
		cache:        projectionCache,
		store:        store,
		tracer:       tracer,
		metrics:      collector,
	}
}

// OrderDraft is the input for creating a purchase order
type OrderDraft struct {
	PONumber   string           `json:"po_number" validate:"required,min=3"`
	CustomerID uuid.UUID        `json:"customer_id" validate:"required"`
	OrderDate  time.Time        `json:"order_date" validate:"required"`
	Items      []OrderItemDraft `json:"items" validate:"required,min=1,dive"`
}

// OrderItemDraft is the input for one line item of a purchase order
type OrderItemDraft struct {
	Type         models.OrderItemType `json:"type" validate:"required,oneof=Box Layer"`
	Name         string               `json:"name" validate:"required,min=2"`
	MaterialSize models.MaterialSize  `json:"material_size"`
	FinishedSize models.FinishedSize  `json:"finished_size"`
	Total        int64                `json:"total" validate:"required,gt=0"`
	Notes        string               `json:"notes"`
}

func checkItemDraft(item OrderItemDraft) error {
	if item.MaterialSize.Length <= 0 || item.MaterialSize.Width <= 0 {
		return apperrors.NewValidationError("material size of %q must have positive length and width", item.Name)
	}
	if item.FinishedSize.Length <= 0 || item.FinishedSize.Width <= 0 {
		return apperrors.NewValidationError("finished size of %q must have positive length and width", item.Name)
	}
	if item.Type == models.ItemTypeBox && item.FinishedSize.Height <= 0 {
		return apperrors.NewValidationError("box %q must have a positive finished height", item.Name)
	}
	return nil
}

// ListOrders returns all purchase orders newest-first, served from the
// projection cache when possible
func (s *OrderService) ListOrders(ctx context.Context) ([]models.PurchaseOrder, error) {
	var cached []models.PurchaseOrder
	if err := s.cache.Get(ctx, cache.PageKey(cache.PagePurchaseOrders), &cached); err == nil {
		return cached, nil
	}

	orders, err := s.poRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cache.PageKey(cache.PagePurchaseOrders), orders, listCacheTTL); err != nil {
		log.Warn().Err(err).Msg("Failed to cache purchase orders list")
	}
	return orders, nil
}

// GetOrder returns one purchase order
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	return s.poRepo.GetByID(ctx, id)
}

// CreateOrder creates a purchase order with its line items. Every item
// starts as a draft with zero produced and delivered counters; the customer
// name is denormalized onto the order.
func (s *OrderService) CreateOrder(ctx context.Context, draft OrderDraft) (*models.PurchaseOrder, error) {
	txn := s.tracer.StartTransaction("create-purchase-order")
	defer s.tracer.EndTransaction(txn)

	if err := validateStruct(draft); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}
	for _, item := range draft.Items {
		if err := checkItemDraft(item); err != nil {
			s.tracer.RecordError(txn, err)
			return nil, err
		}
	}

	customer, err := s.customerRepo.GetByID(ctx, draft.CustomerID)
	if err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	items := make(models.OrderItems, 0, len(draft.Items))
	for _, item := range draft.Items {
		items = append(items, models.OrderItem{
			ID:           uuid.New(),
			Type:         item.Type,
			Name:         item.Name,
			MaterialSize: item.MaterialSize,
			FinishedSize: item.FinishedSize,
			Total:        item.Total,
			Status:       models.ItemStatusDraft,
			Notes:        item.Notes,
		})
	}

	order := &models.PurchaseOrder{
		ID:           uuid.New(),
		PONumber:     draft.PONumber,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		OrderDate:    draft.OrderDate,
		Status:       models.OrderStatusOpen,
		Items:        items,
	}
	if err := s.poRepo.Create(ctx, order); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, apperrors.NewDatabaseError("failed to create purchase order: %v", err)
	}

	s.metrics.IncrementCounter(metrics.CounterOrdersCreated)
	log.Info().
		Str("po_id", order.ID.String()).
		Str("po_number", order.PONumber).
		Int("items", len(order.Items)).
		Msg("Purchase order created")

	s.cache.InvalidatePages(ctx,
		cache.PagePurchaseOrders,
		cache.PageProduction,
		cache.PageDashboard,
	)
	return order, nil
}

// OrderUpdate is the input for editing a purchase order's header fields
type OrderUpdate struct {
	PONumber  *string             `json:"po_number,omitempty" validate:"omitempty,min=3"`
	OrderDate *time.Time          `json:"order_date,omitempty"`
	Status    *models.OrderStatus `json:"status,omitempty" validate:"omitempty,oneof=Open Completed Cancelled"`
}

// UpdateOrder edits a purchase order's header fields. Line item counters are
// owned by the production and fulfillment flows and cannot be edited here.
func (s *OrderService) UpdateOrder(ctx context.Context, id uuid.UUID, update OrderUpdate) (*models.PurchaseOrder, error) {
	if err := validateStruct(update); err != nil {
		return nil, err
	}

	order, err := s.poRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.PONumber != nil {
		order.PONumber = *update.PONumber
	}
	if update.OrderDate != nil {
		order.OrderDate = *update.OrderDate
	}
	if update.Status != nil {
		order.Status = *update.Status
	}

	if err := s.poRepo.Update(ctx, order); err != nil {
		return nil, apperrors.NewDatabaseError("failed to update purchase order: %v", err)
	}

	s.cache.InvalidatePages(ctx,
		cache.PagePurchaseOrders,
		cache.PageProduction,
		cache.PageDashboard,
	)
	return order, nil
}

// DeleteOrder removes a purchase order. Existing delivery notes keep their
// denormalized item snapshots and stay readable.
func (s *OrderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if err := s.poRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Info().Str("po_id", id.String()).Msg("Purchase order deleted")

	s.cache.InvalidatePages(ctx,
		cache.PagePurchaseOrders,
		cache.PageProduction,
		cache.PageDashboard,
	)
	return nil
}

// AttachPDF uploads the scanned order document to object storage and stores
// its public URL on the purchase order
func (s *OrderService) AttachPDF(ctx context.Context, id uuid.UUID, data []byte, contentType string) (*models.PurchaseOrder, error) {
	order, err := s.poRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, apperrors.NewValidationError("document storage is not configured")
	}

	objectName := "purchase-orders/" + order.ID.String() + ".pdf"
	url, err := s.store.Upload(ctx, objectName, data, contentType)
	if err != nil {
		return nil, apperrors.NewDatabaseError("failed to upload order document: %v", err)
	}

	order.PDFURL = url
	if err := s.poRepo.Update(ctx, order); err != nil {
		return nil, apperrors.NewDatabaseError("failed to save order document URL: %v", err)
	}

	log.Info().
		Str("po_id", order.ID.String()).
		Str("object", objectName).
		Msg("Purchase order document attached")

	s.cache.InvalidatePages(ctx, cache.PagePurchaseOrders)
	return order, nil
}
