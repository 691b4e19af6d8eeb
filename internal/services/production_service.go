package services

import (
	"context"

	"example.com/cartonbox/internal/apperrors"
	"example.com/cartonbox/internal/cache"
	"example.com/cartonbox/internal/models"
	"example.com/cartonbox/internal/repositories"
	"example.com/cartonbox/internal/tracing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductionService exposes the production floor view and the produced
// counter updates
type ProductionService struct {
	db     *gorm.DB
	poRepo *repositories.PurchaseOrderRepository
	cache  *cache.RedisCache
	tracer tracing.Tracer
}

// NewProductionService creates a new production service
func NewProductionService(db *gorm.DB, readOnlyDB *gorm.DB, projectionCache *cache.RedisCache, tracer tracing.Tracer) *ProductionService {
	return &ProductionService{
		db:     db,
		poRepo: repositories.NewPurchaseOrderRepository(db, readOnlyDB),
		cache:  projectionCache,
		tracer: tracer,
	}
}

// ListProductionItems returns every line item across all purchase orders,
// annotated with its order and customer, newest order first
func (s *ProductionService) ListProductionItems(ctx context.Context) ([]ProductionItem, error) {
	var cached []ProductionItem
	if err := s.cache.Get(ctx, cache.PageKey(cache.PageProduction), &cached); err == nil {
		return cached, nil
	}

	orders, err := s.poRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := buildProductionItems(orders)

	if err := s.cache.Set(ctx, cache.PageKey(cache.PageProduction), items, listCacheTTL); err != nil {
		log.Warn().Err(err).Msg("Failed to cache production items")
	}
	return items, nil
}

// ProductionUpdate is the input for updating a line item's produced counter.
// Status, when present, is a manual override applied verbatim instead of the
// derived transition.
type ProductionUpdate struct {
	Produced int64                   `json:"produced" validate:"gte=0"`
	Status   *models.OrderItemStatus `json:"status,omitempty"`
	Notes    *string                 `json:"notes,omitempty"`
}

// UpdateProductionItem sets the produced counter of one purchase-order line
// item and re-derives its status, unless the update carries an explicit
// status override. The counter can never exceed the ordered total or fall
// below what has already been delivered.
func (s *ProductionService) UpdateProductionItem(ctx context.Context, poID, itemID uuid.UUID, update ProductionUpdate) (*models.OrderItem, error) {
	txn := s.tracer.StartTransaction("update-production-item")
	defer s.tracer.EndTransaction(txn)

	if err := validateStruct(update); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}
	if update.Status != nil && !validItemStatus(*update.Status) {
		err := apperrors.NewValidationError("unknown item status %q", *update.Status)
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	var updated models.OrderItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var po models.PurchaseOrder
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&po, "id = ?", poID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFoundError("purchase order %s not found", poID)
			}
			return apperrors.WrapDatabaseError(err, "failed to read purchase order")
		}

		item := po.Item(itemID)
		if item == nil {
			return apperrors.NewNotFoundError("item %s not found on purchase order %s", itemID, po.PONumber)
		}

		if err := applyProductionUpdate(item, update); err != nil {
			return err
		}

		err = tx.Model(&models.PurchaseOrder{}).
			Where("id = ?", poID).
			Update("items", po.Items).Error
		if err != nil {
			return apperrors.WrapDatabaseError(err, "failed to update purchase order items")
		}

		updated = *item
		return nil
	})
	if err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	log.Info().
		Str("po_id", poID.String()).
		Str("item_id", itemID.String()).
		Int64("produced", updated.Produced).
		Str("status", string(updated.Status)).
		Msg("Production item updated")

	s.cache.InvalidatePages(ctx,
		cache.PageProduction,
		cache.PagePurchaseOrders,
		cache.PageDashboard,
	)
	return &updated, nil
}

// applyProductionUpdate applies a produced-counter update to an item. A
// caller-supplied status wins over the derived one.
func applyProductionUpdate(item *models.OrderItem, update ProductionUpdate) error {
	if err := applyProducedUpdate(item, update.Produced); err != nil {
		return err
	}
	if update.Status != nil {
		item.Status = *update.Status
	}
	if update.Notes != nil {
		item.Notes = *update.Notes
	}
	return nil
}

// applyProducedUpdate sets an item's produced counter, enforcing the counter
// invariants (delivered <= produced <= total) and re-deriving the item
// status. A counter that is neither complete nor ahead of deliveries leaves
// the status untouched, so a Draft item stays Draft until work starts.
func applyProducedUpdate(item *models.OrderItem, produced int64) error {
	if produced > item.Total {
		return apperrors.NewValidationError(
			"produced count %d exceeds ordered total %d for %q", produced, item.Total, item.Name)
	}
	if produced < item.Delivered {
		return apperrors.NewValidationError(
			"produced count %d is below the %d already delivered for %q", produced, item.Delivered, item.Name)
	}

	item.Produced = produced
	switch {
	case item.Status == models.ItemStatusShipped:
		// Fully shipped items keep their terminal status.
	case produced >= item.Total:
		item.Status = models.ItemStatusReadyToShip
	case produced > item.Delivered:
		item.Status = models.ItemStatusInProduction
	}
	return nil
}

func validItemStatus(status models.OrderItemStatus) bool {
	switch status {
	case models.ItemStatusDraft, models.ItemStatusInProduction,
		models.ItemStatusReadyToShip, models.ItemStatusShipped:
		return true
	}
	return false
}
