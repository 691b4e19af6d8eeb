package services

import (
	"context"
	"time"

	"example.com/cartonbox/internal/apperrors"
	"example.com/cartonbox/internal/cache"
	"example.com/cartonbox/internal/messaging"
	"example.com/cartonbox/internal/metrics"
	"example.com/cartonbox/internal/models"
	"example.com/cartonbox/internal/repositories"
	"example.com/cartonbox/internal/search"
	"example.com/cartonbox/internal/tracing"

	"github.com/google/uuid"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const listCacheTTL = 5 * time.Minute

// FulfillmentService keeps delivery notes and purchase-order line-item
// counters consistent under concurrent mutation. All multi-document updates
// run inside one database transaction with every purchase-order read issued
// before the first write.
type FulfillmentService struct {
	db           *gorm.DB // Write database
	poRepo       *repositories.PurchaseOrderRepository
	deliveryRepo *repositories.DeliveryRepository
	cache        *cache.RedisCache
	searchClient *search.ElasticClient
	bus          messaging.Publisher
	tracer       tracing.Tracer
	metrics      *metrics.Metrics
	strictDelete bool
}

// NewFulfillmentService creates a new fulfillment service
func NewFulfillmentService(
	db *gorm.DB,
	readOnlyDB *gorm.DB,
	projectionCache *cache.RedisCache,
	searchClient *search.ElasticClient,
	bus messaging.Publisher,
	tracer tracing.Tracer,
	collector *metrics.Metrics,
	strictDelete bool,
) *FulfillmentService {
	return &FulfillmentService{
		db:           db,
		poRepo:       repositories.NewPurchaseOrderRepository(db, readOnlyDB),
		deliveryRepo: repositories.NewDeliveryRepository(db, readOnlyDB),
		cache:        projectionCache,
		searchClient: searchClient,
		bus:          bus,
		tracer:       tracer,
		metrics:      collector,
		strictDelete: strictDelete,
	}
}

// DeliveryDraft is the input for creating a delivery note
type DeliveryDraft struct {
	DeliveryNoteNumber string              `json:"delivery_note_number" validate:"required,min=3"`
	CustomerID         uuid.UUID           `json:"customer_id" validate:"required"`
	CustomerName       string              `json:"customer_name" validate:"required"`
	DeliveryDate       time.Time           `json:"delivery_date" validate:"required"`
	Expedition         string              `json:"expedition"`
	VehicleNumber      string              `json:"vehicle_number"`
	DriverName         string              `json:"driver_name"`
	Items              []DeliveryDraftItem `json:"items" validate:"required,min=1,dive"`
}

// DeliveryDraftItem names a quantity to ship against one purchase-order
// line item
type DeliveryDraftItem struct {
	POID        uuid.UUID `json:"po_id" validate:"required"`
	OrderItemID uuid.UUID `json:"order_item_id" validate:"required"`
	Quantity    int64     `json:"quantity" validate:"required,gt=0"`
}

// CreateDelivery creates a delivery note and applies its quantities to the
// referenced purchase orders in one atomic transaction. A missing purchase
// order or an over-shipment aborts the whole operation before any write.
func (s *FulfillmentService) CreateDelivery(ctx context.Context, draft DeliveryDraft) (*models.Delivery, error) {
	txn := s.tracer.StartTransaction("create-delivery")
	defer s.tracer.EndTransaction(txn)
	start := time.Now()

	if err := validateStruct(draft); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	requested := make([]models.DeliveryItem, 0, len(draft.Items))
	for _, item := range draft.Items {
		requested = append(requested, models.DeliveryItem{
			POID:        item.POID,
			OrderItemID: item.OrderItemID,
			Quantity:    item.Quantity,
		})
	}
	itemsByPO := groupItemsByPO(requested)

	var delivery *models.Delivery
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// All reads first: lock and load every referenced purchase order
		// before issuing a single write.
		poIDs := sortedPOIDs(itemsByPO)
		orders := make(map[uuid.UUID]*models.PurchaseOrder, len(itemsByPO))
		for _, poID := range poIDs {
			var po models.PurchaseOrder
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&po, "id = ?", poID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NewNotFoundError("purchase order %s not found", poID)
				}
				return apperrors.WrapDatabaseError(err, "failed to read purchase order")
			}
			orders[poID] = &po
		}

		for _, poID := range poIDs {
			if err := checkDeliveryAgainstOrder(orders[poID], itemsByPO[poID]); err != nil {
				return err
			}
		}

		// Snapshot the persisted delivery item fields from the orders as
		// they were read inside the transaction.
		persisted := make(models.DeliveryItems, 0, len(requested))
		for _, item := range requested {
			source := orders[item.POID].Item(item.OrderItemID)
			persisted = append(persisted, models.DeliveryItem{
				POID:         item.POID,
				OrderItemID:  item.OrderItemID,
				Name:         source.Name,
				PONumber:     orders[item.POID].PONumber,
				Quantity:     item.Quantity,
				Type:         source.Type,
				FinishedSize: source.FinishedSize,
			})
		}

		delivery = &models.Delivery{
			ID:                 uuid.New(),
			DeliveryNoteNumber: draft.DeliveryNoteNumber,
			CustomerID:         draft.CustomerID,
			CustomerName:       draft.CustomerName,
			DeliveryDate:       draft.DeliveryDate,
			Expedition:         draft.Expedition,
			VehicleNumber:      draft.VehicleNumber,
			DriverName:         draft.DriverName,
			Items:              persisted,
		}
		if err := tx.Create(delivery).Error; err != nil {
			return apperrors.WrapDatabaseError(err, "failed to create delivery note")
		}

		for _, poID := range poIDs {
			po := orders[poID]
			applyDeliveryToOrder(po, itemsByPO[poID])
			err := tx.Model(&models.PurchaseOrder{}).
				Where("id = ?", poID).
				Updates(map[string]interface{}{
					"items":  po.Items,
					"status": po.Status,
				}).Error
			if err != nil {
				return apperrors.WrapDatabaseError(err, "failed to update purchase order")
			}
		}

		return nil
	})
	s.metrics.RecordOutcome(metrics.OpCreateDelivery, err != nil)
	if err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}
	s.metrics.IncrementCounter(metrics.CounterDeliveriesCreated)
	s.metrics.RecordTimer(metrics.TimerReconcile, time.Since(start))

	log.Info().
		Str("delivery_id", delivery.ID.String()).
		Str("delivery_note", delivery.DeliveryNoteNumber).
		Int("items", len(delivery.Items)).
		Msg("Delivery note created")

	s.afterMutation(ctx, txn, delivery, messaging.EventDeliveryCreated)
	return delivery, nil
}

// DeleteDelivery removes a delivery note and rolls its quantities back out
// of the referenced purchase orders in one atomic transaction. A purchase
// order that has since been removed is logged and skipped (the note must
// stay deletable), unless strict deletes are configured.
func (s *FulfillmentService) DeleteDelivery(ctx context.Context, id uuid.UUID) error {
	txn := s.tracer.StartTransaction("delete-delivery")
	defer s.tracer.EndTransaction(txn)

	var deleted *models.Delivery
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// All reads first: the delivery, then every purchase order it
		// references.
		var delivery models.Delivery
		err := tx.First(&delivery, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFoundError("delivery note %s not found", id)
			}
			return apperrors.WrapDatabaseError(err, "failed to read delivery note")
		}

		itemsByPO := groupItemsByPO(delivery.Items)
		poIDs := sortedPOIDs(itemsByPO)
		orders := make(map[uuid.UUID]*models.PurchaseOrder, len(itemsByPO))
		for _, poID := range poIDs {
			var po models.PurchaseOrder
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&po, "id = ?", poID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					if s.strictDelete {
						return apperrors.NewNotFoundError("purchase order %s not found", poID)
					}
					log.Warn().
						Str("delivery_id", id.String()).
						Str("po_id", poID.String()).
						Msg("Purchase order missing during delivery deletion, skipping rollback")
					continue
				}
				return apperrors.WrapDatabaseError(err, "failed to read purchase order")
			}
			orders[poID] = &po
		}

		for _, poID := range poIDs {
			po, ok := orders[poID]
			if !ok {
				continue
			}
			revertDeliveryFromOrder(po, itemsByPO[poID])
			err := tx.Model(&models.PurchaseOrder{}).
				Where("id = ?", poID).
				Updates(map[string]interface{}{
					"items":  po.Items,
					"status": po.Status,
				}).Error
			if err != nil {
				return apperrors.WrapDatabaseError(err, "failed to update purchase order")
			}
		}

		if err := tx.Delete(&models.Delivery{}, "id = ?", id).Error; err != nil {
			return apperrors.WrapDatabaseError(err, "failed to delete delivery note")
		}

		deleted = &delivery
		return nil
	})
	s.metrics.RecordOutcome(metrics.OpDeleteDelivery, err != nil)
	if err != nil {
		s.tracer.RecordError(txn, err)
		return err
	}
	s.metrics.IncrementCounter(metrics.CounterDeliveriesDeleted)

	log.Info().
		Str("delivery_id", id.String()).
		Str("delivery_note", deleted.DeliveryNoteNumber).
		Msg("Delivery note deleted")

	s.afterMutation(ctx, txn, deleted, messaging.EventDeliveryDeleted)
	return nil
}

// afterMutation runs the post-commit side effects of a successful
// reconciliation: projection cache invalidation, search indexing, and event
// publishing. All are best-effort; the committed state is already durable.
func (s *FulfillmentService) afterMutation(ctx context.Context, txn *newrelic.Transaction, delivery *models.Delivery, event string) {
	s.cache.InvalidatePages(ctx,
		cache.PageDeliveries,
		cache.PageProduction,
		cache.PagePurchaseOrders,
		cache.PageDashboard,
	)

	if s.searchClient != nil {
		var err error
		if event == messaging.EventDeliveryDeleted {
			err = s.searchClient.RemoveDelivery(ctx, delivery.ID)
		} else {
			err = s.searchClient.IndexDelivery(ctx, delivery)
		}
		if err != nil {
			log.Warn().Err(err).
				Str("delivery_id", delivery.ID.String()).
				Msg("Failed to update delivery search index")
			s.tracer.RecordError(txn, err)
		}
	}

	if s.bus != nil {
		if err := s.bus.PublishDeliveryEvent(ctx, event, delivery); err != nil {
			log.Warn().Err(err).
				Str("delivery_id", delivery.ID.String()).
				Str("event", event).
				Msg("Failed to publish delivery event")
			s.tracer.RecordError(txn, err)
		}
	}
}

// ListDeliveries returns all delivery notes newest-first, served from the
// projection cache when possible
func (s *FulfillmentService) ListDeliveries(ctx context.Context) ([]models.Delivery, error) {
	var cached []models.Delivery
	if err := s.cache.Get(ctx, cache.PageKey(cache.PageDeliveries), &cached); err == nil {
		return cached, nil
	}

	deliveries, err := s.deliveryRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cache.PageKey(cache.PageDeliveries), deliveries, listCacheTTL); err != nil {
		log.Warn().Err(err).Msg("Failed to cache deliveries list")
	}
	return deliveries, nil
}

// GetDelivery returns one delivery note
func (s *FulfillmentService) GetDelivery(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	return s.deliveryRepo.GetByID(ctx, id)
}

// ReadyToShipItems returns the line items a customer can ship now: items of
// open purchase orders with produced > delivered, annotated with their
// originating order. A poID narrows the scan to one order, which must belong
// to the customer.
func (s *FulfillmentService) ReadyToShipItems(ctx context.Context, customerID uuid.UUID, poID *uuid.UUID) ([]ReadyToShipItem, error) {
	var orders []models.PurchaseOrder
	if poID != nil {
		po, err := s.poRepo.GetByID(ctx, *poID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return []ReadyToShipItem{}, nil
			}
			return nil, err
		}
		if po.CustomerID != customerID {
			return []ReadyToShipItem{}, nil
		}
		orders = []models.PurchaseOrder{*po}
	} else {
		var err error
		orders, err = s.poRepo.ListOpenByCustomer(ctx, customerID)
		if err != nil {
			return nil, err
		}
	}

	return buildReadyToShipItems(orders), nil
}
