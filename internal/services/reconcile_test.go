package services

import (
	"testing"

	"example.com/cartonbox/internal/apperrors"
	"example.com/cartonbox/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func makeOrder(items ...models.OrderItem) *models.PurchaseOrder {
	return &models.PurchaseOrder{
		ID:       uuid.New(),
		PONumber: "PO-1001",
		Status:   models.OrderStatusOpen,
		Items:    items,
	}
}

func makeItem(total, produced, delivered int64, status models.OrderItemStatus) models.OrderItem {
	return models.OrderItem{
		ID:        uuid.New(),
		Type:      models.ItemTypeBox,
		Name:      "Carton A",
		Total:     total,
		Produced:  produced,
		Delivered: delivered,
		Status:    status,
	}
}

func TestGroupItemsByPO(t *testing.T) {
	poA := uuid.New()
	poB := uuid.New()

	items := []models.DeliveryItem{
		{POID: poA, OrderItemID: uuid.New(), Quantity: 10},
		{POID: poB, OrderItemID: uuid.New(), Quantity: 20},
		{POID: poA, OrderItemID: uuid.New(), Quantity: 30},
	}

	grouped := groupItemsByPO(items)
	require.Len(t, grouped, 2)
	require.Len(t, grouped[poA], 2)
	require.Len(t, grouped[poB], 1)
	require.Equal(t, int64(10), grouped[poA][0].Quantity)
	require.Equal(t, int64(30), grouped[poA][1].Quantity)
}

func TestCheckDeliveryAgainstOrder(t *testing.T) {
	item := makeItem(100, 60, 20, models.ItemStatusInProduction)
	po := makeOrder(item)

	t.Run("within available stock", func(t *testing.T) {
		err := checkDeliveryAgainstOrder(po, []models.DeliveryItem{
			{POID: po.ID, OrderItemID: item.ID, Quantity: 40},
		})
		require.NoError(t, err)
	})

	t.Run("over-shipment rejected", func(t *testing.T) {
		err := checkDeliveryAgainstOrder(po, []models.DeliveryItem{
			{POID: po.ID, OrderItemID: item.ID, Quantity: 41},
		})
		require.Error(t, err)
		require.True(t, apperrors.IsValidation(err))
	})

	t.Run("duplicate item rows are summed", func(t *testing.T) {
		err := checkDeliveryAgainstOrder(po, []models.DeliveryItem{
			{POID: po.ID, OrderItemID: item.ID, Quantity: 30},
			{POID: po.ID, OrderItemID: item.ID, Quantity: 20},
		})
		require.Error(t, err)
		require.True(t, apperrors.IsValidation(err))
	})

	t.Run("unknown item rejected", func(t *testing.T) {
		err := checkDeliveryAgainstOrder(po, []models.DeliveryItem{
			{POID: po.ID, OrderItemID: uuid.New(), Quantity: 1},
		})
		require.Error(t, err)
		require.True(t, apperrors.IsNotFound(err))
	})
}

func TestApplyDeliveryToOrder(t *testing.T) {
	t.Run("partial delivery keeps order open", func(t *testing.T) {
		item := makeItem(100, 80, 0, models.ItemStatusInProduction)
		po := makeOrder(item)

		applyDeliveryToOrder(po, []models.DeliveryItem{
			{POID: po.ID, OrderItemID: item.ID, Quantity: 50},
		})

		require.Equal(t, int64(50), po.Items[0].Delivered)
		require.Equal(t, models.ItemStatusInProduction, po.Items[0].Status)
		require.Equal(t, models.OrderStatusOpen, po.Status)
	})

	t.Run("full delivery ships item and completes order", func(t *testing.T) {
		item := makeItem(100, 100, 60, models.ItemStatusReadyToShip)
		po := makeOrder(item)

		applyDeliveryToOrder(po, []models.DeliveryItem{
			{POID: po.ID, OrderItemID: item.ID, Quantity: 40},
		})

		require.Equal(t, int64(100), po.Items[0].Delivered)
		require.Equal(t, models.ItemStatusShipped, po.Items[0].Status)
		require.Equal(t, models.OrderStatusCompleted, po.Status)
	})

	t.Run("one undelivered item keeps order open", func(t *testing.T) {
		done := makeItem(50, 50, 50, models.ItemStatusShipped)
		pending := makeItem(100, 100, 0, models.ItemStatusReadyToShip)
		po := makeOrder(done, pending)

		applyDeliveryToOrder(po, []models.DeliveryItem{
			{POID: po.ID, OrderItemID: pending.ID, Quantity: 30},
		})

		require.Equal(t, models.OrderStatusOpen, po.Status)
	})
}

func TestRevertDeliveryFromOrder(t *testing.T) {
	t.Run("shipped item reverts to ready to ship when fully produced", func(t *testing.T) {
		item := makeItem(100, 100, 100, models.ItemStatusShipped)
		po := makeOrder(item)
		po.Status = models.OrderStatusCompleted

		revertDeliveryFromOrder(po, []models.DeliveryItem{
			{POID: po.ID, OrderItemID: item.ID, Quantity: 40},
		})

		require.Equal(t, int64(60), po.Items[0].Delivered)
		require.Equal(t, models.ItemStatusReadyToShip, po.Items[0].Status)
		require.Equal(t, models.OrderStatusOpen, po.Status)
	})

	t.Run("shipped item reverts to in production when not fully produced", func(t *testing.T) {
		item := makeItem(100, 80, 80, models.ItemStatusShipped)
		po := makeOrder(item)

		revertDeliveryFromOrder(po, []models.DeliveryItem{
			{POID: po.ID, OrderItemID: item.ID, Quantity: 30},
		})

		require.Equal(t, int64(50), po.Items[0].Delivered)
		require.Equal(t, models.ItemStatusInProduction, po.Items[0].Status)
	})

	t.Run("delivered counter clamps at zero", func(t *testing.T) {
		item := makeItem(100, 50, 10, models.ItemStatusInProduction)
		po := makeOrder(item)

		revertDeliveryFromOrder(po, []models.DeliveryItem{
			{POID: po.ID, OrderItemID: item.ID, Quantity: 25},
		})

		require.Equal(t, int64(0), po.Items[0].Delivered)
	})

	t.Run("cancelled order keeps its status", func(t *testing.T) {
		item := makeItem(100, 50, 20, models.ItemStatusInProduction)
		po := makeOrder(item)
		po.Status = models.OrderStatusCancelled

		revertDeliveryFromOrder(po, []models.DeliveryItem{
			{POID: po.ID, OrderItemID: item.ID, Quantity: 20},
		})

		require.Equal(t, models.OrderStatusCancelled, po.Status)
	})

	t.Run("missing item is skipped", func(t *testing.T) {
		item := makeItem(100, 50, 20, models.ItemStatusInProduction)
		po := makeOrder(item)

		revertDeliveryFromOrder(po, []models.DeliveryItem{
			{POID: po.ID, OrderItemID: uuid.New(), Quantity: 20},
		})

		require.Equal(t, int64(20), po.Items[0].Delivered)
	})
}

func TestCreateDeleteRoundTrip(t *testing.T) {
	item := makeItem(100, 100, 0, models.ItemStatusReadyToShip)
	po := makeOrder(item)

	delivery := []models.DeliveryItem{
		{POID: po.ID, OrderItemID: item.ID, Quantity: 100},
	}

	require.NoError(t, checkDeliveryAgainstOrder(po, delivery))
	applyDeliveryToOrder(po, delivery)
	require.Equal(t, models.OrderStatusCompleted, po.Status)
	require.Equal(t, models.ItemStatusShipped, po.Items[0].Status)

	revertDeliveryFromOrder(po, delivery)
	require.Equal(t, int64(0), po.Items[0].Delivered)
	require.Equal(t, models.ItemStatusReadyToShip, po.Items[0].Status)
	require.Equal(t, models.OrderStatusOpen, po.Status)
}

func TestDeriveOrderStatus(t *testing.T) {
	require.Equal(t, models.OrderStatusCompleted, deriveOrderStatus(models.OrderItems{
		makeItem(10, 10, 10, models.ItemStatusShipped),
		makeItem(5, 5, 5, models.ItemStatusShipped),
	}))
	require.Equal(t, models.OrderStatusOpen, deriveOrderStatus(models.OrderItems{
		makeItem(10, 10, 10, models.ItemStatusShipped),
		makeItem(5, 5, 4, models.ItemStatusReadyToShip),
	}))
	// An order with no items has nothing left to deliver.
	require.Equal(t, models.OrderStatusCompleted, deriveOrderStatus(models.OrderItems{}))
}

func TestApplyProducedUpdate(t *testing.T) {
	t.Run("fully produced becomes ready to ship", func(t *testing.T) {
		item := makeItem(100, 0, 0, models.ItemStatusDraft)
		require.NoError(t, applyProducedUpdate(&item, 100))
		require.Equal(t, models.ItemStatusReadyToShip, item.Status)
	})

	t.Run("ahead of deliveries becomes in production", func(t *testing.T) {
		item := makeItem(100, 0, 0, models.ItemStatusDraft)
		require.NoError(t, applyProducedUpdate(&item, 30))
		require.Equal(t, int64(30), item.Produced)
		require.Equal(t, models.ItemStatusInProduction, item.Status)
	})

	t.Run("no progress leaves draft untouched", func(t *testing.T) {
		item := makeItem(100, 0, 0, models.ItemStatusDraft)
		require.NoError(t, applyProducedUpdate(&item, 0))
		require.Equal(t, models.ItemStatusDraft, item.Status)
	})

	t.Run("cannot exceed total", func(t *testing.T) {
		item := makeItem(100, 0, 0, models.ItemStatusDraft)
		err := applyProducedUpdate(&item, 101)
		require.Error(t, err)
		require.True(t, apperrors.IsValidation(err))
		require.Equal(t, int64(0), item.Produced)
	})

	t.Run("cannot fall below delivered", func(t *testing.T) {
		item := makeItem(100, 50, 40, models.ItemStatusInProduction)
		err := applyProducedUpdate(&item, 39)
		require.Error(t, err)
		require.True(t, apperrors.IsValidation(err))
		require.Equal(t, int64(50), item.Produced)
	})

	t.Run("shipped item keeps terminal status", func(t *testing.T) {
		item := makeItem(100, 100, 100, models.ItemStatusShipped)
		require.NoError(t, applyProducedUpdate(&item, 100))
		require.Equal(t, models.ItemStatusShipped, item.Status)
	})
}

func TestApplyProductionUpdate(t *testing.T) {
	t.Run("status override wins over derivation", func(t *testing.T) {
		item := makeItem(100, 0, 0, models.ItemStatusDraft)
		status := models.ItemStatusReadyToShip
		require.NoError(t, applyProductionUpdate(&item, ProductionUpdate{Produced: 30, Status: &status}))
		require.Equal(t, int64(30), item.Produced)
		require.Equal(t, models.ItemStatusReadyToShip, item.Status)
	})

	t.Run("no override falls back to derived status", func(t *testing.T) {
		item := makeItem(100, 0, 0, models.ItemStatusDraft)
		require.NoError(t, applyProductionUpdate(&item, ProductionUpdate{Produced: 30}))
		require.Equal(t, models.ItemStatusInProduction, item.Status)
	})

	t.Run("counter violation rejects the override too", func(t *testing.T) {
		item := makeItem(100, 0, 0, models.ItemStatusDraft)
		status := models.ItemStatusShipped
		err := applyProductionUpdate(&item, ProductionUpdate{Produced: 101, Status: &status})
		require.Error(t, err)
		require.True(t, apperrors.IsValidation(err))
		require.Equal(t, models.ItemStatusDraft, item.Status)
	})

	t.Run("notes are replaced when present", func(t *testing.T) {
		item := makeItem(100, 0, 0, models.ItemStatusDraft)
		notes := "second shift"
		require.NoError(t, applyProductionUpdate(&item, ProductionUpdate{Produced: 10, Notes: &notes}))
		require.Equal(t, "second shift", item.Notes)
	})
}

func TestValidItemStatus(t *testing.T) {
	require.True(t, validItemStatus(models.ItemStatusDraft))
	require.True(t, validItemStatus(models.ItemStatusShipped))
	require.False(t, validItemStatus(models.OrderItemStatus("Backordered")))
}
