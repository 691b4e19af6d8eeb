package services

import (
	"sort"

	"example.com/cartonbox/internal/apperrors"
	"example.com/cartonbox/internal/models"

	"github.com/google/uuid"
)

// groupItemsByPO buckets delivery items by their owning purchase order,
// preserving item order within each bucket
func groupItemsByPO(items []models.DeliveryItem) map[uuid.UUID][]models.DeliveryItem {
	grouped := make(map[uuid.UUID][]models.DeliveryItem)
	for _, item := range items {
		grouped[item.POID] = append(grouped[item.POID], item)
	}
	return grouped
}

// sortedPOIDs returns the purchase-order ids of a grouped item set in a fixed
// order, so concurrent transactions always lock orders in the same sequence.
func sortedPOIDs(itemsByPO map[uuid.UUID][]models.DeliveryItem) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(itemsByPO))
	for id := range itemsByPO {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// checkDeliveryAgainstOrder verifies, before any write, that every delivery
// item targets an existing line item and that applying its quantity keeps
// delivered <= produced. Violating that would break the non-negativity of
// available-to-ship.
func checkDeliveryAgainstOrder(po *models.PurchaseOrder, items []models.DeliveryItem) error {
	pending := make(map[uuid.UUID]int64, len(items))
	for _, item := range items {
		pending[item.OrderItemID] += item.Quantity
	}

	for itemID, quantity := range pending {
		target := po.Item(itemID)
		if target == nil {
			return apperrors.NewNotFoundError("item %s not found in purchase order %s", itemID, po.PONumber)
		}
		if target.Delivered+quantity > target.Produced {
			return apperrors.NewValidationError(
				"cannot ship %d of %q: only %d available to ship",
				quantity, target.Name, target.AvailableToShip())
		}
	}
	return nil
}

// applyDeliveryToOrder adds the delivered quantities to the order's line
// items, marks fully delivered items Shipped, and recomputes the order
// status: Completed when every item has delivered >= total, Open otherwise.
// The caller must have validated the items with checkDeliveryAgainstOrder.
func applyDeliveryToOrder(po *models.PurchaseOrder, items []models.DeliveryItem) {
	for _, deliveryItem := range items {
		target := po.Item(deliveryItem.OrderItemID)
		if target == nil {
			continue
		}
		target.Delivered += deliveryItem.Quantity
		if target.Delivered >= target.Total {
			target.Status = models.ItemStatusShipped
		}
	}
	po.Status = deriveOrderStatus(po.Items)
}

// revertDeliveryFromOrder subtracts the delivered quantities again, clamping
// at zero. An item that drops below fully delivered leaves Shipped and
// reverts to Ready to Ship when fully produced, In Production otherwise.
// A Cancelled order keeps its status (manual override); anything else is
// reopened.
func revertDeliveryFromOrder(po *models.PurchaseOrder, items []models.DeliveryItem) {
	for _, deliveryItem := range items {
		target := po.Item(deliveryItem.OrderItemID)
		if target == nil {
			continue
		}
		target.Delivered -= deliveryItem.Quantity
		if target.Delivered < 0 {
			target.Delivered = 0
		}
		if target.Status == models.ItemStatusShipped && target.Delivered < target.Total {
			if target.Produced >= target.Total {
				target.Status = models.ItemStatusReadyToShip
			} else {
				target.Status = models.ItemStatusInProduction
			}
		}
	}
	if po.Status != models.OrderStatusCancelled {
		po.Status = models.OrderStatusOpen
	}
}

// deriveOrderStatus is Completed iff every item is fully delivered, Open
// otherwise. Cancelled is a manual override and is never derived.
func deriveOrderStatus(items models.OrderItems) models.OrderStatus {
	for _, item := range items {
		if item.Delivered < item.Total {
			return models.OrderStatusOpen
		}
	}
	return models.OrderStatusCompleted
}
