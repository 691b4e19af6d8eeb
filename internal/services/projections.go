package services

import (
	"sort"
	"time"

	"example.com/cartonbox/internal/models"

	"github.com/google/uuid"
)

// ReadyToShipItem is a purchase-order line item with shippable stock,
// annotated with its originating order
type ReadyToShipItem struct {
	POID            uuid.UUID            `json:"po_id"`
	PONumber        string               `json:"po_number"`
	OrderDate       time.Time            `json:"order_date"`
	OrderItemID     uuid.UUID            `json:"order_item_id"`
	Name            string               `json:"name"`
	Type            models.OrderItemType `json:"type"`
	FinishedSize    models.FinishedSize  `json:"finished_size"`
	Total           int64                `json:"total"`
	Produced        int64                `json:"produced"`
	Delivered       int64                `json:"delivered"`
	AvailableToShip int64                `json:"available_to_ship"`
}

// buildReadyToShipItems flattens the shippable line items out of a set of
// purchase orders. Only open orders contribute, and only items with stock on
// hand (produced beyond what has already been delivered).
func buildReadyToShipItems(orders []models.PurchaseOrder) []ReadyToShipItem {
	result := make([]ReadyToShipItem, 0)
	for _, po := range orders {
		if po.Status != models.OrderStatusOpen {
			continue
		}
		for _, item := range po.Items {
			if item.AvailableToShip() <= 0 {
				continue
			}
			result = append(result, ReadyToShipItem{
				POID:            po.ID,
				PONumber:        po.PONumber,
				OrderDate:       po.OrderDate,
				OrderItemID:     item.ID,
				Name:            item.Name,
				Type:            item.Type,
				FinishedSize:    item.FinishedSize,
				Total:           item.Total,
				Produced:        item.Produced,
				Delivered:       item.Delivered,
				AvailableToShip: item.AvailableToShip(),
			})
		}
	}
	return result
}

// ProductionItem is a purchase-order line item annotated with its order and
// customer, as shown on the production floor view
type ProductionItem struct {
	POID         uuid.UUID              `json:"po_id"`
	PONumber     string                 `json:"po_number"`
	CustomerName string                 `json:"customer_name"`
	OrderDate    time.Time              `json:"order_date"`
	OrderStatus  models.OrderStatus     `json:"order_status"`
	OrderItemID  uuid.UUID              `json:"order_item_id"`
	Name         string                 `json:"name"`
	Type         models.OrderItemType   `json:"type"`
	MaterialSize models.MaterialSize    `json:"material_size"`
	FinishedSize models.FinishedSize    `json:"finished_size"`
	Total        int64                  `json:"total"`
	Produced     int64                  `json:"produced"`
	Delivered    int64                  `json:"delivered"`
	Status       models.OrderItemStatus `json:"status"`
	Notes        string                 `json:"notes,omitempty"`
}

// buildProductionItems flattens every line item of the given purchase
// orders, newest order first
func buildProductionItems(orders []models.PurchaseOrder) []ProductionItem {
	result := make([]ProductionItem, 0)
	for _, po := range orders {
		for _, item := range po.Items {
			result = append(result, ProductionItem{
				POID:         po.ID,
				PONumber:     po.PONumber,
				CustomerName: po.CustomerName,
				OrderDate:    po.OrderDate,
				OrderStatus:  po.Status,
				OrderItemID:  item.ID,
				Name:         item.Name,
				Type:         item.Type,
				MaterialSize: item.MaterialSize,
				FinishedSize: item.FinishedSize,
				Total:        item.Total,
				Produced:     item.Produced,
				Delivered:    item.Delivered,
				Status:       item.Status,
				Notes:        item.Notes,
			})
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].OrderDate.After(result[j].OrderDate)
	})
	return result
}

// ActivityEntry is one row of the dashboard's recent activity feed
type ActivityEntry struct {
	Kind      string    `json:"kind"` // "purchase_order" or "delivery"
	ID        uuid.UUID `json:"id"`
	Reference string    `json:"reference"`
	Customer  string    `json:"customer"`
	Date      time.Time `json:"date"`
}

// DashboardAggregates is the summary block of the dashboard view
type DashboardAggregates struct {
	ActiveOrders        int64           `json:"active_orders"`
	ReadyToShipItems    int64           `json:"ready_to_ship_items"`
	DeliveriesThisMonth int64           `json:"deliveries_this_month"`
	RecentActivity      []ActivityEntry `json:"recent_activity"`
}

// buildRecentActivity merges recent purchase orders and deliveries into one
// feed, newest first, capped at limit entries
func buildRecentActivity(orders []models.PurchaseOrder, deliveries []models.Delivery, limit int) []ActivityEntry {
	entries := make([]ActivityEntry, 0, len(orders)+len(deliveries))
	for _, po := range orders {
		entries = append(entries, ActivityEntry{
			Kind:      "purchase_order",
			ID:        po.ID,
			Reference: po.PONumber,
			Customer:  po.CustomerName,
			Date:      po.OrderDate,
		})
	}
	for _, d := range deliveries {
		entries = append(entries, ActivityEntry{
			Kind:      "delivery",
			ID:        d.ID,
			Reference: d.DeliveryNoteNumber,
			Customer:  d.CustomerName,
			Date:      d.DeliveryDate,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// countReadyToShip sums the shippable stock across open orders
func countReadyToShip(orders []models.PurchaseOrder) int64 {
	var total int64
	for _, po := range orders {
		if po.Status != models.OrderStatusOpen {
			continue
		}
		for _, item := range po.Items {
			if available := item.AvailableToShip(); available > 0 {
				total += available
			}
		}
	}
	return total
}
