package services

import (
	"testing"
	"time"

	"example.com/cartonbox/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestBuildReadyToShipItems(t *testing.T) {
	stock := makeItem(100, 60, 20, models.ItemStatusInProduction)
	noStock := makeItem(100, 30, 30, models.ItemStatusInProduction)
	draft := makeItem(100, 0, 0, models.ItemStatusDraft)

	open := makeOrder(stock, noStock, draft)
	completed := makeOrder(makeItem(50, 50, 20, models.ItemStatusReadyToShip))
	completed.Status = models.OrderStatusCompleted

	items := buildReadyToShipItems([]models.PurchaseOrder{*open, *completed})

	require.Len(t, items, 1)
	require.Equal(t, stock.ID, items[0].OrderItemID)
	require.Equal(t, open.PONumber, items[0].PONumber)
	require.Equal(t, int64(40), items[0].AvailableToShip)
}

func TestBuildProductionItems(t *testing.T) {
	older := makeOrder(makeItem(10, 0, 0, models.ItemStatusDraft))
	older.OrderDate = time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	older.CustomerName = "Acme"

	newer := makeOrder(
		makeItem(20, 5, 0, models.ItemStatusInProduction),
		makeItem(30, 30, 0, models.ItemStatusReadyToShip),
	)
	newer.OrderDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	newer.CustomerName = "Globex"

	items := buildProductionItems([]models.PurchaseOrder{*older, *newer})

	require.Len(t, items, 3)
	require.Equal(t, "Globex", items[0].CustomerName)
	require.Equal(t, "Globex", items[1].CustomerName)
	require.Equal(t, "Acme", items[2].CustomerName)
	require.Equal(t, newer.PONumber, items[0].PONumber)
	require.Equal(t, newer.Status, items[0].OrderStatus)
}

func TestBuildRecentActivity(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC)
	}

	orders := []models.PurchaseOrder{
		{ID: uuid.New(), PONumber: "PO-1", CustomerName: "Acme", OrderDate: day(1)},
		{ID: uuid.New(), PONumber: "PO-2", CustomerName: "Acme", OrderDate: day(5)},
		{ID: uuid.New(), PONumber: "PO-3", CustomerName: "Acme", OrderDate: day(9)},
	}
	deliveries := []models.Delivery{
		{ID: uuid.New(), DeliveryNoteNumber: "DN-1", CustomerName: "Globex", DeliveryDate: day(3)},
		{ID: uuid.New(), DeliveryNoteNumber: "DN-2", CustomerName: "Globex", DeliveryDate: day(7)},
		{ID: uuid.New(), DeliveryNoteNumber: "DN-3", CustomerName: "Globex", DeliveryDate: day(11)},
	}

	feed := buildRecentActivity(orders, deliveries, 5)

	require.Len(t, feed, 5)
	require.Equal(t, "DN-3", feed[0].Reference)
	require.Equal(t, "PO-3", feed[1].Reference)
	require.Equal(t, "DN-2", feed[2].Reference)
	require.Equal(t, "PO-2", feed[3].Reference)
	require.Equal(t, "DN-1", feed[4].Reference)
	require.Equal(t, "delivery", feed[0].Kind)
	require.Equal(t, "purchase_order", feed[1].Kind)
}

func TestCountReadyToShip(t *testing.T) {
	open := makeOrder(
		makeItem(100, 60, 20, models.ItemStatusInProduction),
		makeItem(100, 30, 30, models.ItemStatusInProduction),
	)
	cancelled := makeOrder(makeItem(50, 50, 0, models.ItemStatusReadyToShip))
	cancelled.Status = models.OrderStatusCancelled

	// 40 shippable on the first open item, none on the second, cancelled
	// orders excluded entirely.
	require.Equal(t, int64(40), countReadyToShip([]models.PurchaseOrder{*open, *cancelled}))
}

func TestCountReadyToShipSumsAcrossItems(t *testing.T) {
	first := makeOrder(makeItem(100, 60, 20, models.ItemStatusInProduction))
	second := makeOrder(makeItem(80, 50, 10, models.ItemStatusInProduction))

	require.Equal(t, int64(80), countReadyToShip([]models.PurchaseOrder{*first, *second}))
}
