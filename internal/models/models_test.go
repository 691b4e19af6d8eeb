package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestPurchaseOrderItemLookup(t *testing.T) {
	first := OrderItem{ID: uuid.New(), Name: "Carton A"}
	second := OrderItem{ID: uuid.New(), Name: "Layer B"}
	po := &PurchaseOrder{Items: OrderItems{first, second}}

	found := po.Item(second.ID)
	require.NotNil(t, found)
	require.Equal(t, "Layer B", found.Name)

	// The pointer aliases the embedded slice so counter updates stick.
	found.Delivered = 7
	require.Equal(t, int64(7), po.Items[1].Delivered)

	require.Nil(t, po.Item(uuid.New()))
}

func TestOrderItemsScanRoundTrip(t *testing.T) {
	items := OrderItems{
		{ID: uuid.New(), Type: ItemTypeBox, Name: "Carton A", Total: 100, Produced: 40},
	}

	value, err := items.Value()
	require.NoError(t, err)

	var decoded OrderItems
	require.NoError(t, decoded.Scan(value))
	require.Len(t, decoded, 1)
	require.Equal(t, items[0].ID, decoded[0].ID)
	require.Equal(t, int64(40), decoded[0].Produced)
}

func TestAvailableToShip(t *testing.T) {
	item := OrderItem{Total: 100, Produced: 60, Delivered: 25}
	require.Equal(t, int64(35), item.AvailableToShip())
}
