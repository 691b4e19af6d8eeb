package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"example.com/cartonbox/internal/apperrors"
	"example.com/cartonbox/internal/metrics"
	"example.com/cartonbox/internal/models"
	"example.com/cartonbox/internal/tracing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const lockedPOQuery = `SELECT (.+) FROM "purchase_orders"(.+)FOR UPDATE`

var poColumns = []string{"id", "po_number", "customer_id", "customer_name", "order_date", "status", "items"}

func newMockedFulfillmentService(t *testing.T) (*FulfillmentService, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	svc := NewFulfillmentService(db, db, nil, nil, nil, &tracing.NewRelicTracer{}, metrics.NewMetrics(), false)
	return svc, mock
}

func poRow(t *testing.T, po models.PurchaseOrder) *sqlmock.Rows {
	t.Helper()

	items, err := json.Marshal(po.Items)
	require.NoError(t, err)
	return sqlmock.NewRows(poColumns).AddRow(
		po.ID.String(), po.PONumber, po.CustomerID.String(), po.CustomerName,
		po.OrderDate, string(po.Status), items,
	)
}

func validDraft(items ...DeliveryDraftItem) DeliveryDraft {
	return DeliveryDraft{
		DeliveryNoteNumber: "DN-1001",
		CustomerID:         uuid.New(),
		CustomerName:       "Acme",
		DeliveryDate:       time.Now(),
		Items:              items,
	}
}

// A delivery touching one existing and one missing purchase order must abort
// before any write: every read runs first, the missing order fails the
// transaction, and nothing is inserted or updated.
func TestCreateDeliveryMissingOrderPersistsNothing(t *testing.T) {
	svc, mock := newMockedFulfillmentService(t)

	existingID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	missingID := uuid.MustParse("99999999-9999-9999-9999-999999999999")
	itemID := uuid.New()

	existing := models.PurchaseOrder{
		ID:           existingID,
		PONumber:     "PO-1",
		CustomerID:   uuid.New(),
		CustomerName: "Acme",
		OrderDate:    time.Now(),
		Status:       models.OrderStatusOpen,
		Items: models.OrderItems{
			{ID: itemID, Name: "Box A", Total: 100, Produced: 60, Delivered: 20, Status: models.ItemStatusInProduction},
		},
	}

	mock.ExpectBegin()
	// Orders are locked in sorted id order, the existing one first.
	mock.ExpectQuery(lockedPOQuery).WillReturnRows(poRow(t, existing))
	mock.ExpectQuery(lockedPOQuery).WillReturnRows(sqlmock.NewRows(poColumns))
	mock.ExpectRollback()

	draft := validDraft(
		DeliveryDraftItem{POID: existingID, OrderItemID: itemID, Quantity: 10},
		DeliveryDraftItem{POID: missingID, OrderItemID: uuid.New(), Quantity: 5},
	)
	created, err := svc.CreateDelivery(context.Background(), draft)

	require.Error(t, err)
	require.True(t, apperrors.IsNotFound(err))
	require.Nil(t, created)
	// No insert or update was ever issued against the store.
	require.NoError(t, mock.ExpectationsWereMet())
}

// An over-shipment is caught after the reads but before the first write, so
// the existing order is left untouched.
func TestCreateDeliveryOvershipmentPersistsNothing(t *testing.T) {
	svc, mock := newMockedFulfillmentService(t)

	poID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	itemID := uuid.New()

	po := models.PurchaseOrder{
		ID:           poID,
		PONumber:     "PO-1",
		CustomerID:   uuid.New(),
		CustomerName: "Acme",
		OrderDate:    time.Now(),
		Status:       models.OrderStatusOpen,
		Items: models.OrderItems{
			{ID: itemID, Name: "Box A", Total: 100, Produced: 60, Delivered: 20, Status: models.ItemStatusInProduction},
		},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(lockedPOQuery).WillReturnRows(poRow(t, po))
	mock.ExpectRollback()

	draft := validDraft(
		DeliveryDraftItem{POID: poID, OrderItemID: itemID, Quantity: 41},
	)
	created, err := svc.CreateDelivery(context.Background(), draft)

	require.Error(t, err)
	require.True(t, apperrors.IsValidation(err))
	require.Nil(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSortedPOIDsIsStable(t *testing.T) {
	first := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	second := uuid.MustParse("99999999-9999-9999-9999-999999999999")

	grouped := groupItemsByPO([]models.DeliveryItem{
		{POID: second, OrderItemID: uuid.New(), Quantity: 1},
		{POID: first, OrderItemID: uuid.New(), Quantity: 1},
	})

	require.Equal(t, []uuid.UUID{first, second}, sortedPOIDs(grouped))
}
