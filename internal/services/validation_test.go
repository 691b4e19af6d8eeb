package services

import (
	"testing"
	"time"

	"example.com/cartonbox/internal/apperrors"
	"example.com/cartonbox/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func validOrderDraft() OrderDraft {
	return OrderDraft{
		PONumber:   "PO-2044",
		CustomerID: uuid.New(),
		OrderDate:  time.Now(),
		Items: []OrderItemDraft{
			{
				Type:         models.ItemTypeBox,
				Name:         "Shipping carton",
				MaterialSize: models.MaterialSize{Length: 120, Width: 80},
				FinishedSize: models.FinishedSize{Length: 40, Width: 30, Height: 25},
				Total:        500,
			},
		},
	}
}

func TestOrderDraftValidation(t *testing.T) {
	t.Run("valid draft passes", func(t *testing.T) {
		require.NoError(t, validateStruct(validOrderDraft()))
	})

	t.Run("missing po number", func(t *testing.T) {
		draft := validOrderDraft()
		draft.PONumber = ""
		err := validateStruct(draft)
		require.Error(t, err)
		require.True(t, apperrors.IsValidation(err))
	})

	t.Run("no items", func(t *testing.T) {
		draft := validOrderDraft()
		draft.Items = nil
		err := validateStruct(draft)
		require.Error(t, err)
		require.True(t, apperrors.IsValidation(err))
	})

	t.Run("zero quantity item", func(t *testing.T) {
		draft := validOrderDraft()
		draft.Items[0].Total = 0
		err := validateStruct(draft)
		require.Error(t, err)
		require.True(t, apperrors.IsValidation(err))
	})

	t.Run("unknown item type", func(t *testing.T) {
		draft := validOrderDraft()
		draft.Items[0].Type = "Tube"
		err := validateStruct(draft)
		require.Error(t, err)
		require.True(t, apperrors.IsValidation(err))
	})
}

func TestCheckItemDraft(t *testing.T) {
	t.Run("box needs a finished height", func(t *testing.T) {
		draft := validOrderDraft().Items[0]
		draft.FinishedSize.Height = 0
		err := checkItemDraft(draft)
		require.Error(t, err)
		require.True(t, apperrors.IsValidation(err))
	})

	t.Run("layer needs no height", func(t *testing.T) {
		draft := validOrderDraft().Items[0]
		draft.Type = models.ItemTypeLayer
		draft.FinishedSize.Height = 0
		require.NoError(t, checkItemDraft(draft))
	})

	t.Run("material size must be positive", func(t *testing.T) {
		draft := validOrderDraft().Items[0]
		draft.MaterialSize.Width = 0
		err := checkItemDraft(draft)
		require.Error(t, err)
	})
}

func TestDeliveryDraftValidation(t *testing.T) {
	draft := DeliveryDraft{
		DeliveryNoteNumber: "DN-301",
		CustomerID:         uuid.New(),
		CustomerName:       "Acme",
		DeliveryDate:       time.Now(),
		Items: []DeliveryDraftItem{
			{POID: uuid.New(), OrderItemID: uuid.New(), Quantity: 10},
		},
	}
	require.NoError(t, validateStruct(draft))

	t.Run("quantity must be positive", func(t *testing.T) {
		bad := draft
		bad.Items = []DeliveryDraftItem{
			{POID: uuid.New(), OrderItemID: uuid.New(), Quantity: 0},
		}
		err := validateStruct(bad)
		require.Error(t, err)
		require.True(t, apperrors.IsValidation(err))
	})

	t.Run("at least one item", func(t *testing.T) {
		bad := draft
		bad.Items = nil
		err := validateStruct(bad)
		require.Error(t, err)
	})
}
