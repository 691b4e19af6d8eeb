package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// OrderStatus is the lifecycle status of a purchase order
type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "Open"
	OrderStatusCompleted OrderStatus = "Completed"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// OrderItemStatus is the production/shipping status of a single line item
type OrderItemStatus string

const (
	ItemStatusDraft        OrderItemStatus = "Draft"
	ItemStatusInProduction OrderItemStatus = "In Production"
	ItemStatusReadyToShip  OrderItemStatus = "Ready to Ship"
	ItemStatusShipped      OrderItemStatus = "Shipped"
)

// OrderItemType is the kind of product being manufactured
type OrderItemType string

const (
	ItemTypeBox   OrderItemType = "Box"
	ItemTypeLayer OrderItemType = "Layer"
)

// UserRole is the authorization role of a back-office user
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleEditor UserRole = "editor"
	RoleViewer UserRole = "viewer"
)

// MaterialSize is the raw sheet dimensions for an item
type MaterialSize struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
}

// FinishedSize is the finished product dimensions. Height is zero for layers.
type FinishedSize struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// OrderItem is one line item of a purchase order. Items are owned by their
// purchase order and stored embedded in its items column; they have no
// independent lifecycle.
type OrderItem struct {
	ID           uuid.UUID       `json:"id"`
	Type         OrderItemType   `json:"type"`
	Name         string          `json:"name"`
	MaterialSize MaterialSize    `json:"material_size"`
	FinishedSize FinishedSize    `json:"finished_size"`
	Total        int64           `json:"total"`
	Produced     int64           `json:"produced"`
	Delivered    int64           `json:"delivered"`
	Status       OrderItemStatus `json:"status"`
	Notes        string          `json:"notes,omitempty"`
}

// AvailableToShip is produced minus delivered, never negative under the
// item invariants (0 <= delivered <= produced <= total).
func (i OrderItem) AvailableToShip() int64 {
	return i.Produced - i.Delivered
}

// OrderItems is the JSONB-embedded item array of a purchase order
type OrderItems []OrderItem

func (items OrderItems) Value() (driver.Value, error) {
	return json.Marshal(items)
}

func (items *OrderItems) Scan(value interface{}) error {
	return scanJSON(value, items, "order items")
}

// Customer represents a customer of the carton plant
type Customer struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	Name       string         `gorm:"not null" json:"name"`
	Email      string         `gorm:"not null" json:"email"`
	Phone      string         `gorm:"not null" json:"phone"`
	Address    string         `gorm:"not null" json:"address"`
	Registered time.Time      `gorm:"not null" json:"registered"`
}

// PurchaseOrder represents a customer order with its embedded line items.
// The customer name is denormalized onto the order at creation time.
type PurchaseOrder struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	PONumber     string         `gorm:"column:po_number;not null;uniqueIndex" json:"po_number"`
	CustomerID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"customer_id"`
	CustomerName string         `gorm:"not null" json:"customer_name"`
	OrderDate    time.Time      `gorm:"not null;index" json:"order_date"`
	Status       OrderStatus    `gorm:"not null;default:Open;index" json:"status"`
	Items        OrderItems     `gorm:"type:jsonb;not null" json:"items"`
	PDFURL       string         `gorm:"column:pdf_url" json:"pdf_url,omitempty"`
}

// Item returns the embedded item with the given id, or nil
func (po *PurchaseOrder) Item(itemID uuid.UUID) *OrderItem {
	for idx := range po.Items {
		if po.Items[idx].ID == itemID {
			return &po.Items[idx]
		}
	}
	return nil
}

// DeliveryItem is a denormalized snapshot of a shipped quantity. It holds a
// weak reference (POID + OrderItemID) back to the owning purchase order;
// deleting a delivery only rolls back counters, never the referenced item.
type DeliveryItem struct {
	POID         uuid.UUID     `json:"po_id"`
	OrderItemID  uuid.UUID     `json:"order_item_id"`
	Name         string        `json:"name"`
	PONumber     string        `json:"po_number"`
	Quantity     int64         `json:"quantity"`
	Type         OrderItemType `json:"type"`
	FinishedSize FinishedSize  `json:"finished_size"`
}

// DeliveryItems is the JSONB-embedded item array of a delivery note
type DeliveryItems []DeliveryItem

func (items DeliveryItems) Value() (driver.Value, error) {
	return json.Marshal(items)
}

func (items *DeliveryItems) Scan(value interface{}) error {
	return scanJSON(value, items, "delivery items")
}

func scanJSON(value interface{}, dest interface{}, what string) error {
	if value == nil {
		return nil
	}
	data, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.Errorf("unsupported column type %T for %s", value, what)
		}
		data = []byte(s)
	}
	return json.Unmarshal(data, dest)
}

// Delivery represents a delivery note covering quantities drawn from one or
// more purchase orders
type Delivery struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
	DeliveryNoteNumber string         `gorm:"not null;uniqueIndex" json:"delivery_note_number"`
	CustomerID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"customer_id"`
	CustomerName       string         `gorm:"not null" json:"customer_name"`
	DeliveryDate       time.Time      `gorm:"not null;index" json:"delivery_date"`
	Expedition         string         `json:"expedition,omitempty"`
	VehicleNumber      string         `json:"vehicle_number,omitempty"`
	DriverName         string         `json:"driver_name,omitempty"`
	Items              DeliveryItems  `gorm:"type:jsonb;not null" json:"items"`
}

// User is a back-office user account
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"not null;uniqueIndex" json:"email"`
	DisplayName  string         `gorm:"not null" json:"display_name"`
	Role         UserRole       `gorm:"not null;default:viewer" json:"role"`
	PasswordHash string         `gorm:"not null" json:"-"`
	PhoneNumber  string         `json:"phone_number,omitempty"`
	Department   string         `json:"department,omitempty"`
	Disabled     bool           `gorm:"not null;default:false" json:"disabled"`
	LastLogin    *time.Time     `json:"last_login,omitempty"`
}

// SetupModels configures GORM models and runs migrations
func SetupModels(db *gorm.DB) error {
	err := db.AutoMigrate(
		&Customer{},
		&PurchaseOrder{},
		&Delivery{},
		&User{},
	)
	if err != nil {
		return errors.Wrap(err, "failed to run auto migrations")
	}
	return nil
}
