package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus is the kitchen/admin workflow state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ServiceType is how the customer receives the order
type ServiceType string

const (
	ServiceDelivery ServiceType = "delivery"
	ServiceTakeAway ServiceType = "takeaway"
)

// Valid reports whether s is one of the known service types
func (s ServiceType) Valid() bool {
	return s == ServiceDelivery || s == ServiceTakeAway
}

// Order represents a customer order in the system.
// Orders created through the conversational pipeline start as "confirmed"
// (the bot has already confirmed the items with the customer); orders created
// through the admin panel start as "pending" via the column default.
type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	CustomerName    string          `gorm:"not null" json:"customer_name"`
	CustomerPhone   string          `gorm:"size:32;not null;index" json:"customer_phone"`
	ServiceType     ServiceType     `gorm:"size:16;not null" json:"service_type"`
	DeliveryAddress *string         `json:"delivery_address,omitempty"` // nullable, required for delivery orders
	PaymentMethod   string          `gorm:"size:32" json:"payment_method"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Status          OrderStatus     `gorm:"size:16;not null;default:'pending'" json:"status"`
	ScheduledDate   time.Time       `gorm:"type:date;not null" json:"scheduled_date"`
	ScheduledTime   *string         `gorm:"size:8" json:"scheduled_time,omitempty"` // "HH:MM", nullable
	DedupKey        *string         `gorm:"size:64;uniqueIndex" json:"-"`           // conversational-intent hash, nil for admin orders
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderItem represents one line of an order. Name and unit price are captured
// at order time so later product renames or price changes do not rewrite
// committed orders.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"not null;index" json:"order_id"`
	ProductID   uint            `gorm:"not null" json:"product_id"`
	ProductName string          `gorm:"not null" json:"product_name"`
	Quantity    int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}
