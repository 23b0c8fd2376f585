package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a committed meal order. SentAt is set once the order has been
// exported to the canteen's accounting system.
type Order struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Amount     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	CustomerID uint            `gorm:"not null;index" json:"customer_id"`
	Customer   *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	MenuID     uint            `gorm:"not null;index" json:"menu_id"`
	Menu       Menu            `gorm:"foreignKey:MenuID" json:"menu"`
	PlaceID    uint            `gorm:"not null;index" json:"place_id"`
	Place      DeliveryPlace   `gorm:"foreignKey:PlaceID" json:"place"`
	SentAt     *time.Time      `gorm:"index" json:"sent_at"`
	Details    []OrderDetail   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"details"`
	CreatedAt  time.Time       `json:"created_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// Exported reports whether the order already left the system.
func (o Order) Exported() bool {
	return o.SentAt != nil
}

// OrderDetail is one line of an order.
type OrderDetail struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	OrderID        uint         `gorm:"not null;index" json:"order_id"`
	MenuPositionID uint         `gorm:"not null;index" json:"menu_position_id"`
	MenuPosition   MenuPosition `gorm:"foreignKey:MenuPositionID" json:"menu_position"`
	Quantity       int          `gorm:"not null;check:quantity > 0" json:"quantity"`
}

// TableName specifies the table name for the OrderDetail model
func (OrderDetail) TableName() string {
	return "order_details"
}
