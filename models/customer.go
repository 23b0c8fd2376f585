package models

import "time"

// Customer is a registered eater. Handle is the chat user id bound during
// authorization; PlaceID is the delivery place the customer picked.
type Customer struct {
	ID          uint                 `gorm:"primaryKey" json:"id"`
	ExternalID  string               `gorm:"size:64;index" json:"external_id"`
	Handle      *int64               `gorm:"uniqueIndex" json:"handle"`
	PhoneNumber string               `gorm:"size:12;uniqueIndex;not null" json:"phone_number"`
	PlaceID     *uint                `gorm:"index" json:"place_id"`
	Place       *DeliveryPlace       `gorm:"foreignKey:PlaceID" json:"place,omitempty"`
	Permissions []CustomerPermission `gorm:"foreignKey:CustomerID" json:"permissions,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// TableName specifies the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

// CustomerPermission grants a customer access to a canteen for a date range.
// A nil EndDate means the grant is open ended.
type CustomerPermission struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	CustomerID uint       `gorm:"not null;index" json:"customer_id"`
	CanteenID  uint       `gorm:"not null;index" json:"canteen_id"`
	BeginDate  time.Time  `gorm:"not null" json:"begin_date"`
	EndDate    *time.Time `json:"end_date"`
}

// TableName specifies the table name for the CustomerPermission model
func (CustomerPermission) TableName() string {
	return "customer_permissions"
}
