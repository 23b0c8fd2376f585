package models

import "time"

// Canteen is a facility that offers menus and owns delivery places.
type Canteen struct {
	ID     uint            `gorm:"primaryKey" json:"id"`
	Name   string          `gorm:"size:120;not null" json:"name"`
	Places []DeliveryPlace `gorm:"foreignKey:CanteenID" json:"places,omitempty"`
}

// TableName specifies the table name for the Canteen model
func (Canteen) TableName() string {
	return "canteens"
}

// DeliveryPlace is a point inside a canteen where orders are handed out.
// FixedComplex places only accept the predefined set of positions of a menu.
type DeliveryPlace struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:120;not null" json:"name"`
	BeginDate    time.Time  `gorm:"not null" json:"begin_date"`
	EndDate      *time.Time `json:"end_date"`
	FixedComplex bool       `gorm:"not null;default:false" json:"fixed_complex"`
	CanteenID    uint       `gorm:"not null;index" json:"canteen_id"`
	Canteen      Canteen    `gorm:"foreignKey:CanteenID" json:"canteen"`
}

// TableName specifies the table name for the DeliveryPlace model
func (DeliveryPlace) TableName() string {
	return "delivery_places"
}
