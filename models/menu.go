package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Menu is a dated offering of a canteen that can only be ordered from
// between OrderBegin and OrderEnd.
type Menu struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Name       string         `gorm:"size:120;not null" json:"name"`
	MealType   string         `gorm:"size:60" json:"meal_type"`
	Date       time.Time      `gorm:"not null;index" json:"date"`
	OrderBegin time.Time      `gorm:"not null" json:"order_begin"`
	OrderEnd   time.Time      `gorm:"not null" json:"order_end"`
	CanteenID  uint           `gorm:"not null;index" json:"canteen_id"`
	Canteen    Canteen        `gorm:"foreignKey:CanteenID" json:"canteen"`
	Positions  []MenuPosition `gorm:"foreignKey:MenuID" json:"positions,omitempty"`
}

// TableName specifies the table name for the Menu model
func (Menu) TableName() string {
	return "menus"
}

// MenuPosition is one dish of a menu. A null Cost is served for free.
// FixedQty marks the position as part of the fixed complex.
type MenuPosition struct {
	ID       uint                `gorm:"primaryKey" json:"id"`
	Name     string              `gorm:"size:120;not null" json:"name"`
	Weight   *string             `gorm:"size:30" json:"weight"`
	Cost     decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"cost"`
	FixedQty *int                `json:"fixed_qty"`
	MenuID   uint                `gorm:"not null;index" json:"menu_id"`
}

// TableName specifies the table name for the MenuPosition model
func (MenuPosition) TableName() string {
	return "menu_positions"
}

// UnitCost returns the position price, zero when no price is set.
func (p MenuPosition) UnitCost() decimal.Decimal {
	if !p.Cost.Valid {
		return decimal.Zero
	}
	return p.Cost.Decimal
}
