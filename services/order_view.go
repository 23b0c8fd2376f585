package services

import (
	"time"

	"github.com/kendall-kelly/canteen-orders/models"
	"github.com/shopspring/decimal"
)

const (
	MenuKindFixedComplex = "fixed_complex"
	MenuKindCustom       = "custom"
)

// OrderLineView is a rendered order line.
type OrderLineView struct {
	PositionID uint            `json:"position_id"`
	Name       string          `json:"name"`
	Weight     *string         `json:"weight,omitempty"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	Quantity   int             `json:"quantity"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// OrderView carries everything a front end needs to describe an order.
type OrderView struct {
	OrderID     uint            `json:"order_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	Amount      decimal.Decimal `json:"amount"`
	MenuID      uint            `json:"menu_id"`
	MenuName    string          `json:"menu_name"`
	MenuDate    time.Time       `json:"menu_date"`
	MenuKind    string          `json:"menu_kind"`
	CanteenName string          `json:"canteen_name"`
	PlaceName   string          `json:"place_name"`
	Lines       []OrderLineView `json:"lines"`
}

func menuKind(fixedComplex bool) string {
	if fixedComplex {
		return MenuKindFixedComplex
	}
	return MenuKindCustom
}

// NewOrderView projects a stored order with preloaded associations.
func NewOrderView(o models.Order) OrderView {
	lines := make([]OrderLineView, 0, len(o.Details))
	for _, d := range o.Details {
		line := lineFromPosition(d.MenuPosition, d.Quantity)
		line.PositionID = d.MenuPositionID
		lines = append(lines, lineView(line))
	}
	return OrderView{
		OrderID:     o.ID,
		CreatedAt:   o.CreatedAt,
		Amount:      o.Amount,
		MenuID:      o.MenuID,
		MenuName:    o.Menu.Name,
		MenuDate:    o.Menu.Date,
		MenuKind:    menuKind(o.Place.FixedComplex),
		CanteenName: o.Place.Canteen.Name,
		PlaceName:   o.Place.Name,
		Lines:       lines,
	}
}

// DraftView projects a draft, e.g. for the review step.
func DraftView(d *DraftOrder) OrderView {
	lines := make([]OrderLineView, 0, len(d.Committed))
	for _, l := range d.Committed {
		lines = append(lines, lineView(l))
	}
	return OrderView{
		Amount:      d.Amount,
		MenuID:      d.MenuID,
		MenuName:    d.MenuName,
		MenuDate:    d.MenuDate,
		MenuKind:    menuKind(d.FixedComplex),
		CanteenName: d.CanteenName,
		PlaceName:   d.PlaceName,
		Lines:       lines,
	}
}

func lineView(l LineDraft) OrderLineView {
	return OrderLineView{
		PositionID: l.PositionID,
		Name:       l.Name,
		Weight:     l.Weight,
		UnitCost:   l.UnitCost,
		Quantity:   l.Quantity,
		Subtotal:   l.Subtotal(),
	}
}
