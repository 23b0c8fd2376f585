package services

import (
	"time"

	"github.com/kendall-kelly/canteen-orders/models"
	"github.com/shopspring/decimal"
)

// Phase is the step a draft order is in.
type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseMenuSelection Phase = "menu_selection"
	PhaseItemSelection Phase = "item_selection"
	PhaseReviewPending Phase = "review_pending"
)

// Direction of a quantity adjustment.
type Direction string

const (
	Increase Direction = "increase"
	Decrease Direction = "decrease"
)

// LineDraft is one position of a draft order with its chosen quantity.
type LineDraft struct {
	PositionID uint            `json:"position_id"`
	Name       string          `json:"name"`
	Weight     *string         `json:"weight,omitempty"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	Quantity   int             `json:"quantity"`
}

// Subtotal is quantity times unit cost.
func (l LineDraft) Subtotal() decimal.Decimal {
	return l.UnitCost.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func lineFromPosition(p models.MenuPosition, quantity int) LineDraft {
	return LineDraft{
		PositionID: p.ID,
		Name:       p.Name,
		Weight:     p.Weight,
		UnitCost:   p.UnitCost(),
		Quantity:   quantity,
	}
}

// DraftOrder is the serializable state of an order being composed.
// Amount always equals the sum of Committed subtotals.
type DraftOrder struct {
	Phase        Phase               `json:"phase"`
	CustomerID   uint                `json:"customer_id"`
	CanteenID    uint                `json:"canteen_id"`
	CanteenName  string              `json:"canteen_name"`
	PlaceID      uint                `json:"place_id"`
	PlaceName    string              `json:"place_name"`
	FixedComplex bool                `json:"fixed_complex"`
	MenuID       uint                `json:"menu_id,omitempty"`
	MenuName     string              `json:"menu_name,omitempty"`
	MenuDate     time.Time           `json:"menu_date,omitempty"`
	Amount       decimal.Decimal     `json:"amount"`
	Candidates   map[uint]*LineDraft `json:"candidates,omitempty"`
	Disclosure   []uint              `json:"disclosure,omitempty"`
	Committed    []LineDraft         `json:"committed,omitempty"`
	Pager        Pager               `json:"pager"`
}

// newDraft starts a draft in menu selection for a customer at a place.
func newDraft(customerID uint, place models.DeliveryPlace) *DraftOrder {
	return &DraftOrder{
		Phase:        PhaseMenuSelection,
		CustomerID:   customerID,
		CanteenID:    place.CanteenID,
		CanteenName:  place.Canteen.Name,
		PlaceID:      place.ID,
		PlaceName:    place.Name,
		FixedComplex: place.FixedComplex,
		Amount:       decimal.Zero,
	}
}

func (d *DraftOrder) expect(phases ...Phase) error {
	for _, p := range phases {
		if d.Phase == p {
			return nil
		}
	}
	return ErrInvalidState
}

func (d *DraftOrder) setMenu(menu models.Menu) {
	d.MenuID = menu.ID
	d.MenuName = menu.Name
	d.MenuDate = menu.Date
}

func (d *DraftOrder) resetLines() {
	d.Amount = decimal.Zero
	d.Candidates = nil
	d.Disclosure = nil
	d.Committed = nil
	d.Pager = Pager{}
}

// commitFixed commits every position carrying a fixed quantity.
func (d *DraftOrder) commitFixed(positions []models.MenuPosition) error {
	var lines []LineDraft
	for _, p := range positions {
		if p.FixedQty != nil && *p.FixedQty > 0 {
			lines = append(lines, lineFromPosition(p, *p.FixedQty))
		}
	}
	if len(lines) == 0 {
		return ErrNoFixedItems
	}

	d.resetLines()
	for _, l := range lines {
		d.appendCommitted(l)
	}
	d.Phase = PhaseReviewPending
	return nil
}

// loadCandidates makes every position a candidate at quantity one.
func (d *DraftOrder) loadCandidates(positions []models.MenuPosition, pageSize int) {
	d.resetLines()
	d.Candidates = make(map[uint]*LineDraft, len(positions))
	d.Disclosure = make([]uint, 0, len(positions))
	for _, p := range positions {
		line := lineFromPosition(p, 1)
		d.Candidates[p.ID] = &line
		d.Disclosure = append(d.Disclosure, p.ID)
	}
	d.Pager = NewPager(len(d.Disclosure), pageSize)
	d.Phase = PhaseItemSelection
}

// nextPage returns the next slice of candidates in disclosure order.
func (d *DraftOrder) nextPage() ([]LineDraft, error) {
	start, end, err := d.Pager.Next()
	if err != nil {
		return nil, err
	}
	page := make([]LineDraft, 0, end-start)
	for _, id := range d.Disclosure[start:end] {
		page = append(page, *d.Candidates[id])
	}
	return page, nil
}

func (d *DraftOrder) candidate(positionID uint) (*LineDraft, error) {
	line, ok := d.Candidates[positionID]
	if !ok {
		return nil, ErrUnknownPosition
	}
	return line, nil
}

// adjust changes a candidate's quantity. Quantity never drops below one.
func (d *DraftOrder) adjust(positionID uint, dir Direction) (LineDraft, error) {
	line, err := d.candidate(positionID)
	if err != nil {
		return LineDraft{}, err
	}
	switch dir {
	case Increase:
		line.Quantity++
	case Decrease:
		if line.Quantity-1 < 1 {
			return *line, ErrInvalidQuantity
		}
		line.Quantity--
	default:
		return *line, ErrInvalidState
	}
	return *line, nil
}

// commit appends a copy of the candidate at its current quantity.
// Committing the same position twice yields two lines.
func (d *DraftOrder) commit(positionID uint) (LineDraft, error) {
	line, err := d.candidate(positionID)
	if err != nil {
		return LineDraft{}, err
	}
	committed := *line
	d.appendCommitted(committed)
	return committed, nil
}

func (d *DraftOrder) appendCommitted(line LineDraft) {
	d.Committed = append(d.Committed, line)
	d.Amount = d.Amount.Add(line.Subtotal())
}

func (d *DraftOrder) finalize() error {
	if len(d.Committed) == 0 {
		return ErrNoPositionsSelected
	}
	d.Phase = PhaseReviewPending
	return nil
}

// toOrder builds the order row to persist from a reviewed draft.
func (d *DraftOrder) toOrder(now time.Time) *models.Order {
	details := make([]models.OrderDetail, 0, len(d.Committed))
	for _, l := range d.Committed {
		details = append(details, models.OrderDetail{MenuPositionID: l.PositionID, Quantity: l.Quantity})
	}
	return &models.Order{
		CreatedAt:  now,
		Amount:     d.Amount,
		CustomerID: d.CustomerID,
		MenuID:     d.MenuID,
		PlaceID:    d.PlaceID,
		Details:    details,
	}
}
