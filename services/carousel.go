package services

import "fmt"

// CarouselMode selects what the middle control of the carousel does.
type CarouselMode string

const (
	ModeView   CarouselMode = "view"
	ModeDelete CarouselMode = "delete"
)

// Valid reports whether m is a known mode.
func (m CarouselMode) Valid() bool {
	return m == ModeView || m == ModeDelete
}

// Carousel is a circular previous/current/next view over a list of orders.
// Cursors are indexes into Items and always satisfy
// Next == (Cur+1) mod N and Prev == (Cur-1) mod N while N > 0.
type Carousel struct {
	Mode       CarouselMode `json:"mode"`
	CustomerID uint         `json:"customer_id,omitempty"`
	Items      []OrderView  `json:"items"`
	Prev       int          `json:"prev"`
	Cur        int          `json:"cur"`
	Next       int          `json:"next"`
}

// NewCarousel loads items into a carousel in the given mode.
func NewCarousel(mode CarouselMode, items []OrderView) (*Carousel, error) {
	c := &Carousel{Mode: mode}
	if err := c.Load(items); err != nil {
		return nil, err
	}
	return c, nil
}

// Load replaces the backing list and centres on the first item.
func (c *Carousel) Load(items []OrderView) error {
	if len(items) == 0 {
		return ErrEmptyCollection
	}
	c.Items = append([]OrderView(nil), items...)
	c.center(0)
	return nil
}

// Len is the number of items left.
func (c *Carousel) Len() int {
	return len(c.Items)
}

// Empty reports whether every item was deleted.
func (c *Carousel) Empty() bool {
	return len(c.Items) == 0
}

func (c *Carousel) center(cur int) {
	n := len(c.Items)
	if n == 0 {
		c.Prev, c.Cur, c.Next = 0, 0, 0
		return
	}
	c.Cur = cur % n
	c.Prev = (c.Cur - 1 + n) % n
	c.Next = (c.Cur + 1) % n
}

// StepForward rotates the cursors one item ahead.
func (c *Carousel) StepForward() error {
	if c.Empty() {
		return ErrEmptyCollection
	}
	c.center(c.Cur + 1)
	return nil
}

// StepBackward rotates the cursors one item back.
func (c *Carousel) StepBackward() error {
	if c.Empty() {
		return ErrEmptyCollection
	}
	c.center(c.Cur - 1 + len(c.Items))
	return nil
}

// Current returns the item under the current cursor.
func (c *Carousel) Current() (OrderView, error) {
	if c.Empty() {
		return OrderView{}, ErrEmptyCollection
	}
	return c.Items[c.Cur], nil
}

// DeleteCurrent drops the current item and recentres on current mod N.
// Call it only after the order was deleted from storage.
func (c *Carousel) DeleteCurrent() error {
	if c.Empty() {
		return ErrEmptyCollection
	}
	c.Items = append(c.Items[:c.Cur], c.Items[c.Cur+1:]...)
	c.center(c.Cur)
	return nil
}

// Control is one button of the carousel keyboard.
type Control struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// Controls is the navigation row shown under the current order. Previous
// and Next are nil when there is nothing to scroll to.
type Controls struct {
	Previous *Control `json:"previous,omitempty"`
	Middle   Control  `json:"middle"`
	Next     *Control `json:"next,omitempty"`
}

// Controls renders the navigation row for the current position.
func (c *Carousel) Controls() Controls {
	n := len(c.Items)
	var controls Controls
	if c.Mode == ModeDelete {
		controls.Middle = Control{Label: "delete", Action: "delete"}
	} else {
		controls.Middle = Control{Label: fmt.Sprintf("%d/%d", c.Cur+1, n), Action: "noop"}
	}
	if n > 1 {
		controls.Previous = &Control{Label: fmt.Sprintf("(%d/%d)", c.Prev+1, n), Action: "prev"}
		controls.Next = &Control{Label: fmt.Sprintf("(%d/%d)", c.Next+1, n), Action: "next"}
	}
	return controls
}
