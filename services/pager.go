package services

// Pager is a restartable cursor over a fixed number of items. It replaces a
// live iterator so the paging position survives between turns.
type Pager struct {
	Offset int `json:"offset"`
	Size   int `json:"size"`
	Total  int `json:"total"`
}

// NewPager starts a pager over total items, size per page.
func NewPager(total, size int) Pager {
	if size < 1 {
		size = 1
	}
	return Pager{Size: size, Total: total}
}

// Next returns the [start, end) bounds of the next page and advances the
// cursor. Once every item was shown it returns ErrPagesExhausted. A pager
// over zero items yields a single empty page.
func (p *Pager) Next() (int, int, error) {
	if p.Exhausted() {
		return 0, 0, ErrPagesExhausted
	}
	start := p.Offset
	end := min(start+p.Size, p.Total)
	p.Offset = end
	if end == 0 {
		p.Offset = 1
	}
	return start, end, nil
}

// Exhausted reports whether Next would fail.
func (p Pager) Exhausted() bool {
	return p.Offset > p.Total || (p.Offset == p.Total && p.Offset > 0)
}

// Reset rewinds to the first page.
func (p *Pager) Reset() {
	p.Offset = 0
}
