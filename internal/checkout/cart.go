package checkout

import "sales-dashboard/internal/catalog"

// Line is one pending purchase in a cart. Name and price are snapshotted
// when the product is first added; later catalog edits do not touch them.
type Line struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Qty       int    `json:"qty"`
	Subtotal  int64  `json:"subtotal"`
}

// Cart accumulates candidate purchase lines before checkout. It is owned by
// a single interactive session and is not safe for concurrent use.
type Cart struct {
	lines []Line
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{}
}

// AddLine adds one unit of p. A product already in the cart has its quantity
// incremented; the quantity is capped at p.Stock as seen by the caller's
// catalog snapshot. The price used for subtotals is the one captured at
// first insertion.
func (c *Cart) AddLine(p catalog.Product) error {
	if p.Stock <= 0 {
		return ErrOutOfStock
	}
	for i := range c.lines {
		if c.lines[i].ProductID != p.ID {
			continue
		}
		if c.lines[i].Qty+1 > p.Stock {
			return ErrExceedsStock
		}
		c.lines[i].Qty++
		c.lines[i].Subtotal = c.lines[i].Price * int64(c.lines[i].Qty)
		return nil
	}
	c.lines = append(c.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Qty:       1,
		Subtotal:  p.Price,
	})
	return nil
}

// RemoveLine drops the line for productID. Removing an absent line is a
// no-op.
func (c *Cart) RemoveLine(productID string) {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Total returns the sum of all line subtotals.
func (c *Cart) Total() int64 {
	var total int64
	for _, ln := range c.lines {
		total += ln.Subtotal
	}
	return total
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}
