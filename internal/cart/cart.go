package cart

import (
	"sync"

	"github.com/alextreichler/storefront/internal/models"
	"github.com/shopspring/decimal"
)

// Cart holds one session's line items. Lines keep insertion order and there
// is at most one line per product id. Every mutation always succeeds.
type Cart struct {
	mu    sync.Mutex
	lines []models.CartLine
}

func New() *Cart {
	return &Cart{}
}

// Add increments the product's line or appends a new line with quantity 1.
func (c *Cart) Add(p models.Product) {
	c.AddN(p, 1)
}

// AddN adds the product n times. n <= 0 is a no-op.
func (c *Cart) AddN(p models.Product, n int) {
	if n <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.index(p.ID); i >= 0 {
		c.lines[i].Quantity += n
		return
	}
	c.lines = append(c.lines, models.CartLine{Product: p, Quantity: n})
}

// Remove deletes the product's line if present.
func (c *Cart) Remove(productID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(productID)
}

// UpdateQuantity sets the line's quantity. A quantity <= 0 removes the line.
// Unknown products are ignored.
func (c *Cart) UpdateQuantity(productID, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		c.remove(productID)
		return
	}
	if i := c.index(productID); i >= 0 {
		c.lines[i].Quantity = quantity
	}
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// RemoveLines subtracts each given line's quantity from the matching line,
// dropping lines that reach zero. Quantities added after the lines were read
// stay in the cart.
func (c *Cart) RemoveLines(lines []models.CartLine) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range lines {
		i := c.index(l.Product.ID)
		if i < 0 {
			continue
		}
		c.lines[i].Quantity -= l.Quantity
		if c.lines[i].Quantity <= 0 {
			c.remove(l.Product.ID)
		}
	}
}

// Total is the sum of price * quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

// Count is the sum of quantities, used for the badge.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

func (c *Cart) index(productID int) int {
	for i, l := range c.lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) remove(productID int) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}
