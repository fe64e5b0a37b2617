package cart

import (
	"github.com/safar/supershop/internal/models"
	"github.com/shopspring/decimal"
)

// Snapshot is one server view of the cart: its lines and the
// product-to-cart-item index derived from them. A Snapshot is never
// modified after construction; the model swaps whole values.
type Snapshot struct {
	lines []models.CartLine
	index map[int64]int64
}

func newSnapshot(lines []models.CartLine) Snapshot {
	snap := Snapshot{
		lines: make([]models.CartLine, len(lines)),
		index: make(map[int64]int64, len(lines)),
	}
	copy(snap.lines, lines)
	for _, line := range snap.lines {
		snap.index[line.ProductID] = line.CartItemID
	}
	return snap
}

// Lines returns a copy of the cart lines in server order.
func (s Snapshot) Lines() []models.CartLine {
	out := make([]models.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Index returns a copy of the product id to cart_item_id map.
func (s Snapshot) Index() map[int64]int64 {
	out := make(map[int64]int64, len(s.index))
	for productID, cartItemID := range s.index {
		out[productID] = cartItemID
	}
	return out
}

func (s Snapshot) CartItemID(productID int64) (int64, bool) {
	id, ok := s.index[productID]
	return id, ok
}

func (s Snapshot) Line(productID int64) (models.CartLine, bool) {
	for _, line := range s.lines {
		if line.ProductID == productID {
			return line, true
		}
	}
	return models.CartLine{}, false
}

// Count is the total quantity across lines.
func (s Snapshot) Count() int {
	n := 0
	for _, line := range s.lines {
		n += line.Quantity
	}
	return n
}

func (s Snapshot) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// CanIncrement reports whether the line for productID is below its stock.
// It only drives the UI; the server decides.
func (s Snapshot) CanIncrement(productID int64) bool {
	line, ok := s.Line(productID)
	return ok && line.Quantity < line.Stock
}

func (s Snapshot) Empty() bool {
	return len(s.lines) == 0
}
