package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// parsePrice reads a price the way the catalog treats it: a number or a
// numeric string. Anything else, including a missing value, is zero.
func parsePrice(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 {
		return decimal.Zero
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero
	}
	return d
}

// UnmarshalJSON decodes a product without failing on a malformed price, so
// one bad record does not lose the whole listing.
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	aux := struct {
		*plain
		Price json.RawMessage `json:"price"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.Price = parsePrice(aux.Price)
	return nil
}

func (l *CartLine) UnmarshalJSON(data []byte) error {
	type plain CartLine
	aux := struct {
		*plain
		Price json.RawMessage `json:"price"`
	}{plain: (*plain)(l)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	l.Price = parsePrice(aux.Price)
	return nil
}
