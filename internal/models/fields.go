package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Field, PriceValue, StockValue and CreatedTime expose records to the
// catalog filter and sort. Unknown field names yield "".

func (p Product) Field(name string) string {
	switch name {
	case "name":
		return p.Name
	case "description":
		return p.Description
	case "category":
		return p.Category
	case "barcode":
		return p.Barcode
	case "id":
		return strconv.FormatInt(p.ID, 10)
	}
	return ""
}

func (p Product) PriceValue() decimal.Decimal { return p.Price }
func (p Product) StockValue() int             { return p.Stock }
func (p Product) CreatedTime() time.Time      { return p.CreatedAt.OrEpoch() }

func (l CartLine) Field(name string) string {
	switch name {
	case "name":
		return l.Name
	case "description":
		return l.Description
	case "category":
		return l.Category
	case "id":
		return strconv.FormatInt(l.ProductID, 10)
	}
	return ""
}

func (l CartLine) PriceValue() decimal.Decimal { return l.Price }
func (l CartLine) StockValue() int             { return l.Stock }
func (l CartLine) CreatedTime() time.Time      { return time.Unix(0, 0).UTC() }

// User maps its role onto the category facet so user lists filter by role.
func (u User) Field(name string) string {
	switch name {
	case "name":
		return u.Name
	case "email":
		return u.Email
	case "phone":
		return u.Phone
	case "address":
		return u.Address
	case "role", "category":
		return u.Role
	case "id":
		return strconv.FormatInt(u.ID, 10)
	}
	return ""
}

func (u User) PriceValue() decimal.Decimal { return decimal.Zero }
func (u User) StockValue() int             { return 0 }
func (u User) CreatedTime() time.Time      { return u.CreatedAt.OrEpoch() }
