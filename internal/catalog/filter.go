// Package catalog filters and orders in-memory record lists for display.
// FilterSort is pure: it never mutates its input and its output depends
// only on the items and the criteria.
package catalog

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortKey string

const (
	SortNameAsc   SortKey = "name-asc"
	SortNameDesc  SortKey = "name-desc"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortStockLow  SortKey = "stock-low"
	SortStockHigh SortKey = "stock-high"
	SortDateNew   SortKey = "date-new"
	SortDateOld   SortKey = "date-old"
)

// SortKeys lists the keys in selector order.
var SortKeys = []SortKey{
	SortNameAsc, SortNameDesc,
	SortPriceLow, SortPriceHigh,
	SortStockLow, SortStockHigh,
	SortDateNew, SortDateOld,
}

// Valid reports whether k is a known key. Unknown keys sort as name-asc.
func (k SortKey) Valid() bool {
	for _, known := range SortKeys {
		if k == known {
			return true
		}
	}
	return false
}

const AllCategories = "all"

const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldCategory    = "category"
)

var DefaultFields = []string{FieldName, FieldDescription}

// Item is a record the pipeline can search and order. Field returns ""
// for fields the record does not have; CreatedTime returns the zero time
// or the epoch when the record has no date.
type Item interface {
	Field(name string) string
	PriceValue() decimal.Decimal
	StockValue() int
	CreatedTime() time.Time
}

type Criteria struct {
	Query    string
	Category string
	Sort     SortKey
	// Fields searched by Query. Empty means DefaultFields.
	Fields []string
	// Locale used for name ordering. The zero tag means root collation.
	Locale language.Tag
}

// ClearCriteria is the reset state of the filter controls.
func ClearCriteria() Criteria {
	return Criteria{Query: "", Category: AllCategories, Sort: SortNameAsc}
}

func (c Criteria) fields() []string {
	if len(c.Fields) == 0 {
		return DefaultFields
	}
	return c.Fields
}

// FilterSort applies the text query, then the category filter, then a
// stable sort by c.Sort. The result is a fresh slice.
func FilterSort[T Item](items []T, c Criteria) []T {
	out := make([]T, 0, len(items))

	query := strings.ToLower(c.Query)
	fields := c.fields()
	for _, item := range items {
		if query != "" && !matchesQuery(item, query, fields) {
			continue
		}
		if c.Category != "" && c.Category != AllCategories && item.Field(FieldCategory) != c.Category {
			continue
		}
		out = append(out, item)
	}

	sortItems(out, c.Sort, c.Locale)
	return out
}

func matchesQuery[T Item](item T, lowerQuery string, fields []string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(item.Field(field)), lowerQuery) {
			return true
		}
	}
	return false
}

func sortItems[T Item](items []T, key SortKey, locale language.Tag) {
	var less func(a, b T) bool

	switch key {
	case SortNameDesc:
		col := acquireCollator(locale)
		defer releaseCollator(locale, col)
		less = func(a, b T) bool {
			return col.CompareString(b.Field(FieldName), a.Field(FieldName)) < 0
		}
	case SortPriceLow:
		less = func(a, b T) bool { return a.PriceValue().LessThan(b.PriceValue()) }
	case SortPriceHigh:
		less = func(a, b T) bool { return b.PriceValue().LessThan(a.PriceValue()) }
	case SortStockLow:
		less = func(a, b T) bool { return a.StockValue() < b.StockValue() }
	case SortStockHigh:
		less = func(a, b T) bool { return b.StockValue() < a.StockValue() }
	case SortDateNew:
		less = func(a, b T) bool { return createdAt(b).Before(createdAt(a)) }
	case SortDateOld:
		less = func(a, b T) bool { return createdAt(a).Before(createdAt(b)) }
	default:
		col := acquireCollator(locale)
		defer releaseCollator(locale, col)
		less = func(a, b T) bool {
			return col.CompareString(a.Field(FieldName), b.Field(FieldName)) < 0
		}
	}

	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

var epoch = time.Unix(0, 0).UTC()

func createdAt[T Item](item T) time.Time {
	t := item.CreatedTime()
	if t.IsZero() {
		return epoch
	}
	return t
}

// Collators keep scratch state and cannot be shared between goroutines.
var collators sync.Map

func collatorPool(locale language.Tag) *sync.Pool {
	key := locale.String()
	if pool, ok := collators.Load(key); ok {
		return pool.(*sync.Pool)
	}
	pool, _ := collators.LoadOrStore(key, &sync.Pool{
		New: func() interface{} { return collate.New(locale) },
	})
	return pool.(*sync.Pool)
}

func acquireCollator(locale language.Tag) *collate.Collator {
	return collatorPool(locale).Get().(*collate.Collator)
}

func releaseCollator(locale language.Tag, c *collate.Collator) {
	collatorPool(locale).Put(c)
}

// Categories returns the distinct non-empty categories of items in
// collation order.
func Categories[T Item](items []T) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		category := item.Field(FieldCategory)
		if category == "" || seen[category] {
			continue
		}
		seen[category] = true
		out = append(out, category)
	}

	col := collate.New(language.Und)
	col.SortStrings(out)
	return out
}
