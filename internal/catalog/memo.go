package catalog

import (
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Memo caches the last FilterSort result. A call with the same input slice
// (same backing array and length), unchanged contents and equal criteria
// returns the cached slice without recomputing. Callers must treat the
// output as read-only.
type Memo[T Item] struct {
	mu     sync.Mutex
	valid  bool
	input  []T
	sum    uint64
	key    memoKey
	output []T
	hits   int
}

type memoKey struct {
	query    string
	category string
	sort     SortKey
	fields   string
	locale   string
}

func keyOf(c Criteria) memoKey {
	return memoKey{
		query:    c.Query,
		category: c.Category,
		sort:     c.Sort,
		fields:   strings.Join(c.fields(), "\x00"),
		locale:   c.Locale.String(),
	}
}

func sameSlice[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}

// fingerprint hashes every value FilterSort reads, so an element edited in
// place invalidates the cache.
func fingerprint[T Item](items []T, fields []string) uint64 {
	d := xxhash.New()
	var buf [20]byte
	for _, item := range items {
		for _, f := range fields {
			d.WriteString(item.Field(f))
			d.Write([]byte{0})
		}
		d.WriteString(item.Field(FieldName))
		d.Write([]byte{0})
		d.WriteString(item.Field(FieldCategory))
		d.Write([]byte{0})
		d.WriteString(item.PriceValue().String())
		d.Write([]byte{0})
		d.Write(strconv.AppendInt(buf[:0], int64(item.StockValue()), 10))
		d.Write([]byte{0})
		d.Write(strconv.AppendInt(buf[:0], item.CreatedTime().UnixNano(), 10))
		d.Write([]byte{1})
	}
	return d.Sum64()
}

func (m *Memo[T]) FilterSort(items []T, c Criteria) []T {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := keyOf(c)
	sum := fingerprint(items, c.fields())
	if m.valid && m.key == key && m.sum == sum && sameSlice(m.input, items) {
		m.hits++
		return m.output
	}

	m.output = FilterSort(items, c)
	m.input = items
	m.sum = sum
	m.key = key
	m.valid = true
	return m.output
}

// Hits reports how many calls were served from the cache.
func (m *Memo[T]) Hits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits
}

func (m *Memo[T]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.valid = false
	m.input = nil
	m.output = nil
}
