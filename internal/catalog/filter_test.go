package catalog

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/safar/supershop/internal/models"
	"github.com/shopspring/decimal"
)

func product(id int64, name, category, price string, stock int, created string) models.Product {
	p := models.Product{
		ID:          id,
		Name:        name,
		Description: fmt.Sprintf("%s from the %s aisle", name, category),
		Category:    category,
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
	}
	if created != "" {
		ts, err := models.ParseTimestamp(created)
		if err != nil {
			panic(err)
		}
		p.CreatedAt = &ts
	}
	return p
}

func fixture() []models.Product {
	return []models.Product{
		product(1, "banana", "Fruit", "1.20", 40, "2024-03-01"),
		product(2, "Apple", "Fruit", "2.50", 0, "2024-01-15"),
		product(3, "cheddar", "Dairy", "7.00", 12, ""),
		product(4, "Basmati Rice", "Grocery", "12.50", 5, "2024-05-20"),
		product(5, "Green Tea", "Drinks", "4.50", 12, "2024-02-10"),
	}
}

func ids(ps []models.Product) []int64 {
	out := make([]int64, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestFilterSortDoesNotMutateInput(t *testing.T) {
	items := fixture()
	before := fixture()

	for _, key := range SortKeys {
		FilterSort(items, Criteria{Query: "a", Category: "Fruit", Sort: key})
	}

	if diff := cmp.Diff(before, items); diff != "" {
		t.Errorf("Input mutated (-want +got):\n%s", diff)
	}
}

func TestFilterSortIsDeterministic(t *testing.T) {
	items := fixture()
	c := Criteria{Query: "e", Sort: SortStockHigh}

	first := FilterSort(items, c)
	second := FilterSort(items, c)
	if diff := cmp.Diff(ids(first), ids(second)); diff != "" {
		t.Errorf("Repeated call differs (-first +second):\n%s", diff)
	}
}

func TestCategoryFilter(t *testing.T) {
	items := fixture()

	got := FilterSort(items, Criteria{Category: "Fruit"})
	for _, p := range got {
		if p.Category != "Fruit" {
			t.Errorf("Expected only Fruit, got %q", p.Category)
		}
	}
	if len(got) != 2 {
		t.Errorf("Expected 2 fruit items, got %d", len(got))
	}

	if got := FilterSort(items, Criteria{Category: "fruit"}); len(got) != 0 {
		t.Errorf("Category match must be case-sensitive, got %d items", len(got))
	}

	for _, all := range []string{AllCategories, ""} {
		if got := FilterSort(items, Criteria{Category: all}); len(got) != len(items) {
			t.Errorf("Category %q: expected all %d items, got %d", all, len(items), len(got))
		}
	}
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	items := fixture()

	got := FilterSort(items, Criteria{Query: "RICE"})
	if diff := cmp.Diff([]int64{4}, ids(got)); diff != "" {
		t.Errorf("Query RICE (-want +got):\n%s", diff)
	}

	// "aisle" only appears in descriptions.
	got = FilterSort(items, Criteria{Query: "dairy aisle"})
	if diff := cmp.Diff([]int64{3}, ids(got)); diff != "" {
		t.Errorf("Description search (-want +got):\n%s", diff)
	}

	got = FilterSort(items, Criteria{Query: "dairy aisle", Fields: []string{FieldName}})
	if len(got) != 0 {
		t.Errorf("Name-only search must ignore descriptions, got %v", ids(got))
	}

	got = FilterSort(items, Criteria{Query: ""})
	if len(got) != len(items) {
		t.Errorf("Empty query must not filter, got %d items", len(got))
	}
}

func TestSearchAndCategoryCompose(t *testing.T) {
	got := FilterSort(fixture(), Criteria{Query: "an", Category: "Fruit"})
	if diff := cmp.Diff([]int64{1}, ids(got)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestSortKeys(t *testing.T) {
	cases := []struct {
		key  SortKey
		want []int64
	}{
		{SortNameAsc, []int64{2, 1, 4, 3, 5}},
		{SortNameDesc, []int64{5, 3, 4, 1, 2}},
		{SortPriceLow, []int64{1, 2, 5, 3, 4}},
		{SortPriceHigh, []int64{4, 3, 5, 2, 1}},
		{SortStockLow, []int64{2, 4, 3, 5, 1}},
		{SortStockHigh, []int64{1, 3, 5, 4, 2}},
		{SortDateNew, []int64{4, 1, 5, 2, 3}},
		{SortDateOld, []int64{3, 2, 5, 1, 4}},
		{"bogus", []int64{2, 1, 4, 3, 5}},
		{"", []int64{2, 1, 4, 3, 5}},
	}

	for _, tc := range cases {
		got := FilterSort(fixture(), Criteria{Sort: tc.key})
		if diff := cmp.Diff(tc.want, ids(got)); diff != "" {
			t.Errorf("Sort %q (-want +got):\n%s", tc.key, diff)
		}
	}
}

func TestSortIsStable(t *testing.T) {
	// Products 3 and 5 share stock 12 and keep input order either way.
	got := FilterSort(fixture(), Criteria{Sort: SortStockLow})
	if diff := cmp.Diff([]int64{2, 4, 3, 5, 1}, ids(got)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	reversed := fixture()
	reversed[2], reversed[4] = reversed[4], reversed[2]
	got = FilterSort(reversed, Criteria{Sort: SortStockLow})
	if diff := cmp.Diff([]int64{2, 4, 5, 3, 1}, ids(got)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestSortOrderProperty(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	items := make([]models.Product, 200)
	for i := range items {
		created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(r.Intn(1000)) * time.Hour)
		ts := models.NewTimestamp(created)
		items[i] = models.Product{
			ID:        int64(i),
			Name:      fmt.Sprintf("item-%03d", r.Intn(500)),
			Price:     decimal.NewFromInt(int64(r.Intn(100))),
			Stock:     r.Intn(50),
			CreatedAt: &ts,
		}
	}

	check := func(key SortKey, ordered func(a, b models.Product) bool) {
		got := FilterSort(items, Criteria{Sort: key})
		for i := 1; i < len(got); i++ {
			if !ordered(got[i-1], got[i]) {
				t.Fatalf("Sort %s: items %d and %d out of order", key, got[i-1].ID, got[i].ID)
			}
		}
	}

	check(SortPriceLow, func(a, b models.Product) bool { return a.Price.LessThanOrEqual(b.Price) })
	check(SortPriceHigh, func(a, b models.Product) bool { return a.Price.GreaterThanOrEqual(b.Price) })
	check(SortStockLow, func(a, b models.Product) bool { return a.Stock <= b.Stock })
	check(SortStockHigh, func(a, b models.Product) bool { return a.Stock >= b.Stock })
	check(SortDateNew, func(a, b models.Product) bool { return !a.CreatedAt.Before(b.CreatedAt.Time) })
	check(SortDateOld, func(a, b models.Product) bool { return !a.CreatedAt.After(b.CreatedAt.Time) })
}

func TestFilterSortWorksOnCartLinesAndUsers(t *testing.T) {
	lines := []models.CartLine{
		{ProductID: 1, Name: "Tea", Price: decimal.NewFromInt(5), Quantity: 1, Stock: 3},
		{ProductID: 2, Name: "Coffee", Price: decimal.NewFromInt(9), Quantity: 2, Stock: 8},
	}
	got := FilterSort(lines, Criteria{Sort: SortPriceHigh})
	if got[0].ProductID != 2 {
		t.Errorf("Expected Coffee first, got %d", got[0].ProductID)
	}

	users := []models.User{
		{ID: 1, Name: "Rahim", Email: "rahim@shop.test", Role: models.RoleAdmin},
		{ID: 2, Name: "Karim", Email: "karim@shop.test", Role: models.RoleUser},
	}
	admins := FilterSort(users, Criteria{Category: models.RoleAdmin})
	if len(admins) != 1 || admins[0].ID != 1 {
		t.Errorf("Expected only Rahim as admin, got %+v", admins)
	}
	byEmail := FilterSort(users, Criteria{Query: "KARIM@", Fields: []string{"email"}})
	if len(byEmail) != 1 || byEmail[0].ID != 2 {
		t.Errorf("Expected Karim by email, got %+v", byEmail)
	}
}

func TestCategoriesAndClear(t *testing.T) {
	items := append(fixture(), product(6, "Mystery", "", "1", 1, ""))

	got := Categories(items)
	want := []string{"Dairy", "Drinks", "Fruit", "Grocery"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Categories (-want +got):\n%s", diff)
	}

	c := ClearCriteria()
	if c.Query != "" || c.Category != AllCategories || c.Sort != SortNameAsc {
		t.Errorf("Unexpected reset criteria %+v", c)
	}
	if got := FilterSort(items, c); len(got) != len(items) {
		t.Errorf("Reset criteria must keep all items, got %d", len(got))
	}
}

func TestMemoReusesResult(t *testing.T) {
	items := fixture()
	var m Memo[models.Product]

	c := Criteria{Query: "a", Sort: SortPriceLow}
	first := m.FilterSort(items, c)
	second := m.FilterSort(items, c)
	if m.Hits() != 1 {
		t.Errorf("Expected 1 cache hit, got %d", m.Hits())
	}
	if &first[0] != &second[0] {
		t.Error("Expected the cached slice to be returned")
	}

	c.Sort = SortPriceHigh
	m.FilterSort(items, c)
	if m.Hits() != 1 {
		t.Errorf("Changed criteria must miss, hits=%d", m.Hits())
	}

	reloaded := fixture()
	m.FilterSort(reloaded, c)
	if m.Hits() != 1 {
		t.Errorf("New item list must miss, hits=%d", m.Hits())
	}

	m.FilterSort(reloaded, c)
	if m.Hits() != 2 {
		t.Errorf("Expected second hit, got %d", m.Hits())
	}

	m.Reset()
	m.FilterSort(reloaded, c)
	if m.Hits() != 2 {
		t.Errorf("Reset must drop the cache, hits=%d", m.Hits())
	}
}

func TestMemoSeesInPlaceEdits(t *testing.T) {
	items := fixture()
	var m Memo[models.Product]
	c := Criteria{Sort: SortStockLow}

	first := m.FilterSort(items, c)
	if got := ids(first); got[0] != 2 {
		t.Fatalf("Expected Apple (out of stock) first, got %v", got)
	}

	items[1].Stock = 99
	second := m.FilterSort(items, c)
	if m.Hits() != 0 {
		t.Errorf("Edited item must miss the cache, hits=%d", m.Hits())
	}
	want := []int64{4, 3, 5, 1, 2}
	if diff := cmp.Diff(want, ids(second)); diff != "" {
		t.Errorf("Order after stock edit mismatch (-want +got):\n%s", diff)
	}

	m.FilterSort(items, c)
	if m.Hits() != 1 {
		t.Errorf("Unchanged items must hit, hits=%d", m.Hits())
	}
}
