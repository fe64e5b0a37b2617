package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/safar/supershop/internal/api"
	"github.com/safar/supershop/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type staticUser struct {
	id int64
}

func (u staticUser) UserID() (int64, bool) {
	return u.id, u.id != 0
}

// fakeAPI serves canned carts and records commands. The getCart and
// clearCart hooks, when set, replace the canned behaviour.
type fakeAPI struct {
	mu        sync.Mutex
	lines     []models.CartLine
	calls     []string
	getErr    error
	cmdErr    error
	clearErr  error
	getCart   func(ctx context.Context) (*api.Cart, error)
	clearCart func(ctx context.Context) error

	updates []api.UpdateCartRequest
	removes []api.RemoveCartRequest
	adds    []api.AddToCartRequest
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) GetCart(ctx context.Context, userID int64) (*api.Cart, error) {
	f.record("get")
	if f.getCart != nil {
		return f.getCart(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &api.Cart{CartID: userID, Items: append([]models.CartLine(nil), f.lines...)}, nil
}

func (f *fakeAPI) AddToCart(ctx context.Context, req api.AddToCartRequest) error {
	f.record("add")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adds = append(f.adds, req)
	return f.cmdErr
}

func (f *fakeAPI) UpdateCartItem(ctx context.Context, req api.UpdateCartRequest) error {
	f.record("update")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, req)
	return f.cmdErr
}

func (f *fakeAPI) RemoveCartItem(ctx context.Context, req api.RemoveCartRequest) error {
	f.record("remove")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removes = append(f.removes, req)
	return f.cmdErr
}

func (f *fakeAPI) ClearCart(ctx context.Context, userID int64) error {
	f.record("clear")
	if f.clearCart != nil {
		return f.clearCart(ctx)
	}
	return f.clearErr
}

func line(productID, cartItemID int64, qty, stock int, price string) models.CartLine {
	return models.CartLine{
		ProductID:  productID,
		CartItemID: cartItemID,
		Name:       "item",
		Price:      decimal.RequireFromString(price),
		Quantity:   qty,
		Stock:      stock,
	}
}

func TestReloadBuildsIndexFromLines(t *testing.T) {
	f := &fakeAPI{lines: []models.CartLine{
		line(7, 42, 3, 5, "2.50"),
		line(9, 43, 1, 1, "10.00"),
	}}
	m := New(f, staticUser{id: 1})

	require.NoError(t, m.Reload(context.Background()))

	assert.Equal(t, map[int64]int64{7: 42, 9: 43}, m.Index())
	assert.Equal(t, 4, m.Count())
	assert.True(t, m.Total().Equal(decimal.RequireFromString("17.50")))
	assert.True(t, m.CanIncrement(7))
	assert.False(t, m.CanIncrement(9))
	assert.False(t, m.CanIncrement(100))
	assert.False(t, m.Empty())
}

func TestIndexMatchesLinesAfterEveryReload(t *testing.T) {
	f := &fakeAPI{}
	m := New(f, staticUser{id: 1})
	ctx := context.Background()

	carts := [][]models.CartLine{
		{line(1, 10, 1, 5, "1")},
		{line(1, 10, 2, 5, "1"), line(2, 11, 1, 5, "1")},
		{line(2, 11, 1, 5, "1")},
		nil,
	}
	for _, lines := range carts {
		f.mu.Lock()
		f.lines = lines
		f.mu.Unlock()
		require.NoError(t, m.Reload(ctx))

		snap := m.Snapshot()
		require.Len(t, snap.Index(), len(snap.Lines()))
		for _, l := range snap.Lines() {
			id, ok := snap.CartItemID(l.ProductID)
			assert.True(t, ok)
			assert.Equal(t, l.CartItemID, id)
		}
	}
	assert.True(t, m.Empty())
}

func TestReloadFailureEmptiesCart(t *testing.T) {
	f := &fakeAPI{lines: []models.CartLine{line(7, 42, 1, 5, "1")}}
	m := New(f, staticUser{id: 1})
	ctx := context.Background()
	require.NoError(t, m.Reload(ctx))
	require.False(t, m.Empty())

	f.getErr = api.ErrNetwork
	err := m.Reload(ctx)
	assert.ErrorIs(t, err, api.ErrNetwork)
	assert.True(t, m.Empty())
	assert.Empty(t, m.Index())
}

func TestReloadWithoutUserIsEmptyAndOffline(t *testing.T) {
	f := &fakeAPI{lines: []models.CartLine{line(7, 42, 1, 5, "1")}}
	m := New(f, staticUser{})

	require.NoError(t, m.Reload(context.Background()))
	assert.True(t, m.Empty())
	assert.Empty(t, f.Calls())
}

func TestAddToCartRequiresLogin(t *testing.T) {
	f := &fakeAPI{}
	m := New(f, staticUser{})

	err := m.AddToCart(context.Background(), 7)
	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.Equal(t, "please login to add items to cart", err.Error())
	assert.Empty(t, f.Calls())
}

func TestAddToCartSendsOneUnitThenReloads(t *testing.T) {
	f := &fakeAPI{lines: []models.CartLine{line(7, 42, 1, 100, "3")}}
	m := New(f, staticUser{id: 5})

	require.NoError(t, m.AddToCart(context.Background(), 7))

	assert.Equal(t, []string{"add", "get"}, f.Calls())
	assert.Equal(t, []api.AddToCartRequest{{UserID: 5, ProductID: 7, Quantity: 1}}, f.adds)
	assert.Equal(t, map[int64]int64{7: 42}, m.Index())
}

func TestFailedMutationLeavesSnapshot(t *testing.T) {
	f := &fakeAPI{lines: []models.CartLine{line(7, 42, 3, 5, "1")}}
	m := New(f, staticUser{id: 1})
	ctx := context.Background()
	require.NoError(t, m.Reload(ctx))
	before := m.Lines()

	f.cmdErr = &api.APIError{Op: "update cart", Status: 500, Message: "boom"}
	err := m.UpdateQuantity(ctx, 7, 4)
	var apiErr *api.APIError
	require.True(t, errors.As(err, &apiErr))

	err = m.AddToCart(ctx, 7)
	assert.Error(t, err)
	err = m.RemoveFromCart(ctx, 7)
	assert.Error(t, err)

	assert.Equal(t, before, m.Lines())
	// One reload at the start, none after the failures.
	assert.Equal(t, []string{"get", "update", "add", "remove"}, f.Calls())
}

func TestUpdateWithoutIndexEntryIsNoop(t *testing.T) {
	f := &fakeAPI{lines: []models.CartLine{line(7, 42, 3, 5, "1")}}
	m := New(f, staticUser{id: 1})
	ctx := context.Background()
	require.NoError(t, m.Reload(ctx))

	require.NoError(t, m.UpdateQuantity(ctx, 99, 2))
	require.NoError(t, m.RemoveFromCart(ctx, 99))
	assert.Equal(t, []string{"get"}, f.Calls())
}

func TestUpdateWithoutUserIsNoop(t *testing.T) {
	f := &fakeAPI{}
	m := New(f, staticUser{})

	require.NoError(t, m.UpdateQuantity(context.Background(), 7, 2))
	require.NoError(t, m.RemoveFromCart(context.Background(), 7))
	assert.Empty(t, f.Calls())
}

func TestZeroOrNegativeQuantityRemoves(t *testing.T) {
	for _, qty := range []int{0, -1} {
		f := &fakeAPI{lines: []models.CartLine{line(7, 42, 3, 5, "1")}}
		m := New(f, staticUser{id: 1})
		ctx := context.Background()
		require.NoError(t, m.Reload(ctx))

		require.NoError(t, m.UpdateQuantity(ctx, 7, qty))

		assert.Empty(t, f.updates, "qty %d", qty)
		assert.Equal(t, []api.RemoveCartRequest{{CartItemID: 42}}, f.removes, "qty %d", qty)
		assert.Equal(t, []string{"get", "remove", "get"}, f.Calls(), "qty %d", qty)
	}
}

func TestClearAfterOrderEmptiesEvenOnFailure(t *testing.T) {
	f := &fakeAPI{lines: []models.CartLine{line(7, 42, 3, 5, "1")}}
	m := New(f, staticUser{id: 1})
	ctx := context.Background()
	require.NoError(t, m.Reload(ctx))

	f.clearErr = api.ErrNetwork
	err := m.ClearAfterOrder(ctx)
	assert.ErrorIs(t, err, api.ErrNetwork)
	assert.True(t, m.Empty())
	assert.Empty(t, m.Index())
}

func TestResetEmptiesCart(t *testing.T) {
	f := &fakeAPI{lines: []models.CartLine{line(7, 42, 3, 5, "1")}}
	m := New(f, staticUser{id: 1})
	require.NoError(t, m.Reload(context.Background()))

	m.Reset()
	assert.True(t, m.Empty())
}

func TestStaleReloadIsDropped(t *testing.T) {
	older := &api.Cart{Items: []models.CartLine{line(1, 10, 1, 5, "1")}}
	newer := &api.Cart{Items: []models.CartLine{line(2, 20, 1, 5, "1")}}

	started := make(chan struct{})
	release := make(chan struct{})
	var calls int
	var mu sync.Mutex

	f := &fakeAPI{}
	f.getCart = func(ctx context.Context) (*api.Cart, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(started)
			<-release
			return older, nil
		}
		return newer, nil
	}
	m := New(f, staticUser{id: 1})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- m.Reload(ctx) }()
	<-started

	require.NoError(t, m.Reload(ctx))
	assert.Equal(t, map[int64]int64{2: 20}, m.Index())

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, map[int64]int64{2: 20}, m.Index(), "older response must not overwrite newer")
}

func TestReloadInFlightDuringClearIsDropped(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	f := &fakeAPI{}
	f.getCart = func(ctx context.Context) (*api.Cart, error) {
		close(started)
		<-release
		return &api.Cart{Items: []models.CartLine{line(1, 10, 1, 5, "1")}}, nil
	}
	m := New(f, staticUser{id: 1})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- m.Reload(ctx) }()
	<-started

	require.NoError(t, m.ClearAfterOrder(ctx))
	close(release)
	require.NoError(t, <-done)
	assert.True(t, m.Empty())
}

func TestReloadStartedDuringClearLosesToClear(t *testing.T) {
	clearing := make(chan struct{})
	release := make(chan struct{})

	f := &fakeAPI{lines: []models.CartLine{line(1, 10, 1, 5, "1")}}
	f.clearCart = func(ctx context.Context) error {
		close(clearing)
		<-release
		return nil
	}
	m := New(f, staticUser{id: 1})
	ctx := context.Background()
	require.NoError(t, m.Reload(ctx))

	done := make(chan error, 1)
	go func() { done <- m.ClearAfterOrder(ctx) }()
	<-clearing

	// The server still holds the line while the clear is in flight.
	require.NoError(t, m.Reload(ctx))
	require.False(t, m.Empty())

	close(release)
	require.NoError(t, <-done)
	assert.True(t, m.Empty())
	assert.Empty(t, m.Index())
}

func TestRefreshFailureAfterMutationIsReported(t *testing.T) {
	f := &fakeAPI{lines: []models.CartLine{line(7, 42, 1, 5, "1")}}
	m := New(f, staticUser{id: 1})
	ctx := context.Background()
	require.NoError(t, m.Reload(ctx))

	f.mu.Lock()
	f.getErr = api.ErrNetwork
	f.mu.Unlock()

	err := m.AddToCart(ctx, 7)
	assert.ErrorIs(t, err, ErrRefreshFailed)
	assert.ErrorIs(t, err, api.ErrNetwork)
	assert.True(t, m.Empty())

	// A rejected command is not a refresh failure.
	f.mu.Lock()
	f.getErr = nil
	f.mu.Unlock()
	require.NoError(t, m.Reload(ctx))
	f.mu.Lock()
	f.cmdErr = &api.APIError{Op: "update cart", Status: 400, Message: "Not enough stock"}
	f.mu.Unlock()
	err = m.UpdateQuantity(ctx, 7, 9)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRefreshFailed)

	assert.Equal(t, []string{"get", "add", "get", "get", "update"}, f.Calls())
}

func TestSnapshotAccessorsReturnCopies(t *testing.T) {
	snap := newSnapshot([]models.CartLine{line(7, 42, 1, 5, "1")})

	lines := snap.Lines()
	lines[0].Quantity = 99
	index := snap.Index()
	index[8] = 1

	assert.Equal(t, 1, snap.Count())
	_, ok := snap.CartItemID(8)
	assert.False(t, ok)
}
