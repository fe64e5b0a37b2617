// Package cart keeps the client's view of the server-side cart. Every
// mutation is a command followed by a full reload; the client never
// patches its copy. Reloads are sequenced so a slow response can not
// overwrite a newer one.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/safar/supershop/internal/api"
	"github.com/safar/supershop/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrLoginRequired = errors.New("please login to add items to cart")
	// ErrRefreshFailed marks a mutation the server accepted whose follow-up
	// reload failed. The snapshot is empty until the next successful reload.
	ErrRefreshFailed = errors.New("cart was changed but could not be refreshed")
)

// API is the part of the storefront client the model needs.
type API interface {
	GetCart(ctx context.Context, userID int64) (*api.Cart, error)
	AddToCart(ctx context.Context, req api.AddToCartRequest) error
	UpdateCartItem(ctx context.Context, req api.UpdateCartRequest) error
	RemoveCartItem(ctx context.Context, req api.RemoveCartRequest) error
	ClearCart(ctx context.Context, userID int64) error
}

// UserSource reports the signed-in user. ok is false when nobody is.
type UserSource interface {
	UserID() (id int64, ok bool)
}

type Model struct {
	api    API
	users  UserSource
	logger *zap.Logger

	mu      sync.Mutex
	snap    Snapshot
	issued  uint64
	applied uint64
}

type Option func(*Model)

func WithLogger(l *zap.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

func New(client API, users UserSource, opts ...Option) *Model {
	m := &Model{
		api:    client,
		users:  users,
		logger: zap.NewNop(),
		snap:   newSnapshot(nil),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Snapshot returns the current cart view.
func (m *Model) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

func (m *Model) nextSeq() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issued++
	return m.issued
}

// apply installs snap unless a later sequence number was already applied.
func (m *Model) apply(seq uint64, snap Snapshot) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seq <= m.applied {
		return false
	}
	m.snap = snap
	m.applied = seq
	return true
}

// Reload replaces the snapshot with the server's cart. Without a user, or
// when the fetch fails, the snapshot becomes empty and the fetch error is
// returned.
func (m *Model) Reload(ctx context.Context) error {
	seq := m.nextSeq()

	userID, ok := m.users.UserID()
	if !ok {
		m.apply(seq, newSnapshot(nil))
		return nil
	}

	cart, err := m.api.GetCart(ctx, userID)
	if err != nil {
		m.logger.Warn("cart reload failed", zap.Int64("user_id", userID), zap.Error(err))
		m.apply(seq, newSnapshot(nil))
		return fmt.Errorf("reload cart: %w", err)
	}

	if !m.apply(seq, newSnapshot(cart.Items)) {
		m.logger.Debug("stale cart reload dropped", zap.Uint64("seq", seq))
	}
	return nil
}

// reloadAfter runs the refresh that ends every successful mutation. A
// failure is returned wrapped in ErrRefreshFailed so callers can tell it
// from a rejected command.
func (m *Model) reloadAfter(ctx context.Context) error {
	if err := m.Reload(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	return nil
}

// AddToCart adds one unit of productID. It takes the id only: the server
// owns the product data and the reload brings it back. It refuses before
// any network call when nobody is signed in.
func (m *Model) AddToCart(ctx context.Context, productID int64) error {
	userID, ok := m.users.UserID()
	if !ok {
		return ErrLoginRequired
	}

	err := m.api.AddToCart(ctx, api.AddToCartRequest{UserID: userID, ProductID: productID, Quantity: 1})
	if err != nil {
		return err
	}

	return m.reloadAfter(ctx)
}

// UpdateQuantity sets the quantity of productID's line. Zero or less
// removes the line. Nothing happens without a user or without a line for
// the product.
func (m *Model) UpdateQuantity(ctx context.Context, productID int64, quantity int) error {
	if _, ok := m.users.UserID(); !ok {
		return nil
	}
	cartItemID, ok := m.Snapshot().CartItemID(productID)
	if !ok {
		return nil
	}
	if quantity <= 0 {
		return m.RemoveFromCart(ctx, productID)
	}

	err := m.api.UpdateCartItem(ctx, api.UpdateCartRequest{CartItemID: cartItemID, Quantity: quantity})
	if err != nil {
		return err
	}

	return m.reloadAfter(ctx)
}

func (m *Model) RemoveFromCart(ctx context.Context, productID int64) error {
	if _, ok := m.users.UserID(); !ok {
		return nil
	}
	cartItemID, ok := m.Snapshot().CartItemID(productID)
	if !ok {
		return nil
	}

	if err := m.api.RemoveCartItem(ctx, api.RemoveCartRequest{CartItemID: cartItemID}); err != nil {
		return err
	}

	return m.reloadAfter(ctx)
}

// ClearAfterOrder empties the server cart and the local view. The local
// view is emptied whatever the server answers; a failed clear comes back
// as a warning the caller may log and ignore. The empty snapshot is
// sequenced after the clear returns, so any reload that started earlier,
// even one started while the clear was in flight, loses to it.
func (m *Model) ClearAfterOrder(ctx context.Context) error {
	var clearErr error
	if userID, ok := m.users.UserID(); ok {
		if err := m.api.ClearCart(ctx, userID); err != nil {
			m.logger.Warn("clear cart failed", zap.Int64("user_id", userID), zap.Error(err))
			clearErr = fmt.Errorf("clear cart: %w", err)
		}
	}
	m.apply(m.nextSeq(), newSnapshot(nil))
	return clearErr
}

// Reset drops the local view, as on logout.
func (m *Model) Reset() {
	m.apply(m.nextSeq(), newSnapshot(nil))
}

func (m *Model) Lines() []models.CartLine          { return m.Snapshot().Lines() }
func (m *Model) Index() map[int64]int64            { return m.Snapshot().Index() }
func (m *Model) Count() int                        { return m.Snapshot().Count() }
func (m *Model) Total() decimal.Decimal            { return m.Snapshot().Total() }
func (m *Model) Empty() bool                       { return m.Snapshot().Empty() }
func (m *Model) CanIncrement(productID int64) bool { return m.Snapshot().CanIncrement(productID) }
