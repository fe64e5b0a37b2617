// Package dashboard assembles the signed-in shopper's landing view.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/safar/supershop/internal/logger"
	"github.com/safar/supershop/internal/models"
	"github.com/safar/supershop/internal/orders"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrNotSignedIn = errors.New("please login to view your dashboard")

type Dashboard struct {
	Orders    orders.Summary
	Source    orders.Source
	CartCount int
	Popular   []models.Product
	// Warnings lists the optional panels that failed to load.
	Warnings []error
}

type History interface {
	History(ctx context.Context) (*orders.History, error)
}

type Cart interface {
	Reload(ctx context.Context) error
	Count() int
}

type Catalog interface {
	PopularProducts(ctx context.Context) ([]models.Product, error)
}

type UserSource interface {
	UserID() (int64, bool)
}

type Loader struct {
	history History
	cart    Cart
	catalog Catalog
	users   UserSource
	logger  *zap.Logger
}

func New(history History, cart Cart, catalog Catalog, users UserSource, lg *zap.Logger) *Loader {
	return &Loader{history: history, cart: cart, catalog: catalog, users: users, logger: logger.OrNop(lg)}
}

// Load fetches history, cart and popular products concurrently. Only a
// history failure is fatal; the cart and popular panels degrade to
// warnings.
func (l *Loader) Load(ctx context.Context) (*Dashboard, error) {
	if _, ok := l.users.UserID(); !ok {
		return nil, ErrNotSignedIn
	}

	var (
		d  Dashboard
		mu sync.Mutex
	)
	warn := func(err error) {
		mu.Lock()
		d.Warnings = append(d.Warnings, err)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h, err := l.history.History(gctx)
		if err != nil {
			return fmt.Errorf("load orders: %w", err)
		}
		d.Orders = orders.Summarize(h.Orders)
		d.Source = h.Source
		return nil
	})
	g.Go(func() error {
		if err := l.cart.Reload(gctx); err != nil {
			l.logger.Warn("dashboard cart failed", zap.Error(err))
			warn(err)
		}
		d.CartCount = l.cart.Count()
		return nil
	})
	g.Go(func() error {
		popular, err := l.catalog.PopularProducts(gctx)
		if err != nil {
			l.logger.Warn("dashboard popular products failed", zap.Error(err))
			warn(fmt.Errorf("load popular products: %w", err))
			return nil
		}
		d.Popular = popular
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}
