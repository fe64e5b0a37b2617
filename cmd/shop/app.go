package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/safar/supershop/internal/admin"
	"github.com/safar/supershop/internal/api"
	"github.com/safar/supershop/internal/cart"
	"github.com/safar/supershop/internal/checkout"
	"github.com/safar/supershop/internal/config"
	"github.com/safar/supershop/internal/dashboard"
	"github.com/safar/supershop/internal/orders"
	"github.com/safar/supershop/internal/session"
	"github.com/safar/supershop/internal/store"
	"github.com/safar/supershop/internal/store/redisstore"
	"go.uber.org/zap"
)

// app wires one CLI invocation: the session store, the storefront client
// and every service built on them.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  store.Backend
	client *api.Client

	session   *session.Session
	cart      *cart.Model
	checkout  *checkout.Service
	orders    *orders.Service
	admin     *admin.Service
	dashboard *dashboard.Loader
}

// openStore picks the backend from the URL scheme.
func openStore(ctx context.Context, cfg *config.StoreConfig) (store.Backend, error) {
	if strings.HasPrefix(cfg.URL, "redis://") || strings.HasPrefix(cfg.URL, "rediss://") {
		rs, err := redisstore.Open(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		return rs, nil
	}
	s, err := store.OpenSQL(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func newApp(ctx context.Context, cfg *config.Config, lg *zap.Logger) (*app, error) {
	backend, err := openStore(ctx, &cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	client := api.New(cfg.API.BaseURL, cfg.API.Timeout, api.WithLogger(lg))

	sess := session.New(client, backend, session.WithLogger(lg))
	if err := sess.Init(ctx); err != nil {
		backend.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	c := cart.New(client, sess, cart.WithLogger(lg))
	sess.OnLogout(c.Reset)

	history := orders.New(client, sess, backend, lg)

	return &app{
		cfg:     cfg,
		logger:  lg,
		store:   backend,
		client:  client,
		session: sess,
		cart:    c,
		checkout: checkout.New(client, c, sess, backend,
			checkout.WithTaxRate(cfg.Shop.TaxRate),
			checkout.WithLogger(lg)),
		orders:    history,
		admin:     admin.New(client, sess, lg),
		dashboard: dashboard.New(history, c, client, sess, lg),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
