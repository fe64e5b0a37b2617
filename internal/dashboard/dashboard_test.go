package dashboard

import (
	"context"
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/safar/supershop/internal/api"
	"github.com/safar/supershop/internal/cart"
	"github.com/safar/supershop/internal/mockapi"
	"github.com/safar/supershop/internal/orders"
	"github.com/safar/supershop/internal/store/redisstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

type signedIn int64

func (u signedIn) UserID() (int64, bool) { return int64(u), u != 0 }

type fixture struct {
	srv    *mockapi.Server
	client *api.Client
	loader *Loader
}

func setup(t *testing.T, user signedIn) *fixture {
	t.Helper()
	srv := mockapi.New()
	mockapi.SeedDemo(srv)
	client := mockapi.NewTestClient(t, srv)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	mirror := redisstore.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test")
	t.Cleanup(func() { mirror.Close() })

	history := orders.New(client, user, mirror, nil)
	c := cart.New(client, user)
	return &fixture{srv: srv, client: client, loader: New(history, c, client, user, nil)}
}

func TestLoad(t *testing.T) {
	f := setup(t, 2)
	ctx := context.Background()

	for _, items := range [][]api.OrderLine{
		{{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("1.20")}, {ProductID: 2, Quantity: 1, Price: decimal.RequireFromString("2.50")}},
		{{ProductID: 1, Quantity: 1, Price: decimal.RequireFromString("1.20")}, {ProductID: 7, Quantity: 1, Price: decimal.RequireFromString("4.50")}},
	} {
		_, err := f.client.CreateOrder(ctx, api.CreateOrderRequest{UserID: 2, Items: items})
		require.NoError(t, err)
	}
	f.srv.SeedCartLine(2, 4, 3, 10)
	f.srv.SeedCartLine(2, 6, 1, 11)

	d, err := f.loader.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, d.Warnings)
	assert.Equal(t, orders.SourceServer, d.Source)
	assert.Equal(t, 2, d.Orders.TotalOrders)
	assert.True(t, d.Orders.TotalSpent.Equal(decimal.RequireFromString("10.60")), d.Orders.TotalSpent.String())
	assert.Equal(t, "Fruit", d.Orders.FavoriteCategory)
	assert.Equal(t, 4, d.CartCount)
	require.NotEmpty(t, d.Popular)
	assert.Equal(t, "Banana", d.Popular[0].Name)
}

func TestLoadDegradesOptionalPanels(t *testing.T) {
	f := setup(t, 2)
	f.srv.FailNext(http.MethodGet, "/popular-products", mockapi.Failure{Drop: true})
	f.srv.FailNext(http.MethodGet, "/cart/:user_id", mockapi.Failure{Message: "Database unavailable"})

	d, err := f.loader.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, d.Warnings, 2)
	assert.Equal(t, 0, d.CartCount)
	assert.Empty(t, d.Popular)
	assert.Equal(t, 0, d.Orders.TotalOrders)
}

func TestLoadRequiresUser(t *testing.T) {
	f := setup(t, 0)

	_, err := f.loader.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotSignedIn)
	assert.Empty(t, f.srv.Requests())
}
