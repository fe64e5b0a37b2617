package admin

import (
	"context"
	"net/http"
	"testing"

	"github.com/safar/supershop/internal/api"
	"github.com/safar/supershop/internal/mockapi"
	"github.com/safar/supershop/internal/models"
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

type viewer bool

func (v viewer) IsAdmin() bool { return bool(v) }

func setup(t *testing.T, isAdmin bool) (*mockapi.Server, *Service) {
	t.Helper()
	srv := mockapi.New()
	mockapi.SeedDemo(srv)
	return srv, New(mockapi.NewTestClient(t, srv), viewer(isAdmin), nil)
}

func TestNonAdminIsRefused(t *testing.T) {
	srv, svc := setup(t, false)
	ctx := context.Background()

	_, err := svc.Overview(ctx)
	assert.ErrorIs(t, err, ErrNotAdmin)
	_, err = svc.Users(ctx)
	assert.ErrorIs(t, err, ErrNotAdmin)
	_, err = svc.AdjustStock(ctx, 1, 5)
	assert.ErrorIs(t, err, ErrNotAdmin)
	_, _, err = svc.CreateProduct(ctx, api.NewProduct{Name: "Dates", Price: decimal.NewFromInt(3)})
	assert.ErrorIs(t, err, ErrNotAdmin)
	assert.Empty(t, srv.Requests())
}

func TestOverviewLoadsBoth(t *testing.T) {
	_, svc := setup(t, true)

	ov, err := svc.Overview(context.Background())
	require.NoError(t, err)
	require.NotNil(t, ov.Analytics)
	assert.Equal(t, 8, ov.Analytics.Stats.TotalProducts)
	assert.Len(t, ov.Users, 2)
}

func TestOverviewFailsWhenEitherFails(t *testing.T) {
	srv, svc := setup(t, true)
	srv.FailNext(http.MethodGet, "/admin/users", mockapi.Failure{Status: http.StatusForbidden, Message: "Forbidden"})

	_, err := svc.Overview(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Forbidden", api.UserMessage(err, ""))
}

func TestChangeRole(t *testing.T) {
	srv, svc := setup(t, true)
	ctx := context.Background()
	shopper, _ := srv.User(2)

	_, err := svc.ChangeRole(ctx, shopper, models.RoleSuperAdmin)
	assert.ErrorIs(t, err, ErrInvalidRole)

	srv.ResetRequests()
	users, err := svc.ChangeRole(ctx, shopper, models.RoleUser)
	require.NoError(t, err)
	assert.Nil(t, users)
	assert.Empty(t, srv.Requests(), "unchanged role must not be sent")

	users, err = svc.ChangeRole(ctx, shopper, models.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		if u.ID == shopper.ID {
			assert.Equal(t, models.RoleAdmin, u.Role)
		}
	}

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodPut, reqs[0].Method)
	assert.Equal(t, "/admin/users/2/role", reqs[0].Path)
	assert.JSONEq(t, `{"role":"admin"}`, reqs[0].Body)
	assert.Equal(t, "/admin/users", reqs[1].Path)
}

func TestCreateProductRefetchesCatalog(t *testing.T) {
	_, svc := setup(t, true)
	ctx := context.Background()

	_, _, err := svc.CreateProduct(ctx, api.NewProduct{Name: "  ", Price: decimal.NewFromInt(3)})
	assert.ErrorIs(t, err, ErrProductFields)
	_, _, err = svc.CreateProduct(ctx, api.NewProduct{Name: "Dates", Price: decimal.Zero})
	assert.ErrorIs(t, err, ErrProductFields)

	id, products, err := svc.CreateProduct(ctx, api.NewProduct{
		Name:       "Dates",
		Price:      decimal.RequireFromString("6.25"),
		Stock:      30,
		CategoryID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
	require.Len(t, products, 9)
	last := products[len(products)-1]
	assert.Equal(t, "Dates", last.Name)
	assert.Equal(t, "Fruit", last.Category)
	assert.True(t, last.Price.Equal(decimal.RequireFromString("6.25")))
}

func TestAdjustStock(t *testing.T) {
	srv, svc := setup(t, true)
	ctx := context.Background()

	_, err := svc.AdjustStock(ctx, 5, 0)
	assert.ErrorIs(t, err, ErrZeroStockChange)

	stock, err := svc.AdjustStock(ctx, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, 15, stock)

	stock, err = svc.AdjustStock(ctx, 5, -15)
	require.NoError(t, err)
	assert.Equal(t, 0, stock)

	_, err = svc.AdjustStock(ctx, 5, -1)
	assert.Equal(t, "Stock cannot be negative", api.UserMessage(err, ""))
	p, _ := srv.Product(5)
	assert.Equal(t, 0, p.Stock)
}

func TestProductAnalysis(t *testing.T) {
	_, svc := setup(t, true)

	analysis, err := svc.ProductAnalysis(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Cheddar", analysis.Product.Name)
	assert.Empty(t, analysis.AssociatedProducts)
	assert.Equal(t, 0, analysis.Stats.TotalOrders)
}
