package mockapi_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/safar/supershop/internal/api"
	"github.com/safar/supershop/internal/mockapi"
	"github.com/safar/supershop/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*mockapi.Server, *api.Client) {
	t.Helper()
	s := mockapi.New(mockapi.WithClock(func() time.Time { return fixedNow }))
	mockapi.SeedDemo(s)
	return s, mockapi.NewTestClient(t, s)
}

func TestListProductsAndCategories(t *testing.T) {
	_, c := setup(t)
	ctx := context.Background()

	products, err := c.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 8)
	assert.Equal(t, "Banana", products[0].Name)
	assert.Equal(t, "Fruit", products[0].Category)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("1.20")))

	categories, err := c.ListCategories(ctx)
	require.NoError(t, err)
	names := make([]string, len(categories))
	for i, cat := range categories {
		names[i] = cat.Name
	}
	assert.Equal(t, []string{"Dairy", "Drinks", "Fruit", "Grocery"}, names)
}

func TestAddToCartMergesLines(t *testing.T) {
	s, c := setup(t)
	ctx := context.Background()

	require.NoError(t, c.AddToCart(ctx, api.AddToCartRequest{UserID: 2, ProductID: 1, Quantity: 1}))
	require.NoError(t, c.AddToCart(ctx, api.AddToCartRequest{UserID: 2, ProductID: 1, Quantity: 2}))
	require.NoError(t, c.AddToCart(ctx, api.AddToCartRequest{UserID: 2, ProductID: 3, Quantity: 1}))

	cart, err := c.GetCart(ctx, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, int64(1), cart.Items[0].ProductID)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.NotEqual(t, cart.Items[0].CartItemID, cart.Items[1].CartItemID)
	assert.Len(t, s.CartLines(2), 2)
}

func TestAddToCartRespectsStock(t *testing.T) {
	_, c := setup(t)
	ctx := context.Background()

	// Basmati Rice has 5 in stock, Mango Juice none.
	err := c.AddToCart(ctx, api.AddToCartRequest{UserID: 2, ProductID: 5, Quantity: 6})
	assert.Equal(t, "Insufficient stock", api.UserMessage(err, ""))

	err = c.AddToCart(ctx, api.AddToCartRequest{UserID: 2, ProductID: 8, Quantity: 1})
	assert.Equal(t, api.ClassApplication, api.ClassifyError(err))

	err = c.AddToCart(ctx, api.AddToCartRequest{UserID: 2, ProductID: 999, Quantity: 1})
	assert.Equal(t, "Product not found", api.UserMessage(err, ""))
}

func TestUpdateToZeroRemovesLine(t *testing.T) {
	s, c := setup(t)
	ctx := context.Background()
	s.SeedCartLine(2, 1, 2, 101)
	s.SeedCartLine(2, 3, 1, 102)

	require.NoError(t, c.UpdateCartItem(ctx, api.UpdateCartRequest{CartItemID: 101, Quantity: 5}))
	require.NoError(t, c.UpdateCartItem(ctx, api.UpdateCartRequest{CartItemID: 102, Quantity: 0}))

	lines := s.CartLines(2)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(101), lines[0].CartItemID)
	assert.Equal(t, 5, lines[0].Quantity)

	require.NoError(t, c.RemoveCartItem(ctx, api.RemoveCartRequest{CartItemID: 101}))
	assert.Empty(t, s.CartLines(2))
}

func TestCreateOrderDecrementsStock(t *testing.T) {
	s, c := setup(t)
	ctx := context.Background()

	id, err := c.CreateOrder(ctx, api.CreateOrderRequest{
		UserID: 2,
		Items: []api.OrderLine{
			{ProductID: 1, Quantity: 3, Price: decimal.RequireFromString("1.20")},
			{ProductID: 7, Quantity: 1, Price: decimal.RequireFromString("4.50")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	p, _ := s.Product(1)
	assert.Equal(t, 37, p.Stock)

	orders, err := c.UserOrders(ctx, 2)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.True(t, orders[0].Total.Equal(decimal.RequireFromString("8.10")))
	assert.Equal(t, 4, orders[0].TotalItems)
	assert.Equal(t, models.OrderStatusCompleted, orders[0].Status)
	assert.True(t, fixedNow.Equal(orders[0].CreatedAt.Time))
	assert.Equal(t, "Banana", orders[0].Items[0].Name)

	_, err = c.CreateOrder(ctx, api.CreateOrderRequest{UserID: 2})
	assert.Equal(t, "Missing required data", api.UserMessage(err, ""))

	_, err = c.CreateOrder(ctx, api.CreateOrderRequest{
		UserID: 2,
		Items:  []api.OrderLine{{ProductID: 5, Quantity: 50, Price: decimal.NewFromInt(12)}},
	})
	assert.Equal(t, "Insufficient stock for Basmati Rice", api.UserMessage(err, ""))
	assert.Equal(t, 1, s.OrderCount())
}

func TestPopularProductsRankByOrderLines(t *testing.T) {
	_, c := setup(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.CreateOrder(ctx, api.CreateOrderRequest{
			UserID: 2,
			Items:  []api.OrderLine{{ProductID: 4, Quantity: 1, Price: decimal.RequireFromString("1.10")}},
		})
		require.NoError(t, err)
	}
	_, err := c.CreateOrder(ctx, api.CreateOrderRequest{
		UserID: 2,
		Items:  []api.OrderLine{{ProductID: 2, Quantity: 1, Price: decimal.RequireFromString("2.50")}},
	})
	require.NoError(t, err)

	popular, err := c.PopularProducts(ctx)
	require.NoError(t, err)
	require.Len(t, popular, 8)
	assert.Equal(t, int64(4), popular[0].ID)
	assert.Equal(t, 2, popular[0].Sales)
	assert.Equal(t, int64(2), popular[1].ID)
	// Unsold products follow, newest id first.
	assert.Equal(t, int64(8), popular[2].ID)
}

func TestLoginAndRegister(t *testing.T) {
	_, c := setup(t)
	ctx := context.Background()

	auth, err := c.Login(ctx, api.LoginRequest{Email: "admin@supershop.test", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, "demo-token", auth.Token)
	assert.True(t, auth.User.IsAdmin())

	_, err = c.Login(ctx, api.LoginRequest{Email: "admin@supershop.test", Password: "nope"})
	assert.Equal(t, "Incorrect password", api.UserMessage(err, ""))

	_, err = c.Login(ctx, api.LoginRequest{Email: "ghost@supershop.test", Password: "x"})
	assert.Equal(t, "User not found", api.UserMessage(err, ""))

	user, err := c.Register(ctx, api.RegisterRequest{Name: "Nadia", Email: "nadia@supershop.test", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), user.ID)
	assert.Equal(t, models.RoleUser, user.Role)

	_, err = c.Register(ctx, api.RegisterRequest{Name: "Nadia", Email: "nadia@supershop.test", Password: "pw"})
	assert.Equal(t, "Email already registered", api.UserMessage(err, ""))

	_, err = c.Register(ctx, api.RegisterRequest{Email: "x@supershop.test"})
	assert.Equal(t, "Missing required fields", api.UserMessage(err, ""))
}

func TestUpdateProfile(t *testing.T) {
	s, c := setup(t)
	ctx := context.Background()

	user, err := c.UpdateProfile(ctx, 2, api.ProfileUpdate{Name: "Shopper", Phone: "019", Address: "Sylhet"})
	require.NoError(t, err)
	assert.Equal(t, "Sylhet", user.Address)
	stored, _ := s.User(2)
	assert.Equal(t, "Shopper", stored.Name)

	_, err = c.UpdateProfile(ctx, 2, api.ProfileUpdate{Name: " "})
	assert.Equal(t, "Name is required", api.UserMessage(err, ""))

	_, err = c.UpdateProfile(ctx, 42, api.ProfileUpdate{Name: "Nobody"})
	assert.Equal(t, "User not found", api.UserMessage(err, ""))
}

func TestAdminEndpoints(t *testing.T) {
	s, c := setup(t)
	ctx := context.Background()

	id, err := c.CreateProduct(ctx, api.NewProduct{Name: "Ghee", Price: decimal.RequireFromString("9.99"), Stock: 4, CategoryID: 2})
	require.NoError(t, err)
	p, found := s.Product(id)
	require.True(t, found)
	assert.Equal(t, "Dairy", p.Category)

	_, err = c.CreateProduct(ctx, api.NewProduct{Name: "Free"})
	assert.Equal(t, "Name and price are required", api.UserMessage(err, ""))

	stock, err := c.AdjustStock(ctx, id, -3)
	require.NoError(t, err)
	assert.Equal(t, 1, stock)

	_, err = c.AdjustStock(ctx, id, -2)
	assert.Equal(t, "Stock cannot be negative", api.UserMessage(err, ""))

	_, err = c.AdjustStock(ctx, 999, 1)
	assert.Equal(t, "Product not found", api.UserMessage(err, ""))

	require.NoError(t, c.ChangeRole(ctx, 2, models.RoleAdmin))
	u, _ := s.User(2)
	assert.Equal(t, models.RoleAdmin, u.Role)

	err = c.ChangeRole(ctx, 2, models.RoleSuperAdmin)
	assert.Equal(t, "Invalid role", api.UserMessage(err, ""))

	users, err := c.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestSalesAnalyticsAndProductAnalysis(t *testing.T) {
	_, c := setup(t)
	ctx := context.Background()

	orders := [][]api.OrderLine{
		{{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("1.20")}, {ProductID: 4, Quantity: 1, Price: decimal.RequireFromString("1.10")}},
		{{ProductID: 1, Quantity: 1, Price: decimal.RequireFromString("1.20")}, {ProductID: 3, Quantity: 1, Price: decimal.RequireFromString("7.00")}},
		{{ProductID: 1, Quantity: 3, Price: decimal.RequireFromString("1.20")}, {ProductID: 4, Quantity: 2, Price: decimal.RequireFromString("1.10")}},
	}
	for _, items := range orders {
		_, err := c.CreateOrder(ctx, api.CreateOrderRequest{UserID: 2, Items: items})
		require.NoError(t, err)
	}

	analytics, err := c.SalesAnalytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, analytics.Stats.TotalOrders)
	assert.Equal(t, 8, analytics.Stats.TotalProducts)
	assert.True(t, analytics.Stats.TotalRevenue.Equal(decimal.RequireFromString("17.50")))
	require.NotEmpty(t, analytics.TopProducts)
	assert.Equal(t, int64(1), analytics.TopProducts[0].ID)
	assert.True(t, analytics.TopProducts[0].TotalSold.Equal(decimal.NewFromInt(6)))
	require.Len(t, analytics.DailySales, 1)
	assert.Equal(t, "2024-06-15", analytics.DailySales[0].SaleDate)
	assert.Equal(t, 3, analytics.DailySales[0].OrdersCount)

	analysis, err := c.ProductAnalysis(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Banana", analysis.Product.Name)
	require.Len(t, analysis.AssociatedProducts, 2)
	assert.Equal(t, int64(4), analysis.AssociatedProducts[0].ProductID)
	assert.Equal(t, 2, analysis.AssociatedProducts[0].CoPurchaseCount)
	assert.True(t, analysis.AssociatedProducts[0].Percentage.Equal(decimal.RequireFromString("66.7")))
	assert.Equal(t, 3, analysis.Stats.TotalOrders)
	assert.True(t, analysis.Stats.AvgQuantityPerOrder.Equal(decimal.NewFromInt(2)))
	require.Len(t, analysis.MonthlyTrend, 1)
	assert.Equal(t, "2024-06", analysis.MonthlyTrend[0].Month)

	_, err = c.ProductAnalysis(ctx, 999)
	assert.Equal(t, "Product not found", api.UserMessage(err, ""))
}

func TestFailNextInjectsApplicationError(t *testing.T) {
	s, c := setup(t)
	ctx := context.Background()

	s.FailNext(http.MethodGet, "/cart/:user_id", mockapi.Failure{Message: "Database unavailable"})

	_, err := c.GetCart(ctx, 2)
	var apiErr *api.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "Database unavailable", apiErr.Message)

	// One-shot: the next call succeeds.
	_, err = c.GetCart(ctx, 2)
	assert.NoError(t, err)
}

func TestFailNextDropIsNetworkError(t *testing.T) {
	s, c := setup(t)

	s.FailNext(http.MethodGet, "/products", mockapi.Failure{Drop: true})

	_, err := c.ListProducts(context.Background())
	assert.ErrorIs(t, err, api.ErrNetwork)
	assert.Equal(t, api.NetworkMessage, api.UserMessage(err, "Failed"))
}

func TestRequestsAreRecorded(t *testing.T) {
	s, c := setup(t)
	ctx := context.Background()

	require.NoError(t, c.ClearCart(ctx, 2))
	require.NoError(t, c.RemoveCartItem(ctx, api.RemoveCartRequest{CartItemID: 7}))

	reqs := s.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, mockapi.Request{Method: http.MethodDelete, Path: "/cart/clear/2"}, reqs[0])
	assert.Equal(t, "/cart/remove", reqs[1].Path)
	assert.JSONEq(t, `{"cart_item_id":7}`, reqs[1].Body)

	s.ResetRequests()
	assert.Empty(t, s.Requests())
}
