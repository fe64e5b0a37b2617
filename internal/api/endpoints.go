package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/safar/supershop/internal/models"
	"github.com/shopspring/decimal"
)

type AddToCartRequest struct {
	UserID    int64 `json:"user_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateCartRequest struct {
	CartItemID int64 `json:"cart_item_id"`
	Quantity   int   `json:"quantity"`
}

type RemoveCartRequest struct {
	CartItemID int64 `json:"cart_item_id"`
}

type OrderLine struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// MarshalJSON sends the price as a bare number; the storefront does
// arithmetic on it.
func (l OrderLine) MarshalJSON() ([]byte, error) {
	type wire struct {
		ProductID int64       `json:"product_id"`
		Quantity  int         `json:"quantity"`
		Price     json.Number `json:"price"`
	}
	return json.Marshal(wire{
		ProductID: l.ProductID,
		Quantity:  l.Quantity,
		Price:     json.Number(l.Price.String()),
	})
}

type CreateOrderRequest struct {
	UserID int64       `json:"user_id"`
	Items  []OrderLine `json:"items"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Password string `json:"password"`
}

type ProfileUpdate struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type NewProduct struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  int64           `json:"category_id"`
	Barcode     string          `json:"barcode"`
}

func (p NewProduct) MarshalJSON() ([]byte, error) {
	type wire struct {
		Name        string      `json:"name"`
		Description string      `json:"description"`
		Price       json.Number `json:"price"`
		Stock       int         `json:"stock"`
		CategoryID  int64       `json:"category_id"`
		Barcode     string      `json:"barcode"`
	}
	return json.Marshal(wire{
		Name:        p.Name,
		Description: p.Description,
		Price:       json.Number(p.Price.String()),
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
		Barcode:     p.Barcode,
	})
}

type StockChange struct {
	StockChange int `json:"stock_change"`
}

type RoleChange struct {
	Role string `json:"role"`
}

type Cart struct {
	CartID int64             `json:"cart_id"`
	Items  []models.CartLine `json:"items"`
}

type Auth struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var out struct {
		Products []models.Product `json:"products"`
	}
	if err := c.do(ctx, "list products", http.MethodGet, "/products", nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (c *Client) PopularProducts(ctx context.Context) ([]models.Product, error) {
	var out struct {
		Products []models.Product `json:"products"`
	}
	if err := c.do(ctx, "popular products", http.MethodGet, "/popular-products", nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out struct {
		Categories []models.Category `json:"categories"`
	}
	if err := c.do(ctx, "list categories", http.MethodGet, "/categories", nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

func (c *Client) GetCart(ctx context.Context, userID int64) (*Cart, error) {
	var out Cart
	if err := c.do(ctx, "get cart", http.MethodGet, fmt.Sprintf("/cart/%d", userID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddToCart(ctx context.Context, req AddToCartRequest) error {
	return c.do(ctx, "add to cart", http.MethodPost, "/cart/add", req, nil)
}

func (c *Client) UpdateCartItem(ctx context.Context, req UpdateCartRequest) error {
	return c.do(ctx, "update cart", http.MethodPut, "/cart/update", req, nil)
}

func (c *Client) RemoveCartItem(ctx context.Context, req RemoveCartRequest) error {
	return c.do(ctx, "remove from cart", http.MethodDelete, "/cart/remove", req, nil)
}

func (c *Client) ClearCart(ctx context.Context, userID int64) error {
	return c.do(ctx, "clear cart", http.MethodDelete, fmt.Sprintf("/cart/clear/%d", userID), nil, nil)
}

// CreateOrder returns the server-assigned order id.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (int64, error) {
	var out struct {
		OrderID int64 `json:"order_id"`
	}
	if err := c.do(ctx, "create order", http.MethodPost, "/orders", req, &out); err != nil {
		return 0, err
	}
	return out.OrderID, nil
}

func (c *Client) UserOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	var out struct {
		Orders []models.Order `json:"orders"`
	}
	if err := c.do(ctx, "user orders", http.MethodGet, fmt.Sprintf("/user/%d/orders", userID), nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

func (c *Client) UpdateProfile(ctx context.Context, userID int64, update ProfileUpdate) (*models.User, error) {
	var out struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, "update profile", http.MethodPut, fmt.Sprintf("/user/%d/profile", userID), update, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*Auth, error) {
	var out Auth
	if err := c.do(ctx, "login", http.MethodPost, "/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account. The storefront does not issue a token on
// registration.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	var out struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, "register", http.MethodPost, "/register", req, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) SalesAnalytics(ctx context.Context) (*models.SalesAnalytics, error) {
	var out struct {
		Analytics models.SalesAnalytics `json:"analytics"`
	}
	if err := c.do(ctx, "sales analytics", http.MethodGet, "/admin/sales-analytics", nil, &out); err != nil {
		return nil, err
	}
	return &out.Analytics, nil
}

func (c *Client) CreateProduct(ctx context.Context, p NewProduct) (int64, error) {
	var out struct {
		ProductID int64 `json:"product_id"`
	}
	if err := c.do(ctx, "create product", http.MethodPost, "/admin/products", p, &out); err != nil {
		return 0, err
	}
	return out.ProductID, nil
}

// AdjustStock applies a signed delta and returns the new stock level.
func (c *Client) AdjustStock(ctx context.Context, productID int64, change int) (int, error) {
	var out struct {
		NewStock int `json:"new_stock"`
	}
	path := fmt.Sprintf("/admin/products/%d/stock", productID)
	if err := c.do(ctx, "adjust stock", http.MethodPut, path, StockChange{StockChange: change}, &out); err != nil {
		return 0, err
	}
	return out.NewStock, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var out struct {
		Users []models.User `json:"users"`
	}
	if err := c.do(ctx, "list users", http.MethodGet, "/admin/users", nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *Client) ChangeRole(ctx context.Context, userID int64, role string) error {
	path := fmt.Sprintf("/admin/users/%d/role", userID)
	return c.do(ctx, "change role", http.MethodPut, path, RoleChange{Role: role}, nil)
}

func (c *Client) ProductAnalysis(ctx context.Context, productID int64) (*models.ProductAnalysis, error) {
	var out models.ProductAnalysis
	path := fmt.Sprintf("/analysis/product/%d", productID)
	if err := c.do(ctx, "product analysis", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
