package models

import (
	"github.com/shopspring/decimal"
)

type User struct {
	ID        int64      `json:"user_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	Address   string     `json:"address,omitempty"`
	Role      string     `json:"role"`
	CreatedAt *Timestamp `json:"created_at,omitempty"`
}

// IsAdmin reports whether the user may open the admin views.
func (u *User) IsAdmin() bool {
	if u == nil {
		return false
	}
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

type Product struct {
	ID          int64           `json:"id"`
	Barcode     string          `json:"barcode,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category,omitempty"`
	Sales       int             `json:"sales,omitempty"`
	CreatedAt   *Timestamp      `json:"created_at,omitempty"`
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CartLine is one row of a user's cart. ProductID travels as "id" on the
// wire, CartItemID is the server-side row id used by update and remove.
type CartLine struct {
	ProductID   int64           `json:"id"`
	CartItemID  int64           `json:"cart_item_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category,omitempty"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID            int64           `json:"id"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	CreatedAt     *Timestamp      `json:"created_at,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Items         []OrderItem     `json:"items"`
	TotalItems    int             `json:"total_items"`
}

type OrderItem struct {
	ProductID   int64           `json:"id"`
	OrderItemID int64           `json:"order_item_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Barcode     string          `json:"barcode,omitempty"`
	Category    string          `json:"category,omitempty"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// LocalOrder is the client-side mirror of a placed order. Field names follow
// the persisted "orders" document so existing mirrors stay readable.
type LocalOrder struct {
	ID              string           `json:"id"`
	UserID          int64            `json:"userId"`
	Total           decimal.Decimal  `json:"total"`
	Items           []LocalOrderItem `json:"items"`
	ShippingAddress ShippingAddress  `json:"shippingAddress"`
	PaymentMethod   string           `json:"paymentMethod"`
	Status          string           `json:"status"`
	CreatedAt       Timestamp        `json:"createdAt"`
}

type LocalOrderItem struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type ShippingAddress struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required"`
	Address   string `json:"address" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	ZipCode   string `json:"zipCode" validate:"required"`
}

type SalesAnalytics struct {
	TopProducts   []TopProduct   `json:"top_products"`
	CategorySales []CategorySale `json:"category_sales"`
	DailySales    []DailySale    `json:"daily_sales"`
	Stats         SalesStats     `json:"stats"`
}

type TopProduct struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	TotalSold decimal.Decimal `json:"total_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type CategorySale struct {
	CategoryName string          `json:"category_name"`
	TotalSold    decimal.Decimal `json:"total_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type DailySale struct {
	SaleDate     string          `json:"sale_date"`
	OrdersCount  int             `json:"orders_count"`
	ItemsSold    decimal.Decimal `json:"items_sold"`
	DailyRevenue decimal.Decimal `json:"daily_revenue"`
}

type SalesStats struct {
	TotalProducts int             `json:"total_products"`
	TotalOrders   int             `json:"total_orders"`
	TotalUsers    int             `json:"total_users"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalStock    decimal.Decimal `json:"total_stock"`
}

type ProductAnalysis struct {
	Product            Product             `json:"product"`
	AssociatedProducts []AssociatedProduct `json:"associated_products"`
	Stats              ProductStats        `json:"stats"`
	MonthlyTrend       []MonthlyTrend      `json:"monthly_trend"`
}

type AssociatedProduct struct {
	ProductID       int64           `json:"product_id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	Stock           int             `json:"stock"`
	Category        string          `json:"category,omitempty"`
	CoPurchaseCount int             `json:"co_purchase_count"`
	Percentage      decimal.Decimal `json:"percentage"`
}

type ProductStats struct {
	TotalOrders         int             `json:"total_orders"`
	TotalSold           decimal.Decimal `json:"total_sold"`
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	AvgQuantityPerOrder decimal.Decimal `json:"avg_quantity_per_order"`
}

type MonthlyTrend struct {
	Month          string          `json:"month"`
	MonthlySold    decimal.Decimal `json:"monthly_sold"`
	MonthlyRevenue decimal.Decimal `json:"monthly_revenue"`
}

const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

const (
	PaymentCard  = "card"
	PaymentCash  = "cash"
	PaymentBkash = "bkash"
	PaymentNagad = "nagad"
)

// ValidPaymentMethod reports whether m is one of the accepted payment methods.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCard, PaymentCash, PaymentBkash, PaymentNagad:
		return true
	}
	return false
}
