// Package checkout turns the current cart into an order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/safar/supershop/internal/api"
	"github.com/safar/supershop/internal/cart"
	"github.com/safar/supershop/internal/models"
	"github.com/safar/supershop/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrNotSignedIn = errors.New("please login to place an order")
	ErrEmptyCart   = errors.New("your cart is empty")
)

// DefaultTaxRate applies when the service is built without one.
var DefaultTaxRate = decimal.RequireFromString("0.08")

// FieldError names the form field that failed validation.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type Form struct {
	Shipping      models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod string                 `json:"paymentMethod" validate:"required,payment"`
}

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("payment", func(fl validator.FieldLevel) bool {
		return models.ValidPaymentMethod(fl.Field().String())
	})
	return v
}

// Validate checks that every shipping field is filled in and the payment
// method is one the store accepts. Blank values count as missing.
func (f Form) Validate() error {
	trimmed := f
	for _, field := range []*string{
		&trimmed.Shipping.FirstName, &trimmed.Shipping.LastName,
		&trimmed.Shipping.Email, &trimmed.Shipping.Phone,
		&trimmed.Shipping.Address, &trimmed.Shipping.City,
		&trimmed.Shipping.State, &trimmed.Shipping.ZipCode,
	} {
		*field = strings.TrimSpace(*field)
	}

	err := validate.Struct(trimmed)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return &FieldError{Field: fe.Field(), Message: "is required"}
	case "email":
		return &FieldError{Field: fe.Field(), Message: "is not a valid address"}
	case "payment":
		return &FieldError{Field: fe.Field(), Message: fmt.Sprintf("unsupported method %q", f.PaymentMethod)}
	}
	return &FieldError{Field: fe.Field(), Message: fmt.Sprintf("failed %s", fe.Tag())}
}

type Quote struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// QuoteFor prices snap at rate. Tax is rounded to cents.
func QuoteFor(snap cart.Snapshot, rate decimal.Decimal) Quote {
	subtotal := snap.Total()
	tax := subtotal.Mul(rate).Round(2)
	return Quote{Subtotal: subtotal, Tax: tax, Total: subtotal.Add(tax)}
}

// Receipt is what a placed order hands back. Warnings collects the
// follow-up steps that failed after the order itself succeeded.
type Receipt struct {
	OrderID  int64
	Order    models.LocalOrder
	Quote    Quote
	Warnings []error
}

type OrderAPI interface {
	CreateOrder(ctx context.Context, req api.CreateOrderRequest) (int64, error)
}

type Cart interface {
	Snapshot() cart.Snapshot
	ClearAfterOrder(ctx context.Context) error
}

type UserSource interface {
	UserID() (int64, bool)
}

type Service struct {
	api     OrderAPI
	cart    Cart
	users   UserSource
	mirror  store.OrderMirror
	taxRate decimal.Decimal
	now     func() time.Time
	logger  *zap.Logger
}

type Option func(*Service)

func WithTaxRate(rate decimal.Decimal) Option {
	return func(s *Service) {
		s.taxRate = rate
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(client OrderAPI, c Cart, users UserSource, mirror store.OrderMirror, opts ...Option) *Service {
	s := &Service{
		api:     client,
		cart:    c,
		users:   users,
		mirror:  mirror,
		taxRate: DefaultTaxRate,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Quote prices the current cart.
func (s *Service) Quote() Quote {
	return QuoteFor(s.cart.Snapshot(), s.taxRate)
}

// PlaceOrder submits the cart as an order. Once the storefront accepts it
// the receipt is always returned; failures to mirror the order locally or
// to clear the cart are attached as warnings.
func (s *Service) PlaceOrder(ctx context.Context, form Form) (*Receipt, error) {
	userID, ok := s.users.UserID()
	if !ok {
		return nil, ErrNotSignedIn
	}
	snap := s.cart.Snapshot()
	if snap.Empty() {
		return nil, ErrEmptyCart
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	lines := snap.Lines()
	req := api.CreateOrderRequest{UserID: userID, Items: make([]api.OrderLine, 0, len(lines))}
	for _, line := range lines {
		req.Items = append(req.Items, api.OrderLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Price,
		})
	}

	orderID, err := s.api.CreateOrder(ctx, req)
	if err != nil {
		return nil, err
	}

	quote := QuoteFor(snap, s.taxRate)
	receipt := &Receipt{
		OrderID: orderID,
		Quote:   quote,
		Order:   s.localOrder(orderID, userID, lines, quote, form),
	}
	s.logger.Info("order placed",
		zap.Int64("order_id", orderID),
		zap.Int64("user_id", userID),
		zap.String("total", quote.Total.StringFixed(2)))

	if err := s.mirror.AppendOrder(ctx, receipt.Order); err != nil {
		s.logger.Warn("mirror order failed", zap.Int64("order_id", orderID), zap.Error(err))
		receipt.Warnings = append(receipt.Warnings, fmt.Errorf("save order locally: %w", err))
	}
	if err := s.cart.ClearAfterOrder(ctx); err != nil {
		receipt.Warnings = append(receipt.Warnings, err)
	}

	return receipt, nil
}

// localOrder builds the mirrored copy. Timestamps are kept to the
// millisecond so every store backend orders them the same way.
func (s *Service) localOrder(orderID, userID int64, lines []models.CartLine, quote Quote, form Form) models.LocalOrder {
	items := make([]models.LocalOrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.LocalOrderItem{
			ID:       line.ProductID,
			Name:     line.Name,
			Price:    line.Price,
			Quantity: line.Quantity,
		})
	}
	return models.LocalOrder{
		ID:              strconv.FormatInt(orderID, 10),
		UserID:          userID,
		Total:           quote.Total,
		Items:           items,
		ShippingAddress: form.Shipping,
		PaymentMethod:   form.PaymentMethod,
		Status:          models.OrderStatusCompleted,
		CreatedAt:       models.NewTimestamp(s.now().Truncate(time.Millisecond)),
	}
}
