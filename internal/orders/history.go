// Package orders reads a user's order history, from the storefront when it
// answers and from the local mirror when it does not.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/safar/supershop/internal/api"
	"github.com/safar/supershop/internal/logger"
	"github.com/safar/supershop/internal/models"
	"github.com/safar/supershop/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrNotSignedIn = errors.New("please login to view your orders")

type Source string

const (
	SourceServer Source = "api"
	SourceLocal  Source = "local"
)

type History struct {
	Source Source
	Orders []models.Order
	// ServerErr is why the storefront was skipped, set when Source is local.
	ServerErr error
}

// Summary is the dashboard's view of a history.
type Summary struct {
	TotalOrders      int
	TotalSpent       decimal.Decimal
	AverageOrder     decimal.Decimal
	Recent           []models.Order
	FavoriteCategory string
}

type API interface {
	UserOrders(ctx context.Context, userID int64) ([]models.Order, error)
}

type UserSource interface {
	UserID() (int64, bool)
}

type Service struct {
	api    API
	users  UserSource
	mirror store.OrderMirror
	logger *zap.Logger
}

func New(client API, users UserSource, mirror store.OrderMirror, lg *zap.Logger) *Service {
	return &Service{api: client, users: users, mirror: mirror, logger: logger.OrNop(lg)}
}

// History asks the storefront first. Any failure there, transport or
// application, falls back to the mirror; only a mirror failure on top of
// that is returned.
func (s *Service) History(ctx context.Context) (*History, error) {
	userID, ok := s.users.UserID()
	if !ok {
		return nil, ErrNotSignedIn
	}

	serverOrders, err := s.api.UserOrders(ctx, userID)
	if err == nil {
		return &History{Source: SourceServer, Orders: serverOrders}, nil
	}
	s.logger.Info("order history falling back to local mirror",
		zap.Int64("user_id", userID),
		zap.String("class", api.ClassifyError(err).String()),
		zap.Error(err))

	local, mirrorErr := store.AllOrders(ctx, s.mirror, userID)
	if mirrorErr != nil {
		return nil, fmt.Errorf("read local orders: %w", errors.Join(mirrorErr, err))
	}

	out := make([]models.Order, 0, len(local))
	for _, lo := range local {
		out = append(out, FromLocal(lo))
	}
	return &History{Source: SourceLocal, Orders: out, ServerErr: err}, nil
}

// Page reads one page of the mirror directly.
func (s *Service) Page(ctx context.Context, cursor string, limit int) (*store.OrderPage, error) {
	userID, ok := s.users.UserID()
	if !ok {
		return nil, ErrNotSignedIn
	}
	return s.mirror.ListOrders(ctx, userID, cursor, limit)
}

// FromLocal converts a mirrored order to the storefront shape. Mirrored
// ids that are not numbers come through as 0.
func FromLocal(lo models.LocalOrder) models.Order {
	id, _ := strconv.ParseInt(lo.ID, 10, 64)
	created := lo.CreatedAt
	order := models.Order{
		ID:            id,
		Total:         lo.Total,
		Status:        lo.Status,
		CreatedAt:     &created,
		PaymentMethod: lo.PaymentMethod,
		Items:         make([]models.OrderItem, 0, len(lo.Items)),
	}
	for _, item := range lo.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: item.ID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Subtotal:  item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
		order.TotalItems += item.Quantity
	}
	return order
}

const recentOrders = 3

// Summarize totals a history the way the dashboard shows it. Orders are
// expected newest first.
func Summarize(orders []models.Order) Summary {
	sum := Summary{TotalOrders: len(orders), TotalSpent: decimal.Zero, AverageOrder: decimal.Zero}
	counts := make(map[string]int)
	var order []string
	for _, o := range orders {
		sum.TotalSpent = sum.TotalSpent.Add(o.Total)
		for _, item := range o.Items {
			if item.Category == "" {
				continue
			}
			if counts[item.Category] == 0 {
				order = append(order, item.Category)
			}
			counts[item.Category]++
		}
	}
	if len(orders) > 0 {
		sum.AverageOrder = sum.TotalSpent.DivRound(decimal.NewFromInt(int64(len(orders))), 2)
	}
	if len(orders) > recentOrders {
		sum.Recent = orders[:recentOrders]
	} else {
		sum.Recent = orders
	}

	// First category to reach the highest count wins.
	best := 0
	for _, category := range order {
		if counts[category] > best {
			best = counts[category]
			sum.FavoriteCategory = category
		}
	}
	return sum
}
