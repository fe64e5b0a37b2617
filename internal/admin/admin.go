// Package admin holds the store management views: sales analytics, user
// roles, and catalog maintenance.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/safar/supershop/internal/api"
	"github.com/safar/supershop/internal/logger"
	"github.com/safar/supershop/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNotAdmin        = errors.New("admin access required")
	ErrInvalidRole     = errors.New("role must be admin or user")
	ErrZeroStockChange = errors.New("stock change cannot be zero")
	ErrProductFields   = errors.New("name and price are required")
)

type API interface {
	SalesAnalytics(ctx context.Context) (*models.SalesAnalytics, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ChangeRole(ctx context.Context, userID int64, role string) error
	CreateProduct(ctx context.Context, p api.NewProduct) (int64, error)
	AdjustStock(ctx context.Context, productID int64, change int) (int, error)
	ProductAnalysis(ctx context.Context, productID int64) (*models.ProductAnalysis, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// Viewer is whoever is looking at the admin views.
type Viewer interface {
	IsAdmin() bool
}

// Overview is what the admin landing view shows.
type Overview struct {
	Analytics *models.SalesAnalytics
	Users     []models.User
}

type Service struct {
	api    API
	viewer Viewer
	logger *zap.Logger
}

func New(client API, viewer Viewer, lg *zap.Logger) *Service {
	return &Service{api: client, viewer: viewer, logger: logger.OrNop(lg)}
}

func (s *Service) guard() error {
	if !s.viewer.IsAdmin() {
		return ErrNotAdmin
	}
	return nil
}

// Overview loads analytics and the user list concurrently. Either failing
// fails the whole view.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	var out Overview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		analytics, err := s.api.SalesAnalytics(gctx)
		if err != nil {
			return fmt.Errorf("load analytics: %w", err)
		}
		out.Analytics = analytics
		return nil
	})
	g.Go(func() error {
		users, err := s.api.ListUsers(gctx)
		if err != nil {
			return fmt.Errorf("load users: %w", err)
		}
		out.Users = users
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Analytics(ctx context.Context) (*models.SalesAnalytics, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.api.SalesAnalytics(ctx)
}

func (s *Service) Users(ctx context.Context) ([]models.User, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.api.ListUsers(ctx)
}

// ChangeRole sets user's role and returns the refreshed user list. When the
// role is already role nothing is sent and the returned list is nil.
func (s *Service) ChangeRole(ctx context.Context, user models.User, role string) ([]models.User, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	if role != models.RoleAdmin && role != models.RoleUser {
		return nil, ErrInvalidRole
	}
	if user.Role == role {
		return nil, nil
	}

	if err := s.api.ChangeRole(ctx, user.ID, role); err != nil {
		return nil, err
	}
	s.logger.Info("role changed",
		zap.Int64("user_id", user.ID),
		zap.String("from", user.Role),
		zap.String("to", role))

	users, err := s.api.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh users: %w", err)
	}
	return users, nil
}

// CreateProduct adds p to the catalog and returns the new id together with
// the re-fetched catalog.
func (s *Service) CreateProduct(ctx context.Context, p api.NewProduct) (int64, []models.Product, error) {
	if err := s.guard(); err != nil {
		return 0, nil, err
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" || !p.Price.IsPositive() {
		return 0, nil, ErrProductFields
	}

	id, err := s.api.CreateProduct(ctx, p)
	if err != nil {
		return 0, nil, err
	}
	s.logger.Info("product created", zap.Int64("product_id", id), zap.String("name", p.Name))

	products, err := s.api.ListProducts(ctx)
	if err != nil {
		return id, nil, fmt.Errorf("refresh catalog: %w", err)
	}
	return id, products, nil
}

// AdjustStock applies a signed change and returns the new level.
func (s *Service) AdjustStock(ctx context.Context, productID int64, change int) (int, error) {
	if err := s.guard(); err != nil {
		return 0, err
	}
	if change == 0 {
		return 0, ErrZeroStockChange
	}

	stock, err := s.api.AdjustStock(ctx, productID, change)
	if err != nil {
		return 0, err
	}
	s.logger.Info("stock adjusted",
		zap.Int64("product_id", productID),
		zap.Int("change", change),
		zap.Int("stock", stock))
	return stock, nil
}

func (s *Service) ProductAnalysis(ctx context.Context, productID int64) (*models.ProductAnalysis, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.api.ProductAnalysis(ctx, productID)
}
