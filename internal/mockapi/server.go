// Package mockapi is an in-memory storefront speaking the same REST
// envelope as the real service. It backs package tests and the mockshop
// command, records every request, and can inject failures per route.
package mockapi

import (
	"bytes"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/safar/supershop/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// Request is one recorded call.
type Request struct {
	Method string
	Path   string
	Body   string
}

// Failure replaces the next matching response. Drop closes the connection
// without answering; otherwise the route answers Status with a falsy
// envelope carrying Message.
type Failure struct {
	Status  int
	Message string
	Drop    bool
}

type userRecord struct {
	user     models.User
	password string
}

type cartItem struct {
	id        int64
	productID int64
	quantity  int
}

type orderItemRecord struct {
	id        int64
	productID int64
	quantity  int
	price     decimal.Decimal
}

type orderRecord struct {
	id            int64
	userID        int64
	total         decimal.Decimal
	status        string
	paymentMethod string
	createdAt     time.Time
	items         []orderItemRecord
}

type Server struct {
	mu sync.Mutex

	categories map[int64]models.Category
	products   map[int64]*models.Product
	users      map[int64]*userRecord
	carts      map[int64][]*cartItem
	orders     []*orderRecord

	nextCategoryID  int64
	nextProductID   int64
	nextUserID      int64
	nextCartItemID  int64
	nextOrderID     int64
	nextOrderItemID int64

	requests []Request
	failures map[string][]Failure

	now    func() time.Time
	logger *zap.Logger
	engine *gin.Engine
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock fixes the time source used for order and user timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

func New(opts ...Option) *Server {
	s := &Server{
		categories:      make(map[int64]models.Category),
		products:        make(map[int64]*models.Product),
		users:           make(map[int64]*userRecord),
		carts:           make(map[int64][]*cartItem),
		failures:        make(map[string][]Failure),
		nextCategoryID:  1,
		nextProductID:   1,
		nextUserID:      1,
		nextCartItemID:  1,
		nextOrderID:     1,
		nextOrderItemID: 1,
		now:             time.Now,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.recordRequests(), s.injectFailures())
	setupRoutes(r, s)
	s.engine = r

	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// FailNext queues f for the next request matching method and route, where
// route is the registered pattern such as "/cart/:user_id".
func (s *Server) FailNext(method, route string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + route
	s.failures[key] = append(s.failures[key], f)
}

func (s *Server) takeFailure(key string) (Failure, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.failures[key]
	if len(queue) == 0 {
		return Failure{}, false
	}
	s.failures[key] = queue[1:]
	return queue[0], true
}

// Requests returns a copy of every recorded call in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		c.Next()

		s.logger.Debug("mock request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", requestID))
	}
}

func (s *Server) recordRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: c.Request.Method,
			Path:   c.Request.URL.Path,
			Body:   string(body),
		})
		s.mu.Unlock()
		c.Next()
	}
}

func (s *Server) injectFailures() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, ok := s.takeFailure(c.Request.Method + " " + c.FullPath())
		if !ok {
			c.Next()
			return
		}

		if f.Drop {
			if conn, _, err := c.Writer.Hijack(); err == nil {
				conn.Close()
			}
			c.Abort()
			return
		}

		status := f.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		c.AbortWithStatusJSON(status, gin.H{"success": false, "message": f.Message})
	}
}

// AddCategory registers a category and returns it with its id.
func (s *Server) AddCategory(name, description string) models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	cat := models.Category{ID: s.nextCategoryID, Name: name, Description: description}
	s.nextCategoryID++
	s.categories[cat.ID] = cat
	return cat
}

// AddProduct stores p. A zero ID is assigned the next free one.
func (s *Server) AddProduct(p models.Product) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.nextProductID
	}
	if p.ID >= s.nextProductID {
		s.nextProductID = p.ID + 1
	}
	stored := p
	s.products[p.ID] = &stored
	return p
}

// AddUser stores u with password. A zero ID is assigned; an empty role
// becomes "user".
func (s *Server) AddUser(u models.User, password string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.nextUserID
	}
	if u.ID >= s.nextUserID {
		s.nextUserID = u.ID + 1
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if u.CreatedAt == nil {
		ts := models.NewTimestamp(s.now())
		u.CreatedAt = &ts
	}
	s.users[u.ID] = &userRecord{user: u, password: password}
	return u
}

// SeedCartLine puts a line with a chosen cart_item_id into userID's cart.
func (s *Server) SeedCartLine(userID, productID int64, quantity int, cartItemID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cartItemID >= s.nextCartItemID {
		s.nextCartItemID = cartItemID + 1
	}
	s.carts[userID] = append(s.carts[userID], &cartItem{id: cartItemID, productID: productID, quantity: quantity})
}

// SetNextCartItemID makes the next new cart line take id.
func (s *Server) SetNextCartItemID(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCartItemID = id
}

// SetNextOrderID makes the next order take id.
func (s *Server) SetNextOrderID(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextOrderID = id
}

func (s *Server) Product(id int64) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return models.Product{}, false
	}
	return *p, true
}

func (s *Server) User(id int64) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return models.User{}, false
	}
	return rec.user, true
}

// CartLines returns userID's cart as the cart endpoint would.
func (s *Server) CartLines(userID int64) []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartLinesLocked(userID)
}

func (s *Server) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *Server) cartLinesLocked(userID int64) []models.CartLine {
	lines := make([]models.CartLine, 0, len(s.carts[userID]))
	for _, item := range s.carts[userID] {
		p, ok := s.products[item.productID]
		if !ok {
			continue
		}
		lines = append(lines, models.CartLine{
			ProductID:   p.ID,
			CartItemID:  item.id,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Quantity:    item.quantity,
			Stock:       p.Stock,
		})
	}
	return lines
}

func (s *Server) sortedProductsLocked() []models.Product {
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
