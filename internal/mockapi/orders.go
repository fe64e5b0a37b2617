package mockapi

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/safar/supershop/internal/models"
	"github.com/shopspring/decimal"
)

type orderLineRequest struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type createOrderRequest struct {
	UserID int64              `json:"user_id"`
	Items  []orderLineRequest `json:"items"`
}

// createOrder records a completed order and decrements stock for every line.
// The whole order is rejected when any line exceeds the available stock.
func createOrder(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.UserID == 0 || len(req.Items) == 0 {
			fail(c, http.StatusBadRequest, "Missing required data")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		for _, line := range req.Items {
			p, exists := s.products[line.ProductID]
			if !exists {
				fail(c, http.StatusNotFound, "Product not found")
				return
			}
			if line.Quantity <= 0 || line.Quantity > p.Stock {
				fail(c, http.StatusBadRequest, fmt.Sprintf("Insufficient stock for %s", p.Name))
				return
			}
		}

		order := &orderRecord{
			id:            s.nextOrderID,
			userID:        req.UserID,
			total:         decimal.Zero,
			status:        models.OrderStatusCompleted,
			paymentMethod: models.PaymentCard,
			createdAt:     s.now(),
		}
		s.nextOrderID++

		for _, line := range req.Items {
			order.items = append(order.items, orderItemRecord{
				id:        s.nextOrderItemID,
				productID: line.ProductID,
				quantity:  line.Quantity,
				price:     line.Price,
			})
			s.nextOrderItemID++
			order.total = order.total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			s.products[line.ProductID].Stock -= line.Quantity
		}
		s.orders = append(s.orders, order)

		ok(c, gin.H{"message": "Order placed successfully", "order_id": order.id})
	}
}

func userOrders(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, found := idParam(c, "user_id")
		if !found {
			return
		}

		s.mu.Lock()
		var orders []models.Order
		for _, o := range s.orders {
			if o.userID == userID {
				orders = append(orders, s.orderViewLocked(o))
			}
		}
		s.mu.Unlock()

		sort.SliceStable(orders, func(i, j int) bool {
			return orders[i].CreatedAt.After(orders[j].CreatedAt.Time)
		})
		if orders == nil {
			orders = []models.Order{}
		}

		ok(c, gin.H{"orders": orders})
	}
}

func (s *Server) orderViewLocked(o *orderRecord) models.Order {
	ts := models.NewTimestamp(o.createdAt)
	view := models.Order{
		ID:            o.id,
		Total:         o.total,
		Status:        o.status,
		CreatedAt:     &ts,
		PaymentMethod: o.paymentMethod,
		Items:         make([]models.OrderItem, 0, len(o.items)),
	}
	for _, item := range o.items {
		line := models.OrderItem{
			ProductID:   item.productID,
			OrderItemID: item.id,
			Price:       item.price,
			Quantity:    item.quantity,
			Subtotal:    item.price.Mul(decimal.NewFromInt(int64(item.quantity))),
		}
		if p, exists := s.products[item.productID]; exists {
			line.Name = p.Name
			line.Description = p.Description
			line.Barcode = p.Barcode
			line.Category = p.Category
		}
		view.Items = append(view.Items, line)
		view.TotalItems += item.quantity
	}
	return view
}
