package mockapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addToCartRequest struct {
	UserID    int64 `json:"user_id"`
	ProductID int64 `json:"product_id"`
	Quantity  *int  `json:"quantity"`
}

type updateCartRequest struct {
	CartItemID int64 `json:"cart_item_id"`
	Quantity   int   `json:"quantity"`
}

type removeCartRequest struct {
	CartItemID int64 `json:"cart_item_id"`
}

func getCart(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, found := idParam(c, "user_id")
		if !found {
			return
		}

		s.mu.Lock()
		lines := s.cartLinesLocked(userID)
		s.mu.Unlock()

		ok(c, gin.H{"cart_id": userID, "items": lines})
	}
}

// addToCart merges into an existing line for the same product. The
// resulting quantity may not exceed the product's stock.
func addToCart(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addToCartRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.UserID == 0 || req.ProductID == 0 {
			fail(c, http.StatusBadRequest, "Missing required data")
			return
		}
		quantity := 1
		if req.Quantity != nil {
			quantity = *req.Quantity
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		p, exists := s.products[req.ProductID]
		if !exists {
			fail(c, http.StatusNotFound, "Product not found")
			return
		}

		var line *cartItem
		for _, item := range s.carts[req.UserID] {
			if item.productID == req.ProductID {
				line = item
				break
			}
		}
		current := 0
		if line != nil {
			current = line.quantity
		}
		if current+quantity > p.Stock {
			fail(c, http.StatusBadRequest, "Insufficient stock")
			return
		}

		if line != nil {
			line.quantity += quantity
		} else {
			s.carts[req.UserID] = append(s.carts[req.UserID], &cartItem{
				id:        s.nextCartItemID,
				productID: req.ProductID,
				quantity:  quantity,
			})
			s.nextCartItemID++
		}

		ok(c, gin.H{"message": "Added to cart"})
	}
}

func updateCart(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "Missing required data")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		if req.Quantity <= 0 {
			s.removeCartItemLocked(req.CartItemID)
			ok(c, gin.H{"message": "Removed from cart"})
			return
		}

		for _, items := range s.carts {
			for _, item := range items {
				if item.id != req.CartItemID {
					continue
				}
				if p, exists := s.products[item.productID]; exists && req.Quantity > p.Stock {
					fail(c, http.StatusBadRequest, "Insufficient stock")
					return
				}
				item.quantity = req.Quantity
			}
		}

		ok(c, gin.H{"message": "Cart updated"})
	}
}

func removeFromCart(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req removeCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "Missing required data")
			return
		}

		s.mu.Lock()
		s.removeCartItemLocked(req.CartItemID)
		s.mu.Unlock()

		ok(c, gin.H{"message": "Removed from cart"})
	}
}

func clearCart(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, found := idParam(c, "user_id")
		if !found {
			return
		}

		s.mu.Lock()
		delete(s.carts, userID)
		s.mu.Unlock()

		ok(c, gin.H{"message": "Cart cleared"})
	}
}

func (s *Server) removeCartItemLocked(cartItemID int64) {
	for userID, items := range s.carts {
		kept := items[:0]
		for _, item := range items {
			if item.id != cartItemID {
				kept = append(kept, item)
			}
		}
		s.carts[userID] = kept
	}
}
