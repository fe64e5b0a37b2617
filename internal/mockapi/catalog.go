package mockapi

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/safar/supershop/internal/models"
	"github.com/shopspring/decimal"
)

const popularLimit = 10

type newProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  int64           `json:"category_id"`
	Barcode     string          `json:"barcode"`
}

type stockChangeRequest struct {
	StockChange *int `json:"stock_change"`
}

func listProducts(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		products := s.sortedProductsLocked()
		s.mu.Unlock()

		ok(c, gin.H{"products": products})
	}
}

// popularProducts ranks by the number of order lines naming the product,
// newest product first on ties.
func popularProducts(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		lineCounts := make(map[int64]int)
		for _, o := range s.orders {
			for _, item := range o.items {
				lineCounts[item.productID]++
			}
		}
		products := s.sortedProductsLocked()
		s.mu.Unlock()

		for i := range products {
			products[i].Sales = lineCounts[products[i].ID]
		}
		sort.SliceStable(products, func(i, j int) bool {
			if products[i].Sales != products[j].Sales {
				return products[i].Sales > products[j].Sales
			}
			return products[i].ID > products[j].ID
		})
		if len(products) > popularLimit {
			products = products[:popularLimit]
		}

		ok(c, gin.H{"products": products})
	}
}

func listCategories(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		categories := make([]models.Category, 0, len(s.categories))
		for _, cat := range s.categories {
			categories = append(categories, cat)
		}
		s.mu.Unlock()

		sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
		ok(c, gin.H{"categories": categories})
	}
}

func createProduct(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req newProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(req.Name) == "" || req.Price.IsZero() {
			fail(c, http.StatusBadRequest, "Name and price are required")
			return
		}
		if req.CategoryID == 0 {
			req.CategoryID = 1
		}

		s.mu.Lock()
		ts := models.NewTimestamp(s.now())
		p := &models.Product{
			ID:          s.nextProductID,
			Barcode:     req.Barcode,
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Stock:       req.Stock,
			Category:    s.categories[req.CategoryID].Name,
			CreatedAt:   &ts,
		}
		s.nextProductID++
		s.products[p.ID] = p
		s.mu.Unlock()

		ok(c, gin.H{"message": "Product added successfully", "product_id": p.ID})
	}
}

func updateStock(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, found := idParam(c, "id")
		if !found {
			return
		}
		var req stockChangeRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.StockChange == nil {
			fail(c, http.StatusBadRequest, "Missing required data")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		p, exists := s.products[id]
		if !exists {
			fail(c, http.StatusNotFound, "Product not found")
			return
		}
		newStock := p.Stock + *req.StockChange
		if newStock < 0 {
			fail(c, http.StatusBadRequest, "Stock cannot be negative")
			return
		}
		p.Stock = newStock

		ok(c, gin.H{"message": "Stock updated successfully", "new_stock": newStock})
	}
}
