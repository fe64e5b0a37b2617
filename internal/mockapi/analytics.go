package mockapi

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safar/supershop/internal/models"
	"github.com/shopspring/decimal"
)

const (
	topProductsLimit  = 10
	associationsLimit = 5
	trendMonths       = 6
	dailyWindow       = 7 * 24 * time.Hour
)

func salesAnalytics(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		analytics := s.salesAnalyticsLocked()
		s.mu.Unlock()

		ok(c, gin.H{"analytics": analytics})
	}
}

func (s *Server) salesAnalyticsLocked() models.SalesAnalytics {
	sold := make(map[int64]decimal.Decimal)
	revenue := make(map[int64]decimal.Decimal)
	for _, o := range s.orders {
		for _, item := range o.items {
			qty := decimal.NewFromInt(int64(item.quantity))
			sold[item.productID] = sold[item.productID].Add(qty)
			revenue[item.productID] = revenue[item.productID].Add(qty.Mul(item.price))
		}
	}

	products := s.sortedProductsLocked()
	top := make([]models.TopProduct, 0, len(products))
	for _, p := range products {
		top = append(top, models.TopProduct{
			ID:        p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Stock:     p.Stock,
			TotalSold: sold[p.ID],
			Revenue:   revenue[p.ID],
		})
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].TotalSold.GreaterThan(top[j].TotalSold) })
	if len(top) > topProductsLimit {
		top = top[:topProductsLimit]
	}

	categoryIDs := make([]int64, 0, len(s.categories))
	for id := range s.categories {
		categoryIDs = append(categoryIDs, id)
	}
	sort.Slice(categoryIDs, func(i, j int) bool { return categoryIDs[i] < categoryIDs[j] })
	categorySales := make([]models.CategorySale, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		sale := models.CategorySale{CategoryName: s.categories[id].Name}
		for _, p := range products {
			if p.Category == sale.CategoryName {
				sale.TotalSold = sale.TotalSold.Add(sold[p.ID])
				sale.Revenue = sale.Revenue.Add(revenue[p.ID])
			}
		}
		categorySales = append(categorySales, sale)
	}

	since := s.now().Add(-dailyWindow).UTC().Truncate(24 * time.Hour)
	byDay := make(map[string]*models.DailySale)
	for _, o := range s.orders {
		if o.createdAt.Before(since) {
			continue
		}
		day := o.createdAt.UTC().Format("2006-01-02")
		entry, exists := byDay[day]
		if !exists {
			entry = &models.DailySale{SaleDate: day}
			byDay[day] = entry
		}
		entry.OrdersCount++
		for _, item := range o.items {
			qty := decimal.NewFromInt(int64(item.quantity))
			entry.ItemsSold = entry.ItemsSold.Add(qty)
			entry.DailyRevenue = entry.DailyRevenue.Add(qty.Mul(item.price))
		}
	}
	daily := make([]models.DailySale, 0, len(byDay))
	for _, entry := range byDay {
		daily = append(daily, *entry)
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].SaleDate < daily[j].SaleDate })

	stats := models.SalesStats{
		TotalProducts: len(s.products),
		TotalOrders:   len(s.orders),
		TotalUsers:    len(s.users),
	}
	for _, o := range s.orders {
		if o.status != models.OrderStatusCompleted {
			continue
		}
		for _, item := range o.items {
			stats.TotalRevenue = stats.TotalRevenue.Add(item.price.Mul(decimal.NewFromInt(int64(item.quantity))))
		}
	}
	for _, p := range products {
		stats.TotalStock = stats.TotalStock.Add(decimal.NewFromInt(int64(p.Stock)))
	}

	return models.SalesAnalytics{
		TopProducts:   top,
		CategorySales: categorySales,
		DailySales:    daily,
		Stats:         stats,
	}
}

func productAnalysis(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, found := idParam(c, "id")
		if !found {
			return
		}

		s.mu.Lock()
		analysis, exists := s.productAnalysisLocked(id)
		s.mu.Unlock()

		if !exists {
			fail(c, http.StatusNotFound, "Product not found")
			return
		}
		ok(c, gin.H{
			"product":             analysis.Product,
			"associated_products": analysis.AssociatedProducts,
			"stats":               analysis.Stats,
			"monthly_trend":       analysis.MonthlyTrend,
		})
	}
}

// productAnalysisLocked ranks products bought in the same orders as id.
// Percentage is the share of id's orders that also contained the product.
func (s *Server) productAnalysisLocked(id int64) (models.ProductAnalysis, bool) {
	p, exists := s.products[id]
	if !exists {
		return models.ProductAnalysis{}, false
	}

	var (
		containing []*orderRecord
		stats      models.ProductStats
		lines      int64
		months     = make(map[string]*models.MonthlyTrend)
	)
	for _, o := range s.orders {
		has := false
		for _, item := range o.items {
			if item.productID != id {
				continue
			}
			has = true
			if o.status != models.OrderStatusCompleted {
				continue
			}
			qty := decimal.NewFromInt(int64(item.quantity))
			stats.TotalSold = stats.TotalSold.Add(qty)
			stats.TotalRevenue = stats.TotalRevenue.Add(qty.Mul(item.price))
			lines++

			month := o.createdAt.UTC().Format("2006-01")
			trend, seen := months[month]
			if !seen {
				trend = &models.MonthlyTrend{Month: month}
				months[month] = trend
			}
			trend.MonthlySold = trend.MonthlySold.Add(qty)
			trend.MonthlyRevenue = trend.MonthlyRevenue.Add(qty.Mul(item.price))
		}
		if has {
			containing = append(containing, o)
			if o.status == models.OrderStatusCompleted {
				stats.TotalOrders++
			}
		}
	}
	if lines > 0 {
		stats.AvgQuantityPerOrder = stats.TotalSold.DivRound(decimal.NewFromInt(lines), 4)
	}

	coCounts := make(map[int64]int)
	for _, o := range containing {
		seen := make(map[int64]bool)
		for _, item := range o.items {
			if item.productID == id || seen[item.productID] {
				continue
			}
			seen[item.productID] = true
			coCounts[item.productID]++
		}
	}
	associated := make([]models.AssociatedProduct, 0, len(coCounts))
	for otherID, count := range coCounts {
		other, exists := s.products[otherID]
		if !exists {
			continue
		}
		associated = append(associated, models.AssociatedProduct{
			ProductID:       other.ID,
			Name:            other.Name,
			Price:           other.Price,
			Stock:           other.Stock,
			Category:        other.Category,
			CoPurchaseCount: count,
			Percentage: decimal.NewFromInt(int64(count*100)).
				DivRound(decimal.NewFromInt(int64(len(containing))), 1),
		})
	}
	sort.Slice(associated, func(i, j int) bool {
		if associated[i].CoPurchaseCount != associated[j].CoPurchaseCount {
			return associated[i].CoPurchaseCount > associated[j].CoPurchaseCount
		}
		return associated[i].ProductID < associated[j].ProductID
	})
	if len(associated) > associationsLimit {
		associated = associated[:associationsLimit]
	}

	trend := make([]models.MonthlyTrend, 0, len(months))
	for _, m := range months {
		trend = append(trend, *m)
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Month > trend[j].Month })
	if len(trend) > trendMonths {
		trend = trend[:trendMonths]
	}

	product := *p
	product.CreatedAt = nil
	return models.ProductAnalysis{
		Product:            product,
		AssociatedProducts: associated,
		Stats:              stats,
		MonthlyTrend:       trend,
	}, true
}
