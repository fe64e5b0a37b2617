package mockapi

import (
	"time"

	"github.com/safar/supershop/internal/models"
	"github.com/shopspring/decimal"
)

// SeedDemo loads a small grocery catalog plus one admin and one shopper.
// Admin: admin@supershop.test / admin123. Shopper: user@supershop.test / user123.
func SeedDemo(s *Server) {
	fruit := s.AddCategory("Fruit", "Fresh fruit")
	dairy := s.AddCategory("Dairy", "Milk, cheese and eggs")
	grocery := s.AddCategory("Grocery", "Rice, flour and staples")
	drinks := s.AddCategory("Drinks", "Tea, coffee and juice")

	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	products := []struct {
		name, description, price string
		stock                    int
		category                 models.Category
		barcode                  string
	}{
		{"Banana", "Sweet Sagor bananas, one dozen", "1.20", 40, fruit, "880100000001"},
		{"Apple", "Red Fuji apples, 1 kg", "2.50", 25, fruit, "880100000002"},
		{"Cheddar", "Aged cheddar, 200 g", "7.00", 12, dairy, "880100000003"},
		{"Milk", "Full cream milk, 1 L", "1.10", 60, dairy, "880100000004"},
		{"Basmati Rice", "Long grain basmati, 5 kg", "12.50", 5, grocery, "880100000005"},
		{"Atta", "Whole wheat flour, 2 kg", "3.40", 18, grocery, "880100000006"},
		{"Green Tea", "Loose leaf green tea, 100 g", "4.50", 12, drinks, "880100000007"},
		{"Mango Juice", "Mango nectar, 1 L", "2.10", 0, drinks, "880100000008"},
	}
	for i, p := range products {
		ts := models.NewTimestamp(base.AddDate(0, 0, 7*i))
		s.AddProduct(models.Product{
			Barcode:     p.barcode,
			Name:        p.name,
			Description: p.description,
			Price:       decimal.RequireFromString(p.price),
			Stock:       p.stock,
			Category:    p.category.Name,
			CreatedAt:   &ts,
		})
	}

	s.AddUser(models.User{
		Name:    "Store Admin",
		Email:   "admin@supershop.test",
		Phone:   "01700000000",
		Address: "Dhaka",
		Role:    models.RoleSuperAdmin,
	}, "admin123")
	s.AddUser(models.User{
		Name:    "Demo Shopper",
		Email:   "user@supershop.test",
		Phone:   "01800000000",
		Address: "Chattogram",
		Role:    models.RoleUser,
	}, "user123")
}
