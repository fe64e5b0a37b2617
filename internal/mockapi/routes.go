package mockapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func setupRoutes(r *gin.Engine, s *Server) {
	r.POST("/login", login(s))
	r.POST("/register", register(s))
	r.PUT("/user/:user_id/profile", updateProfile(s))
	r.GET("/user/:user_id/orders", userOrders(s))

	r.GET("/products", listProducts(s))
	r.GET("/popular-products", popularProducts(s))
	r.GET("/categories", listCategories(s))

	cart := r.Group("/cart")
	{
		cart.GET("/:user_id", getCart(s))
		cart.POST("/add", addToCart(s))
		cart.PUT("/update", updateCart(s))
		cart.DELETE("/remove", removeFromCart(s))
		cart.DELETE("/clear/:user_id", clearCart(s))
	}

	r.POST("/orders", createOrder(s))

	admin := r.Group("/admin")
	{
		admin.GET("/sales-analytics", salesAnalytics(s))
		admin.POST("/products", createProduct(s))
		admin.PUT("/products/:id/stock", updateStock(s))
		admin.GET("/users", listUsers(s))
		admin.PUT("/users/:id/role", updateRole(s))
	}

	r.GET("/analysis/product/:id", productAnalysis(s))
}

func ok(c *gin.Context, payload gin.H) {
	if payload == nil {
		payload = gin.H{}
	}
	payload["success"] = true
	c.JSON(http.StatusOK, payload)
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		fail(c, http.StatusNotFound, "Not found")
		return 0, false
	}
	return id, true
}
