package router

import (
	"net/http"
	"time"

	"sneaker_shop/internal/config"
	"sneaker_shop/internal/middleware"
	"sneaker_shop/internal/order"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Setup 注册全部 HTTP 路由。
// rdb 允许为 nil（本地/测试环境），此时不挂限流中间件。
func Setup(r *gin.Engine, db *gorm.DB, rdb *rd.Client, pipeline *order.Pipeline, cfg config.AppConfig) {
	r.Use(middleware.Auth(db))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "pong"})
	})
	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "ts": time.Now().Format(time.RFC3339)})
	})

	api := r.Group("/api")

	// Catalog（公开，只读）
	api.GET("/products", listProducts(db))
	api.GET("/products/:id", getProduct(db))
	api.GET("/brands", listBrands(db))
	api.GET("/categories", listCategories(db))

	// Auth
	auth := api.Group("/auth")
	auth.POST("/register", register(db, cfg))
	auth.POST("/login", rateLimit(rdb, "login", cfg.LoginRateLimit, cfg.LoginRateWin), login(db, cfg))
	auth.POST("/logout", logout(db))
	auth.GET("/me", me())

	// Cart（需登录）
	cart := api.Group("/cart", middleware.RequireAuth())
	cart.GET("", listCart(db))
	cart.POST("", addToCart(db))
	cart.PATCH("/:variant_id", updateCartItem(db))
	cart.DELETE("/:variant_id", removeCartItem(db))
	cart.DELETE("", clearCart(db))

	// Orders（需登录）
	orders := api.Group("/orders", middleware.RequireAuth())
	orders.GET("", listOrders(db))
	orders.GET("/:id", getOrder(db))
	orders.POST("/checkout",
		rateLimit(rdb, "checkout", cfg.CheckoutRateLimit, cfg.CheckoutRateWin),
		checkout(pipeline))
	orders.POST("/:id/pay", payOrder(pipeline))

	// Admin（需管理员）
	admin := api.Group("/admin", middleware.RequireAdmin())
	admin.GET("/brands", listBrands(db))
	admin.GET("/categories", listCategories(db))
	admin.GET("/products", adminListProducts(db))
	admin.GET("/products/:id", adminGetProduct(db))
	admin.POST("/products", adminCreateProduct(db))
	admin.PATCH("/products/:id", adminUpdateProduct(db))
	admin.DELETE("/products/:id", adminDeleteProduct(db))
	admin.POST("/products/:id/variants", adminCreateVariant(db))
	admin.PATCH("/variants/:variant_id", adminUpdateVariant(db))
	admin.DELETE("/variants/:variant_id", adminDeleteVariant(db))
	admin.POST("/products/:id/images", adminAddImage(db))
	admin.POST("/images/:image_id/primary", adminSetPrimaryImage(db))
	admin.DELETE("/images/:image_id", adminDeleteImage(db))
	admin.GET("/orders", adminListOrders(db))
	admin.PATCH("/orders/:id/status", adminSetOrderStatus(pipeline))
}

// rateLimit 在 rdb 可用时返回限流中间件，否则直通。
func rateLimit(rdb *rd.Client, scope string, limit int, window time.Duration) gin.HandlerFunc {
	if rdb == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RedisRateLimit(rdb, scope, limit, window)
}
