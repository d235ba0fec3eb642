package routes

import (
	"net/http"
	"time"

	"github.com/amirhose1n/miropet-server/handlers"
	customMiddleware "github.com/amirhose1n/miropet-server/middleware"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes registers the full API surface under /api.
func SetupRoutes(e *echo.Echo) {
	// Auth routes (public)
	auth := e.Group("/api/auth")
	auth.POST("/register", handlers.Register)
	auth.POST("/login", handlers.Login)
	auth.POST("/change-password", handlers.ChangePassword, customMiddleware.Auth)
	auth.POST("/send-otp", handlers.SendOTP)
	auth.POST("/verify-otp", handlers.VerifyOTP)
	auth.POST("/refresh", handlers.Refresh)
	auth.POST("/logout", handlers.Logout, customMiddleware.Auth)

	// Cart routes serve both guests and authenticated users.
	cart := e.Group("/api/cart", customMiddleware.OptionalAuth)
	cart.GET("", handlers.GetCart)
	cart.POST("/add", handlers.AddToCart)
	cart.PUT("/update", handlers.UpdateCartItem)
	cart.DELETE("/remove", handlers.RemoveFromCart)
	cart.DELETE("/clear", handlers.ClearCart)
	e.POST("/api/cart/merge", handlers.MergeCart, customMiddleware.Auth)

	// Product routes
	products := e.Group("/api/products")
	products.GET("", handlers.GetAllProducts)
	products.GET("/:id", handlers.GetProductByID)
	products.POST("", handlers.CreateProduct, customMiddleware.Auth, customMiddleware.RequireAdmin)
	products.PUT("/:id", handlers.UpdateProduct, customMiddleware.Auth, customMiddleware.RequireAdmin)
	products.DELETE("/:id", handlers.DeleteProduct, customMiddleware.Auth, customMiddleware.RequireAdmin)

	// Category routes
	e.GET("/api/category", handlers.GetCategories)
	e.POST("/api/category", handlers.CreateCategory, customMiddleware.Auth, customMiddleware.RequireAdmin)

	// Order routes
	orders := e.Group("/api/orders")
	orders.POST("/checkout", handlers.Checkout, customMiddleware.Auth)
	orders.GET("/my-orders", handlers.GetUserOrders, customMiddleware.Auth)
	orders.GET("/stats/summary", handlers.GetOrderStats, customMiddleware.Auth, customMiddleware.RequireAdmin)
	orders.GET("/:id", handlers.GetOrderByID)
	orders.PATCH("/:id/cancel", handlers.CancelOrder)
	orders.GET("", handlers.GetOrders, customMiddleware.Auth, customMiddleware.RequireAdmin)
	orders.PATCH("/:id/status", handlers.UpdateOrderStatus, customMiddleware.Auth, customMiddleware.RequireAdmin)

	// Address routes (all authenticated)
	addresses := e.Group("/api/address", customMiddleware.Auth)
	addresses.GET("", handlers.GetUserAddresses)
	addresses.GET("/:id", handlers.GetAddressByID)
	addresses.POST("", handlers.CreateAddress)
	addresses.PUT("/:id", handlers.UpdateAddress)
	addresses.PUT("/:id/default", handlers.SetDefaultAddress)
	addresses.DELETE("/:id", handlers.DeleteAddress)

	// Delivery method routes
	delivery := e.Group("/api/delivery-methods")
	delivery.GET("", handlers.GetDeliveryMethods)
	delivery.GET("/admin/all", handlers.GetAllDeliveryMethodsAdmin, customMiddleware.Auth, customMiddleware.RequireAdmin)
	delivery.POST("/admin", handlers.CreateDeliveryMethod, customMiddleware.Auth, customMiddleware.RequireAdmin)
	delivery.PUT("/admin/:id", handlers.UpdateDeliveryMethod, customMiddleware.Auth, customMiddleware.RequireAdmin)
	delivery.DELETE("/admin/:id", handlers.DeleteDeliveryMethod, customMiddleware.Auth, customMiddleware.RequireAdmin)
	delivery.PATCH("/admin/:id/toggle", handlers.ToggleDeliveryMethodStatus, customMiddleware.Auth, customMiddleware.RequireAdmin)
	delivery.GET("/:id", handlers.GetDeliveryMethodByID)

	// User routes
	users := e.Group("/api/users", customMiddleware.Auth)
	users.GET("", handlers.GetAllUsers, customMiddleware.RequireAdmin)
	users.GET("/profile", handlers.GetUserProfile)
	users.POST("/admin", handlers.CreateAdminUser, customMiddleware.RequireAdmin)

	// Image upload auth
	e.GET("/api/imagekit/auth", handlers.GetImageKitAuth)

	// Health check, GET and POST both answered for uptime probes.
	health := func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status":    "OK",
			"message":   "MiroPet API is running",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
	e.GET("/health", health)
	e.POST("/health", health)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Everything else is a 404 in the standard envelope.
	echo.NotFoundHandler = func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{
			"success": false,
			"message": "Route not found",
		})
	}
}
