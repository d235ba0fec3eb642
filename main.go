package main

import (
	"log"

	"github.com/amirhose1n/miropet-server/config"
	"github.com/amirhose1n/miropet-server/database"
	"github.com/amirhose1n/miropet-server/routes"
	"github.com/amirhose1n/miropet-server/utils"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load environment variables
	config.LoadEnv()

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.PATCH, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, "X-Requested-With", "Cart-Session-Id"},
	}))
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20)))
	e.Use(middleware.BodyLimit("10M"))

	// Connect to MongoDB
	if err := database.ConnectDB(); err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := database.EnsureIndexes(); err != nil {
		log.Fatal("Failed to ensure indexes: ", err)
	}

	// Seed the default admin account and delivery methods
	if err := utils.InitializeAdminUser(); err != nil {
		log.Fatal("Failed to initialize admin user: ", err)
	}
	if err := utils.SeedDeliveryMethods(); err != nil {
		log.Fatal("Failed to seed delivery methods: ", err)
	}

	// Setup routes
	routes.SetupRoutes(e)

	// Start the server
	port := config.GetEnv("PORT", "3001")
	log.Printf("🚀 Server is running on port %s", port)
	log.Printf("📊 Health check: http://localhost:%s/health", port)
	e.Logger.Fatal(e.Start(":" + port))
}
