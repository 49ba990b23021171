package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"backend/internal/cache"
	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/middleware"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureAdminIndexes(db); err != nil {
		log.Printf("⚠️ admin index warning: %v", err)
	}
	if err := database.EnsureCustomerIndexes(db); err != nil {
		log.Printf("⚠️ customer index warning: %v", err)
	}
	if err := database.EnsureShipmentIndexes(db); err != nil {
		log.Printf("⚠️ shipment index warning: %v", err)
	}
	if err := database.EnsureTrackingIndexes(db); err != nil {
		log.Printf("⚠️ tracking index warning: %v", err)
	}

	// The tracking cache is optional; without Redis the public lookup
	// goes straight to Mongo.
	var trackingCache *cache.TrackingCache
	if config.AppEnv.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(cache.Config{
			Addr:     config.AppEnv.RedisAddr,
			Password: config.AppEnv.RedisPassword,
			DB:       config.AppEnv.RedisDB,
		})
		if err != nil {
			log.Printf("⚠️ redis warning, tracking cache disabled: %v", err)
		} else {
			log.Println("Redis connected to:", config.AppEnv.RedisAddr)
			trackingCache = cache.NewTrackingCache(rdb, config.AppEnv.TrackingTTL)
		}
	}

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Backend is running"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	adminAuth := middleware.AdminAuth(db, config.AppEnv.JWTSecret)

	auth := r.Group("/auth")
	{
		auth.POST("/create-admin", handlers.CreateAdmin(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))
		auth.POST("/login-admin", handlers.LoginAdmin(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))
		auth.POST("/logout-admin", adminAuth, handlers.LogoutAdmin(db))
		auth.POST("/reset-password", handlers.PostReset(db, config.AppEnv.ResetTokenTTL))
		auth.GET("/reset-password/:token", handlers.GetNewPassword(db))
		auth.POST("/change-password/:token", handlers.PostNewPassword(db))
	}

	customer := r.Group("/customer")
	customer.Use(adminAuth)
	{
		customer.POST("/create-customer", handlers.CreateCustomer(db))
		customer.GET("/getAllCustomers", handlers.GetCustomersByAdmin(db))
		customer.GET("/delete-customers", handlers.GetDeletedCustomers(db))
		customer.GET("/viewcustomer/:id", handlers.GetCustomerByID(db))
		customer.PUT("/restore/:id", handlers.RestoreCustomer(db, trackingCache))
		customer.PUT("/:id", handlers.UpdateCustomer(db))
		customer.DELETE("/delete-customer/:id", handlers.DeleteCustomer(db, trackingCache))
	}

	shipment := r.Group("/shipment")
	shipment.Use(adminAuth)
	{
		shipment.POST("/create-shipment", handlers.CreateShipment(db))
		shipment.PUT("/update-shipment/:id", handlers.UpdateShipment(db, trackingCache))
		shipment.DELETE("/delete-shipment/:id", handlers.DeleteShipment(db, trackingCache))
		shipment.GET("/shipment-timeline/:shipmentId", handlers.GetShipmentTimeline(db))
		shipment.GET("/getAllShipments", handlers.GetAllShipments(db))
		shipment.GET("/deleted-shipments", handlers.GetDeletedShipments(db))
	}

	// Public lookup, no auth.
	r.GET("/track/view-tracking/:trackingNumber", handlers.TrackShipment(db, trackingCache))

	r.Run(":" + config.AppEnv.Port)
}
