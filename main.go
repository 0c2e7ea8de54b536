package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/esquivelfacundo/gastrodash/config"
	"github.com/esquivelfacundo/gastrodash/controllers"
	"github.com/esquivelfacundo/gastrodash/models"
	"github.com/esquivelfacundo/gastrodash/services"
)

func main() {
	log.Println("Starting GastroDash server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.ConversationTurn{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.AccountingEntry{},
		&models.NotificationOutbox{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	logger := config.GetLogger()

	// Wire the conversational order pipeline
	chatModel, err := services.InitChatModel()
	if err != nil {
		log.Fatalf("Failed to initialize chat model: %v", err)
	}
	gateway, err := services.InitNotificationGateway()
	if err != nil {
		log.Fatalf("Failed to initialize notification gateway: %v", err)
	}

	store := services.NewConversationService(db, logger)
	catalog := services.NewCatalogService(db)
	replies := services.InitReplyGenerator(chatModel, catalog, logger)
	extractor := services.InitOrderExtractor(chatModel, logger)
	outbox := services.NewOutboxService(db, gateway, logger)
	services.InitChefService(db, gateway, cfg.ChefPhone, logger)

	services.InitMessageHandler(services.FulfillmentDeps{
		DB:        db,
		Store:     store,
		Catalog:   catalog,
		Replies:   replies,
		Extractor: extractor,
		Gateway:   gateway,
		Outbox:    outbox,
		ChefPhone: cfg.ChefPhone,
		Limit:     cfg.HistoryLimit,
		Log:       logger,
	})

	// Retry queued kitchen notifications in the background
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go outbox.Run(ctx)

	// Initialize Gin router
	router := gin.Default()
	router.Use(cors.Default())

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/orders/today", controllers.ListTodayOrders)
		v1.PATCH("/orders/:id/status", controllers.UpdateOrderStatus)
		v1.POST("/orders/daily-summary", controllers.SendDailySummary)
	}

	// Meta webhook routes
	webhook := router.Group("/webhook")
	{
		webhook.GET("/whatsapp", controllers.VerifyWebhook)
		webhook.POST("/whatsapp", controllers.ReceiveMessage)
	}

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "GastroDash API is running",
	})
}
