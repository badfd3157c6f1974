package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yadhukrishnapk/backend-invoice/internal/api/handlers"
	"github.com/yadhukrishnapk/backend-invoice/internal/api/middleware"
	"github.com/yadhukrishnapk/backend-invoice/internal/config"
	"github.com/yadhukrishnapk/backend-invoice/internal/repository"
	"github.com/yadhukrishnapk/backend-invoice/internal/services"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *mongo.Database) *gin.Engine {
	// Initialize services needed by API handlers here
	invoiceRepo := repository.NewMongoInvoiceRepository(db)
	invoiceService := services.NewInvoiceService(invoiceRepo, cfg)

	r := gin.Default()

	// Apply global middleware first (order matters)
	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)
	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())

	// Initialize handlers
	invoiceHandler := handlers.NewRestInvoiceHandler(invoiceService)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "OK", "timestamp": time.Now().UTC()})
		})

		invoices := apiGroup.Group("/invoices")
		{
			// Calculate invoice totals (without saving)
			invoices.POST("/calculate", invoiceHandler.CalculateInvoice)

			// CRUD operations
			invoices.POST("", invoiceHandler.CreateInvoice)
			invoices.GET("", invoiceHandler.GetInvoices)
			invoices.GET("/:id", invoiceHandler.GetInvoiceByID)
			invoices.PUT("/:id", invoiceHandler.UpdateInvoice)
			invoices.DELETE("/:id", invoiceHandler.DeleteInvoice)
		}
	}

	return r
}
