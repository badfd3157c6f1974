package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yadhukrishnapk/backend-invoice/internal/models"
	"github.com/yadhukrishnapk/backend-invoice/internal/repository"
	"github.com/yadhukrishnapk/backend-invoice/internal/services"
)

// RestInvoiceHandler handles REST requests for invoices.
type RestInvoiceHandler struct {
	invoiceService services.IInvoiceService
}

// NewRestInvoiceHandler creates a new RestInvoiceHandler.
func NewRestInvoiceHandler(invoiceService services.IInvoiceService) *RestInvoiceHandler {
	return &RestInvoiceHandler{invoiceService: invoiceService}
}

// invoiceRequest is the body accepted by calculate/create/update.
// invoiceNumber, dueDate and clientId only apply to create.
type invoiceRequest struct {
	Items         []models.LineItemInput `json:"items"`
	TaxRate       *float64               `json:"taxRate"`
	InvoiceNumber string                 `json:"invoiceNumber"`
	DueDate       string                 `json:"dueDate"`
	ClientID      string                 `json:"clientId"`
}

// parseDueDate accepts RFC3339 timestamps or plain YYYY-MM-DD dates.
func parseDueDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CalculateInvoice handles POST /api/invoices/calculate. Computes totals
// without persisting anything.
func (h *RestInvoiceHandler) CalculateInvoice(c *gin.Context) {
	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invoice items are required and must be an array"})
		return
	}
	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invoice items are required and must be an array"})
		return
	}

	result, err := h.invoiceService.CalculateTotals(models.InvoiceInput{Items: req.Items, TaxRate: req.TaxRate})
	if err != nil {
		if errors.Is(err, services.ErrItemsRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invoice items are required and must be an array"})
			return
		}
		log.Printf("Failed to calculate invoice: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate invoice"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreateInvoice handles POST /api/invoices.
func (h *RestInvoiceHandler) CreateInvoice(c *gin.Context) {
	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invoice items are required and must be an array"})
		return
	}
	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invoice items are required and must be an array"})
		return
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dueDate format"})
		return
	}

	input := models.InvoiceInput{Items: req.Items, TaxRate: req.TaxRate}
	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), input, req.InvoiceNumber, dueDate, req.ClientID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrItemsRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invoice items are required and must be an array"})
		case errors.Is(err, repository.ErrDuplicateInvoiceNumber):
			c.JSON(http.StatusConflict, gin.H{"error": "Invoice number already exists"})
		default:
			log.Printf("Failed to create invoice: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invoice"})
		}
		return
	}

	c.JSON(http.StatusCreated, invoice)
}

// GetInvoices handles GET /api/invoices.
func (h *RestInvoiceHandler) GetInvoices(c *gin.Context) {
	invoices, err := h.invoiceService.GetAllInvoices(c.Request.Context())
	if err != nil {
		log.Printf("Failed to fetch invoices: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invoices"})
		return
	}

	if len(invoices) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No invoices found", "data": []models.Invoice{}})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invoices retrieved successfully",
		"count":   len(invoices),
		"data":    invoices,
	})
}

// GetInvoiceByID handles GET /api/invoices/:id.
func (h *RestInvoiceHandler) GetInvoiceByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}

	invoice, err := h.invoiceService.GetInvoiceByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		} else {
			log.Printf("Failed to fetch invoice: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invoice"})
		}
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// UpdateInvoice handles PUT /api/invoices/:id. Items and totals are replaced
// wholesale from the new input.
func (h *RestInvoiceHandler) UpdateInvoice(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}

	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invoice items are required and must be an array"})
		return
	}
	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invoice items are required and must be an array"})
		return
	}

	input := models.InvoiceInput{Items: req.Items, TaxRate: req.TaxRate}
	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), id, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrItemsRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invoice items are required and must be an array"})
		case errors.Is(err, mongo.ErrNoDocuments):
			c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		default:
			log.Printf("Failed to update invoice: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update invoice"})
		}
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// DeleteInvoice handles DELETE /api/invoices/:id.
func (h *RestInvoiceHandler) DeleteInvoice(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}

	deleted, err := h.invoiceService.DeleteInvoice(c.Request.Context(), id)
	if err != nil {
		log.Printf("Failed to delete invoice: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete invoice"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}

	c.Status(http.StatusNoContent)
}
