package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yadhukrishnapk/backend-invoice/internal/config"
	"github.com/yadhukrishnapk/backend-invoice/internal/db"
	"github.com/yadhukrishnapk/backend-invoice/internal/models"
	"github.com/yadhukrishnapk/backend-invoice/internal/repository"
)

// ErrItemsRequired is returned when the input item list is absent or empty.
var ErrItemsRequired = errors.New("invoice items are required")

// defaultTaxRate applies only when the caller omits taxRate entirely.
// An explicit zero rate is honored as-is.
const defaultTaxRate = 0.10

// IInvoiceService defines the invoice workflow operations.
type IInvoiceService interface {
	CalculateTotals(input models.InvoiceInput) (*models.InvoiceTotals, error)
	CreateInvoice(ctx context.Context, input models.InvoiceInput, invoiceNumber string, dueDate *time.Time, clientID string) (*models.Invoice, error)
	GetAllInvoices(ctx context.Context) ([]models.Invoice, error)
	GetInvoiceByID(ctx context.Context, id primitive.ObjectID) (*models.Invoice, error)
	UpdateInvoice(ctx context.Context, id primitive.ObjectID, input models.InvoiceInput) (*models.Invoice, error)
	DeleteInvoice(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// invoiceService implements IInvoiceService.
type invoiceService struct {
	repo repository.IInvoiceRepository
	cfg  *config.Config
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(repo repository.IInvoiceRepository, cfg *config.Config) IInvoiceService {
	return &invoiceService{repo: repo, cfg: cfg}
}

// CalculateTotals computes per-item totals and the summary block. Pure: no
// I/O, no shared state. Intermediate amounts keep full float64 precision;
// rounding happens only in the display formatting.
func (s *invoiceService) CalculateTotals(input models.InvoiceInput) (*models.InvoiceTotals, error) {
	if len(input.Items) == 0 {
		return nil, ErrItemsRequired
	}

	taxRate := defaultTaxRate
	if input.TaxRate != nil {
		taxRate = *input.TaxRate
	}

	lineItems := make([]models.LineItem, 0, len(input.Items))
	subtotal := 0.0
	for _, item := range input.Items {
		total := item.Quantity * item.UnitPrice
		lineItems = append(lineItems, models.LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       total,
		})
		subtotal += total
	}

	tax := subtotal * taxRate
	total := subtotal + tax

	summary := []models.SummaryEntry{
		{Label: "Subtotal", Value: formatCurrency(subtotal)},
		// Halves round up in the label (0.125 -> 13%), matching the wire format
		{Label: fmt.Sprintf("Tax (%d%%)", int(math.Round(taxRate*100))), Value: formatCurrency(tax)},
		{Label: "Total", Value: formatCurrency(total)},
	}

	return &models.InvoiceTotals{LineItems: lineItems, Summary: summary}, nil
}

// CreateInvoice computes totals and persists a new invoice. A missing
// invoice number is generated; generation collisions are retried with a
// fresh number. A missing due date defaults to now + the configured period.
func (s *invoiceService) CreateInvoice(ctx context.Context, input models.InvoiceInput, invoiceNumber string, dueDate *time.Time, clientID string) (*models.Invoice, error) {
	totals, err := s.CalculateTotals(input)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	due := now.Add(time.Duration(s.cfg.InvoiceDueInDays*24) * time.Hour)
	if dueDate != nil {
		due = dueDate.UTC()
	}

	var created *models.Invoice
	op := func() error {
		number := invoiceNumber
		if number == "" {
			number = generateInvoiceNumber()
		}
		doc, err := s.repo.Create(ctx, &models.Invoice{
			ClientID:      clientID,
			InvoiceNumber: number,
			IssueDate:     now,
			DueDate:       due,
			Items:         totals.LineItems,
			Totals:        totals.Summary,
		})
		if err != nil {
			return err
		}
		created = doc
		return nil
	}

	if invoiceNumber == "" {
		// Each retry regenerates the number, so collisions on generated
		// numbers resolve themselves. Caller-supplied numbers never retry.
		err = db.WithRetries(op, db.DefaultMaxRetries, func(err error) bool {
			return errors.Is(err, repository.ErrDuplicateInvoiceNumber)
		})
	} else {
		err = op()
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetAllInvoices returns all invoices; an empty slice is a valid result.
func (s *invoiceService) GetAllInvoices(ctx context.Context) ([]models.Invoice, error) {
	return s.repo.FindAll(ctx)
}

// GetInvoiceByID returns a single invoice, or mongo.ErrNoDocuments.
func (s *invoiceService) GetInvoiceByID(ctx context.Context, id primitive.ObjectID) (*models.Invoice, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateInvoice recomputes totals from the new input and replaces the stored
// items/totals wholesale. Invoice number and dates are left untouched.
func (s *invoiceService) UpdateInvoice(ctx context.Context, id primitive.ObjectID, input models.InvoiceInput) (*models.Invoice, error) {
	totals, err := s.CalculateTotals(input)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateFields(ctx, id, bson.M{
		"items":  totals.LineItems,
		"totals": totals.Summary,
	})
}

// DeleteInvoice removes an invoice. Returns false when no record matched;
// not-found is not an error at this layer.
func (s *invoiceService) DeleteInvoice(ctx context.Context, id primitive.ObjectID) (bool, error) {
	count, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return false, err
	}
	return count == 1, nil
}

// generateInvoiceNumber produces a readable, collision-resistant invoice
// number: timestamp for ordering, UUID fragment for uniqueness.
func generateInvoiceNumber() string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("INV-%d-%s", time.Now().UnixMilli(), fragment)
}

// formatCurrency renders an amount as a currency string: leading "$", two
// decimal places, thousands separators (e.g. 1234.5 -> "$1,234.50").
func formatCurrency(amount float64) string {
	s := strconv.FormatFloat(amount, 'f', 2, 64)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	intPart := s[:len(s)-3]
	fracPart := s[len(s)-3:] // includes the dot

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	return "$" + sign + b.String() + fracPart
}
