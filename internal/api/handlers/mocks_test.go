package handlers_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yadhukrishnapk/backend-invoice/internal/models"
)

// --- Mocks ---

// MockInvoiceService
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) CalculateTotals(input models.InvoiceInput) (*models.InvoiceTotals, error) {
	args := m.Called(input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InvoiceTotals), args.Error(1)
}

func (m *MockInvoiceService) CreateInvoice(ctx context.Context, input models.InvoiceInput, invoiceNumber string, dueDate *time.Time, clientID string) (*models.Invoice, error) {
	args := m.Called(ctx, input, invoiceNumber, dueDate, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) GetAllInvoices(ctx context.Context) ([]models.Invoice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) GetInvoiceByID(ctx context.Context, id primitive.ObjectID) (*models.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) UpdateInvoice(ctx context.Context, id primitive.ObjectID, input models.InvoiceInput) (*models.Invoice, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) DeleteInvoice(ctx context.Context, id primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
