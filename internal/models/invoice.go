package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LineItem represents a single billable entry on an invoice.
// Total is always derived from Quantity * UnitPrice and never trusted from input.
type LineItem struct {
	Description string  `bson:"description" json:"description"`
	Quantity    float64 `bson:"quantity" json:"quantity"`
	UnitPrice   float64 `bson:"unitPrice" json:"unitPrice"`
	Total       float64 `bson:"total" json:"total"`
}

// SummaryEntry is one row of the totals block (Subtotal/Tax/Total) with a
// display-formatted currency value.
type SummaryEntry struct {
	Label string `bson:"label" json:"label"`
	Value string `bson:"value" json:"value"`
}

// LineItemInput is a caller-supplied line item; the total is computed server-side.
type LineItemInput struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

// InvoiceInput is the caller-supplied payload for calculate/create/update.
// TaxRate is a pointer so an explicit zero rate is distinguishable from absent.
type InvoiceInput struct {
	Items   []LineItemInput `json:"items"`
	TaxRate *float64        `json:"taxRate,omitempty"`
}

// InvoiceTotals is the result of a totals calculation (not persisted).
type InvoiceTotals struct {
	LineItems []LineItem     `json:"lineItems"`
	Summary   []SummaryEntry `json:"summary"`
}

// Invoice is the persisted invoice record. Items and Totals are embedded by
// value; they have no lifecycle of their own.
type Invoice struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ClientID      string             `bson:"clientId,omitempty" json:"clientId,omitempty"`
	InvoiceNumber string             `bson:"invoiceNumber" json:"invoiceNumber"`
	IssueDate     time.Time          `bson:"issueDate" json:"issueDate"`
	DueDate       time.Time          `bson:"dueDate" json:"dueDate"`
	Items         []LineItem         `bson:"items" json:"items"`
	Totals        []SummaryEntry     `bson:"totals" json:"totals"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
