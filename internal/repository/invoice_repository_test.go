package repository

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yadhukrishnapk/backend-invoice/internal/models"
)

var testMongoURI = ""

func init() {
	testMongoURI = os.Getenv("MONGO_URI_TEST")
	if testMongoURI == "" {
		testMongoURI = "mongodb://localhost:27017"
	}
}

func setupTestDB(t *testing.T, dbName string) *mongo.Database {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(testMongoURI))
	if err != nil {
		t.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	db := client.Database(dbName)
	_ = db.Collection("invoices").Drop(context.Background())
	if err := EnsureIndexes(context.Background(), db); err != nil {
		t.Fatalf("Failed to ensure indexes: %v", err)
	}
	return db
}

func testInvoice(number string) *models.Invoice {
	now := time.Now().UTC()
	return &models.Invoice{
		InvoiceNumber: number,
		IssueDate:     now,
		DueDate:       now.Add(30 * 24 * time.Hour),
		Items:         []models.LineItem{{Description: "Widget", Quantity: 2, UnitPrice: 9.99, Total: 19.98}},
		Totals: []models.SummaryEntry{
			{Label: "Subtotal", Value: "$19.98"},
			{Label: "Tax (10%)", Value: "$2.00"},
			{Label: "Total", Value: "$21.98"},
		},
	}
}

func TestMongoInvoiceRepository_CreateAndFindByID(t *testing.T) {
	db := setupTestDB(t, "testdb_invoice_repository")
	repo := NewMongoInvoiceRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, testInvoice("INV-TEST-001"))
	assert.NoError(t, err)
	assert.False(t, created.ID.IsZero())
	assert.False(t, created.CreatedAt.IsZero())
	assert.False(t, created.UpdatedAt.IsZero())

	found, err := repo.FindByID(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "INV-TEST-001", found.InvoiceNumber)
	assert.Equal(t, created.Items, found.Items)
	assert.Equal(t, created.Totals, found.Totals)
}

func TestMongoInvoiceRepository_FindByID_NotFound(t *testing.T) {
	db := setupTestDB(t, "testdb_invoice_repository")
	repo := NewMongoInvoiceRepository(db)

	_, err := repo.FindByID(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}

func TestMongoInvoiceRepository_DuplicateInvoiceNumber(t *testing.T) {
	db := setupTestDB(t, "testdb_invoice_repository")
	repo := NewMongoInvoiceRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, testInvoice("INV-DUP-001"))
	assert.NoError(t, err)

	_, err = repo.Create(ctx, testInvoice("INV-DUP-001"))
	assert.ErrorIs(t, err, ErrDuplicateInvoiceNumber)
}

func TestMongoInvoiceRepository_ConcurrentCreateSameNumber(t *testing.T) {
	db := setupTestDB(t, "testdb_invoice_repository")
	repo := NewMongoInvoiceRepository(db)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Create(context.Background(), testInvoice("INV-RACE-001"))
		}(i)
	}
	wg.Wait()

	// Exactly one insert wins; the unique index rejects the other.
	successes, duplicates := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, ErrDuplicateInvoiceNumber):
			duplicates++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, duplicates)
}

func TestMongoInvoiceRepository_FindAll(t *testing.T) {
	db := setupTestDB(t, "testdb_invoice_repository")
	repo := NewMongoInvoiceRepository(db)
	ctx := context.Background()

	invoices, err := repo.FindAll(ctx)
	assert.NoError(t, err)
	assert.Empty(t, invoices)

	_, err = repo.Create(ctx, testInvoice("INV-ALL-001"))
	assert.NoError(t, err)
	_, err = repo.Create(ctx, testInvoice("INV-ALL-002"))
	assert.NoError(t, err)

	invoices, err = repo.FindAll(ctx)
	assert.NoError(t, err)
	assert.Len(t, invoices, 2)
}

func TestMongoInvoiceRepository_UpdateFields(t *testing.T) {
	db := setupTestDB(t, "testdb_invoice_repository")
	repo := NewMongoInvoiceRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, testInvoice("INV-UPD-001"))
	assert.NoError(t, err)

	newItems := []models.LineItem{{Description: "Gadget", Quantity: 3, UnitPrice: 5, Total: 15}}
	newTotals := []models.SummaryEntry{
		{Label: "Subtotal", Value: "$15.00"},
		{Label: "Tax (10%)", Value: "$1.50"},
		{Label: "Total", Value: "$16.50"},
	}
	updated, err := repo.UpdateFields(ctx, created.ID, bson.M{"items": newItems, "totals": newTotals})
	assert.NoError(t, err)
	assert.Equal(t, newItems, updated.Items)
	assert.Equal(t, newTotals, updated.Totals)
	// Invoice number and dates stay untouched
	assert.Equal(t, "INV-UPD-001", updated.InvoiceNumber)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
}

func TestMongoInvoiceRepository_UpdateFields_NotFound(t *testing.T) {
	db := setupTestDB(t, "testdb_invoice_repository")
	repo := NewMongoInvoiceRepository(db)

	_, err := repo.UpdateFields(context.Background(), primitive.NewObjectID(), bson.M{"items": []models.LineItem{}})
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}

func TestMongoInvoiceRepository_DeleteByID(t *testing.T) {
	db := setupTestDB(t, "testdb_invoice_repository")
	repo := NewMongoInvoiceRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, testInvoice("INV-DEL-001"))
	assert.NoError(t, err)

	count, err := repo.DeleteByID(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Deleting again matches nothing
	count, err = repo.DeleteByID(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
