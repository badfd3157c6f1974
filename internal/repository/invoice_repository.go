package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yadhukrishnapk/backend-invoice/internal/db"
	"github.com/yadhukrishnapk/backend-invoice/internal/models"
)

// ErrDuplicateInvoiceNumber is returned by Create when the unique index on
// invoiceNumber rejects the insert.
var ErrDuplicateInvoiceNumber = errors.New("invoice number already exists")

const invoicesCollection = "invoices"

// IInvoiceRepository defines the persistence boundary for invoices.
// Not-found is signalled with mongo.ErrNoDocuments, not a custom error.
type IInvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error)
	FindAll(ctx context.Context) ([]models.Invoice, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Invoice, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Invoice, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) (int64, error)
}

// mongoInvoiceRepository implements IInvoiceRepository against MongoDB.
type mongoInvoiceRepository struct {
	db *mongo.Database
}

// NewMongoInvoiceRepository creates a new Mongo-backed invoice repository.
func NewMongoInvoiceRepository(database *mongo.Database) IInvoiceRepository {
	return &mongoInvoiceRepository{db: database}
}

// EnsureIndexes creates the unique index on invoiceNumber. Must run before
// the first create; uniqueness enforcement is delegated entirely to Mongo.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	_, err := database.Collection(invoicesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "invoiceNumber", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create invoiceNumber index: %w", err)
	}
	return nil
}

// Create inserts a new invoice and stamps createdAt/updatedAt.
func (r *mongoInvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	now := time.Now().UTC()
	invoice.CreatedAt = now
	invoice.UpdatedAt = now

	res, err := r.db.Collection(invoicesCollection).InsertOne(ctx, invoice)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateInvoiceNumber, invoice.InvoiceNumber)
		}
		return nil, fmt.Errorf("failed to insert invoice: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		invoice.ID = oid
	}
	return invoice, nil
}

// FindAll returns all invoices. An empty result is not an error.
func (r *mongoInvoiceRepository) FindAll(ctx context.Context) ([]models.Invoice, error) {
	cursor, err := r.db.Collection(invoicesCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer cursor.Close(ctx)

	invoices := []models.Invoice{}
	if err = cursor.All(ctx, &invoices); err != nil {
		return nil, fmt.Errorf("failed to decode invoices: %w", err)
	}
	return invoices, nil
}

// FindByID returns the invoice with the given id, or mongo.ErrNoDocuments.
func (r *mongoInvoiceRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.Collection(invoicesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&invoice)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("failed to find invoice %s: %w", id.Hex(), err)
	}
	return &invoice, nil
}

// UpdateFields sets the given fields on the invoice wholesale, bumps
// updatedAt and returns the updated document, or mongo.ErrNoDocuments.
func (r *mongoInvoiceRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Invoice, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Invoice
	err := r.db.Collection(invoicesCollection).FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("failed to update invoice %s: %w", id.Hex(), err)
	}
	return &updated, nil
}

// DeleteByID removes the invoice with the given id and returns the number of
// records removed (0 or 1).
func (r *mongoInvoiceRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := r.db.Collection(invoicesCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, fmt.Errorf("failed to delete invoice %s: %w", id.Hex(), err)
	}
	return res.DeletedCount, nil
}
