package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carewire/hospital-api/internal/model"
	"github.com/carewire/hospital-api/internal/repository"
)

type invoiceRepository struct {
	coll *mongo.Collection
}

func NewInvoiceRepository(db *DB) repository.InvoiceRepository {
	return &invoiceRepository{coll: db.database.Collection(collInvoices)}
}

func (r *invoiceRepository) Create(ctx context.Context, inv *model.Invoice) error {
	if inv.ID.IsZero() {
		inv.ID = primitive.NewObjectID()
	}
	inv.Touch(time.Now())

	if _, err := r.coll.InsertOne(ctx, inv); err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id primitive.ObjectID) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&inv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status model.InvoiceStatus) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice status: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *invoiceRepository) List(ctx context.Context) ([]*model.Invoice, error) {
	return r.find(ctx, bson.M{})
}

func (r *invoiceRepository) ListByPatient(ctx context.Context, patientID primitive.ObjectID) ([]*model.Invoice, error) {
	return r.find(ctx, bson.M{"patientId": patientID})
}

func (r *invoiceRepository) find(ctx context.Context, filter bson.M) ([]*model.Invoice, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer cursor.Close(ctx)

	var invoices []*model.Invoice
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, fmt.Errorf("failed to decode invoices: %w", err)
	}
	return invoices, nil
}
