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

type reportRepository struct {
	coll *mongo.Collection
}

func NewReportRepository(db *DB) repository.ReportRepository {
	return &reportRepository{coll: db.database.Collection(collReports)}
}

func (r *reportRepository) Create(ctx context.Context, report *model.Report) error {
	if report.ID.IsZero() {
		report.ID = primitive.NewObjectID()
	}
	report.Touch(time.Now())

	if _, err := r.coll.InsertOne(ctx, report); err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

func (r *reportRepository) Get(ctx context.Context, id primitive.ObjectID) (*model.Report, error) {
	var report model.Report
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &report, nil
}

func (r *reportRepository) Update(ctx context.Context, report *model.Report) error {
	report.UpdatedAt = time.Now()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": report.ID},
		bson.M{"$set": bson.M{
			"diagnosis":    report.Diagnosis,
			"prescription": report.Prescription,
			"notes":        report.Notes,
			"updatedAt":    report.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *reportRepository) List(ctx context.Context) ([]*model.Report, error) {
	return r.find(ctx, bson.M{})
}

func (r *reportRepository) ListByPatient(ctx context.Context, patientID primitive.ObjectID) ([]*model.Report, error) {
	return r.find(ctx, bson.M{"patientId": patientID})
}

func (r *reportRepository) find(ctx context.Context, filter bson.M) ([]*model.Report, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer cursor.Close(ctx)

	var reports []*model.Report
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("failed to decode reports: %w", err)
	}
	return reports, nil
}
