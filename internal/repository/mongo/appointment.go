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

type appointmentRepository struct {
	coll *mongo.Collection
}

func NewAppointmentRepository(db *DB) repository.AppointmentRepository {
	return &appointmentRepository{coll: db.database.Collection(collAppointments)}
}

func (r *appointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	if apt.ID.IsZero() {
		apt.ID = primitive.NewObjectID()
	}
	apt.Touch(time.Now())

	if _, err := r.coll.InsertOne(ctx, apt); err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id primitive.ObjectID) (*model.Appointment, error) {
	var apt model.Appointment
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&apt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &apt, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status model.AppointmentStatus) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	filter := bson.M{}
	if filters != nil {
		if filters.Status != "" {
			filter["status"] = filters.Status
		}
		if !filters.PatientID.IsZero() {
			filter["patientId"] = filters.PatientID
		}
		if filters.StartDate != "" || filters.EndDate != "" {
			dateRange := bson.M{}
			if filters.StartDate != "" {
				dateRange["$gte"] = filters.StartDate
			}
			if filters.EndDate != "" {
				dateRange["$lte"] = filters.EndDate
			}
			filter["date"] = dateRange
		}
	}

	cursor, err := r.coll.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appointments []*model.Appointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID primitive.ObjectID) ([]*model.Appointment, error) {
	return r.List(ctx, &model.AppointmentFilters{PatientID: patientID})
}
