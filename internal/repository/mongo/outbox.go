package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carewire/hospital-api/internal/model"
	"github.com/carewire/hospital-api/internal/repository"
)

type outboxRepository struct {
	coll *mongo.Collection
}

func NewOutboxRepository(db *DB) repository.OutboxRepository {
	return &outboxRepository{coll: db.database.Collection(collOutbox)}
}

func (r *outboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	event.Status = model.OutboxStatusPending
	event.CreatedAt = time.Now()

	if _, err := r.coll.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

func (r *outboxRepository) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	cursor, err := r.coll.Find(ctx,
		bson.M{"status": model.OutboxStatusPending},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}).SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*model.OutboxEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode pending events: %w", err)
	}
	return events, nil
}

func (r *outboxRepository) MarkProcessed(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now()
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": model.OutboxStatusProcessed, "processedAt": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id primitive.ObjectID, errMsg string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set": bson.M{"status": model.OutboxStatusFailed, "lastError": errMsg},
			"$inc": bson.M{"retries": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to mark event failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
