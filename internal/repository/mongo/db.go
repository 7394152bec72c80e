package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/carewire/hospital-api/internal/config"
)

const (
	collUsers        = "users"
	collAppointments = "appointments"
	collInvoices     = "invoices"
	collReports      = "reports"
	collOutbox       = "outbox"
)

// DB wraps the mongo database handle used by all repositories.
type DB struct {
	client   *mongo.Client
	database *mongo.Database
}

func NewDB(cfg config.MongoConfig) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := &DB{
		client:   client,
		database: client.Database(cfg.Database),
	}

	if err := db.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	return db, nil
}

// ensureIndexes creates the indexes the invariants depend on, most
// importantly email uniqueness.
func (db *DB) ensureIndexes(ctx context.Context) error {
	_, err := db.database.Collection(collUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	for coll, key := range map[string]string{
		collAppointments: "patientId",
		collInvoices:     "patientId",
		collReports:      "patientId",
	} {
		_, err := db.database.Collection(coll).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: key, Value: 1}},
		})
		if err != nil {
			return err
		}
	}

	_, err = db.database.Collection(collOutbox).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	return err
}

// Ping reports datastore readiness.
func (db *DB) Ping(ctx context.Context) error {
	return db.client.Ping(ctx, readpref.Primary())
}

func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}
