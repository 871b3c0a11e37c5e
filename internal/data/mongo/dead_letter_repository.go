package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fxstream-enrichment-pipeline/internal/domain/deadletter"
)

const (
	// DeadLetterCollectionName is the name of the dead-letter collection in MongoDB
	DeadLetterCollectionName = "dead_letters"
)

// DeadLetterRepository implements the deadletter.Repository interface for MongoDB
type DeadLetterRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewDeadLetterRepository creates a new MongoDB dead-letter repository
func NewDeadLetterRepository(logger *slog.Logger, db *mongo.Database) deadletter.Repository {
	return &DeadLetterRepository{
		db:     db,
		logger: logger,
	}
}

// Insert archives an unprocessable event. The archive is best-effort from the
// pipeline's point of view: the DLQ topic publish is the primary record.
func (r *DeadLetterRepository) Insert(ctx context.Context, record *deadletter.Record) error {
	collection := r.db.Collection(DeadLetterCollectionName)

	_, err := collection.InsertOne(ctx, record)
	if err != nil {
		r.logger.Error("Failed to archive dead-lettered event",
			"event_key", record.EventKey,
			"reason", string(record.Reason),
			"error", err)
		return fmt.Errorf("failed to archive dead-lettered event: %w", err)
	}

	return nil
}

// List retrieves paginated dead-letter records, newest first.
func (r *DeadLetterRepository) List(ctx context.Context, limit, offset int) ([]*deadletter.Record, error) {
	collection := r.db.Collection(DeadLetterCollectionName)

	opts := options.Find().
		SetSort(bson.M{"dead_lettered_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		r.logger.Error("Failed to list dead-letter records", "error", err)
		return nil, fmt.Errorf("failed to list dead-letter records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*deadletter.Record
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode dead-letter records", "error", err)
		return nil, fmt.Errorf("failed to decode dead-letter records: %w", err)
	}

	return records, nil
}

// Count returns the total number of archived dead-letter records
func (r *DeadLetterRepository) Count(ctx context.Context) (int64, error) {
	collection := r.db.Collection(DeadLetterCollectionName)

	count, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		r.logger.Error("Failed to count dead-letter records", "error", err)
		return 0, fmt.Errorf("failed to count dead-letter records: %w", err)
	}

	return count, nil
}
