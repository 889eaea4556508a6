package dispatch

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pipelinq/internal/constants"
)

// ActivityFilter selects activities for the feed. Empty fields match all.
type ActivityFilter struct {
	ObjectType     string
	ObjectID       string
	Type           string
	AffectedUserID string
	Limit          int
}

type ActivityRepository interface {
	ActivitySink
	List(ctx context.Context, filter ActivityFilter) ([]OutboundActivity, error)
}

type mongoActivityRepository struct {
	collection *mongo.Collection
}

func NewActivityRepository(db *mongo.Database, collection string) ActivityRepository {
	if collection == "" {
		collection = constants.DefaultActivityCollection
	}
	return &mongoActivityRepository{
		collection: db.Collection(collection),
	}
}

func (r *mongoActivityRepository) Publish(ctx context.Context, activity OutboundActivity) error {
	if _, err := r.collection.InsertOne(ctx, activity); err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// List returns matching activities, newest first.
func (r *mongoActivityRepository) List(ctx context.Context, filter ActivityFilter) ([]OutboundActivity, error) {
	query := bson.M{}
	if filter.ObjectType != "" {
		query["object_type"] = filter.ObjectType
	}
	if filter.ObjectID != "" {
		query["object_id"] = filter.ObjectID
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.AffectedUserID != "" {
		query["affected_user_id"] = filter.AffectedUserID
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer cursor.Close(ctx)

	activities := []OutboundActivity{}
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %w", err)
	}
	return activities, nil
}
