package migrations

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pipelinq/internal/constants"
)

// EnsureActivityIndexes creates the indexes the activity feed queries rely
// on. The collection itself is created by the first insert.
func EnsureActivityIndexes(ctx context.Context, db *mongo.Database, collection string) error {
	if collection == "" {
		collection = constants.DefaultActivityCollection
	}

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_activities_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "object_type", Value: 1}, {Key: "object_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_activities_object_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "affected_user_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_activities_affected_user_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "type", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_activities_type_timestamp"),
		},
	}

	_, err := db.Collection(collection).Indexes().CreateMany(ctx, indexes)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("failed to create activity indexes: %w", err)
	}
	return nil
}
