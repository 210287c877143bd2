package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes of every collection. The unique email
// index is what enforces one account per address, so a failure here keeps
// the store from becoming ready.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		userCollectionName: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				// coach directory lookups
				Keys: bson.D{{Key: "type", Value: 1}, {Key: "province", Value: 1}},
			},
		},
		trainingCollectionName: {
			{Keys: bson.D{{Key: "coach", Value: 1}, {Key: "user", Value: 1}}},
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "date", Value: 1}}},
			// multikey, used by result submission to find the owning training
			{Keys: bson.D{{Key: "trainingBlocks", Value: 1}}},
		},
		trainingBlockCollectionName: {
			{Keys: bson.D{{Key: "coach", Value: 1}}},
		},
		planCollectionName: {
			{Keys: bson.D{{Key: "coach", Value: 1}}},
		},
		messageCollectionName: {
			{Keys: bson.D{{Key: "to", Value: 1}, {Key: "date", Value: 1}}},
			{Keys: bson.D{{Key: "from", Value: 1}, {Key: "date", Value: 1}}},
		},
	}

	var errs []error
	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			errs = append(errs, fmt.Errorf("indexes for %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
