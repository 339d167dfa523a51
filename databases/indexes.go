package databases

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the service relies on. The unique ones back
// the email and pending-claim invariants, so startup fails if they cannot be built.
func EnsureIndexes(ctx context.Context, db DatabaseHelper) error {
	indexes := map[string][]mongo.IndexModel{
		profileName: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		itemName: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "flagged", Value: 1}}},
		},
		claimName: {
			{
				Keys: bson.D{{Key: "item_id", Value: 1}, {Key: "claimer_id", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetName("one_pending_claim_per_claimer").
					SetPartialFilterExpression(bson.M{"status": "pending"}),
			},
			{Keys: bson.D{{Key: "item_owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		adminActionName: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		disputeName: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "priority", Value: 1}}},
		},
		notificationName: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
	for _, name := range []string{profileName, itemName, claimName, adminActionName, disputeName, notificationName} {
		if _, err := db.Collection(name).CreateIndexes(ctx, indexes[name]); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}
