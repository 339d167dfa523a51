package lifecycle

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/umt-lostfound/lostfound-api/models"
)

// ArchiveStale archives active items not updated since cutoff and returns how
// many were archived. The run is recorded in the admin action ledger under the
// nil admin id.
func (c *Controller) ArchiveStale(ctx context.Context, cutoff time.Time) (int64, error) {
	now := c.now()
	res, err := c.Items.UpdateMany(ctx,
		bson.M{"status": models.ItemStatusActive, "updated_at": bson.M{"$lt": cutoff}},
		bson.M{"$set": bson.M{
			"status":            models.ItemStatusArchived,
			"moderation_status": "archived",
			"moderation_notes":  "archived after inactivity",
			"moderated_at":      now,
			"updated_at":        now,
		}})
	if err != nil {
		return 0, internalError("failed to archive stale items", err)
	}
	if res.ModifiedCount > 0 {
		c.record(ctx, primitive.NilObjectID, "auto_archive", models.ContentTypeItems, "",
			fmt.Sprintf("archived %d items not updated since %s", res.ModifiedCount, cutoff.Format(time.RFC3339)))
	}
	return res.ModifiedCount, nil
}
