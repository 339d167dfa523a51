package lifecycle

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/umt-lostfound/lostfound-api/databases"
	"github.com/umt-lostfound/lostfound-api/models"
)

const (
	dashboardRecentItems = 5
	dashboardClaims      = 10
)

// Dashboard returns the caller's counters, latest items and the claims filed
// against their items
func (c *Controller) Dashboard(ctx context.Context, actor *models.Profile) (*models.DashboardData, error) {
	if actor == nil {
		return nil, newError(KindAuthentication, "authentication required")
	}
	mine := bson.M{"user_id": actor.ID}

	total, err := c.Items.CountDocuments(ctx, mine)
	if err != nil {
		return nil, internalError("failed to count items", err)
	}
	recovered, err := c.Items.CountDocuments(ctx, bson.M{"user_id": actor.ID, "status": models.ItemStatusResolved})
	if err != nil {
		return nil, internalError("failed to count items", err)
	}
	found, err := c.Items.CountDocuments(ctx, bson.M{"user_id": actor.ID, "type": models.ItemTypeFound})
	if err != nil {
		return nil, internalError("failed to count items", err)
	}

	recent, err := c.Items.Find(ctx, mine, databases.Paginate(1, dashboardRecentItems))
	if err != nil {
		return nil, internalError("failed to list items", err)
	}
	for i := range recent {
		recent[i].OwnerName = actor.FullName
		recent[i].OwnerEmail = actor.Email
	}

	claims, err := c.Claims.Find(ctx, bson.M{"item_owner_id": actor.ID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(dashboardClaims))
	if err != nil {
		return nil, internalError("failed to list claims", err)
	}

	return &models.DashboardData{
		Stats: models.DashboardStats{
			TotalItemsPosted: int(total),
			ItemsRecovered:   int(recovered),
			HelpingOthers:    int(found),
			SuccessRate:      percent(recovered, total),
		},
		RecentItems:   recent,
		ClaimRequests: claims,
	}, nil
}
