package lifecycle

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/umt-lostfound/lostfound-api/databases"
	"github.com/umt-lostfound/lostfound-api/models"
)

// ListNotifications returns a page of the caller's inbox
func (c *Controller) ListNotifications(ctx context.Context, actor *models.Profile, unreadOnly bool, page, perPage int) (*models.NotificationListResponse, error) {
	if actor == nil {
		return nil, newError(KindAuthentication, "authentication required")
	}
	filter := bson.M{"user_id": actor.ID}
	if unreadOnly {
		filter["read"] = false
	}
	page, perPage = Paging(page, perPage, DefaultAdminPerPage, MaxAdminPerPage)
	notifications, err := c.Notifications.Find(ctx, filter, databases.Paginate(page, perPage))
	if err != nil {
		return nil, internalError("failed to list notifications", err)
	}
	unread, err := c.Notifications.CountDocuments(ctx, bson.M{"user_id": actor.ID, "read": false})
	if err != nil {
		return nil, internalError("failed to count notifications", err)
	}
	return &models.NotificationListResponse{
		Notifications: notifications,
		Unread:        unread,
		Page:          page,
		PerPage:       perPage,
	}, nil
}

// MarkNotificationRead marks one of the caller's notifications as read
func (c *Controller) MarkNotificationRead(ctx context.Context, actor *models.Profile, id primitive.ObjectID) error {
	if actor == nil {
		return newError(KindAuthentication, "authentication required")
	}
	res, err := c.Notifications.UpdateOne(ctx, bson.M{"_id": id, "user_id": actor.ID},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return internalError("failed to update notification", err)
	}
	if res.MatchedCount == 0 {
		return newError(KindNotFound, "notification not found")
	}
	return nil
}
