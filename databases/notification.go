package databases

// go generate: mockery --name NotificationDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/umt-lostfound/lostfound-api/models"
)

const notificationName = "notifications"

// NotificationDatabase contains the methods to use with the notification inbox
type NotificationDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Notification, error)
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
	InsertOne(ctx context.Context, notification models.Notification) (primitive.ObjectID, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type notificationDatabase struct {
	db DatabaseHelper
}

// NewNotificationDatabase initializes a new instance of notification database with the provided db connection
func NewNotificationDatabase(db DatabaseHelper) NotificationDatabase {
	return &notificationDatabase{
		db: db,
	}
}

func (n *notificationDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Notification, error) {
	return findAll[models.Notification](ctx, n.db.Collection(notificationName), filter, opts...)
}

func (n *notificationDatabase) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	return n.db.Collection(notificationName).CountDocuments(ctx, filter)
}

func (n *notificationDatabase) InsertOne(ctx context.Context, notification models.Notification) (primitive.ObjectID, error) {
	res, err := n.db.Collection(notificationName).InsertOne(ctx, notification)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedID(res)
}

func (n *notificationDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return n.db.Collection(notificationName).UpdateOne(ctx, filter, update, opts...)
}
