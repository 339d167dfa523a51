package databases

// go generate: mockery --name AdminActionDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/umt-lostfound/lostfound-api/models"
)

const adminActionName = "admin_actions"

// AdminActionDatabase is the append-only admin action ledger
type AdminActionDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.AdminAction, error)
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
	InsertOne(ctx context.Context, action models.AdminAction) (primitive.ObjectID, error)
}

type adminActionDatabase struct {
	db DatabaseHelper
}

// NewAdminActionDatabase initializes a new instance of the admin action ledger
func NewAdminActionDatabase(db DatabaseHelper) AdminActionDatabase {
	return &adminActionDatabase{
		db: db,
	}
}

func (a *adminActionDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.AdminAction, error) {
	return findAll[models.AdminAction](ctx, a.db.Collection(adminActionName), filter, opts...)
}

func (a *adminActionDatabase) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	return a.db.Collection(adminActionName).CountDocuments(ctx, filter)
}

func (a *adminActionDatabase) InsertOne(ctx context.Context, action models.AdminAction) (primitive.ObjectID, error) {
	res, err := a.db.Collection(adminActionName).InsertOne(ctx, action)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedID(res)
}
