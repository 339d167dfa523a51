package databases

// go generate: mockery --name DisputeDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/umt-lostfound/lostfound-api/models"
)

const disputeName = "disputes"

// DisputeDatabase contains the methods to use with the dispute database
type DisputeDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Dispute, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Dispute, error)
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
	InsertOne(ctx context.Context, dispute models.Dispute) (primitive.ObjectID, error)
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}) (*models.Dispute, error)
}

type disputeDatabase struct {
	db DatabaseHelper
}

// NewDisputeDatabase initializes a new instance of dispute database with the provided db connection
func NewDisputeDatabase(db DatabaseHelper) DisputeDatabase {
	return &disputeDatabase{
		db: db,
	}
}

func (d *disputeDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Dispute, error) {
	return findOne[models.Dispute](ctx, d.db.Collection(disputeName), filter, opts...)
}

func (d *disputeDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Dispute, error) {
	return findAll[models.Dispute](ctx, d.db.Collection(disputeName), filter, opts...)
}

func (d *disputeDatabase) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	return d.db.Collection(disputeName).CountDocuments(ctx, filter)
}

func (d *disputeDatabase) InsertOne(ctx context.Context, dispute models.Dispute) (primitive.ObjectID, error) {
	res, err := d.db.Collection(disputeName).InsertOne(ctx, dispute)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedID(res)
}

func (d *disputeDatabase) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}) (*models.Dispute, error) {
	return findOneAndUpdate[models.Dispute](ctx, d.db.Collection(disputeName), filter, update)
}
