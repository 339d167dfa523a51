package databases

// go generate: mockery --name ClaimDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/umt-lostfound/lostfound-api/models"
)

const claimName = "claim_requests"

// ClaimDatabase contains the methods to use with the claim request database
type ClaimDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.ClaimRequest, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ClaimRequest, error)
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
	InsertOne(ctx context.Context, claim models.ClaimRequest) (primitive.ObjectID, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}) (*models.ClaimRequest, error)
}

type claimDatabase struct {
	db DatabaseHelper
}

// NewClaimDatabase initializes a new instance of claim database with the provided db connection
func NewClaimDatabase(db DatabaseHelper) ClaimDatabase {
	return &claimDatabase{
		db: db,
	}
}

func (c *claimDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.ClaimRequest, error) {
	return findOne[models.ClaimRequest](ctx, c.db.Collection(claimName), filter, opts...)
}

func (c *claimDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ClaimRequest, error) {
	return findAll[models.ClaimRequest](ctx, c.db.Collection(claimName), filter, opts...)
}

func (c *claimDatabase) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	return c.db.Collection(claimName).CountDocuments(ctx, filter)
}

func (c *claimDatabase) InsertOne(ctx context.Context, claim models.ClaimRequest) (primitive.ObjectID, error) {
	res, err := c.db.Collection(claimName).InsertOne(ctx, claim)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedID(res)
}

func (c *claimDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.db.Collection(claimName).UpdateOne(ctx, filter, update, opts...)
}

// FindOneAndUpdate applies update to the first claim matching filter and
// returns the updated document, or mongo.ErrNoDocuments when nothing matched
func (c *claimDatabase) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}) (*models.ClaimRequest, error) {
	return findOneAndUpdate[models.ClaimRequest](ctx, c.db.Collection(claimName), filter, update)
}
