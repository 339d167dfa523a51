package databases

// go generate: mockery --name ItemDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/umt-lostfound/lostfound-api/models"
)

const itemName = "items"

// ItemDatabase contains the methods to use with the item database
type ItemDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Item, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Item, error)
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
	InsertOne(ctx context.Context, item models.Item) (primitive.ObjectID, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}) (*models.Item, error)
	CountByCategory(ctx context.Context, filter interface{}) ([]models.CategoryCount, error)
}

type itemDatabase struct {
	db DatabaseHelper
}

// NewItemDatabase initializes a new instance of item database with the provided db connection
func NewItemDatabase(db DatabaseHelper) ItemDatabase {
	return &itemDatabase{
		db: db,
	}
}

func (i *itemDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Item, error) {
	return findOne[models.Item](ctx, i.db.Collection(itemName), filter, opts...)
}

func (i *itemDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Item, error) {
	return findAll[models.Item](ctx, i.db.Collection(itemName), filter, opts...)
}

func (i *itemDatabase) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	return i.db.Collection(itemName).CountDocuments(ctx, filter)
}

func (i *itemDatabase) InsertOne(ctx context.Context, item models.Item) (primitive.ObjectID, error) {
	res, err := i.db.Collection(itemName).InsertOne(ctx, item)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedID(res)
}

func (i *itemDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return i.db.Collection(itemName).UpdateOne(ctx, filter, update, opts...)
}

func (i *itemDatabase) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return i.db.Collection(itemName).UpdateMany(ctx, filter, update, opts...)
}

// FindOneAndUpdate applies update to the first item matching filter and returns
// the updated document, or mongo.ErrNoDocuments when nothing matched
func (i *itemDatabase) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}) (*models.Item, error) {
	return findOneAndUpdate[models.Item](ctx, i.db.Collection(itemName), filter, update)
}

// CountByCategory groups the items matching filter by category
func (i *itemDatabase) CountByCategory(ctx context.Context, filter interface{}) ([]models.CategoryCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cursor, err := i.db.Collection(itemName).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	out := []models.CategoryCount{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
