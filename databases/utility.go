package databases

import (
	"context"
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoPaginate struct {
	limit int64
	page  int64
}

func newMongoPaginate(limit, page int) *mongoPaginate {
	if limit < 1 {
		limit = 1
	}
	if page < 1 {
		page = 1
	}
	if last := math.MaxInt / limit; page > last {
		page = last
	}
	return &mongoPaginate{
		limit: int64(limit),
		page:  int64(page),
	}
}

func (mp *mongoPaginate) getPaginatedOpts() *options.FindOptions {
	l := mp.limit
	skip := mp.page*mp.limit - mp.limit
	fOpt := options.FindOptions{Limit: &l, Skip: &skip}

	return &fOpt
}

// Paginate returns find options for a 1-based page, newest documents first
func Paginate(page, perPage int) *options.FindOptions {
	return newMongoPaginate(perPage, page).getPaginatedOpts().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
}

func findAll[T any](ctx context.Context, coll CollectionHelper, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func findOne[T any](ctx context.Context, coll CollectionHelper, filter interface{}, opts ...*options.FindOneOptions) (*T, error) {
	out := new(T)
	if err := coll.FindOne(ctx, filter, opts...).Decode(out); err != nil {
		return nil, err
	}
	return out, nil
}

func findOneAndUpdate[T any](ctx context.Context, coll CollectionHelper, filter, update interface{}) (*T, error) {
	out := new(T)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(out); err != nil {
		return nil, err
	}
	return out, nil
}

func insertedID(res InsertOneResultHelper) (primitive.ObjectID, error) {
	id, ok := res.Decode().(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.Decode())
	}
	return id, nil
}
