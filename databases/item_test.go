package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/umt-lostfound/lostfound-api/databases"
	"github.com/umt-lostfound/lostfound-api/databases/mocks"
	"github.com/umt-lostfound/lostfound-api/models"
)

func TestItemDatabase_FindOneAndUpdate(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	srHelper := &mocks.SingleResultHelper{}
	srMissing := &mocks.SingleResultHelper{}

	srHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*models.Item)
		arg.Status = models.ItemStatusClaimed
	})
	srMissing.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)

	update := bson.M{"$set": bson.M{"status": models.ItemStatusClaimed}}
	collectionHelper.On("FindOneAndUpdate", context.Background(), bson.M{"status": models.ItemStatusActive}, update,
		mock.MatchedBy(func(o *options.FindOneAndUpdateOptions) bool {
			return o.ReturnDocument != nil && *o.ReturnDocument == options.After
		})).Return(srHelper)
	collectionHelper.On("FindOneAndUpdate", context.Background(), bson.M{"status": models.ItemStatusResolved}, update, mock.Anything).
		Return(srMissing)
	dbHelper.On("Collection", "items").Return(collectionHelper)

	itemDba := databases.NewItemDatabase(dbHelper)

	item, err := itemDba.FindOneAndUpdate(context.Background(), bson.M{"status": models.ItemStatusActive}, update)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusClaimed, item.Status)

	item, err = itemDba.FindOneAndUpdate(context.Background(), bson.M{"status": models.ItemStatusResolved}, update)
	assert.Nil(t, item)
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}

func TestItemDatabase_CountByCategory(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	cursorHelper := &mocks.CursorHelper{}

	cursorHelper.On("All", context.Background(), mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.CategoryCount)
		*arg = []models.CategoryCount{{Category: models.CategoryElectronics, Count: 4}}
	})
	collectionHelper.On("Aggregate", context.Background(), mock.AnythingOfType("mongo.Pipeline")).Return(cursorHelper, nil)
	dbHelper.On("Collection", "items").Return(collectionHelper)

	counts, err := databases.NewItemDatabase(dbHelper).CountByCategory(context.Background(), bson.M{})
	require.NoError(t, err)
	assert.Equal(t, []models.CategoryCount{{Category: models.CategoryElectronics, Count: 4}}, counts)
}

func TestItemDatabase_CountByCategoryError(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.On("Aggregate", context.Background(), mock.Anything).Return(nil, errors.New("mocked-error"))
	dbHelper.On("Collection", "items").Return(collectionHelper)

	counts, err := databases.NewItemDatabase(dbHelper).CountByCategory(context.Background(), bson.M{})
	assert.Nil(t, counts)
	assert.EqualError(t, err, "mocked-error")
}

func TestItemDatabase_UpdateMany(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.On("UpdateMany", context.Background(), bson.M{"status": "active"}, bson.M{"$set": bson.M{"status": "archived"}}).
		Return(&mongo.UpdateResult{MatchedCount: 3, ModifiedCount: 3}, nil)
	dbHelper.On("Collection", "items").Return(collectionHelper)

	res, err := databases.NewItemDatabase(dbHelper).UpdateMany(context.Background(),
		bson.M{"status": "active"}, bson.M{"$set": bson.M{"status": "archived"}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.ModifiedCount)
}

func TestPaginate(t *testing.T) {
	opts := databases.Paginate(3, 12)
	assert.Equal(t, int64(12), *opts.Limit)
	assert.Equal(t, int64(24), *opts.Skip)
	assert.Equal(t, bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}, opts.Sort)

	opts = databases.Paginate(0, 0)
	assert.Equal(t, int64(1), *opts.Limit)
	assert.Equal(t, int64(0), *opts.Skip)

	opts = databases.Paginate(1<<62, 12)
	assert.GreaterOrEqual(t, *opts.Skip, int64(0))
}

func TestEnsureIndexes(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.On("CreateIndexes", mock.Anything, mock.Anything).Return([]string{"idx"}, nil)
	dbHelper.On("Collection", mock.Anything).Return(collectionHelper)

	require.NoError(t, databases.EnsureIndexes(context.Background(), dbHelper))
	dbHelper.AssertCalled(t, "Collection", "claim_requests")
	collectionHelper.AssertNumberOfCalls(t, "CreateIndexes", 6)
}

func TestEnsureIndexesError(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.On("CreateIndexes", mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))
	dbHelper.On("Collection", mock.Anything).Return(collectionHelper)

	err := databases.EnsureIndexes(context.Background(), dbHelper)
	assert.EqualError(t, err, "failed to create indexes on profiles: mocked-error")
}
