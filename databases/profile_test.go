package databases_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/umt-lostfound/lostfound-api/config"
	"github.com/umt-lostfound/lostfound-api/databases"
	"github.com/umt-lostfound/lostfound-api/databases/mocks"
	"github.com/umt-lostfound/lostfound-api/models"
)

func TestNewProfileDatabase(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := config.New()

	dbClient, err := databases.NewClient(context.Background(), conf)
	assert.NoError(t, err)

	db := databases.NewDatabase(conf, dbClient)

	profileDB := databases.NewProfileDatabase(db)

	assert.NotEmpty(t, profileDB)
}

func TestProfileDatabase_FindOne(t *testing.T) {

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperErr databases.SingleResultHelper
	var srHelperCorrect databases.SingleResultHelper

	// set interfaces implementation to mocked structures
	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperErr = &mocks.SingleResultHelper{}
	srHelperCorrect = &mocks.SingleResultHelper{}

	srHelperErr.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	srHelperCorrect.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*models.Profile)
		arg.Email = "alice@x.edu"
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": true}).
		Return(srHelperErr)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": false}).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "profiles").Return(collectionHelper)

	profileDba := databases.NewProfileDatabase(dbHelper)

	profile, err := profileDba.FindOne(context.Background(), bson.M{"error": true})

	assert.Nil(t, profile)
	assert.EqualError(t, err, "mocked-error")

	profile, err = profileDba.FindOne(context.Background(), bson.M{"error": false})

	assert.Equal(t, &models.Profile{Email: "alice@x.edu"}, profile)
	assert.NoError(t, err)
}

func TestProfileDatabase_Find(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var cursorHelper databases.CursorHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	cursorHelper = &mocks.CursorHelper{}

	cursorHelper.(*mocks.CursorHelper).
		On("All", context.Background(), mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.Profile)
		*arg = []models.Profile{{Email: "alice@x.edu"}, {Email: "bob@x.edu"}}
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": true}).
		Return(nil, errors.New("mocked-error"))

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": false}).
		Return(cursorHelper, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "profiles").Return(collectionHelper)

	profileDba := databases.NewProfileDatabase(dbHelper)

	profiles, err := profileDba.Find(context.Background(), bson.M{"error": true})
	assert.Nil(t, profiles)
	assert.EqualError(t, err, "mocked-error")

	profiles, err = profileDba.Find(context.Background(), bson.M{"error": false})
	assert.NoError(t, err)
	assert.Len(t, profiles, 2)
	assert.Equal(t, "bob@x.edu", profiles[1].Email)
}

func TestProfileDatabase_InsertOne(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var insertHelper databases.InsertOneResultHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	insertHelper = &mocks.InsertOneResultHelper{}

	id := primitive.NewObjectID()
	insertHelper.(*mocks.InsertOneResultHelper).On("Decode").Return(id)

	profile := models.Profile{Email: "alice@x.edu"}
	collectionHelper.(*mocks.CollectionHelper).
		On("InsertOne", context.Background(), profile).
		Return(insertHelper, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "profiles").Return(collectionHelper)

	got, err := databases.NewProfileDatabase(dbHelper).InsertOne(context.Background(), profile)
	assert.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestProfileDatabase_InsertOneDuplicate(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	dupErr := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	collectionHelper.On("InsertOne", context.Background(), mock.Anything).Return(nil, dupErr)
	dbHelper.On("Collection", "profiles").Return(collectionHelper)

	got, err := databases.NewProfileDatabase(dbHelper).InsertOne(context.Background(), models.Profile{})
	assert.True(t, mongo.IsDuplicateKeyError(err))
	assert.Equal(t, primitive.NilObjectID, got)
}

func TestEnsureAdmin(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("creates missing admin", func(t *testing.T) {
		profiles := &mocks.ProfileDatabase{}
		profiles.On("FindOne", mock.Anything, bson.M{"email": "admin@x.edu"}).Return(nil, mongo.ErrNoDocuments)
		profiles.On("InsertOne", mock.Anything, mock.MatchedBy(func(p models.Profile) bool {
			return p.Email == "admin@x.edu" && p.IsAdmin && p.PasswordHash == "hash" && p.CreatedAt.Equal(now)
		})).Return(primitive.NewObjectID(), nil)

		err := databases.EnsureAdmin(context.Background(), profiles, "admin@x.edu", "Administrator", "hash", now)
		assert.NoError(t, err)
		profiles.AssertExpectations(t)
	})

	t.Run("promotes existing profile", func(t *testing.T) {
		id := primitive.NewObjectID()
		profiles := &mocks.ProfileDatabase{}
		profiles.On("FindOne", mock.Anything, bson.M{"email": "admin@x.edu"}).Return(&models.Profile{ID: id}, nil)
		profiles.On("UpdateOne", mock.Anything, bson.M{"_id": id},
			bson.M{"$set": bson.M{"is_admin": true, "updated_at": now}}).Return(&mongo.UpdateResult{MatchedCount: 1}, nil)

		err := databases.EnsureAdmin(context.Background(), profiles, "admin@x.edu", "Administrator", "hash", now)
		assert.NoError(t, err)
		profiles.AssertExpectations(t)
		profiles.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
	})

	t.Run("already admin", func(t *testing.T) {
		profiles := &mocks.ProfileDatabase{}
		profiles.On("FindOne", mock.Anything, mock.Anything).Return(&models.Profile{IsAdmin: true}, nil)

		assert.NoError(t, databases.EnsureAdmin(context.Background(), profiles, "admin@x.edu", "", "hash", now))
		profiles.AssertNumberOfCalls(t, "FindOne", 1)
	})

	t.Run("lookup failure", func(t *testing.T) {
		profiles := &mocks.ProfileDatabase{}
		profiles.On("FindOne", mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))

		assert.EqualError(t, databases.EnsureAdmin(context.Background(), profiles, "admin@x.edu", "", "hash", now), "mocked-error")
	})
}
