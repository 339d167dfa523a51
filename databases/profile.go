package databases

// go generate: mockery --name ProfileDatabase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/umt-lostfound/lostfound-api/models"
)

const profileName = "profiles"

// ProfileDatabase contains the methods to use with the profile database
type ProfileDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Profile, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Profile, error)
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
	InsertOne(ctx context.Context, profile models.Profile) (primitive.ObjectID, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type profileDatabase struct {
	db DatabaseHelper
}

// NewProfileDatabase initializes a new instance of profile database with the provided db connection
func NewProfileDatabase(db DatabaseHelper) ProfileDatabase {
	return &profileDatabase{
		db: db,
	}
}

func (p *profileDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Profile, error) {
	return findOne[models.Profile](ctx, p.db.Collection(profileName), filter, opts...)
}

func (p *profileDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Profile, error) {
	return findAll[models.Profile](ctx, p.db.Collection(profileName), filter, opts...)
}

func (p *profileDatabase) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	return p.db.Collection(profileName).CountDocuments(ctx, filter)
}

func (p *profileDatabase) InsertOne(ctx context.Context, profile models.Profile) (primitive.ObjectID, error) {
	res, err := p.db.Collection(profileName).InsertOne(ctx, profile)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedID(res)
}

func (p *profileDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return p.db.Collection(profileName).UpdateOne(ctx, filter, update, opts...)
}

// EnsureAdmin makes sure a profile with the given email exists and is an admin.
// An existing profile keeps its password; a new one is created with passwordHash.
func EnsureAdmin(ctx context.Context, profiles ProfileDatabase, email, fullName, passwordHash string, now time.Time) error {
	existing, err := profiles.FindOne(ctx, bson.M{"email": email})
	if err == nil {
		if existing.IsAdmin {
			return nil
		}
		_, err = profiles.UpdateOne(ctx, bson.M{"_id": existing.ID},
			bson.M{"$set": bson.M{"is_admin": true, "updated_at": now}})
		return err
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	_, err = profiles.InsertOne(ctx, models.Profile{
		Email:        email,
		FullName:     fullName,
		PasswordHash: passwordHash,
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	return err
}
