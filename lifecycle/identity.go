package lifecycle

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/umt-lostfound/lostfound-api/auth"
	"github.com/umt-lostfound/lostfound-api/models"
)

// Register creates a profile for a new user
func (c *Controller) Register(ctx context.Context, req models.RegisterRequest) (*models.Profile, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}
	if c.AllowedEmailDomain != "" && !strings.HasSuffix(req.Email, "@"+c.AllowedEmailDomain) {
		return nil, newError(KindValidation, "email: must be a @%s address", c.AllowedEmailDomain)
	}

	_, err := c.Profiles.FindOne(ctx, bson.M{"email": req.Email})
	if err == nil {
		return nil, newError(KindDuplicate, "email is already registered")
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, internalError("failed to check email", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, internalError("failed to hash password", err)
	}
	now := c.now()
	profile := models.Profile{
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	id, err := c.Profiles.InsertOne(ctx, profile)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, newError(KindDuplicate, "email is already registered")
		}
		return nil, internalError("failed to create profile", err)
	}
	profile.ID = id
	return &profile, nil
}

// Login checks credentials and returns the profile they belong to. Banned
// accounts cannot log in.
func (c *Controller) Login(ctx context.Context, req models.LoginRequest) (*models.Profile, error) {
	req.Email = models.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}
	profile, err := c.Profiles.FindOne(ctx, bson.M{"email": req.Email})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, newError(KindAuthentication, "invalid email or password")
		}
		return nil, internalError("failed to load profile", err)
	}
	if !auth.CheckPassword(profile.PasswordHash, req.Password) {
		return nil, newError(KindAuthentication, "invalid email or password")
	}
	if profile.IsBanned {
		return nil, newError(KindAuthentication, "your account has been banned")
	}
	return profile, nil
}

// Profile loads a profile by id
func (c *Controller) Profile(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	profile, err := c.Profiles.FindOne(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, loadError(err, "profile")
	}
	return profile, nil
}

// UpdateProfile changes the caller's own name and avatar
func (c *Controller) UpdateProfile(ctx context.Context, actor *models.Profile, req models.UpdateProfileRequest) (*models.Profile, error) {
	if err := requireActive(actor); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}
	set := bson.M{}
	if req.FullName != nil {
		set["full_name"] = *req.FullName
	}
	if req.AvatarURL != nil {
		set["avatar_url"] = *req.AvatarURL
	}
	if len(set) == 0 {
		return actor, nil
	}
	set["updated_at"] = c.now()

	res, err := c.Profiles.UpdateOne(ctx, bson.M{"_id": actor.ID}, bson.M{"$set": set})
	if err != nil {
		return nil, internalError("failed to update profile", err)
	}
	if res.MatchedCount == 0 {
		return nil, newError(KindNotFound, "profile not found")
	}
	return c.Profile(ctx, actor.ID)
}
