package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/umt-lostfound/lostfound-api/config"
)

// Object describes a stored upload
type Object struct {
	URL       string `json:"url"`
	PublicURL string `json:"public_url"`
	Path      string `json:"path"`
}

// Store persists processed images
type Store interface {
	Put(ctx context.Context, key string, img *Image) (*Object, error)
}

// Key returns the object key of a new upload by userID
func Key(userID string, img *Image) string {
	return fmt.Sprintf("%s/%s.%s", userID, uuid.NewString(), img.Ext)
}

// New returns the store selected by STORAGE_BACKEND
func New(ctx context.Context, conf *config.Config) (Store, error) {
	switch conf.StorageBackend {
	case "cloudinary":
		return NewCloudinaryStore(conf.CloudinaryURL, conf.CloudinaryFolder)
	case "s3":
		return NewS3Store(ctx, conf)
	}
	return nil, fmt.Errorf("unknown storage backend %q", conf.StorageBackend)
}
