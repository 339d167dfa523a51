package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/umt-lostfound/lostfound-api/api"
	"github.com/umt-lostfound/lostfound-api/lifecycle"
	"github.com/umt-lostfound/lostfound-api/models"
	"github.com/umt-lostfound/lostfound-api/storage"
)

// multipartOverhead is the allowance for form fields and boundaries on top of the file
const multipartOverhead = 1 << 20

// Upload exists for dependency injection purposes for the image upload handler
type Upload struct {
	Store       storage.Store
	MaxFileSize int64
}

// UploadHandler stores an item image sent as the multipart field "file"
func (u Upload) UploadHandler(w http.ResponseWriter, r *http.Request) {
	profile := api.ProfileFromContext(r.Context())
	if profile.IsBanned {
		writeError(w, r, lifecycle.Errorf(lifecycle.KindAuthorization, "your account has been banned"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, u.MaxFileSize+multipartOverhead)
	file, _, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, r, lifecycle.Errorf(lifecycle.KindValidation, "file: must not exceed %d bytes", u.MaxFileSize))
			return
		}
		writeError(w, r, lifecycle.Errorf(lifecycle.KindValidation, "file: is required"))
		return
	}
	defer file.Close()

	img, err := storage.Process(file, u.MaxFileSize)
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		writeError(w, r, lifecycle.Errorf(lifecycle.KindValidation, "file: must not exceed %d bytes", u.MaxFileSize))
		return
	case errors.Is(err, storage.ErrTooManyPixels):
		writeError(w, r, lifecycle.Errorf(lifecycle.KindValidation, "file: must not exceed %d pixels", storage.MaxPixels))
		return
	case errors.Is(err, storage.ErrUnsupported):
		writeError(w, r, lifecycle.Errorf(lifecycle.KindValidation, "file: must be an image"))
		return
	case err != nil:
		writeError(w, r, lifecycle.Errorf(lifecycle.KindValidation, "file: invalid image file"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	obj, err := u.Store.Put(ctx, storage.Key(profile.ID.Hex(), img), img)
	if err != nil {
		zap.S().With(err).Errorw("failed to store upload", "user_id", profile.ID.Hex())
		writeError(w, r, lifecycle.Errorf(lifecycle.KindInternal, "error uploading image"))
		return
	}
	writeJSON(w, http.StatusOK, models.UploadResponse{URL: obj.URL, PublicURL: obj.PublicURL, Path: obj.Path})
}
