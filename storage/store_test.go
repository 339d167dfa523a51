package storage

import (
	"context"
	"errors"
	"io"
	"regexp"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umt-lostfound/lostfound-api/config"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

type fakeUploader struct {
	params uploader.UploadParams
	result *uploader.UploadResult
	err    error
}

func (f *fakeUploader) Upload(_ context.Context, _ interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.params = params
	return f.result, f.err
}

func TestKey(t *testing.T) {
	key := Key("65f0c0ffee0000000000abcd", &Image{Ext: "png"})
	assert.Regexp(t, regexp.MustCompile(`^65f0c0ffee0000000000abcd/[0-9a-f-]{36}\.png$`), key)
	assert.NotEqual(t, key, Key("65f0c0ffee0000000000abcd", &Image{Ext: "png"}))
}

func TestS3StorePut(t *testing.T) {
	putter := &fakePutter{}
	store := &S3Store{client: putter, bucket: "item-images", publicURL: "https://cdn.example.edu"}

	obj, err := store.Put(context.Background(), "u1/abc.png", &Image{Data: []byte("png"), MIME: "image/png", Ext: "png"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.edu/u1/abc.png", obj.URL)
	assert.Equal(t, obj.URL, obj.PublicURL)
	assert.Equal(t, "u1/abc.png", obj.Path)
	assert.Equal(t, "item-images", *putter.in.Bucket)
	assert.Equal(t, "image/png", *putter.in.ContentType)
	assert.Equal(t, []byte("png"), putter.body)
}

func TestS3StorePutError(t *testing.T) {
	store := &S3Store{client: &fakePutter{err: errors.New("denied")}, bucket: "b", publicURL: "x"}
	_, err := store.Put(context.Background(), "k", &Image{})
	assert.ErrorContains(t, err, "denied")
}

func TestS3PublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.edu", s3PublicURL(&config.Config{S3PublicURL: "https://cdn.example.edu/"}))
	assert.Equal(t, "http://localhost:9000/items", s3PublicURL(&config.Config{S3Endpoint: "http://localhost:9000/", S3Bucket: "items"}))
	assert.Equal(t, "https://items.s3.eu-west-1.amazonaws.com", s3PublicURL(&config.Config{S3Bucket: "items", S3Region: "eu-west-1"}))
}

func TestCloudinaryStorePut(t *testing.T) {
	up := &fakeUploader{result: &uploader.UploadResult{
		PublicID:  "item-images/u1/abc",
		SecureURL: "https://res.cloudinary.com/demo/image/upload/item-images/u1/abc.jpg",
	}}
	store := &CloudinaryStore{uploader: up, folder: "item-images"}

	obj, err := store.Put(context.Background(), "u1/abc.jpg", &Image{Data: []byte("jpg"), Ext: "jpg"})
	require.NoError(t, err)
	assert.Equal(t, "u1/abc", up.params.PublicID)
	assert.Equal(t, "item-images", up.params.Folder)
	assert.Equal(t, "item-images/u1/abc", obj.Path)
	assert.Equal(t, up.result.SecureURL, obj.URL)
}

func TestCloudinaryStorePutRejected(t *testing.T) {
	up := &fakeUploader{result: &uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid image file"}}}
	store := &CloudinaryStore{uploader: up}

	_, err := store.Put(context.Background(), "u1/abc.jpg", &Image{Ext: "jpg"})
	assert.ErrorContains(t, err, "Invalid image file")
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), &config.Config{StorageBackend: "ftp"})
	assert.Error(t, err)

	_, err = New(context.Background(), &config.Config{StorageBackend: "cloudinary"})
	assert.ErrorContains(t, err, "CLOUDINARY_URL")
}
