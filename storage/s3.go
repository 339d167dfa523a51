package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/umt-lostfound/lostfound-api/config"
)

type s3Putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads images to an S3 compatible bucket
type S3Store struct {
	client    s3Putter
	bucket    string
	publicURL string
}

// NewS3Store configures a store from the S3_* settings. Static credentials are
// used when given, the default AWS chain otherwise. A custom endpoint switches
// to path-style addressing for MinIO and friends.
func NewS3Store(ctx context.Context, conf *config.Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(conf.S3Region)}
	if conf.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.S3AccessKey, conf.S3SecretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if conf.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{client: client, bucket: conf.S3Bucket, publicURL: s3PublicURL(conf)}, nil
}

// Put writes the image to the bucket under key
func (s *S3Store) Put(ctx context.Context, key string, img *Image) (*Object, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.MIME),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to s3: %w", err)
	}
	url := s.publicURL + "/" + key
	return &Object{URL: url, PublicURL: url, Path: key}, nil
}

func s3PublicURL(conf *config.Config) string {
	switch {
	case conf.S3PublicURL != "":
		return strings.TrimRight(conf.S3PublicURL, "/")
	case conf.S3Endpoint != "":
		return strings.TrimRight(conf.S3Endpoint, "/") + "/" + conf.S3Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", conf.S3Bucket, conf.S3Region)
}
