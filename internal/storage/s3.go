// Package storage holds the remote media store used for video files,
// thumbnails, avatars, cover images and tweet images. Handlers depend
// on the MediaStore interface so tests can substitute an in-memory
// implementation.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// Asset is a stored object: the public URL handed to clients and the
// object key used for later deletion.
type Asset struct {
	URL string
	Key string
}

// MediaStore uploads and deletes binary assets on a remote host.
// Put must complete before any entity write references the asset;
// Delete is best-effort cleanup of assets no entity references.
type MediaStore interface {
	Put(ctx context.Context, kind, filename, contentType string, r io.Reader) (Asset, error)
	Delete(ctx context.Context, key string) error
}

// ObjectStoreConfig configures the S3 target.
type ObjectStoreConfig struct {
	Bucket        string
	Region        string
	Endpoint      string // optional, for S3-compatible services
	PublicBaseURL string
}

// S3Store implements MediaStore against an S3-compatible service.
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	baseURL  string
}

// NewS3Store configures the client and multipart uploader.
func NewS3Store(ctx context.Context, cfg ObjectStoreConfig) (*S3Store, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 store: bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if strings.TrimSpace(cfg.Endpoint) != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
			if service == s3.ServiceID {
				return aws.Endpoint{URL: cfg.Endpoint, SigningRegion: cfg.Region}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})
		loadOpts = append(loadOpts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
		u.LeavePartsOnError = false
	})

	return &S3Store{
		client:   client,
		uploader: uploader,
		bucket:   cfg.Bucket,
		baseURL:  strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// Put uploads the content under a fresh key derived from the asset
// kind and the original file extension, and returns the public asset.
func (s *S3Store) Put(ctx context.Context, kind, filename, contentType string, r io.Reader) (Asset, error) {
	key := fmt.Sprintf("%s/%s%s", kind, uuid.NewString(), strings.ToLower(path.Ext(filename)))

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   manager.ReadSeekCloser(r),
		ACL:    s3types.ObjectCannedACLPublicRead,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return Asset{}, fmt.Errorf("s3 upload %s: %w", key, err)
	}

	url := key
	if s.baseURL != "" {
		url = s.baseURL + "/" + key
	}
	return Asset{URL: url, Key: key}, nil
}

// Delete removes the object identified by key.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return fmt.Errorf("s3 delete: empty key")
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}
