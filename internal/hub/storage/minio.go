// Package storage adapts the artifact object store to the engine's
// resolver port.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/fleethub-io/fleethub/pkg/log"
	"github.com/fleethub-io/fleethub/pkg/options"
)

// MinioResolver resolves artifact object keys into presigned download URLs.
// Implements core.ArtifactResolver.
type MinioResolver struct {
	client     *minio.Client
	bucketName string
}

// NewMinioResolver creates a resolver against an S3-compatible store.
func NewMinioResolver(opts *options.S3Options) (*MinioResolver, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinioResolver{client: client, bucketName: opts.BucketName}, nil
}

// CheckBucket verifies the artifact bucket is reachable, creating it when
// absent so fresh environments come up without manual setup.
func (r *MinioResolver) CheckBucket(ctx context.Context) error {
	exists, err := r.client.BucketExists(ctx, r.bucketName)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		log.Info("artifact bucket does not exist, creating", "bucket", r.bucketName)
		if err := r.client.MakeBucket(ctx, r.bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

// ResolveURL presigns a GET for the object, valid for expiry.
func (r *MinioResolver) ResolveURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	presigned, err := r.client.PresignedGetObject(ctx, r.bucketName, objectKey, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign artifact %q: %w", objectKey, err)
	}
	return presigned.String(), nil
}
