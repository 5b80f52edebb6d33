package destination

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"buildall/internal/config"
	"buildall/internal/distribution"
	"buildall/pkg/logging"
)

// ObjectStore is the part of *minio.Client an S3Destination uses.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	FPutObject(ctx context.Context, bucket, key, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// S3Destination stores distributions under <prefix>/<subdir>/<filename>.
type S3Destination struct {
	store  ObjectStore
	bucket string
	prefix string
	region string
	runID  string

	initOnce sync.Once
	initErr  error
}

// NewS3Destination connects to the bucket described by cfg.
func NewS3Destination(cfg config.S3Config, bucket, prefix, runID string) (*S3Destination, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required (set %s)", config.EnvS3Endpoint)
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return NewS3DestinationWithStore(client, bucket, prefix, region, runID)
}

// NewS3DestinationWithStore uses an existing object store.
func NewS3DestinationWithStore(store ObjectStore, bucket, prefix, region, runID string) (*S3Destination, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	return &S3Destination{
		store:  store,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		region: region,
		runID:  runID,
	}, nil
}

func (s *S3Destination) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.store.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.store.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

// Key returns the object key of a distribution.
func (s *S3Destination) Key(dist *distribution.Distribution) string {
	if s.prefix == "" {
		return basename(dist)
	}
	return s.prefix + "/" + basename(dist)
}

// MakeAvailable uploads just built files, and existing local files the
// bucket does not have yet.
func (s *S3Destination) MakeAvailable(ctx context.Context, dist *distribution.Distribution, location string, justBuilt bool) error {
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	key := s.Key(dist)

	if !justBuilt {
		_, err := s.store.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
		if err == nil {
			logging.Info("Destination", "Nothing to be done for %s - it is already in s3://%s/%s", dist, s.bucket, key)
			return nil
		}
		if code := minio.ToErrorResponse(err).Code; code != "NoSuchKey" && code != "NotFound" {
			return fmt.Errorf("failed to stat s3://%s/%s: %w", s.bucket, key, err)
		}
		if isURL(location) {
			logging.Warn("Destination", "%s is only available from %s and cannot be copied to s3://%s", dist, location, s.bucket)
			return nil
		}
		location = strings.TrimRight(location, "/") + "/" + dist.PkgFilename()
	}

	opts := minio.PutObjectOptions{
		ContentType:  "application/x-tar",
		UserMetadata: map[string]string{"package": dist.Dist()},
	}
	if s.runID != "" {
		opts.UserMetadata["run-id"] = s.runID
	}
	if _, err := s.store.FPutObject(ctx, s.bucket, key, location, opts); err != nil {
		return fmt.Errorf("failed to upload %s to s3://%s/%s: %w", dist, s.bucket, key, err)
	}
	logging.Info("Destination", "Uploaded %s to s3://%s/%s", dist, s.bucket, key)
	return nil
}

func (s *S3Destination) String() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.prefix)
}
