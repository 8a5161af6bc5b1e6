// Package storage archives abandoned webhook payloads to object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/application/webhook"
	infraconfig "github.com/storesync/backend/internal/infrastructure/config"
)

// Ensure S3Archive implements the drainer's Archiver
var _ webhook.Archiver = (*S3Archive)(nil)

// S3Archive writes payloads to an S3-compatible bucket (AWS S3, MinIO, etc.).
// Keys are prefixed with the configured prefix so a shared bucket stays tidy.
type S3Archive struct {
	client *s3.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// NewS3Archive creates a new S3Archive from configuration
func NewS3Archive(cfg *infraconfig.ArchiveConfig, logger *zap.Logger) (*S3Archive, error) {
	if cfg == nil {
		return nil, errors.New("archive configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("archive bucket is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("archive credentials are required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			endpoint := cfg.Endpoint
			if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
				endpoint = "https://" + endpoint
			}
			if _, err := url.Parse(endpoint); err == nil {
				o.BaseEndpoint = aws.String(endpoint)
				// custom endpoints are usually MinIO-style and need path addressing
				o.UsePathStyle = true
			}
		}
	})

	return &S3Archive{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: logger,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup.
func (a *S3Archive) EnsureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	a.logger.Info("Creating archive bucket", zap.String("bucket", a.bucket))
	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Store writes a payload under the given key
func (a *S3Archive) Store(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return errors.New("archive key is required")
	}

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(a.objectKey(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to archive payload: %w", err)
	}
	return nil
}

// Exists reports whether a payload has been archived under the given key
func (a *S3Archive) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.New("archive key is required")
	}

	_, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.objectKey(key)),
	})
	if err != nil {
		var notFound *types.NotFound
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
			return false, nil
		}
		// some S3-compatible services surface this only in the message
		if strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "NoSuchKey") {
			return false, nil
		}
		return false, fmt.Errorf("failed to check archived payload: %w", err)
	}
	return true, nil
}

// Delete removes an archived payload, e.g. during store offboarding
func (a *S3Archive) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("archive key is required")
	}

	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete archived payload: %w", err)
	}
	return nil
}

func (a *S3Archive) objectKey(key string) string {
	if a.prefix == "" {
		return key
	}
	return a.prefix + "/" + key
}
