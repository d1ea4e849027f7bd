// Package objectstore provides read-only access to remote object stores and a factory for them.
package objectstore

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"

	zerrors "github.com/zzenonn/zscrub/internal/errors"
)

// ObjectRepository defines the interface for remote object lookups
type ObjectRepository interface {
	Head(ctx context.Context, key string) (ObjectInfo, error)
	GetBucketName() string
	GetStorageType() string
}

// RepositoryType represents the type of object storage
type RepositoryType string

const (
	S3Type  RepositoryType = "s3"
	GCSType RepositoryType = "gcs"
)

// BucketConfig holds configuration for a storage bucket
type BucketConfig struct {
	Name string
	Type RepositoryType
}

// ObjectRepositoryFactory creates object repository instances. Provider
// clients are created on first use so a run touching only S3 never needs
// Google credentials and vice versa.
type ObjectRepositoryFactory struct {
	loadAWSConfig func(ctx context.Context) (aws.Config, error)
	newGCSClient  func(ctx context.Context) (*storage.Client, error)

	awsConfig *aws.Config
	gcsClient *storage.Client
}

// NewObjectRepositoryFactory creates a new factory
func NewObjectRepositoryFactory(loadAWSConfig func(ctx context.Context) (aws.Config, error), newGCSClient func(ctx context.Context) (*storage.Client, error)) *ObjectRepositoryFactory {
	return &ObjectRepositoryFactory{
		loadAWSConfig: loadAWSConfig,
		newGCSClient:  newGCSClient,
	}
}

// CreateRepository creates a repository based on bucket configuration
func (f *ObjectRepositoryFactory) CreateRepository(ctx context.Context, config BucketConfig) (ObjectRepository, error) {
	switch config.Type {
	case S3Type:
		if f.awsConfig == nil {
			cfg, err := f.loadAWSConfig(ctx)
			if err != nil {
				return nil, err
			}
			f.awsConfig = &cfg
		}
		client, err := NewS3Client(ctx, *f.awsConfig, config.Name)
		if err != nil {
			return nil, err
		}
		repo := NewS3ObjectRepository(client, config.Name)
		return &repo, nil
	case GCSType:
		if f.gcsClient == nil {
			client, err := f.newGCSClient(ctx)
			if err != nil {
				return nil, err
			}
			f.gcsClient = client
		}
		repo := NewGCSObjectRepository(f.gcsClient, config.Name)
		return &repo, nil
	default:
		return nil, fmt.Errorf("%w: %s", zerrors.ErrUnsupportedScheme, config.Type)
	}
}

// Close releases provider clients.
func (f *ObjectRepositoryFactory) Close() error {
	if f.gcsClient != nil {
		return f.gcsClient.Close()
	}
	return nil
}

// ParseBucketConfig parses bucket configuration from string
// Formats: "s3://bucket-name", "gs://bucket-name", "s3:bucket-name", or "bucket-name" (defaults to S3)
func ParseBucketConfig(bucketStr string) (BucketConfig, error) {
	bucketStr = strings.TrimSpace(bucketStr)

	// Handle URI format (s3://, gs://)
	if strings.Contains(bucketStr, "://") {
		parts := strings.SplitN(bucketStr, "://", 2)
		if len(parts) != 2 {
			return BucketConfig{}, fmt.Errorf("invalid URI format: %s", bucketStr)
		}

		scheme := strings.ToLower(strings.TrimSpace(parts[0]))
		bucketName := strings.TrimSpace(parts[1])

		if bucketName == "" {
			return BucketConfig{}, fmt.Errorf("bucket name cannot be empty")
		}

		repoType, err := parseType(scheme)
		if err != nil {
			return BucketConfig{}, err
		}

		return BucketConfig{
			Name: bucketName,
			Type: repoType,
		}, nil
	}

	// Handle colon format (s3:bucket-name)
	parts := strings.SplitN(bucketStr, ":", 2)
	if len(parts) != 2 {
		// Default to S3 for backward compatibility
		return BucketConfig{
			Name: bucketStr,
			Type: S3Type,
		}, nil
	}

	repoType, err := parseType(strings.ToLower(strings.TrimSpace(parts[0])))
	if err != nil {
		return BucketConfig{}, err
	}
	bucketName := strings.TrimSpace(parts[1])

	if bucketName == "" {
		return BucketConfig{}, fmt.Errorf("bucket name cannot be empty")
	}

	return BucketConfig{
		Name: bucketName,
		Type: repoType,
	}, nil
}

func parseType(scheme string) (RepositoryType, error) {
	switch scheme {
	case "s3":
		return S3Type, nil
	case "gs", "gcs":
		return GCSType, nil
	default:
		return "", fmt.Errorf("%w: %s", zerrors.ErrUnsupportedScheme, scheme)
	}
}
