package objectstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	log "github.com/sirupsen/logrus"
)

var ErrObjectNotFound = errors.New("object not found in remote store")

// ObjectInfo is what a remote store reports about one object.
type ObjectInfo struct {
	Key  string
	ETag string // S3-style ETag, quotes stripped
	MD5  string // hex content MD5 when the store records one
	Size int64
}

// NewS3Client creates an S3 client pinned to the region the bucket lives in.
func NewS3Client(ctx context.Context, awsConfig aws.Config, bucketName string) (*s3.Client, error) {
	client := s3.NewFromConfig(awsConfig)

	region, err := manager.GetBucketRegion(ctx, client, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve region of bucket %s: %w", bucketName, err)
	}
	if region == awsConfig.Region {
		return client, nil
	}

	log.Debugf("Bucket %s is in %s, not %s", bucketName, region, awsConfig.Region)
	return s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		o.Region = region
	}), nil
}

// NewS3ObjectRepository creates a new S3 object repository
func NewS3ObjectRepository(client S3HeadAPI, bucketName string) S3ObjectRepository {
	return S3ObjectRepository{
		client:     client,
		bucketName: bucketName,
	}
}

// NewGCSObjectRepository creates a new GCS object repository
func NewGCSObjectRepository(client *storage.Client, bucketName string) GCSObjectRepository {
	return GCSObjectRepository{
		client:     client,
		bucketName: bucketName,
	}
}
