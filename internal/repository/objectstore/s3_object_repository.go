package objectstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	log "github.com/sirupsen/logrus"
)

// S3HeadAPI is the part of the S3 client the repository needs.
type S3HeadAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3ObjectRepository reads object attributes from S3 or an S3-compatible store.
type S3ObjectRepository struct {
	client     S3HeadAPI
	bucketName string
}

// GetBucketName returns the bucket name.
func (r *S3ObjectRepository) GetBucketName() string {
	return r.bucketName
}

// GetStorageType returns the object store type.
func (r *S3ObjectRepository) GetStorageType() string {
	return string(S3Type)
}

// Head returns the stored attributes of key
func (r *S3ObjectRepository) Head(ctx context.Context, key string) (ObjectInfo, error) {
	log.Tracef("HEAD s3://%s/%s", r.bucketName, key)
	out, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return ObjectInfo{}, fmt.Errorf("%w: s3://%s/%s", ErrObjectNotFound, r.bucketName, key)
		}
		return ObjectInfo{}, fmt.Errorf("failed to head s3://%s/%s: %w", r.bucketName, key, err)
	}

	info := ObjectInfo{
		Key:  key,
		ETag: strings.Trim(aws.ToString(out.ETag), `"`),
	}
	if out.ContentLength != nil {
		info.Size = *out.ContentLength
	}
	// Single-part ETags are the content MD5.
	if !strings.Contains(info.ETag, "-") {
		info.MD5 = info.ETag
	}
	return info, nil
}
