package objectstore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	log "github.com/sirupsen/logrus"
)

// GCSObjectRepository implements ObjectRepository for Google Cloud Storage
type GCSObjectRepository struct {
	client     *storage.Client
	bucketName string
}

// Head returns the stored attributes of key. GCS ETags are opaque, so only
// the MD5 is comparable; composite objects have none.
func (r *GCSObjectRepository) Head(ctx context.Context, key string) (ObjectInfo, error) {
	log.Tracef("Fetching attributes of gs://%s/%s", r.bucketName, key)
	attrs, err := r.client.Bucket(r.bucketName).Object(key).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return ObjectInfo{}, fmt.Errorf("%w: gs://%s/%s", ErrObjectNotFound, r.bucketName, key)
		}
		return ObjectInfo{}, fmt.Errorf("failed to read attributes from GCS: %w", err)
	}

	info := ObjectInfo{
		Key:  key,
		ETag: attrs.Etag,
		Size: attrs.Size,
	}
	if len(attrs.MD5) > 0 {
		info.MD5 = hex.EncodeToString(attrs.MD5)
	}
	return info, nil
}

// GetBucketName returns the bucket name
func (r *GCSObjectRepository) GetBucketName() string {
	return r.bucketName
}

// GetStorageType returns the storage type
func (r *GCSObjectRepository) GetStorageType() string {
	return string(GCSType)
}
