// Package placement records where each local bucket directory is mirrored.
//
// A data root holds one directory per bucket. Any of those buckets may have
// a remote copy on S3 or GCS; the crosscheck pass asks the placement which
// repository holds the remote copy of a bucket before comparing checksums.
//
// Example:
//
//	reg := NewRegistry()
//	reg.RegisterBucket("media", s3Repo)
//	reg.RegisterBucket("backups", gcsRepo)
//
//	repo, ok := reg.Locate("media") // s3Repo, true
package placement

import (
	"github.com/zzenonn/zscrub/internal/repository/objectstore"
)

// Placement resolves a local bucket directory to its remote repository.
//
// Implementations must be safe for concurrent use.
type Placement interface {
	// Locate returns the repository mirroring localBucket, if any.
	Locate(localBucket string) (objectstore.ObjectRepository, bool)

	// ListBuckets returns all registered local bucket names.
	ListBuckets() []string
}
