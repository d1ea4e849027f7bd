package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/zzenonn/zscrub/internal/domain"
	"github.com/zzenonn/zscrub/internal/logging"
	"github.com/zzenonn/zscrub/internal/repository/objectstore"
)

// RemoteLocator finds the remote repository mirroring a local bucket.
type RemoteLocator interface {
	Locate(localBucket string) (objectstore.ObjectRepository, bool)
}

// CrosscheckService compares the checksum each local object recorded at
// write time with what the remote copy of its bucket reports. It reads
// sidecar metadata only, never object data.
type CrosscheckService struct {
	walker   ObjectWalker
	reader   MetadataReader
	remotes  RemoteLocator
	reporter Reporter
}

// NewCrosscheckService creates a new CrosscheckService instance
func NewCrosscheckService(walker ObjectWalker, reader MetadataReader, remotes RemoteLocator, reporter Reporter) *CrosscheckService {
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &CrosscheckService{
		walker:   walker,
		reader:   reader,
		remotes:  remotes,
		reporter: reporter,
	}
}

// Crosscheck checks every object under root whose bucket has a remote.
func (c *CrosscheckService) Crosscheck(ctx context.Context, root string) (domain.Summary, error) {
	records, err := c.walker.Discover(root)
	if err != nil {
		return domain.Summary{}, err
	}

	summary := domain.Summary{
		Root:      root,
		Objects:   len(records),
		ByKind:    make(map[domain.OutcomeKind]int),
		StartedAt: time.Now(),
		Outcomes:  make([]domain.Outcome, 0, len(records)),
	}
	c.reporter.Start(root, len(records), 0)

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return domain.Summary{}, err
		}
		o := c.checkObject(ctx, root, record)
		summary.Outcomes = append(summary.Outcomes, o)
		summary.ByKind[o.Kind]++
		if o.Failed() {
			summary.Errors++
			c.reporter.Failure(o)
		}
	}
	summary.Elapsed = time.Since(summary.StartedAt)

	c.reporter.Finish(summary)
	return summary, nil
}

func (c *CrosscheckService) checkObject(ctx context.Context, root string, record domain.ObjectRecord) domain.Outcome {
	bucket, key := SplitBucketKey(record.RelativeObjectPath)
	remote, ok := c.remotes.Locate(bucket)
	if !ok || key == "" {
		return domain.Outcome{Record: record, Kind: domain.OutcomeSkipped}
	}

	info, err := c.reader.Read(filepath.Join(root, record.RelativeMetadataPath))
	if err != nil {
		return domain.Outcome{Record: record, Kind: domain.OutcomeMetadataError, Err: err}
	}
	record.ExpectedChecksum = info.Checksum
	record.ChunkSize = info.ChunkSize

	head, err := remote.Head(ctx, key)
	if err != nil {
		if errors.Is(err, objectstore.ErrObjectNotFound) {
			return domain.Outcome{Record: record, Kind: domain.OutcomeRemoteMissing, Err: err}
		}
		return domain.Outcome{Record: record, Kind: domain.OutcomeRemoteError, Err: err}
	}

	remoteSum, comparable := remoteChecksum(record.ExpectedChecksum, head)
	if !comparable {
		logging.ForObject(record).Debugf("%s reports no comparable checksum", remote.GetStorageType())
		return domain.Outcome{Record: record, Kind: domain.OutcomeSkipped}
	}
	record.ComputedChecksum = remoteSum

	if remoteSum != record.ExpectedChecksum {
		err := fmt.Errorf("%s://%s/%s reports %s", remote.GetStorageType(), remote.GetBucketName(), key, remoteSum)
		return domain.Outcome{Record: record, Kind: domain.OutcomeRemoteMismatch, Err: err}
	}
	return domain.Outcome{Record: record, Kind: domain.OutcomeOK}
}

// remoteChecksum picks the remote value comparable with a local ETag.
// A multipart ETag only compares with another multipart ETag.
func remoteChecksum(local string, head objectstore.ObjectInfo) (string, bool) {
	if strings.Contains(local, "-") {
		return head.ETag, strings.Contains(head.ETag, "-")
	}
	if head.MD5 != "" {
		return head.MD5, true
	}
	return "", false
}

// SplitBucketKey splits a path relative to the data root into bucket and key.
func SplitBucketKey(relPath string) (string, string) {
	bucket, key, _ := strings.Cut(filepath.ToSlash(relPath), "/")
	return bucket, key
}
