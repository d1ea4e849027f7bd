// Package service provides the scrub pass and the checks built around it.
//
// ScrubService drives one pass over an object-data root:
// - discovery of every object under the root
// - sidecar metadata read for the recorded ETag and part size
// - ETag recomputation from the bytes on disk
// - comparison, with mismatches reported as soon as they are found
//
// Per-object failures never stop the pass; they are counted and end up in the
// summary. Only an unreadable data root aborts a scrub.
package service

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/zzenonn/zscrub/internal/domain"
	zerrors "github.com/zzenonn/zscrub/internal/errors"
	"github.com/zzenonn/zscrub/internal/logging"
	"github.com/zzenonn/zscrub/internal/metadata"
)

type ObjectWalker interface {
	Discover(root string) ([]domain.ObjectRecord, error)
}

type MetadataReader interface {
	Read(path string) (metadata.Info, error)
}

type ChecksumEngine interface {
	FileETag(path string, chunkSize int64) (string, int64, error)
}

// Reporter receives scrub events. Calls are serialized by ScrubService.
type Reporter interface {
	Start(root string, objects int, bytes int64)
	Failure(outcome domain.Outcome)
	Finish(summary domain.Summary)
}

// ScrubOptions tunes a scrub pass.
type ScrubOptions struct {
	// Workers above one hash independent objects concurrently. Notices are
	// then emitted in completion order rather than discovery order.
	Workers int
}

type ScrubService struct {
	walker   ObjectWalker
	reader   MetadataReader
	engine   ChecksumEngine
	reporter Reporter
	opts     ScrubOptions

	mu sync.Mutex
}

// NewScrubService creates a new ScrubService instance
func NewScrubService(walker ObjectWalker, reader MetadataReader, engine ChecksumEngine, reporter Reporter, opts ScrubOptions) *ScrubService {
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &ScrubService{
		walker:   walker,
		reader:   reader,
		engine:   engine,
		reporter: reporter,
		opts:     opts,
	}
}

// Scrub runs one full pass over root. The returned error is non-nil only when
// the root cannot be enumerated or ctx is cancelled.
func (s *ScrubService) Scrub(ctx context.Context, root string) (domain.Summary, error) {
	records, err := s.walker.Discover(root)
	if err != nil {
		return domain.Summary{}, err
	}

	var totalBytes int64
	for _, r := range records {
		totalBytes += r.Size
	}

	summary := domain.Summary{
		Root:      root,
		Objects:   len(records),
		ByKind:    make(map[domain.OutcomeKind]int),
		StartedAt: time.Now(),
		Outcomes:  make([]domain.Outcome, len(records)),
	}
	s.reporter.Start(root, len(records), totalBytes)

	if s.opts.Workers > 1 {
		err = s.scrubParallel(ctx, root, records, summary.Outcomes)
	} else {
		err = s.scrubSequential(ctx, root, records, summary.Outcomes)
	}
	if err != nil {
		return domain.Summary{}, err
	}

	for _, o := range summary.Outcomes {
		summary.ByKind[o.Kind]++
		summary.Bytes += o.BytesRead
		if o.Failed() {
			summary.Errors++
		}
	}
	summary.Elapsed = time.Since(summary.StartedAt)

	s.reporter.Finish(summary)
	return summary, nil
}

func (s *ScrubService) scrubSequential(ctx context.Context, root string, records []domain.ObjectRecord, outcomes []domain.Outcome) error {
	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		outcomes[i] = s.scrubObject(root, record)
		s.report(outcomes[i])
	}
	return nil
}

func (s *ScrubService) scrubParallel(ctx context.Context, root string, records []domain.ObjectRecord, outcomes []domain.Outcome) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	for i, record := range records {
		if ctx.Err() != nil {
			break
		}
		i, record := i, record
		g.Go(func() error {
			// Each goroutine owns outcomes[i]; only reporting is shared.
			outcomes[i] = s.scrubObject(root, record)
			s.report(outcomes[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// scrubObject checks a single object. It never fails; problems are recorded in the outcome.
func (s *ScrubService) scrubObject(root string, record domain.ObjectRecord) domain.Outcome {
	info, err := s.reader.Read(filepath.Join(root, record.RelativeMetadataPath))
	if err != nil {
		logging.ForObject(record).WithError(err).Debug("metadata read failed")
		return domain.Outcome{Record: record, Kind: domain.OutcomeMetadataError, Err: err}
	}
	record.ExpectedChecksum = info.Checksum
	record.ChunkSize = info.ChunkSize

	computed, n, err := s.engine.FileETag(filepath.Join(root, record.RelativeObjectPath), record.ChunkSize)
	if err != nil {
		logging.ForObject(record).WithError(err).Debug("checksum failed")
		return domain.Outcome{Record: record, Kind: domain.OutcomeReadError, Err: err, BytesRead: n}
	}
	record.ComputedChecksum = computed

	if computed != record.ExpectedChecksum {
		logging.ForObject(record).Debug("checksum mismatch")
		return domain.Outcome{Record: record, Kind: domain.OutcomeMismatch, Err: zerrors.ErrChecksumMismatch, BytesRead: n}
	}
	log.Tracef("%s ok (%s)", record.URI, computed)
	return domain.Outcome{Record: record, Kind: domain.OutcomeOK, BytesRead: n}
}

func (s *ScrubService) report(o domain.Outcome) {
	if !o.Failed() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reporter.Failure(o)
}

type nopReporter struct{}

func (nopReporter) Start(string, int, int64) {}
func (nopReporter) Failure(domain.Outcome)   {}
func (nopReporter) Finish(domain.Summary)    {}
