// Package discovery enumerates the objects stored under an object-data root.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/zzenonn/zscrub/internal/domain"
	zerrors "github.com/zzenonn/zscrub/internal/errors"
)

// Layout describes how an FS-mode store arranges object data and metadata.
type Layout struct {
	Scheme         string // prefixed to the relative path to form the URI
	MetadataPrefix string // subtree, relative to the root, holding sidecar metadata
	MetadataFile   string // per-object metadata filename
	HiddenMarker   string // names starting with this are not object data
}

// DefaultLayout matches a single-drive MinIO FS backend.
func DefaultLayout() Layout {
	return Layout{
		Scheme:         "s3://",
		MetadataPrefix: ".minio.sys/buckets",
		MetadataFile:   "fs.json",
		HiddenMarker:   ".",
	}
}

// MetadataPath derives the sidecar location for an object path relative to the root.
func (l Layout) MetadataPath(relObjectPath string) string {
	return filepath.Join(filepath.FromSlash(l.MetadataPrefix), relObjectPath, l.MetadataFile)
}

// URI derives the logical identifier for an object path relative to the root.
func (l Layout) URI(relObjectPath string) string {
	return l.Scheme + filepath.ToSlash(relObjectPath)
}

func (l Layout) hidden(name string) bool {
	return l.HiddenMarker != "" && strings.HasPrefix(name, l.HiddenMarker)
}

// Walker walks a data root and produces object records.
type Walker struct {
	layout Layout
}

// NewWalker creates a new Walker for the given layout
func NewWalker(layout Layout) *Walker {
	return &Walker{layout: layout}
}

// Layout returns the walker's layout.
func (w *Walker) Layout() Layout {
	return w.layout
}

// Walk calls fn for every object under root in walk order. An unreadable root
// is fatal; unreadable entries below it are logged and skipped. An error
// returned by fn stops the walk.
func (w *Walker) Walk(root string, fn func(domain.ObjectRecord) error) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %v", zerrors.ErrDataRootUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", zerrors.ErrDataRootUnavailable, root)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("%w: %v", zerrors.ErrDataRootUnavailable, err)
			}
			log.WithField("path", path).WithError(err).Warn("failed to walk")
			return nil
		}

		if path == root {
			return nil
		}

		if w.layout.hidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := objectInfo(path, d)
		if err != nil {
			log.WithField("path", path).WithError(err).Warn("failed to stat object")
			return nil
		}
		if info == nil {
			return nil
		}

		record, err := w.record(root, path, info)
		if err != nil {
			log.WithField("path", path).WithError(err).Warn("failed to stat object")
			return nil
		}
		return fn(record)
	})
}

// Discover returns every object under root in walk order.
func (w *Walker) Discover(root string) ([]domain.ObjectRecord, error) {
	var records []domain.ObjectRecord
	err := w.Walk(root, func(record domain.ObjectRecord) error {
		records = append(records, record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("Discovered %d objects under %s", len(records), root)
	return records, nil
}

// objectInfo returns the file info of the object at path, or nil when the
// entry is not a regular file. Symlinks are followed; symlinked directories
// are not descended into.
func objectInfo(path string, d fs.DirEntry) (fs.FileInfo, error) {
	switch {
	case d.Type().IsRegular():
		return d.Info()
	case d.Type()&fs.ModeSymlink != 0:
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.Mode().IsRegular() {
			return nil, nil
		}
		return info, nil
	default:
		return nil, nil
	}
}

func (w *Walker) record(root, path string, info fs.FileInfo) (domain.ObjectRecord, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return domain.ObjectRecord{}, err
	}

	return domain.ObjectRecord{
		URI:                  w.layout.URI(rel),
		RelativeObjectPath:   rel,
		RelativeMetadataPath: w.layout.MetadataPath(rel),
		Size:                 info.Size(),
	}, nil
}
