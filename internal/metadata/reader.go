// Package metadata reads the per-object sidecar documents an FS-mode object
// store keeps next to the object data.
package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	zerrors "github.com/zzenonn/zscrub/internal/errors"
)

// Document is the subset of fs.json the scrubber uses.
type Document struct {
	Version string         `json:"version"`
	Meta    map[string]any `json:"meta"`
	Parts   []Part         `json:"parts"`
}

// MetaString returns the meta entry for key when it holds a string.
func (d Document) MetaString(key string) (string, bool) {
	value, ok := d.Meta[key].(string)
	return value, ok
}

// Part describes one uploaded part.
type Part struct {
	Number     int    `json:"number"`
	ETag       string `json:"etag"`
	Size       int64  `json:"size"`
	ActualSize int64  `json:"actualSize"`
}

// Info is what the scrubber needs to know about an object.
type Info struct {
	Checksum  string
	ChunkSize int64 // 0 when no part size was recorded
	Source    string
}

// Reader loads sidecar metadata and extracts the recorded checksum.
type Reader struct {
	extractors []ChecksumExtractor
}

// NewReader creates a Reader trying extractors in order. With none given the
// recorded etag is tried first and the s3cmd md5 attribute second.
func NewReader(extractors ...ChecksumExtractor) *Reader {
	if len(extractors) == 0 {
		extractors = DefaultExtractors()
	}
	return &Reader{extractors: extractors}
}

// Read parses the metadata file at path.
func (r *Reader) Read(path string) (Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Info{}, fmt.Errorf("%w: %s", zerrors.ErrMetadataNotFound, path)
		}
		return Info{}, fmt.Errorf("%w: %v", zerrors.ErrMalformedMetadata, err)
	}
	return r.Parse(data)
}

// Parse extracts Info from a raw metadata document.
func (r *Reader) Parse(data []byte) (Info, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Info{}, fmt.Errorf("%w: %v", zerrors.ErrMalformedMetadata, err)
	}

	for _, extractor := range r.extractors {
		sum, ok := extractor.Extract(doc)
		if ok && sum != "" {
			info := Info{Checksum: sum, Source: extractor.Name()}
			if !extractor.WholeObject() {
				info.ChunkSize = doc.ChunkSize()
			}
			return info, nil
		}
		log.Tracef("checksum extractor %s found nothing", extractor.Name())
	}

	return Info{}, zerrors.ErrMissingChecksum
}

// ChunkSize returns the size of the first declared part, or 0.
func (d Document) ChunkSize() int64 {
	if len(d.Parts) == 0 || d.Parts[0].Size <= 0 {
		return 0
	}
	return d.Parts[0].Size
}

// ChecksumExtractor pulls a recorded checksum out of a metadata document.
// WholeObject reports whether the checksum is a digest of the whole object
// regardless of how it was uploaded.
type ChecksumExtractor interface {
	Name() string
	Extract(doc Document) (string, bool)
	WholeObject() bool
}

// ETagExtractor reads meta.etag.
type ETagExtractor struct{}

func (ETagExtractor) Name() string { return "etag" }

func (ETagExtractor) Extract(doc Document) (string, bool) {
	sum, ok := doc.MetaString("etag")
	return strings.Trim(sum, `"`), ok
}

func (ETagExtractor) WholeObject() bool { return false }

// S3cmdExtractor reads the md5 entry of the attribute blob s3cmd stores as
// X-Amz-Meta-S3cmd-Attrs, formatted "key:value/key:value/...". s3cmd records
// the MD5 of the whole file even for multipart uploads.
type S3cmdExtractor struct{}

const s3cmdAttrsKey = "X-Amz-Meta-S3cmd-Attrs"

func (S3cmdExtractor) Name() string { return "s3cmd" }

func (S3cmdExtractor) Extract(doc Document) (string, bool) {
	blob, ok := doc.MetaString(s3cmdAttrsKey)
	if !ok {
		return "", false
	}
	attrs := parseS3cmdAttrs(blob)
	sum, ok := attrs["md5"]
	return sum, ok
}

func (S3cmdExtractor) WholeObject() bool { return true }

func parseS3cmdAttrs(blob string) map[string]string {
	attrs := make(map[string]string)
	for _, item := range strings.Split(blob, "/") {
		key, value, found := strings.Cut(item, ":")
		if !found {
			continue
		}
		attrs[key] = value
	}
	return attrs
}

// DefaultExtractors returns the extractors used when none are configured.
func DefaultExtractors() []ChecksumExtractor {
	return []ChecksumExtractor{ETagExtractor{}, S3cmdExtractor{}}
}

// ExtractorsByName resolves configured extractor names.
func ExtractorsByName(names []string) ([]ChecksumExtractor, error) {
	var extractors []ChecksumExtractor
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "etag":
			extractors = append(extractors, ETagExtractor{})
		case "s3cmd":
			extractors = append(extractors, S3cmdExtractor{})
		default:
			return nil, fmt.Errorf("unknown checksum source: %s", name)
		}
	}
	return extractors, nil
}
