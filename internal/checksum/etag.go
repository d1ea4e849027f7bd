// Package checksum recomputes S3-style object ETags from bytes on disk.
//
// An ETag is the hex MD5 of the object when it was stored as a single part,
// and hex(MD5(md5(part1) || ... || md5(partN)))-N when it was uploaded in N
// parts. The part size has to be the one the uploader used; reusing a
// different size produces a different ETag for identical bytes.
package checksum

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	zerrors "github.com/zzenonn/zscrub/internal/errors"
)

const (
	MiB = 1 << 20

	// DefaultBufferSize bounds a single read regardless of the chunk size.
	DefaultBufferSize = 8 * MiB
)

// Config holds the engine's tunables.
type Config struct {
	BufferSize int
	// ReadHook, if set, wraps every object reader before hashing (progress bars, throttling).
	ReadHook func(io.Reader) io.Reader
}

// Engine computes ETags for files on disk.
type Engine struct {
	bufferSize int
	readHook   func(io.Reader) io.Reader
}

// NewEngine creates a new Engine instance
func NewEngine(cfg Config) *Engine {
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Engine{
		bufferSize: bufferSize,
		readHook:   cfg.ReadHook,
	}
}

// BufferSize returns the read ceiling in bytes.
func (e *Engine) BufferSize() int {
	return e.bufferSize
}

// FileETag computes the ETag of the file at path. A chunkSize of zero or less
// means the whole file is a single chunk. It also returns the number of bytes read.
func (e *Engine) FileETag(path string, chunkSize int64) (string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", zerrors.ErrObjectUnreadable, err)
	}
	defer file.Close()

	if chunkSize <= 0 {
		info, err := file.Stat()
		if err != nil {
			return "", 0, fmt.Errorf("%w: %v", zerrors.ErrObjectUnreadable, err)
		}
		if info.Size() == 0 {
			return "", 0, nil
		}
		chunkSize = info.Size()
	}

	var r io.Reader = file
	if e.readHook != nil {
		r = e.readHook(file)
	}

	log.Debugf("Hashing %s with chunk size %d", path, chunkSize)
	cr, err := NewChunkReader(r, chunkSize, e.bufferSize)
	if err != nil {
		return "", 0, err
	}
	etag, err := etagFromChunks(cr)
	if err != nil {
		return "", cr.BytesRead(), fmt.Errorf("%w: %v", zerrors.ErrObjectUnreadable, err)
	}
	return etag, cr.BytesRead(), nil
}

// ComputeETag computes the ETag of everything r yields, split into chunkSize parts.
// bufSize bounds each read; it never changes the result.
func ComputeETag(r io.Reader, chunkSize int64, bufSize int) (string, error) {
	cr, err := NewChunkReader(r, chunkSize, bufSize)
	if err != nil {
		return "", err
	}
	return etagFromChunks(cr)
}

func etagFromChunks(cr *ChunkReader) (string, error) {
	var digests []byte
	parts := 0
	for {
		h := md5.New()
		_, err := cr.WriteChunk(h)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		digests = h.Sum(digests)
		parts++
	}
	return FormatETag(digests, parts), nil
}

// FormatETag renders concatenated per-part MD5 digests in S3 ETag form.
func FormatETag(digests []byte, parts int) string {
	switch parts {
	case 0:
		return ""
	case 1:
		return hex.EncodeToString(digests[:md5.Size])
	default:
		sum := md5.Sum(digests)
		return fmt.Sprintf("%s-%d", hex.EncodeToString(sum[:]), parts)
	}
}
