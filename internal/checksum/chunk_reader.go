package checksum

import (
	"fmt"
	"io"

	zerrors "github.com/zzenonn/zscrub/internal/errors"
)

// ChunkReader splits a stream into consecutive chunks of a fixed size. It is
// single pass: every byte of the underlying reader is delivered exactly once,
// and an exhausted ChunkReader stays exhausted.
type ChunkReader struct {
	r         io.Reader
	chunkSize int64
	buf       []byte
	total     int64
	eof       bool
}

// NewChunkReader creates a ChunkReader reading at most bufSize bytes per call.
func NewChunkReader(r io.Reader, chunkSize int64, bufSize int) (*ChunkReader, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", zerrors.ErrInvalidChunkSize, chunkSize)
	}
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	if int64(bufSize) > chunkSize {
		bufSize = int(chunkSize)
	}
	return &ChunkReader{
		r:         r,
		chunkSize: chunkSize,
		buf:       make([]byte, bufSize),
	}, nil
}

// WriteChunk copies the next chunk to w and returns its length. Only the last
// chunk may be shorter than the chunk size. io.EOF is returned once no bytes remain.
func (c *ChunkReader) WriteChunk(w io.Writer) (int64, error) {
	if c.eof {
		return 0, io.EOF
	}

	var written int64
	for written < c.chunkSize {
		want := c.chunkSize - written
		if want > int64(len(c.buf)) {
			want = int64(len(c.buf))
		}

		n, err := c.r.Read(c.buf[:want])
		if n > 0 {
			if _, werr := w.Write(c.buf[:n]); werr != nil {
				return written, werr
			}
			written += int64(n)
			c.total += int64(n)
		}
		if err == io.EOF {
			c.eof = true
			break
		}
		if err != nil {
			return written, err
		}
	}

	if written == 0 {
		return 0, io.EOF
	}
	return written, nil
}

// BytesRead returns the number of bytes delivered so far.
func (c *ChunkReader) BytesRead() int64 {
	return c.total
}
