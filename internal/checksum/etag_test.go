package checksum

import (
	"bytes"
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	zerrors "github.com/zzenonn/zscrub/internal/errors"
)

// multipartETag builds the expected value independently of the engine.
func multipartETag(data []byte, chunkSize int) string {
	if len(data) == 0 {
		return ""
	}
	var parts [][]byte
	for off := 0; off < len(data); off += chunkSize {
		end := off + chunkSize
		if end > len(data) {
			end = len(data)
		}
		parts = append(parts, data[off:end])
	}
	if len(parts) == 1 {
		sum := md5.Sum(parts[0])
		return hex.EncodeToString(sum[:])
	}
	var concat []byte
	for _, p := range parts {
		sum := md5.Sum(p)
		concat = append(concat, sum[:]...)
	}
	sum := md5.Sum(concat)
	return fmt.Sprintf("%s-%d", hex.EncodeToString(sum[:]), len(parts))
}

func TestComputeETag(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		chunkSize int64
		want      string
	}{
		{
			name:      "three chunks with short tail",
			content:   "0123456789",
			chunkSize: 4,
			want:      "61e3716e3a7767581863b67c4e785584-3",
		},
		{
			name:      "two even chunks",
			content:   "0123456789",
			chunkSize: 5,
			want:      "9a6dbec798b1bfe66cc7659d2bb41720-2",
		},
		{
			name:      "chunk equals length",
			content:   "0123456789",
			chunkSize: 10,
			want:      "781e5e245d69b566979b86e28d23f2c7",
		},
		{
			name:      "chunk larger than length",
			content:   "hello",
			chunkSize: 1 << 20,
			want:      "5d41402abc4b2a76b9719d911017c592",
		},
		{
			name:      "empty input",
			content:   "",
			chunkSize: 4,
			want:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeETag(strings.NewReader(tt.content), tt.chunkSize, 0)
			if err != nil {
				t.Fatalf("ComputeETag() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ComputeETag() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComputeETag_InvalidChunkSize(t *testing.T) {
	_, err := ComputeETag(strings.NewReader("abc"), 0, 0)
	if !errors.Is(err, zerrors.ErrInvalidChunkSize) {
		t.Errorf("ComputeETag() error = %v, want ErrInvalidChunkSize", err)
	}
}

func TestComputeETag_BufferSizeInvariant(t *testing.T) {
	data := make([]byte, 100*1024+17)
	if _, err := rand.Read(data); err != nil {
		t.Fatalf("Failed to generate test data: %v", err)
	}

	chunkSizes := []int64{1, 1000, 4096, 64 * 1024, int64(len(data)), int64(len(data)) + 1}
	bufSizes := []int{1, 7, 512, 4096, 1 << 20}

	for _, chunkSize := range chunkSizes {
		want := multipartETag(data, int(chunkSize))
		for _, bufSize := range bufSizes {
			t.Run(fmt.Sprintf("chunk=%d/buf=%d", chunkSize, bufSize), func(t *testing.T) {
				if chunkSize == 1 && bufSize > 1 {
					t.Skip("one-byte chunks only need one buffer size")
				}
				got, err := ComputeETag(bytes.NewReader(data), chunkSize, bufSize)
				if err != nil {
					t.Fatalf("ComputeETag() error = %v", err)
				}
				if got != want {
					t.Errorf("ComputeETag() = %q, want %q", got, want)
				}
			})
		}
	}
}

func TestComputeETag_ChunkSizeMatters(t *testing.T) {
	data := bytes.Repeat([]byte("abcdefgh"), 1024)

	a, err := ComputeETag(bytes.NewReader(data), 1024, 0)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ComputeETag(bytes.NewReader(data), 2048, 0)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Errorf("expected different ETags for different chunk sizes, both were %q", a)
	}
	if !strings.HasSuffix(a, "-8") || !strings.HasSuffix(b, "-4") {
		t.Errorf("unexpected part counts: %q, %q", a, b)
	}
}

// oneByteReader returns at most one byte per Read to exercise short reads.
type oneByteReader struct{ r io.Reader }

func (o oneByteReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return o.r.Read(p[:1])
}

func TestChunkReader_ShortReads(t *testing.T) {
	cr, err := NewChunkReader(oneByteReader{strings.NewReader("0123456789")}, 4, 64)
	if err != nil {
		t.Fatal(err)
	}

	var chunks []string
	for {
		var buf bytes.Buffer
		n, err := cr.WriteChunk(&buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("WriteChunk() error = %v", err)
		}
		if int(n) != buf.Len() {
			t.Errorf("WriteChunk() = %d, wrote %d bytes", n, buf.Len())
		}
		chunks = append(chunks, buf.String())
	}

	want := []string{"0123", "4567", "89"}
	if strings.Join(chunks, ",") != strings.Join(want, ",") {
		t.Errorf("chunks = %v, want %v", chunks, want)
	}
	if cr.BytesRead() != 10 {
		t.Errorf("BytesRead() = %d, want 10", cr.BytesRead())
	}
	if _, err := cr.WriteChunk(io.Discard); err != io.EOF {
		t.Errorf("exhausted reader returned %v, want io.EOF", err)
	}
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestComputeETag_ReadError(t *testing.T) {
	if _, err := ComputeETag(failingReader{}, 4, 0); err == nil {
		t.Error("expected read error")
	}
}

func writeTemp(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "object")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}

func TestEngine_FileETag(t *testing.T) {
	engine := NewEngine(Config{BufferSize: 3})

	tests := []struct {
		name      string
		content   []byte
		chunkSize int64
		want      string
		wantRead  int64
	}{
		{"unset chunk size is whole file", []byte("hello"), 0, "5d41402abc4b2a76b9719d911017c592", 5},
		{"recorded chunk size", []byte("0123456789"), 4, "61e3716e3a7767581863b67c4e785584-3", 10},
		{"empty file unset chunk size", []byte{}, 0, "", 0},
		{"empty file recorded chunk size", []byte{}, 5 * MiB, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, tt.content)
			got, n, err := engine.FileETag(path, tt.chunkSize)
			if err != nil {
				t.Fatalf("FileETag() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("FileETag() = %q, want %q", got, tt.want)
			}
			if n != tt.wantRead {
				t.Errorf("FileETag() read %d bytes, want %d", n, tt.wantRead)
			}
		})
	}
}

func TestEngine_FileETag_Missing(t *testing.T) {
	engine := NewEngine(Config{})
	_, _, err := engine.FileETag(filepath.Join(t.TempDir(), "nope"), 0)
	if !errors.Is(err, zerrors.ErrObjectUnreadable) {
		t.Errorf("FileETag() error = %v, want ErrObjectUnreadable", err)
	}
}

func TestEngine_ReadHook(t *testing.T) {
	var seen int64
	engine := NewEngine(Config{
		ReadHook: func(r io.Reader) io.Reader {
			return readCounter{r: r, n: &seen}
		},
	})

	path := writeTemp(t, []byte("0123456789"))
	if _, _, err := engine.FileETag(path, 4); err != nil {
		t.Fatal(err)
	}
	if seen != 10 {
		t.Errorf("hook saw %d bytes, want 10", seen)
	}
}

type readCounter struct {
	r io.Reader
	n *int64
}

func (c readCounter) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	*c.n += int64(n)
	return n, err
}

func BenchmarkComputeETag(b *testing.B) {
	data := make([]byte, 16*MiB)
	rand.Read(data)

	for _, chunkSize := range []int64{5 * MiB, 8 * MiB, 16 * MiB} {
		b.Run(fmt.Sprintf("%dMiB", chunkSize/MiB), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if _, err := ComputeETag(bytes.NewReader(data), chunkSize, DefaultBufferSize); err != nil {
					b.Fatalf("ComputeETag failed: %v", err)
				}
			}
		})
	}
}
