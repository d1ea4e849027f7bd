package service

import (
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// Progress shows a byte progress bar over a scrub pass. The bar is created
// when the pass starts, once the total size is known.
type Progress struct {
	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

func NewProgress() *Progress {
	return &Progress{}
}

// Start creates the bar for total bytes.
func (p *Progress) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bar = progressbar.DefaultBytes(total, "scrubbing")
}

// Wrap returns r counting into the bar. It is used as the checksum engine's read hook.
func (p *Progress) Wrap(r io.Reader) io.Reader {
	p.mu.Lock()
	bar := p.bar
	p.mu.Unlock()

	if bar == nil {
		return r
	}
	pbReader := progressbar.NewReader(r, bar)
	return &pbReader
}

func (p *Progress) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		p.bar.Clear()
	}
}

func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		p.bar.Finish()
	}
}
