package service

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zzenonn/zscrub/internal/domain"
)

var banner = strings.Repeat("*", 80)

// ConsoleReporter prints mismatch notices and the final summary line.
type ConsoleReporter struct {
	w        io.Writer
	progress *Progress
	pass     string
}

// NewConsoleReporter creates a reporter writing to w. progress may be nil.
func NewConsoleReporter(w io.Writer, progress *Progress) *ConsoleReporter {
	return &ConsoleReporter{w: w, progress: progress, pass: "scrub"}
}

// WithPass names the pass in the start and summary lines.
func (c *ConsoleReporter) WithPass(name string) *ConsoleReporter {
	if name != "" {
		c.pass = strings.ToLower(name)
	}
	return c
}

func (c *ConsoleReporter) Start(root string, objects int, bytes int64) {
	fmt.Fprintf(c.w, "Starting %s of %s...\n", c.pass, root)
	if c.progress != nil {
		c.progress.Start(bytes)
	}
}

func (c *ConsoleReporter) Failure(o domain.Outcome) {
	if c.progress != nil {
		c.progress.Clear()
	}

	if o.Kind == domain.OutcomeMismatch {
		fmt.Fprintln(c.w, banner)
		fmt.Fprintf(c.w, "* Error: %s:\n*\tcomputed etag: %s\n*\texpected etag: %s\n",
			o.Record.URI, o.Record.ComputedChecksum, o.Record.ExpectedChecksum)
		fmt.Fprintln(c.w, banner)
		return
	}
	fmt.Fprintf(c.w, "* Error: %s: %s: %v\n", o.Record.URI, o.Kind, o.Err)
}

func (c *ConsoleReporter) Finish(s domain.Summary) {
	if c.progress != nil {
		c.progress.Finish()
	}
	fmt.Fprintf(c.w, "\n%s of %d files completed in %s with %d error(s).\n",
		strings.ToUpper(c.pass[:1])+c.pass[1:], s.Objects, FormatElapsed(s.Elapsed), s.Errors)
}

// FormatElapsed renders d as "D days HH:MM:SS", truncated to whole seconds.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	seconds := total % 60
	return fmt.Sprintf("%d days %02d:%02d:%02d", days, hours, minutes, seconds)
}
