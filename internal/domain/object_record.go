package domain

import (
	"fmt"
	"time"
)

// ObjectRecord - one stored object discovered under the data root
type ObjectRecord struct {
	URI                  string `json:"uri"`           // e.g. s3://bucket/key
	RelativeObjectPath   string `json:"object_path"`   // relative to the data root
	RelativeMetadataPath string `json:"metadata_path"` // derived, never stored independently
	Size                 int64  `json:"size"`
	ExpectedChecksum     string `json:"expected_checksum"`
	ChunkSize            int64  `json:"chunk_size"` // 0 means unset: the whole object is one chunk
	ComputedChecksum     string `json:"computed_checksum"`
}

func (o ObjectRecord) String() string {
	return fmt.Sprintf("%s\nExpected etag: %s\nNew etag: %s", o.URI, o.ExpectedChecksum, o.ComputedChecksum)
}

// OutcomeKind classifies the result of scrubbing one object.
type OutcomeKind string

const (
	OutcomeOK            OutcomeKind = "ok"
	OutcomeMismatch      OutcomeKind = "mismatch"
	OutcomeMetadataError OutcomeKind = "metadata_error"
	OutcomeReadError     OutcomeKind = "read_error"

	// Remote crosscheck outcomes.
	OutcomeSkipped        OutcomeKind = "skipped"
	OutcomeRemoteMissing  OutcomeKind = "remote_missing"
	OutcomeRemoteMismatch OutcomeKind = "remote_mismatch"
	OutcomeRemoteError    OutcomeKind = "remote_error"
)

// Outcome is the result-or-error value recorded for each object in a pass.
type Outcome struct {
	Record    ObjectRecord
	Kind      OutcomeKind
	Err       error
	BytesRead int64
}

// Failed reports whether the outcome counts toward the error total.
func (o Outcome) Failed() bool {
	return o.Kind != OutcomeOK && o.Kind != OutcomeSkipped
}

// Summary aggregates a complete scrub pass.
type Summary struct {
	Root      string
	Objects   int
	Bytes     int64
	Errors    int
	ByKind    map[OutcomeKind]int
	StartedAt time.Time
	Elapsed   time.Duration
	Outcomes  []Outcome
}

// Count returns the number of outcomes of the given kind.
func (s Summary) Count(kind OutcomeKind) int {
	return s.ByKind[kind]
}
