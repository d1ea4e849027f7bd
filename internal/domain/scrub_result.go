package domain

// SummaryKey is the sort key of the per-run summary item.
const SummaryKey = "#summary"

// ScrubResult - one persisted row of a scrub run. Each run stores a summary
// row plus one row per failed object.
type ScrubResult struct {
	RunID     string `json:"run_id" dynamodbav:"run_id"`         // Partition Key
	ObjectURI string `json:"object_uri" dynamodbav:"object_uri"` // Sort Key; SummaryKey for the run summary
	Kind      string `json:"kind" dynamodbav:"kind"`

	ExpectedChecksum string `json:"expected_checksum,omitempty" dynamodbav:"expected_checksum,omitempty"`
	ComputedChecksum string `json:"computed_checksum,omitempty" dynamodbav:"computed_checksum,omitempty"`
	ChunkSize        int64  `json:"chunk_size,omitempty" dynamodbav:"chunk_size,omitempty"`
	Error            string `json:"error,omitempty" dynamodbav:"error,omitempty"`

	Root           string  `json:"root,omitempty" dynamodbav:"root,omitempty"`
	StartedAt      string  `json:"started_at,omitempty" dynamodbav:"started_at,omitempty"`
	ElapsedSeconds float64 `json:"elapsed_seconds,omitempty" dynamodbav:"elapsed_seconds,omitempty"`
	Objects        int     `json:"objects,omitempty" dynamodbav:"objects,omitempty"`
	Bytes          int64   `json:"bytes,omitempty" dynamodbav:"bytes,omitempty"`
	Errors         int     `json:"errors,omitempty" dynamodbav:"errors,omitempty"`
}
