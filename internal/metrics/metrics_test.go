package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zzenonn/zscrub/internal/domain"
)

func TestWriteTextfile(t *testing.T) {
	summary := domain.Summary{
		Root:      "/data",
		Objects:   5,
		Bytes:     20,
		Errors:    3,
		StartedAt: time.Unix(1648784771, 0),
		Elapsed:   90 * time.Second,
		ByKind: map[domain.OutcomeKind]int{
			domain.OutcomeOK:            2,
			domain.OutcomeMismatch:      1,
			domain.OutcomeMetadataError: 2,
		},
	}

	path := filepath.Join(t.TempDir(), "zscrub.prom")
	if err := WriteTextfile(path, summary); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)

	for _, want := range []string{
		`zscrub_objects_scanned{root="/data"} 5`,
		`zscrub_errors{root="/data"} 3`,
		`zscrub_duration_seconds{root="/data"} 90`,
		`zscrub_last_run_timestamp_seconds{root="/data"} 1.648784771e+09`,
		`zscrub_outcomes{kind="mismatch",root="/data"} 1`,
		`zscrub_outcomes{kind="read_error",root="/data"} 0`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics missing %q:\n%s", want, text)
		}
	}
}
