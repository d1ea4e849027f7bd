package main

import (
	"context"
	"testing"

	"github.com/zzenonn/zscrub/internal/config"
)

func TestSelectBuckets(t *testing.T) {
	buckets := map[string]config.BucketConfig{
		"media":   {BucketName: "media-mirror", Platform: "s3"},
		"backups": {BucketName: "nightly", Platform: "gcs"},
	}

	got, err := selectBuckets(buckets, []string{"backups"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got["backups"].BucketName != "nightly" {
		t.Errorf("selectBuckets() = %v", got)
	}

	if _, err := selectBuckets(buckets, []string{"missing"}); err == nil {
		t.Error("expected error for an unconfigured bucket")
	}
}

func TestConfiguredBuckets_NoTag(t *testing.T) {
	cfg := &config.Config{Buckets: map[string]config.BucketConfig{
		"media": {BucketName: "media-mirror", Platform: "s3"},
	}}

	got, err := configuredBuckets(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got["media"].BucketName != "media-mirror" {
		t.Errorf("configuredBuckets() = %v", got)
	}

	got["extra"] = config.BucketConfig{}
	if _, exists := cfg.Buckets["extra"]; exists {
		t.Error("configuredBuckets must not modify the configuration")
	}
}
