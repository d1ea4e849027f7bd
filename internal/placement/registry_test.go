package placement

import (
	"context"
	"reflect"
	"testing"

	"github.com/zzenonn/zscrub/internal/repository/objectstore"
)

type stubRepo struct{ name string }

func (s stubRepo) Head(ctx context.Context, key string) (objectstore.ObjectInfo, error) {
	return objectstore.ObjectInfo{Key: key}, nil
}
func (s stubRepo) GetBucketName() string  { return s.name }
func (s stubRepo) GetStorageType() string { return "s3" }

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterBucket("media", stubRepo{"remote-media"}); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterBucket("backups", stubRepo{"remote-backups"}); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterBucket("media", stubRepo{"again"}); err == nil {
		t.Error("expected error registering a bucket twice")
	}

	repo, ok := reg.Locate("media")
	if !ok || repo.GetBucketName() != "remote-media" {
		t.Errorf("Locate(media) = %v, %v", repo, ok)
	}
	if _, ok := reg.Locate("unknown"); ok {
		t.Error("Locate(unknown) should not resolve")
	}
	if got := reg.ListBuckets(); !reflect.DeepEqual(got, []string{"media", "backups"}) {
		t.Errorf("ListBuckets() = %v", got)
	}
}
