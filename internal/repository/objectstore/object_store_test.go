package objectstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	tagtypes "github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	zerrors "github.com/zzenonn/zscrub/internal/errors"
)

func TestParseBucketConfig(t *testing.T) {
	tests := []struct {
		in      string
		want    BucketConfig
		wantErr bool
	}{
		{in: "s3://media", want: BucketConfig{Name: "media", Type: S3Type}},
		{in: "gs://archive", want: BucketConfig{Name: "archive", Type: GCSType}},
		{in: "gcs:archive", want: BucketConfig{Name: "archive", Type: GCSType}},
		{in: " plain ", want: BucketConfig{Name: "plain", Type: S3Type}},
		{in: "s3://", wantErr: true},
		{in: "ftp://files", wantErr: true},
		{in: "azure:blob", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBucketConfig(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBucketConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseBucketConfig() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCreateRepository_Unsupported(t *testing.T) {
	f := NewObjectRepositoryFactory(nil, nil)
	_, err := f.CreateRepository(context.Background(), BucketConfig{Name: "x", Type: "azure"})
	if !errors.Is(err, zerrors.ErrUnsupportedScheme) {
		t.Errorf("CreateRepository() error = %v, want ErrUnsupportedScheme", err)
	}
}

func TestCreateRepository_AWSConfigError(t *testing.T) {
	loadErr := errors.New("no credentials")
	f := NewObjectRepositoryFactory(func(context.Context) (aws.Config, error) {
		return aws.Config{}, loadErr
	}, nil)
	if _, err := f.CreateRepository(context.Background(), BucketConfig{Name: "x", Type: S3Type}); !errors.Is(err, loadErr) {
		t.Errorf("CreateRepository() error = %v, want %v", err, loadErr)
	}
}

// mockS3 is a mock implementation of the S3 HeadObject call.
type mockS3 struct {
	headFunc func(ctx context.Context, params *s3.HeadObjectInput) (*s3.HeadObjectOutput, error)
}

func (m *mockS3) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	return m.headFunc(ctx, params)
}

func TestS3ObjectRepository_Head(t *testing.T) {
	tests := []struct {
		name    string
		etag    string
		err     error
		want    ObjectInfo
		wantErr error
	}{
		{
			name: "single part",
			etag: `"5d41402abc4b2a76b9719d911017c592"`,
			want: ObjectInfo{Key: "k", ETag: "5d41402abc4b2a76b9719d911017c592", MD5: "5d41402abc4b2a76b9719d911017c592", Size: 5},
		},
		{
			name: "multipart",
			etag: `"61e3716e3a7767581863b67c4e785584-3"`,
			want: ObjectInfo{Key: "k", ETag: "61e3716e3a7767581863b67c4e785584-3", Size: 5},
		},
		{
			name:    "not found",
			err:     &types.NotFound{},
			wantErr: ErrObjectNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewS3ObjectRepository(&mockS3{headFunc: func(ctx context.Context, params *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
				if aws.ToString(params.Bucket) != "media" || aws.ToString(params.Key) != "k" {
					t.Errorf("unexpected input %s/%s", aws.ToString(params.Bucket), aws.ToString(params.Key))
				}
				if tt.err != nil {
					return nil, tt.err
				}
				return &s3.HeadObjectOutput{ETag: aws.String(tt.etag), ContentLength: aws.Int64(5)}, nil
			}}, "media")

			got, err := repo.Head(context.Background(), "k")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Head() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Head() = %+v, want %+v", got, tt.want)
			}
		})
	}

	repo := NewS3ObjectRepository(nil, "media")
	if repo.GetBucketName() != "media" || repo.GetStorageType() != "s3" {
		t.Errorf("unexpected repository identity %s/%s", repo.GetStorageType(), repo.GetBucketName())
	}
}

// mockTagging pages through fixed resource mappings, one page per call.
type mockTagging struct {
	pages [][]tagtypes.ResourceTagMapping
	calls int
}

func (m *mockTagging) GetResources(ctx context.Context, params *resourcegroupstaggingapi.GetResourcesInput, optFns ...func(*resourcegroupstaggingapi.Options)) (*resourcegroupstaggingapi.GetResourcesOutput, error) {
	if len(params.TagFilters) != 1 || aws.ToString(params.TagFilters[0].Key) != "zscrub:mirror-of" {
		return nil, errors.New("unexpected tag filter")
	}
	page := m.calls
	m.calls++

	out := &resourcegroupstaggingapi.GetResourcesOutput{ResourceTagMappingList: m.pages[page]}
	if page+1 < len(m.pages) {
		out.PaginationToken = aws.String("next")
	}
	return out, nil
}

func mapping(arn, value string) tagtypes.ResourceTagMapping {
	return tagtypes.ResourceTagMapping{
		ResourceARN: aws.String(arn),
		Tags:        []tagtypes.Tag{{Key: aws.String("zscrub:mirror-of"), Value: aws.String(value)}},
	}
}

func TestTaggedBuckets(t *testing.T) {
	client := &mockTagging{pages: [][]tagtypes.ResourceTagMapping{
		{mapping("arn:aws:s3:::media-mirror", "media"), mapping("arn:aws:dynamodb:us-east-1:1:table/x", "x")},
		{mapping("arn:aws:s3:::backups", ""), mapping("arn:aws:s3:::media-copy", "media")},
	}}

	got, err := TaggedBuckets(context.Background(), client, "zscrub:mirror-of")
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{"media": "media-mirror", "backups": "backups"}
	if len(got) != len(want) {
		t.Fatalf("TaggedBuckets() = %v, want %v", got, want)
	}
	for local, bucket := range want {
		if got[local] != bucket {
			t.Errorf("TaggedBuckets()[%s] = %s, want %s", local, got[local], bucket)
		}
	}
	if client.calls != 2 {
		t.Errorf("GetResources called %d times, want 2", client.calls)
	}
}
