package objectstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi/types"
	log "github.com/sirupsen/logrus"
)

// TaggingAPI is the part of the Resource Groups Tagging API client used for bucket discovery.
type TaggingAPI interface {
	GetResources(ctx context.Context, params *resourcegroupstaggingapi.GetResourcesInput, optFns ...func(*resourcegroupstaggingapi.Options)) (*resourcegroupstaggingapi.GetResourcesOutput, error)
}

const s3ARNPrefix = "arn:aws:s3:::"

// TaggedBuckets finds S3 buckets carrying tagKey and returns them keyed by the
// tag value, which names the local bucket directory they mirror. Only buckets
// visible in the client's region are returned.
func TaggedBuckets(ctx context.Context, client TaggingAPI, tagKey string) (map[string]string, error) {
	input := &resourcegroupstaggingapi.GetResourcesInput{
		ResourceTypeFilters: []string{"s3"},
		TagFilters:          []types.TagFilter{{Key: aws.String(tagKey)}},
	}

	buckets := make(map[string]string)
	for {
		out, err := client.GetResources(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to list buckets tagged %s: %w", tagKey, err)
		}

		for _, mapping := range out.ResourceTagMappingList {
			arn := aws.ToString(mapping.ResourceARN)
			if !strings.HasPrefix(arn, s3ARNPrefix) {
				continue
			}
			bucket := strings.TrimPrefix(arn, s3ARNPrefix)
			local := tagValue(mapping.Tags, tagKey)
			if local == "" {
				local = bucket
			}
			if prev, exists := buckets[local]; exists {
				log.Warnf("Buckets %s and %s both mirror %s, keeping %s", prev, bucket, local, prev)
				continue
			}
			buckets[local] = bucket
		}

		if aws.ToString(out.PaginationToken) == "" {
			break
		}
		input.PaginationToken = out.PaginationToken
	}

	log.Debugf("Found %d buckets tagged %s", len(buckets), tagKey)
	return buckets, nil
}

func tagValue(tags []types.Tag, key string) string {
	for _, tag := range tags {
		if aws.ToString(tag.Key) == key {
			return aws.ToString(tag.Value)
		}
	}
	return ""
}
