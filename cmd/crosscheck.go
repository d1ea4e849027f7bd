package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zzenonn/zscrub/internal/config"
	"github.com/zzenonn/zscrub/internal/discovery"
	zerrors "github.com/zzenonn/zscrub/internal/errors"
	"github.com/zzenonn/zscrub/internal/placement"
	"github.com/zzenonn/zscrub/internal/repository/objectstore"
	"github.com/zzenonn/zscrub/internal/service"
)

var crosscheckCmd = &cobra.Command{
	Use:   "crosscheck [bucket...]",
	Short: "Compare recorded checksums with the remote copies of configured buckets",
	Long: `crosscheck reads each object's recorded checksum and compares it with the
ETag or MD5 reported by the remote bucket configured for the object's local
bucket. Object data is never read.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		buckets, err := configuredBuckets(ctx, cfg)
		if err != nil {
			return err
		}
		if len(buckets) == 0 {
			return zerrors.ConfigNotSetError("buckets")
		}
		if len(args) > 0 {
			if buckets, err = selectBuckets(buckets, args); err != nil {
				return err
			}
		}

		factory := objectstore.NewObjectRepositoryFactory(config.LoadAWSConfig, config.NewGCSClient)
		defer factory.Close()

		registry, err := buildRegistry(ctx, factory, buckets)
		if err != nil {
			return err
		}
		log.Debugf("Crosschecking buckets %v", registry.ListBuckets())

		reader, err := newMetadataReader(cfg)
		if err != nil {
			return err
		}

		crosscheckService := service.NewCrosscheckService(
			discovery.NewWalker(cfg.Layout),
			reader,
			registry,
			service.NewConsoleReporter(os.Stdout, nil).WithPass("crosscheck"),
		)
		if _, err := crosscheckService.Crosscheck(ctx, cfg.DataRoot); err != nil {
			return fmt.Errorf("crosscheck of %s failed: %w", cfg.DataRoot, err)
		}
		return nil
	},
}

// configuredBuckets merges the buckets found by tag into the configured ones.
func configuredBuckets(ctx context.Context, cfg *config.Config) (map[string]config.BucketConfig, error) {
	buckets := make(map[string]config.BucketConfig, len(cfg.Buckets))
	for name, bucket := range cfg.Buckets {
		buckets[name] = bucket
	}
	if cfg.BucketTag == "" {
		return buckets, nil
	}

	awsConfig, err := config.LoadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}
	tagged, err := objectstore.TaggedBuckets(ctx, resourcegroupstaggingapi.NewFromConfig(awsConfig), cfg.BucketTag)
	if err != nil {
		return nil, err
	}
	for local, bucket := range tagged {
		if _, exists := buckets[local]; exists {
			log.Debugf("Bucket %s is configured explicitly, ignoring tagged bucket %s", local, bucket)
			continue
		}
		buckets[local] = config.BucketConfig{BucketName: bucket, Platform: string(objectstore.S3Type)}
	}
	return buckets, nil
}

// selectBuckets restricts buckets to the named local buckets.
func selectBuckets(buckets map[string]config.BucketConfig, names []string) (map[string]config.BucketConfig, error) {
	selected := make(map[string]config.BucketConfig, len(names))
	for _, name := range names {
		bucket, exists := buckets[name]
		if !exists {
			return nil, fmt.Errorf("no remote configured for bucket: %s", name)
		}
		selected[name] = bucket
	}
	return selected, nil
}

// buildRegistry creates a repository for every configured bucket.
func buildRegistry(ctx context.Context, factory *objectstore.ObjectRepositoryFactory, buckets map[string]config.BucketConfig) (*placement.Registry, error) {
	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	registry := placement.NewRegistry()
	for _, name := range names {
		bucket := buckets[name]
		target, err := objectstore.ParseBucketConfig(bucket.Platform + ":" + bucket.BucketName)
		if err != nil {
			return nil, fmt.Errorf("bucket %s: %w", name, err)
		}
		repo, err := factory.CreateRepository(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("bucket %s: %w", name, err)
		}
		if err := registry.RegisterBucket(name, repo); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func init() {
	rootCmd.AddCommand(crosscheckCmd)
}
