package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zzenonn/zscrub/internal/checksum"
	"github.com/zzenonn/zscrub/internal/config"
	"github.com/zzenonn/zscrub/internal/discovery"
	"github.com/zzenonn/zscrub/internal/domain"
	"github.com/zzenonn/zscrub/internal/metadata"
	"github.com/zzenonn/zscrub/internal/metrics"
	"github.com/zzenonn/zscrub/internal/repository/db"
	"github.com/zzenonn/zscrub/internal/service"
)

var scrubCmd = &cobra.Command{
	Use:   "scrub [data-root]",
	Short: "Recompute every object's ETag and report mismatches",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := cfg.DataRoot
		if len(args) == 1 {
			root = args[0]
		}

		workers := cfg.Workers
		if cmd.Flags().Changed("workers") {
			workers, _ = cmd.Flags().GetInt("workers")
		}
		quiet, _ := cmd.Flags().GetBool("quiet")
		record, _ := cmd.Flags().GetBool("record")
		metricsFile := cfg.MetricsFile
		if cmd.Flags().Changed("metrics-file") {
			metricsFile, _ = cmd.Flags().GetString("metrics-file")
		}

		reader, err := newMetadataReader(cfg)
		if err != nil {
			return err
		}

		var progress *service.Progress
		engineCfg := checksum.Config{BufferSize: cfg.BufferSize}
		if !quiet {
			progress = service.NewProgress()
			engineCfg.ReadHook = progress.Wrap
		}

		scrubService := service.NewScrubService(
			discovery.NewWalker(cfg.Layout),
			reader,
			checksum.NewEngine(engineCfg),
			service.NewConsoleReporter(os.Stdout, progress),
			service.ScrubOptions{Workers: workers},
		)

		ctx := cmd.Context()
		summary, err := scrubService.Scrub(ctx, root)
		if err != nil {
			return fmt.Errorf("scrub of %s failed: %w", root, err)
		}

		if metricsFile != "" {
			if err := metrics.WriteTextfile(metricsFile, summary); err != nil {
				log.Errorf("Failed to write metrics: %v", err)
			}
		}
		if record {
			if err := recordRun(ctx, summary); err != nil {
				log.Errorf("Failed to record scrub results: %v", err)
			}
		}
		return nil
	},
}

func newMetadataReader(cfg *config.Config) (*metadata.Reader, error) {
	extractors, err := metadata.ExtractorsByName(cfg.ChecksumSources)
	if err != nil {
		return nil, err
	}
	return metadata.NewReader(extractors...), nil
}

// recordRun stores the summary and every failed outcome in the results table.
func recordRun(ctx context.Context, summary domain.Summary) error {
	awsConfig, err := config.LoadAWSConfig(ctx)
	if err != nil {
		return err
	}
	dynamoDb := db.NewDatabase(awsConfig, cfg.ResultsTable)
	resultRepository := db.NewResultRepository(dynamoDb.Client, dynamoDb.ResultsTable)

	runID := uuid.NewString()
	if err := resultRepository.SaveRun(ctx, runID, summary); err != nil {
		return err
	}
	fmt.Printf("Results recorded as run %s\n", runID)
	return nil
}

func init() {
	scrubCmd.Flags().Int("workers", 1, "Number of objects checked concurrently")
	scrubCmd.Flags().BoolP("quiet", "q", false, "Suppress the progress bar")
	scrubCmd.Flags().String("metrics-file", "", "Write Prometheus metrics for the run to this file")
	scrubCmd.Flags().Bool("record", false, "Store the run's results in DynamoDB")
	rootCmd.AddCommand(scrubCmd)
}
