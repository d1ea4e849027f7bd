package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zzenonn/zscrub/internal/config"
	"github.com/zzenonn/zscrub/internal/logging"
)

var (
	cfg        *config.Config
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "zscrub",
	Short: "Verify stored objects against their recorded checksums",
	Long: `zscrub walks a MinIO FS-mode data root, recomputes the S3 ETag of every
object from the bytes on disk and reports objects whose data no longer
matches the checksum recorded when they were written.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
	rootCmd.PersistentFlags().String("data-root", "", "Data root to scrub")
}

func initConfig() {
	var err error
	cfg, err = config.LoadConfig(configPath, rootCmd)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logging.InitLogger(cfg)
	log.Debugf("Loaded configuration: data root %s, %d worker(s)", cfg.DataRoot, cfg.Workers)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
