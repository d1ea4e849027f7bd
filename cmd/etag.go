package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zzenonn/zscrub/internal/checksum"
)

var etagCmd = &cobra.Command{
	Use:   "etag [file]",
	Short: "Print the S3 ETag of a local file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chunkSize, _ := cmd.Flags().GetInt64("chunk-size")

		engine := checksum.NewEngine(checksum.Config{BufferSize: cfg.BufferSize})
		etag, _, err := engine.FileETag(args[0], chunkSize)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s\n", etag, args[0])
		return nil
	},
}

func init() {
	etagCmd.Flags().Int64("chunk-size", 0, "Multipart chunk size in bytes (0 hashes the file as one part)")
	rootCmd.AddCommand(etagCmd)
}
