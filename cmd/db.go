package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zzenonn/zscrub/internal/config"
	"github.com/zzenonn/zscrub/internal/repository/db"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the scrub results table",
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the scrub results table",
	Run: func(cmd *cobra.Command, args []string) {
		awsConfig, err := config.LoadAWSConfig(cmd.Context())
		if err != nil {
			fmt.Printf("Failed to connect to the database: %v\n", err)
			return
		}

		dynamoDb := db.NewDatabase(awsConfig, cfg.ResultsTable)
		if err := dynamoDb.MigrateDb(cmd.Context()); err != nil {
			fmt.Printf("Failed to migrate the database: %v\n", err)
			return
		}

		fmt.Println("Database initialized and migrated successfully")
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Drop the scrub results table",
	Run: func(cmd *cobra.Command, args []string) {
		awsConfig, err := config.LoadAWSConfig(cmd.Context())
		if err != nil {
			fmt.Printf("Failed to connect to the database: %v\n", err)
			return
		}

		dynamoDb := db.NewDatabase(awsConfig, cfg.ResultsTable)
		if err := dynamoDb.MigrateDown(cmd.Context()); err != nil {
			fmt.Printf("Failed to roll back migrations: %v\n", err)
			return
		}

		fmt.Println("Database migrations rolled back successfully")
	},
}

func init() {
	dbCmd.AddCommand(initCmd)
	dbCmd.AddCommand(downCmd)
	rootCmd.AddCommand(dbCmd)
}
