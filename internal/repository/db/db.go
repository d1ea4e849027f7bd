package db

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/zzenonn/zscrub/internal/repository/migrate"
)

type DynamoDb struct {
	Client       *dynamodb.Client
	ResultsTable string
}

func NewDatabase(awsConfig aws.Config, resultsTable string) *DynamoDb {
	return &DynamoDb{
		Client:       dynamodb.NewFromConfig(awsConfig),
		ResultsTable: resultsTable,
	}
}

// MigrateDb creates the tables the scrubber writes to.
func (d *DynamoDb) MigrateDb(ctx context.Context) error {
	return migrate.Up(ctx, d.Client, migrate.Migrations(d.ResultsTable))
}

// MigrateDown drops the tables created by MigrateDb.
func (d *DynamoDb) MigrateDown(ctx context.Context) error {
	return migrate.Down(ctx, d.Client, migrate.Migrations(d.ResultsTable))
}
