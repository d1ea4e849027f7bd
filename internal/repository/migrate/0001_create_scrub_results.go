package migrate

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	DefaultScrubResultsTableName = "scrub_results"
	ScrubResultsVersion          = "20221001000000_scrub_results_table"
)

type CreateScrubResultsTable struct {
	Name string
}

func (m *CreateScrubResultsTable) Version() string {
	return ScrubResultsVersion
}

func (m *CreateScrubResultsTable) TableName() string {
	if m.Name == "" {
		return DefaultScrubResultsTableName
	}
	return m.Name
}

func (m *CreateScrubResultsTable) Up(ctx context.Context, client *dynamodb.Client) error {
	input := &dynamodb.CreateTableInput{
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String("run_id"),
				AttributeType: types.ScalarAttributeTypeS,
			},
			{
				AttributeName: aws.String("object_uri"),
				AttributeType: types.ScalarAttributeTypeS,
			},
		},
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String("run_id"),
				KeyType:       types.KeyTypeHash, // Partition Key
			},
			{
				AttributeName: aws.String("object_uri"),
				KeyType:       types.KeyTypeRange, // Sort Key
			},
		},
		TableName:   aws.String(m.TableName()),
		BillingMode: types.BillingModePayPerRequest,
		Tags: []types.Tag{
			{
				Key:   aws.String("Purpose"),
				Value: aws.String("ScrubResults"),
			},
		},
	}

	// Create the table
	_, err := client.CreateTable(ctx, input)
	if err != nil {
		return err
	}

	// Wait for table to become active
	waiter := dynamodb.NewTableExistsWaiter(client)
	err = waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(m.TableName()),
	}, 5*time.Minute)

	return err
}

func (m *CreateScrubResultsTable) Down(ctx context.Context, client *dynamodb.Client) error {
	input := &dynamodb.DeleteTableInput{
		TableName: aws.String(m.TableName()),
	}

	_, err := client.DeleteTable(ctx, input)
	return err
}
