package db

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	log "github.com/sirupsen/logrus"

	"github.com/zzenonn/zscrub/internal/domain"
)

// DynamoDBAPI is the part of the DynamoDB client the repository needs.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// ResultRepository manages DynamoDB interactions for scrub results.
type ResultRepository struct {
	client    DynamoDBAPI
	tableName string
}

// NewResultRepository initializes a new ResultRepository.
func NewResultRepository(client DynamoDBAPI, tableName string) ResultRepository {
	return ResultRepository{
		client:    client,
		tableName: tableName,
	}
}

// SaveRun stores the run summary and every failed outcome under runID.
func (repo *ResultRepository) SaveRun(ctx context.Context, runID string, summary domain.Summary) error {
	items := ResultItems(runID, summary)
	for _, item := range items {
		if err := repo.put(ctx, item); err != nil {
			return err
		}
	}
	log.Debugf("Stored %d result rows for run %s", len(items), runID)
	return nil
}

func (repo *ResultRepository) put(ctx context.Context, item domain.ScrubResult) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(repo.tableName),
		Item:      av,
	}
	if _, err := repo.client.PutItem(ctx, input); err != nil {
		return fmt.Errorf("failed to store result for %s: %w", item.ObjectURI, err)
	}
	return nil
}

// ListRun retrieves every row stored for runID, following pagination.
func (repo *ResultRepository) ListRun(ctx context.Context, runID string) ([]domain.ScrubResult, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(repo.tableName),
		KeyConditionExpression: aws.String("#run = :run"),
		ExpressionAttributeNames: map[string]string{
			"#run": "run_id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":run": &types.AttributeValueMemberS{Value: runID},
		},
	}

	var results []domain.ScrubResult
	for {
		out, err := repo.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query results of run %s: %w", runID, err)
		}

		var page []domain.ScrubResult
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal results: %w", err)
		}
		results = append(results, page...)

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	return results, nil
}

// ResultItems converts a summary to the rows persisted for it.
func ResultItems(runID string, summary domain.Summary) []domain.ScrubResult {
	items := []domain.ScrubResult{{
		RunID:          runID,
		ObjectURI:      domain.SummaryKey,
		Kind:           "summary",
		Root:           summary.Root,
		StartedAt:      summary.StartedAt.UTC().Format(time.RFC3339),
		ElapsedSeconds: summary.Elapsed.Seconds(),
		Objects:        summary.Objects,
		Bytes:          summary.Bytes,
		Errors:         summary.Errors,
	}}

	for _, o := range summary.Outcomes {
		if !o.Failed() {
			continue
		}
		item := domain.ScrubResult{
			RunID:            runID,
			ObjectURI:        o.Record.URI,
			Kind:             string(o.Kind),
			ExpectedChecksum: o.Record.ExpectedChecksum,
			ComputedChecksum: o.Record.ComputedChecksum,
			ChunkSize:        o.Record.ChunkSize,
		}
		if o.Err != nil {
			item.Error = o.Err.Error()
		}
		items = append(items, item)
	}
	return items
}
