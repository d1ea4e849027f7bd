package migrate

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	log "github.com/sirupsen/logrus"
)

// Migration is one reversible schema change.
type Migration interface {
	Version() string
	TableName() string
	Up(ctx context.Context, client *dynamodb.Client) error
	Down(ctx context.Context, client *dynamodb.Client) error
}

// Migrations returns every migration in apply order.
func Migrations(resultsTable string) []Migration {
	return []Migration{
		&CreateScrubResultsTable{Name: resultsTable},
	}
}

// Up applies migrations in order. A table that already exists counts as applied.
func Up(ctx context.Context, client *dynamodb.Client, migrations []Migration) error {
	for _, m := range migrations {
		log.Infof("Applying migration %s", m.Version())
		if err := m.Up(ctx, client); err != nil {
			var inUse *types.ResourceInUseException
			if errors.As(err, &inUse) {
				log.Infof("Table %s already exists, skipping", m.TableName())
				continue
			}
			return err
		}
	}
	return nil
}

// Down rolls migrations back in reverse order.
func Down(ctx context.Context, client *dynamodb.Client, migrations []Migration) error {
	for i := len(migrations) - 1; i >= 0; i-- {
		m := migrations[i]
		log.Infof("Rolling back migration %s", m.Version())
		if err := m.Down(ctx, client); err != nil {
			var notFound *types.ResourceNotFoundException
			if errors.As(err, &notFound) {
				continue
			}
			return err
		}
	}
	return nil
}
