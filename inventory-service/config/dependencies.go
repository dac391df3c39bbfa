package config

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/orchestrated/order-system/inventory-service/application"
	"github.com/orchestrated/order-system/inventory-service/handlers"
	"github.com/orchestrated/order-system/inventory-service/infrastructure"
	sharedinfra "github.com/orchestrated/order-system/shared/infrastructure"
	"github.com/orchestrated/order-system/shared/telemetry"
)

// Dependencies wires the inventory service.
type Dependencies struct {
	DB                *sqlx.DB
	UpdateInventory   *application.UpdateInventory
	RollbackInventory *application.RollbackInventory
	EventHandlers     *handlers.InventoryEventHandlers
	EventPublisher    *sharedinfra.SNSChannelPublisher
	EventSubscriber   *sharedinfra.SQSChannelSubscriber
	Telemetry         *telemetry.Telemetry
	TelemetryClose    func()
}

// BuildDependencies constructs the full dependency graph.
func BuildDependencies(ctx context.Context, config *Config) (*Dependencies, error) {
	deps := &Dependencies{}

	tel, telClose, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    config.ServiceName,
		ServiceVersion: "1.0.0",
		OTLPEndpoint:   config.OTLP.Endpoint,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to init telemetry")
	}
	deps.Telemetry = tel
	deps.TelemetryClose = telClose

	db, err := sqlx.ConnectContext(ctx, "postgres", config.Database.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to postgres")
	}
	deps.DB = db

	publisher, err := sharedinfra.NewSNSChannelPublisherFromConfig(ctx, config.AWS.SNSTopicArn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create SNS publisher")
	}
	deps.EventPublisher = publisher

	inventoryRepository := infrastructure.NewPostgresInventoryRepository(db)
	orderInventoryRepository := infrastructure.NewPostgresOrderInventoryRepository(db)
	deps.UpdateInventory = application.NewUpdateInventory(inventoryRepository, orderInventoryRepository, publisher)
	deps.RollbackInventory = application.NewRollbackInventory(inventoryRepository, orderInventoryRepository, publisher)
	deps.EventHandlers = handlers.NewInventoryEventHandlers(deps.UpdateInventory, deps.RollbackInventory)

	subscriber, err := sharedinfra.NewSQSChannelSubscriberFromConfig(ctx, config.AWS.SQSQueueURL, deps.EventHandlers)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create SQS subscriber")
	}
	deps.EventSubscriber = subscriber

	return deps, nil
}

// Close releases held resources.
func (d *Dependencies) Close(ctx context.Context) error {
	if d.EventSubscriber != nil {
		if err := d.EventSubscriber.Stop(ctx); err != nil {
			return errors.Wrap(err, "failed to stop event subscriber")
		}
	}
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			return errors.Wrap(err, "failed to close database")
		}
	}
	if d.TelemetryClose != nil {
		d.TelemetryClose()
	}
	return nil
}
