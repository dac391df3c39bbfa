package config

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/orchestrated/order-system/product-validation-service/application"
	"github.com/orchestrated/order-system/product-validation-service/handlers"
	"github.com/orchestrated/order-system/product-validation-service/infrastructure"
	sharedinfra "github.com/orchestrated/order-system/shared/infrastructure"
	"github.com/orchestrated/order-system/shared/telemetry"
)

// Dependencies wires the product validation service.
type Dependencies struct {
	DB                 *sqlx.DB
	ValidateProducts   *application.ValidateProducts
	RollbackValidation *application.RollbackValidation
	EventHandlers      *handlers.ValidationEventHandlers
	EventPublisher     *sharedinfra.SNSChannelPublisher
	EventSubscriber    *sharedinfra.SQSChannelSubscriber
	Telemetry          *telemetry.Telemetry
	TelemetryClose     func()
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

	validationRepository := infrastructure.NewPostgresValidationRepository(db)
	productRepository := infrastructure.NewPostgresProductRepository(db)
	deps.ValidateProducts = application.NewValidateProducts(validationRepository, productRepository, publisher)
	deps.RollbackValidation = application.NewRollbackValidation(validationRepository, publisher)
	deps.EventHandlers = handlers.NewValidationEventHandlers(deps.ValidateProducts, deps.RollbackValidation)

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
