package config

import (
	"context"

	"github.com/pkg/errors"

	"github.com/orchestrated/order-system/orchestrator-service/application"
	"github.com/orchestrated/order-system/orchestrator-service/handlers"
	"github.com/orchestrated/order-system/shared/infrastructure"
	"github.com/orchestrated/order-system/shared/saga"
	"github.com/orchestrated/order-system/shared/telemetry"
)

// Dependencies wires the orchestrator service.
type Dependencies struct {
	Orchestrator    *application.Orchestrator
	EventHandlers   *handlers.OrchestratorEventHandlers
	EventPublisher  *infrastructure.SNSChannelPublisher
	EventSubscriber *infrastructure.SQSChannelSubscriber
	Telemetry       *telemetry.Telemetry
	TelemetryClose  func()
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

	publisher, err := infrastructure.NewSNSChannelPublisherFromConfig(ctx, config.AWS.SNSTopicArn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create SNS publisher")
	}
	deps.EventPublisher = publisher

	deps.Orchestrator = application.NewOrchestrator(saga.DefaultTable(), publisher, tel)
	deps.EventHandlers = handlers.NewOrchestratorEventHandlers(deps.Orchestrator)

	subscriber, err := infrastructure.NewSQSChannelSubscriberFromConfig(ctx, config.AWS.SQSQueueURL, deps.EventHandlers)
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
	if d.TelemetryClose != nil {
		d.TelemetryClose()
	}
	return nil
}
