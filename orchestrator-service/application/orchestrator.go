package application

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/orchestrated/order-system/shared/saga"
	"github.com/orchestrated/order-system/shared/telemetry"
)

// Orchestrator drives the saga lifecycle: it stamps and dispatches the
// initial event, forwards participant replies along the transition table and
// closes the saga on a terminal route. It owns no durable state; everything
// it needs travels inside the event.
type Orchestrator struct {
	table     *saga.Table
	publisher saga.Publisher
	telemetry *telemetry.Telemetry
}

// NewOrchestrator creates an orchestrator over an immutable table. telemetry
// may be nil.
func NewOrchestrator(table *saga.Table, publisher saga.Publisher, tel *telemetry.Telemetry) *Orchestrator {
	return &Orchestrator{
		table:     table,
		publisher: publisher,
		telemetry: tel,
	}
}

// StartSaga stamps the orchestrator as source with SUCCESS, appends the
// opening history record and dispatches the event to the first participant.
// Exactly one history append, exactly one publish.
func (o *Orchestrator) StartSaga(ctx context.Context, event *saga.Event) error {
	event.Mark(saga.SourceOrchestrator, saga.StatusSuccess)

	next, err := o.table.Next(event)
	if err != nil {
		return errors.Wrap(err, "failed to route saga start")
	}

	event.AddHistory("Saga started")
	slog.Info("saga started",
		"order_id", event.OrderID,
		"transaction_id", event.TransactionID,
		"next_channel", next,
	)
	o.count(ctx, "saga_started_total", "Sagas started")

	return errors.Wrapf(o.publisher.Publish(ctx, next, event), "failed to publish to %s", next)
}

// ContinueSaga forwards a participant reply unchanged to the channel the
// table resolves from the reply's (source, status). The participant already
// appended its history record, so none is added here.
func (o *Orchestrator) ContinueSaga(ctx context.Context, event *saga.Event) error {
	next, err := o.table.Next(event)
	if err != nil {
		return errors.Wrap(err, "failed to route saga continuation")
	}

	slog.Info("saga continued",
		"order_id", event.OrderID,
		"transaction_id", event.TransactionID,
		"source", event.Source,
		"status", event.Status,
		"next_channel", next,
	)
	o.count(ctx, "saga_transitions_total", "Saga transitions forwarded",
		attribute.String("source", string(event.Source)),
		attribute.String("status", string(event.Status)),
	)

	return errors.Wrapf(o.publisher.Publish(ctx, next, event), "failed to publish to %s", next)
}

// FinishSagaSuccess closes the saga as successful and emits the final event
// on the ending-notification channel.
func (o *Orchestrator) FinishSagaSuccess(ctx context.Context, event *saga.Event) error {
	event.Advance(saga.SourceOrchestrator, saga.StatusSuccess, "Saga finished successfully")
	slog.Info("saga finished successfully",
		"order_id", event.OrderID,
		"transaction_id", event.TransactionID,
	)
	o.count(ctx, "saga_finished_total", "Sagas finished", attribute.String("outcome", "success"))

	return errors.Wrap(o.notifyEnding(ctx, event), "failed to notify saga success")
}

// FinishSagaFail closes the saga as failed and emits the final event on the
// ending-notification channel. The history trail explains which participant
// failed and why.
func (o *Orchestrator) FinishSagaFail(ctx context.Context, event *saga.Event) error {
	event.Advance(saga.SourceOrchestrator, saga.StatusFail, "Saga finished with errors")
	slog.Info("saga finished with errors",
		"order_id", event.OrderID,
		"transaction_id", event.TransactionID,
	)
	o.count(ctx, "saga_finished_total", "Sagas finished", attribute.String("outcome", "fail"))

	return errors.Wrap(o.notifyEnding(ctx, event), "failed to notify saga failure")
}

// HandleReply advances the saga from a participant reply: forward to the next
// participant, or close the saga when the table yields a terminal channel.
func (o *Orchestrator) HandleReply(ctx context.Context, event *saga.Event) error {
	next, err := o.table.Next(event)
	if err != nil {
		return errors.Wrap(err, "failed to route saga reply")
	}

	switch next {
	case saga.ChannelFinishSuccess:
		return o.FinishSagaSuccess(ctx, event)
	case saga.ChannelFinishFail:
		return o.FinishSagaFail(ctx, event)
	default:
		return o.ContinueSaga(ctx, event)
	}
}

func (o *Orchestrator) notifyEnding(ctx context.Context, event *saga.Event) error {
	return o.publisher.Publish(ctx, saga.ChannelNotifyEnding, event)
}

func (o *Orchestrator) count(ctx context.Context, name, description string, attrs ...attribute.KeyValue) {
	if o.telemetry == nil {
		return
	}
	o.telemetry.Count(ctx, name, description, 1, attrs...)
}
