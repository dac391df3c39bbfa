package infrastructure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchestrated/order-system/shared/models"
	"github.com/orchestrated/order-system/shared/saga"
)

func TestMemoryBus_DeliversByChannel(t *testing.T) {
	bus := NewMemoryBus()

	var got []saga.Channel
	bus.Subscribe(saga.ChannelPaymentExecute, saga.NewHandlerFunc("payment", func(ctx context.Context, ch saga.Channel, e *saga.Event) error {
		got = append(got, ch)
		return nil
	}))

	order := models.Order{ID: models.GenerateUUID(), TransactionID: models.NewTransactionID()}
	event := saga.NewEvent(order)

	require.NoError(t, bus.Publish(context.Background(), saga.ChannelPaymentExecute, event))
	require.NoError(t, bus.Publish(context.Background(), saga.ChannelInventoryExecute, event))

	assert.Equal(t, []saga.Channel{saga.ChannelPaymentExecute}, got)
	assert.Len(t, bus.Published(), 2)
	assert.Len(t, bus.PublishedTo(saga.ChannelPaymentExecute), 1)
}

func TestMemoryBus_HandlersGetIndependentCopies(t *testing.T) {
	bus := NewMemoryBus()

	bus.Subscribe(saga.ChannelOrchestrator, saga.NewHandlerFunc("mutator", func(ctx context.Context, ch saga.Channel, e *saga.Event) error {
		e.Advance(saga.SourcePayment, saga.StatusSuccess, "mutated downstream")
		return nil
	}))

	order := models.Order{ID: models.GenerateUUID(), TransactionID: models.NewTransactionID()}
	event := saga.NewEvent(order)
	event.Advance(saga.SourceOrchestrator, saga.StatusSuccess, "Saga started")

	require.NoError(t, bus.Publish(context.Background(), saga.ChannelOrchestrator, event))

	// The publisher's copy and the recorded delivery are untouched by the
	// handler's mutation.
	assert.Len(t, event.History, 1)
	recorded := bus.PublishedTo(saga.ChannelOrchestrator)
	require.Len(t, recorded, 1)
	assert.Len(t, recorded[0].Event.History, 1)
}
