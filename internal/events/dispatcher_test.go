package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/order-manager/internal/events"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()

	var received []events.Event
	dispatcher.Subscribe(events.EventOrderCreated, func(_ context.Context, e events.Event) error {
		received = append(received, e)
		return nil
	})

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:   "evt-1",
		Type: events.EventOrderCreated,
	})
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "evt-1", received[0].ID)
}

func TestDispatcherIgnoresOtherEventTypes(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()

	called := false
	dispatcher.Subscribe(events.EventOrderDeleted, func(context.Context, events.Event) error {
		called = true
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventOrderCreated}))
	assert.False(t, called)
}

func TestDispatcherContinuesAfterHandlerError(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()

	second := false
	dispatcher.Subscribe(events.EventOrderCreated, func(context.Context, events.Event) error {
		return errors.New("boom")
	})
	dispatcher.Subscribe(events.EventOrderCreated, func(context.Context, events.Event) error {
		second = true
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventOrderCreated}))
	assert.True(t, second)
}
