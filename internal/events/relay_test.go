package events_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"incentra/internal/events"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(ctx context.Context, records ...*kgo.Record) kgo.ProduceResults {
	f.records = append(f.records, records...)
	results := make(kgo.ProduceResults, 0, len(records))
	for _, rec := range records {
		results = append(results, kgo.ProduceResult{Record: rec, Err: f.err})
	}
	return results
}

func newRelay(store events.Store, producer events.Producer) *events.Relay {
	return events.NewRelay(store, producer, "incentra.events", time.Second, 0, slog.Default(), nil)
}

func TestDrainPublishesAndMarks(t *testing.T) {
	store := events.NewInMemoryStore()
	producer := &fakeProducer{}
	relay := newRelay(store, producer)
	ctx := context.Background()

	publisher := events.NewOutboxPublisher(store, nil)
	require.NoError(t, publisher.Emit(ctx, events.TypeStackSuggested, events.StackSuggestedPayload{CountryCode: "US"}))
	require.NoError(t, publisher.Emit(ctx, events.TypeStackSuggested, events.StackSuggestedPayload{CountryCode: "CA"}))

	require.NoError(t, relay.Drain(ctx))

	require.Len(t, producer.records, 2)
	assert.Equal(t, "incentra.events", producer.records[0].Topic)
	require.Len(t, producer.records[0].Headers, 1)
	assert.Equal(t, "event_type", producer.records[0].Headers[0].Key)
	assert.Equal(t, events.TypeStackSuggested, string(producer.records[0].Headers[0].Value))

	pending, err := store.ListUnpublished(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, pending, "published events are marked")
}

func TestDrainEmptyOutboxIsNoop(t *testing.T) {
	producer := &fakeProducer{}
	relay := newRelay(events.NewInMemoryStore(), producer)

	require.NoError(t, relay.Drain(context.Background()))
	assert.Empty(t, producer.records)
}

func TestDrainKeepsEventsOnProduceFailure(t *testing.T) {
	store := events.NewInMemoryStore()
	producer := &fakeProducer{err: errors.New("broker unavailable")}
	relay := newRelay(store, producer)
	ctx := context.Background()

	publisher := events.NewOutboxPublisher(store, nil)
	require.NoError(t, publisher.Emit(ctx, events.TypeStackSuggested, events.StackSuggestedPayload{}))

	require.Error(t, relay.Drain(ctx))

	pending, err := store.ListUnpublished(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 1, "failed events stay in the outbox")
}

func TestRunStopsOnContextCancel(t *testing.T) {
	relay := newRelay(events.NewInMemoryStore(), &fakeProducer{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop after cancel")
	}
}
