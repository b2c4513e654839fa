package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitterStampsEnvelope(t *testing.T) {
	emitter := NewEmitter(4)

	err := emitter.Emit(context.Background(), KindDonationAccepted, map[string]string{"donor": "alice"})
	require.NoError(t, err)

	select {
	case event := <-emitter.Outbox():
		assert.NotEmpty(t, event.ID)
		assert.Equal(t, KindDonationAccepted, event.Kind)
		assert.False(t, event.OccurredAt.IsZero())
		assert.JSONEq(t, `{"donor":"alice"}`, string(event.Payload))
	default:
		t.Fatal("expected an event in the outbox")
	}
}

func TestEmitterFullOutboxDropsNotBlocks(t *testing.T) {
	emitter := NewEmitter(1)

	require.NoError(t, emitter.Emit(context.Background(), KindDonationAccepted, 1))
	err := emitter.Emit(context.Background(), KindDonationAccepted, 2)
	assert.ErrorIs(t, err, ErrOutboxFull)
}

func TestWorkerDrainsIntoSink(t *testing.T) {
	emitter := NewEmitter(4)
	sink := NewMemorySink()
	worker := NewWorker(sink, emitter.Outbox())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	require.NoError(t, emitter.Emit(ctx, KindDonationVerified, map[string]string{"invoice_id": "INV-1"}))

	require.Eventually(t, func() bool {
		return len(sink.Events()) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	published := sink.Events()
	require.Len(t, published, 1)
	assert.Equal(t, KindDonationVerified, published[0].Kind)
}
