// Package events carries the donation lifecycle events out of the service.
// The orchestrator emits through an Emitter backed by a buffered channel; a
// Worker drains the channel into a Sink (Kafka in deployment, memory in tests)
// so publishing never sits on the donate critical path.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Kind names an event type on the wire.
type Kind string

const (
	KindDonationAccepted Kind = "donation.accepted"
	KindDonationVerified Kind = "donation.verified"
)

// Event is the envelope published for every accepted donation and every
// successful proof verification.
type Event struct {
	ID         string          `json:"id"`
	Kind       Kind            `json:"kind"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Sink publishes events to a destination.
type Sink interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Emitter stamps and enqueues events. Enqueueing is non-blocking: when the
// buffer is full the event is dropped and the caller's mutation still commits,
// matching the contract that event delivery is best-effort.
type Emitter struct {
	outbox chan Event
}

func NewEmitter(buffer int) *Emitter {
	if buffer <= 0 {
		buffer = 256
	}
	return &Emitter{outbox: make(chan Event, buffer)}
}

// Emit builds the envelope and hands it to the worker. The payload must be
// JSON-marshalable; a marshal failure is returned to the caller but never
// blocks the donation itself (the orchestrator logs and continues).
func (e *Emitter) Emit(ctx context.Context, kind Kind, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	event := Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}
	select {
	case e.outbox <- event:
	default:
		return ErrOutboxFull
	}
	return nil
}

// Outbox exposes the channel for the worker.
func (e *Emitter) Outbox() <-chan Event {
	return e.outbox
}

// Worker consumes events from the emitter and publishes them to the sink. It
// keeps background processing testable without wiring queue implementations
// into the orchestrator.
type Worker struct {
	sink  Sink
	inbox <-chan Event
}

func NewWorker(sink Sink, inbox <-chan Event) *Worker {
	return &Worker{sink: sink, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Publish(ctx, event); err != nil {
				return err
			}
		}
	}
}
