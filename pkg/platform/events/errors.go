package events

import "errors"

// ErrOutboxFull is returned when the emit buffer is saturated. Callers treat
// it as a dropped event, not a failed mutation.
var ErrOutboxFull = errors.New("event outbox full")
