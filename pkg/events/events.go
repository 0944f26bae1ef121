// Package events mirrors persisted ingest state transitions onto an external
// live-update channel. The core's obligation is only the persisted monotonic
// transition; publishing is best effort and never blocks or fails an ingest.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Transition is one ingest state change on a single lane.
type Transition struct {
	IngestID uuid.UUID `json:"ingest_id"`
	Lane     string    `json:"lane"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	At       time.Time `json:"at"`
}

// Publisher surfaces ingest transitions to subscribers.
type Publisher interface {
	Publish(ctx context.Context, t Transition)
	Close()
}

// Noop discards all transitions. Used when no channel is configured.
type Noop struct{}

// Publish discards the transition.
func (Noop) Publish(context.Context, Transition) {}

// Close is a no-op.
func (Noop) Close() {}
