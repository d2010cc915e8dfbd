package ports

import (
	"context"

	"github.com/emiliopalmerini/abtrack/internal/domain"
)

// EventSink delivers tracked events to an external analytics system.
type EventSink interface {
	// Name identifies the sink in logs and metrics.
	Name() string
	// Send delivers a single event. Callers treat delivery as best-effort.
	Send(ctx context.Context, event domain.TrackedEvent) error
}

// CloseableSink is implemented by sinks that hold connections or buffers.
type CloseableSink interface {
	EventSink
	Close(ctx context.Context) error
}
