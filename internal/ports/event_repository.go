package ports

import (
	"context"

	"github.com/emiliopalmerini/abtrack/internal/domain"
)

// EventRepository stores events received by the ingest endpoint.
type EventRepository interface {
	Save(ctx context.Context, event *domain.TrackedEvent) error
	// ListByExperiment returns events for testID in chronological order.
	// A limit of zero or less returns every event.
	ListByExperiment(ctx context.Context, testID string, limit int) ([]domain.TrackedEvent, error)
	CountByExperiment(ctx context.Context, testID string) (int64, error)
}
