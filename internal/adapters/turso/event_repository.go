package turso

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/emiliopalmerini/abtrack/internal/domain"
	"github.com/emiliopalmerini/abtrack/internal/util"
)

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Save(ctx context.Context, event *domain.TrackedEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tracked_events (test_id, variant_id, user_id, event, value, timestamp, received_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		event.TestID,
		event.VariantID,
		event.UserID,
		event.Event,
		util.NullFloat64(event.Value),
		event.Timestamp.UTC().Format(time.RFC3339Nano),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}
	return nil
}

// ListByExperiment returns the most recent limit events for testID, oldest first.
func (r *EventRepository) ListByExperiment(ctx context.Context, testID string, limit int) ([]domain.TrackedEvent, error) {
	query := `
		SELECT test_id, variant_id, user_id, event, value, timestamp FROM (
			SELECT id, test_id, variant_id, user_id, event, value, timestamp
			FROM tracked_events WHERE test_id = ? ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC
	`
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx, query, testID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []domain.TrackedEvent
	for rows.Next() {
		var (
			ev    domain.TrackedEvent
			value sql.NullFloat64
			ts    string
		)
		if err := rows.Scan(&ev.TestID, &ev.VariantID, &ev.UserID, &ev.Event, &value, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.Value = util.NullFloat64ToPtr(value)
		ev.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse event timestamp %q: %w", ts, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

func (r *EventRepository) CountByExperiment(ctx context.Context, testID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracked_events WHERE test_id = ?`, testID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}
