package turso_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/abtrack/internal/adapters/turso"
	"github.com/emiliopalmerini/abtrack/internal/domain"
)

func TestEventRepository_SaveAndList(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := turso.NewEventRepository(db)

	value := 42.5
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, &domain.TrackedEvent{
		TestID: "hero-cta-test", VariantID: "control", UserID: "u1",
		Event: "cta_click", Timestamp: ts, Value: &value,
	}))
	require.NoError(t, repo.Save(ctx, &domain.TrackedEvent{
		TestID: "hero-cta-test", VariantID: "variant-a", UserID: "u2",
		Event: "cta_click", Timestamp: ts.Add(time.Minute),
	}))
	require.NoError(t, repo.Save(ctx, &domain.TrackedEvent{
		TestID: "pricing-display-test", VariantID: "control", UserID: "u1",
		Event: "form_submit", Timestamp: ts,
	}))

	events, err := repo.ListByExperiment(ctx, "hero-cta-test", 0)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "control", events[0].VariantID)
	require.NotNil(t, events[0].Value)
	assert.Equal(t, 42.5, *events[0].Value)
	assert.True(t, ts.Equal(events[0].Timestamp))
	assert.Nil(t, events[1].Value)

	count, err := repo.CountByExperiment(ctx, "hero-cta-test")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestEventRepository_ListReturnsMostRecentInOrder(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := turso.NewEventRepository(db)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Save(ctx, &domain.TrackedEvent{
			TestID: "t", VariantID: "control", UserID: "u",
			Event: fmt.Sprintf("e%d", i), Timestamp: time.Now(),
		}))
	}

	events, err := repo.ListByExperiment(ctx, "t", 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "e3", events[0].Event)
	assert.Equal(t, "e4", events[1].Event)
}

func TestEventRepository_ListFailsOnUnreadableTimestamp(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := turso.NewEventRepository(db)

	_, err := db.ExecContext(ctx, `
		INSERT INTO tracked_events (test_id, variant_id, user_id, event, value, timestamp, received_at)
		VALUES ('hero-cta-test', 'control', 'u1', 'cta_click', NULL, '3170843-11-07T09:46:40Z', '2026-03-01T12:00:00Z')
	`)
	require.NoError(t, err)

	events, err := repo.ListByExperiment(ctx, "hero-cta-test", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse event timestamp")
	assert.Nil(t, events)
}
