package otel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/emiliopalmerini/abtrack/internal/domain"
)

func TestNewSink_Disabled(t *testing.T) {
	_, err := NewSink(context.Background(), Config{Enabled: false, Endpoint: "localhost:4317"})
	assert.Error(t, err)

	_, err = NewSink(context.Background(), Config{Enabled: true})
	assert.Error(t, err)
}

func TestSink_RecordsEvents(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	sink, err := NewSinkWithProvider(provider, provider.Shutdown)
	require.NoError(t, err)

	ctx := context.Background()
	value := 12.5
	ev := domain.TrackedEvent{
		TestID:    "hero-cta-test",
		VariantID: "control",
		UserID:    "user_1",
		Timestamp: time.Now(),
		Event:     "click",
	}
	require.NoError(t, sink.Send(ctx, ev))
	ev.Event = "purchase"
	ev.Value = &value
	require.NoError(t, sink.Send(ctx, ev))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := map[string]metricdata.Metrics{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		byName[m.Name] = m
	}

	counter, ok := byName["abtrack_events_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range counter.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)

	hist, ok := byName["abtrack_event_value"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	assert.Equal(t, 12.5, hist.DataPoints[0].Sum)

	require.NoError(t, sink.Close(ctx))
}

func TestNoOpSink(t *testing.T) {
	sink := NewNoOpSink()
	assert.Equal(t, "otel", sink.Name())
	assert.NoError(t, sink.Send(context.Background(), domain.TrackedEvent{}))
	assert.NoError(t, sink.Close(context.Background()))
}
