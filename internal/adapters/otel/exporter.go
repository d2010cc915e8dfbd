package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/abtrack/internal/domain"
)

const (
	serviceName    = "abtrack"
	serviceVersion = "1.0.0"
)

// Sink records tracked events as OTEL metrics and pushes them to a collector.
type Sink struct {
	shutdown    func(context.Context) error
	eventsTotal metric.Int64Counter
	valueHist   metric.Float64Histogram
}

// NewSink creates a sink that exports over OTLP/gRPC.
func NewSink(ctx context.Context, cfg Config) (*Sink, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.ExportInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.ExportInterval))
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	return NewSinkWithProvider(provider, provider.Shutdown)
}

// NewSinkWithProvider builds a sink on an existing meter provider. shutdown
// may be nil when the caller owns the provider.
func NewSinkWithProvider(provider metric.MeterProvider, shutdown func(context.Context) error) (*Sink, error) {
	meter := provider.Meter(serviceName)

	eventsTotal, err := meter.Int64Counter(
		"abtrack_events_total",
		metric.WithDescription("Tracked experiment events"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating events counter: %w", err)
	}

	valueHist, err := meter.Float64Histogram(
		"abtrack_event_value",
		metric.WithDescription("Values attached to tracked events"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating value histogram: %w", err)
	}

	if shutdown == nil {
		shutdown = func(context.Context) error { return nil }
	}
	return &Sink{
		shutdown:    shutdown,
		eventsTotal: eventsTotal,
		valueHist:   valueHist,
	}, nil
}

func (s *Sink) Name() string { return "otel" }

func (s *Sink) Send(ctx context.Context, ev domain.TrackedEvent) error {
	opt := metric.WithAttributes(
		attribute.String("test_id", ev.TestID),
		attribute.String("variant_id", ev.VariantID),
		attribute.String("event", ev.Event),
	)

	s.eventsTotal.Add(ctx, 1, opt)
	if ev.Value != nil {
		s.valueHist.Record(ctx, *ev.Value, opt)
	}
	return nil
}

// Close shuts down the exporter and flushes any pending metrics.
func (s *Sink) Close(ctx context.Context) error {
	return s.shutdown(ctx)
}
