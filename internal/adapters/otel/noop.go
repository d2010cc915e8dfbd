package otel

import (
	"context"

	"github.com/emiliopalmerini/abtrack/internal/domain"
)

// NoOpSink stands in for Sink when export is disabled.
type NoOpSink struct{}

func NewNoOpSink() *NoOpSink {
	return &NoOpSink{}
}

func (s *NoOpSink) Name() string { return "otel" }

func (s *NoOpSink) Send(ctx context.Context, ev domain.TrackedEvent) error {
	return nil
}

func (s *NoOpSink) Close(ctx context.Context) error {
	return nil
}
