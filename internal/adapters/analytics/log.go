package analytics

import (
	"context"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/abtrack/internal/domain"
)

// LogSink writes events to the structured log.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Send(ctx context.Context, ev domain.TrackedEvent) error {
	fields := []zap.Field{
		zap.String("test_id", ev.TestID),
		zap.String("variant_id", ev.VariantID),
		zap.String("user_id", ev.UserID),
		zap.String("event", ev.Event),
		zap.Time("timestamp", ev.Timestamp),
	}
	if ev.Value != nil {
		fields = append(fields, zap.Float64("value", *ev.Value))
	}
	s.logger.Info("ab test event", fields...)
	return nil
}
