package otel

import "time"

// Config controls the OTLP/gRPC metrics push. Nested under the OTEL prefix
// it reads ABTRACK_OTEL_ENABLED, ABTRACK_OTEL_ENDPOINT and so on.
type Config struct {
	Enabled        bool
	Endpoint       string        `default:"localhost:4317"`
	Insecure       bool          `default:"true"`
	ExportInterval time.Duration `split_words:"true" default:"15s"`
}
