package analytics

import (
	"context"

	"github.com/go-resty/resty/v2"

	"github.com/emiliopalmerini/abtrack/internal/domain"
)

// BackendSink posts the TrackedEvent JSON unchanged to a collection endpoint.
type BackendSink struct {
	client *resty.Client
	url    string
}

func NewBackendSink(client *resty.Client, url string) *BackendSink {
	return &BackendSink{client: client, url: url}
}

func (s *BackendSink) Name() string { return "backend" }

func (s *BackendSink) Send(ctx context.Context, ev domain.TrackedEvent) error {
	return postJSON(ctx, s.client, "backend", s.url, nil, ev)
}
