package analytics

import (
	"context"

	"github.com/go-resty/resty/v2"

	"github.com/emiliopalmerini/abtrack/internal/domain"
)

type AmplitudeSink struct {
	client   *resty.Client
	endpoint string
	apiKey   string
}

func NewAmplitudeSink(client *resty.Client, endpoint, apiKey string) *AmplitudeSink {
	return &AmplitudeSink{client: client, endpoint: endpoint, apiKey: apiKey}
}

func (s *AmplitudeSink) Name() string { return "amplitude" }

type amplitudePayload struct {
	APIKey string           `json:"api_key"`
	Events []amplitudeEvent `json:"events"`
}

type amplitudeEvent struct {
	UserID          string         `json:"user_id"`
	EventType       string         `json:"event_type"`
	EventProperties map[string]any `json:"event_properties"`
	Time            int64          `json:"time"`
}

func (s *AmplitudeSink) Send(ctx context.Context, ev domain.TrackedEvent) error {
	props := map[string]any{
		"test_id":    ev.TestID,
		"variant_id": ev.VariantID,
		"event_name": ev.Event,
	}
	if ev.Value != nil {
		props["event_value"] = *ev.Value
	}

	payload := amplitudePayload{
		APIKey: s.apiKey,
		Events: []amplitudeEvent{{
			UserID:          ev.UserID,
			EventType:       vendorEventName,
			EventProperties: props,
			Time:            ev.Timestamp.UnixMilli(),
		}},
	}
	return postJSON(ctx, s.client, "amplitude", s.endpoint, nil, payload)
}
