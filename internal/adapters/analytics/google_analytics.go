package analytics

import (
	"context"

	"github.com/go-resty/resty/v2"

	"github.com/emiliopalmerini/abtrack/internal/domain"
)

const (
	gaEventName     = "ab_test_event"
	gaEventCategory = "AB Testing"
)

// GoogleAnalyticsSink reports events through the GA4 Measurement Protocol.
type GoogleAnalyticsSink struct {
	client        *resty.Client
	endpoint      string
	measurementID string
	apiSecret     string
}

func NewGoogleAnalyticsSink(client *resty.Client, endpoint, measurementID, apiSecret string) *GoogleAnalyticsSink {
	return &GoogleAnalyticsSink{
		client:        client,
		endpoint:      endpoint,
		measurementID: measurementID,
		apiSecret:     apiSecret,
	}
}

func (s *GoogleAnalyticsSink) Name() string { return "google_analytics" }

type gaPayload struct {
	ClientID string    `json:"client_id"`
	Events   []gaEvent `json:"events"`
}

type gaEvent struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

func (s *GoogleAnalyticsSink) Send(ctx context.Context, ev domain.TrackedEvent) error {
	params := map[string]any{
		"event_category": gaEventCategory,
		"event_label":    ev.Label(),
	}
	if ev.Value != nil {
		params["value"] = *ev.Value
	}

	payload := gaPayload{
		ClientID: ev.UserID,
		Events:   []gaEvent{{Name: gaEventName, Params: params}},
	}
	query := map[string]string{
		"measurement_id": s.measurementID,
		"api_secret":     s.apiSecret,
	}
	return postJSON(ctx, s.client, "google analytics", s.endpoint, query, payload)
}
