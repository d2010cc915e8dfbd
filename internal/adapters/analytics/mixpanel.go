package analytics

import (
	"context"

	"github.com/go-resty/resty/v2"

	"github.com/emiliopalmerini/abtrack/internal/domain"
)

const vendorEventName = "AB Test Event"

type MixpanelSink struct {
	client   *resty.Client
	endpoint string
	token    string
}

func NewMixpanelSink(client *resty.Client, endpoint, token string) *MixpanelSink {
	return &MixpanelSink{client: client, endpoint: endpoint, token: token}
}

func (s *MixpanelSink) Name() string { return "mixpanel" }

type mixpanelEvent struct {
	Event      string         `json:"event"`
	Properties map[string]any `json:"properties"`
}

func (s *MixpanelSink) Send(ctx context.Context, ev domain.TrackedEvent) error {
	props := map[string]any{
		"token":       s.token,
		"distinct_id": ev.UserID,
		"test_id":     ev.TestID,
		"variant_id":  ev.VariantID,
		"event_name":  ev.Event,
		"time":        ev.Timestamp.Unix(),
	}
	if ev.Value != nil {
		props["event_value"] = *ev.Value
	}

	body := []mixpanelEvent{{Event: vendorEventName, Properties: props}}
	return postJSON(ctx, s.client, "mixpanel", s.endpoint, nil, body)
}
