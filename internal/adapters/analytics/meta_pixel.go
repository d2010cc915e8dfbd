package analytics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/emiliopalmerini/abtrack/internal/domain"
)

const metaEventName = "ABTestEvent"

// MetaPixelSink sends custom events through the Meta Conversions API.
type MetaPixelSink struct {
	client      *resty.Client
	graphURL    string
	pixelID     string
	accessToken string
}

func NewMetaPixelSink(client *resty.Client, graphURL, pixelID, accessToken string) *MetaPixelSink {
	return &MetaPixelSink{
		client:      client,
		graphURL:    strings.TrimRight(graphURL, "/"),
		pixelID:     pixelID,
		accessToken: accessToken,
	}
}

func (s *MetaPixelSink) Name() string { return "meta_pixel" }

type metaPayload struct {
	Data []metaEvent `json:"data"`
}

type metaEvent struct {
	EventName    string         `json:"event_name"`
	EventTime    int64          `json:"event_time"`
	ActionSource string         `json:"action_source"`
	UserData     metaUserData   `json:"user_data"`
	CustomData   map[string]any `json:"custom_data"`
}

type metaUserData struct {
	ExternalID []string `json:"external_id"`
}

func (s *MetaPixelSink) Send(ctx context.Context, ev domain.TrackedEvent) error {
	// Meta requires identifiers to be SHA-256 hashed.
	sum := sha256.Sum256([]byte(ev.UserID))

	custom := map[string]any{
		"test_id":    ev.TestID,
		"variant_id": ev.VariantID,
		"event_name": ev.Event,
	}
	if ev.Value != nil {
		custom["value"] = *ev.Value
	}

	payload := metaPayload{Data: []metaEvent{{
		EventName:    metaEventName,
		EventTime:    ev.Timestamp.Unix(),
		ActionSource: "website",
		UserData:     metaUserData{ExternalID: []string{hex.EncodeToString(sum[:])}},
		CustomData:   custom,
	}}}

	url := s.graphURL + "/" + s.pixelID + "/events"
	return postJSON(ctx, s.client, "meta pixel", url, map[string]string{"access_token": s.accessToken}, payload)
}
