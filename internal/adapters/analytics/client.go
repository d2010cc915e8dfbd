package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/abtrack/internal/ports"
)

// NewClient returns the resty client shared by the HTTP sinks.
func NewClient(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
}

func postJSON(ctx context.Context, client *resty.Client, vendor, url string, query map[string]string, body any) error {
	req := client.R().SetContext(ctx).SetBody(body)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Post(url)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", vendor, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%s API error: %d", vendor, resp.StatusCode())
	}
	return nil
}

// ClientSinks returns the sinks a device reports to directly: the generic
// backend endpoint, Google Analytics and Meta Pixel.
func ClientSinks(cfg Config) []ports.EventSink {
	client := NewClient(cfg.Timeout)

	var sinks []ports.EventSink
	if cfg.BackendURL != "" {
		sinks = append(sinks, NewBackendSink(client, cfg.BackendURL))
	}
	if cfg.GAMeasurementID != "" && cfg.GAAPISecret != "" {
		sinks = append(sinks, NewGoogleAnalyticsSink(client, cfg.GAEndpoint, cfg.GAMeasurementID, cfg.GAAPISecret))
	}
	if cfg.MetaPixelID != "" && cfg.MetaAccessToken != "" {
		sinks = append(sinks, NewMetaPixelSink(client, cfg.MetaGraphURL, cfg.MetaPixelID, cfg.MetaAccessToken))
	}
	return sinks
}

// ServerSinks returns the sinks the ingest endpoint forwards to: Mixpanel,
// Amplitude and the structured log.
func ServerSinks(cfg Config, logger *zap.Logger) []ports.EventSink {
	client := NewClient(cfg.Timeout)

	sinks := []ports.EventSink{NewLogSink(logger)}
	if cfg.MixpanelToken != "" {
		sinks = append(sinks, NewMixpanelSink(client, cfg.MixpanelEndpoint, cfg.MixpanelToken))
	}
	if cfg.AmplitudeAPIKey != "" {
		sinks = append(sinks, NewAmplitudeSink(client, cfg.AmplitudeEndpoint, cfg.AmplitudeAPIKey))
	}
	return sinks
}
