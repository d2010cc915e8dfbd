package analytics

import "time"

// Config holds credentials and endpoints for the HTTP analytics sinks.
// A sink is enabled when its credentials are set.
type Config struct {
	Timeout time.Duration `split_words:"true" default:"10s"`

	// BackendURL receives the raw TrackedEvent JSON, typically the
	// /api/ab-test/track endpoint of `abtrack serve`.
	BackendURL string `split_words:"true"`

	GAMeasurementID string `split_words:"true"`
	GAAPISecret     string `envconfig:"GA_API_SECRET"`
	GAEndpoint      string `split_words:"true" default:"https://www.google-analytics.com/mp/collect"`

	MetaPixelID     string `split_words:"true"`
	MetaAccessToken string `split_words:"true"`
	MetaGraphURL    string `split_words:"true" default:"https://graph.facebook.com/v19.0"`

	MixpanelToken    string `split_words:"true"`
	MixpanelEndpoint string `split_words:"true" default:"https://api.mixpanel.com/track"`

	AmplitudeAPIKey   string `split_words:"true"`
	AmplitudeEndpoint string `split_words:"true" default:"https://api2.amplitude.com/2/httpapi"`
}
