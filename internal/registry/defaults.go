package registry

import "github.com/emiliopalmerini/abtrack/internal/domain"

// Defaults returns the built-in landing page experiments.
func Defaults() []domain.Experiment {
	return []domain.Experiment{
		{
			ID:          "hero-cta-test",
			Name:        "Hero CTA Button Test",
			Description: "Different copy on the main hero call to action",
			Variants: []domain.Variant{
				{
					ID:          "control",
					Name:        "Control - Conocé el Plan",
					Description: "Original button copy",
					Weight:      50,
					Config:      map[string]any{"buttonText": "Conocé el Plan", "buttonColor": "bg-secondary"},
				},
				{
					ID:          "variant-a",
					Name:        "Variant A - Consulta Gratis",
					Description: "Free consultation framing",
					Weight:      50,
					Config:      map[string]any{"buttonText": "Consulta Gratis", "buttonColor": "bg-green-600"},
				},
			},
			TrafficPercent: 100,
			Status:         domain.StatusRunning,
			Goal:           "Increase clicks on the main CTA",
			TargetMetric:   "cta_clicks",
		},
		{
			ID:          "pricing-display-test",
			Name:        "Pricing Display Test",
			Description: "Show or hide prices on the service cards",
			Variants: []domain.Variant{
				{
					ID:          "control",
					Name:        "Control - With Prices",
					Description: "Prices visible on cards",
					Weight:      50,
					Config:      map[string]any{"showPricing": true},
				},
				{
					ID:          "variant-a",
					Name:        "Variant A - No Prices",
					Description: "Prices hidden, benefits first",
					Weight:      50,
					Config:      map[string]any{"showPricing": false},
				},
			},
			TrafficPercent: 50,
			Status:         domain.StatusRunning,
			Goal:           "Increase information requests",
			TargetMetric:   "form_submissions",
		},
	}
}

// Default builds a Registry from Defaults.
func Default() *Registry {
	r, err := New(Defaults(), nil)
	if err != nil {
		panic(err)
	}
	return r
}
