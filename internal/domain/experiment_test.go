package domain

import (
	"errors"
	"fmt"
	"testing"
)

func twoWay(traffic int, status Status) *Experiment {
	return &Experiment{
		ID:             "hero-cta-test",
		TrafficPercent: traffic,
		Status:         status,
		Variants: []Variant{
			{ID: "control", Weight: 50},
			{ID: "variant-a", Weight: 50},
		},
	}
}

func TestBucket_Deterministic(t *testing.T) {
	userID := "user_1700000000_abc123456"
	first := Bucket(userID, "hero-cta-test")
	for i := 0; i < 100; i++ {
		if got := Bucket(userID, "hero-cta-test"); got != first {
			t.Fatalf("Bucket changed between calls: %d != %d", got, first)
		}
	}
	if first < 0 || first >= BucketCount {
		t.Errorf("Bucket %d out of range", first)
	}
}

func TestExperiment_Pick(t *testing.T) {
	exp := &Experiment{
		Variants: []Variant{
			{ID: "a", Weight: 20},
			{ID: "b", Weight: 30},
			{ID: "c", Weight: 50},
		},
	}

	tests := []struct {
		bucket   int
		expected string
	}{
		{0, "a"},
		{19, "a"},
		{20, "b"},
		{49, "b"},
		{50, "c"},
		{99, "c"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("bucket %d", tt.bucket), func(t *testing.T) {
			got := exp.Pick(tt.bucket)
			if got == nil || got.ID != tt.expected {
				t.Errorf("Pick(%d) = %v, want %s", tt.bucket, got, tt.expected)
			}
		})
	}
}

func TestExperiment_Pick_UnderweightFallsBackToFirst(t *testing.T) {
	exp := &Experiment{
		Variants: []Variant{
			{ID: "a", Weight: 10},
			{ID: "b", Weight: 10},
		},
	}

	if got := exp.Pick(15); got.ID != "b" {
		t.Errorf("Expected b for bucket 15, got %s", got.ID)
	}
	if got := exp.Pick(50); got.ID != "a" {
		t.Errorf("Expected fallback to a for bucket 50, got %s", got.ID)
	}
}

func TestExperiment_Pick_NoVariants(t *testing.T) {
	exp := &Experiment{}
	if got := exp.Pick(0); got != nil {
		t.Errorf("Expected nil, got %v", got)
	}
}

func TestExperiment_Eligible(t *testing.T) {
	users := make([]string, 500)
	for i := range users {
		users[i] = fmt.Sprintf("user_%d", i)
	}

	full := twoWay(100, StatusRunning)
	none := twoWay(0, StatusRunning)
	paused := twoWay(100, StatusPaused)

	for _, u := range users {
		if !full.Eligible(u) {
			t.Fatalf("Expected %s eligible at 100%% traffic", u)
		}
		if none.Eligible(u) {
			t.Fatalf("Expected %s ineligible at 0%% traffic", u)
		}
		if paused.Eligible(u) {
			t.Fatalf("Expected %s ineligible for paused experiment", u)
		}
	}
}

func TestExperiment_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(e *Experiment)
		wantErr error
	}{
		{"valid", func(e *Experiment) {}, nil},
		{"missing id", func(e *Experiment) { e.ID = "" }, ErrMissingID},
		{"bad status", func(e *Experiment) { e.Status = "archived" }, ErrInvalidStatus},
		{"traffic over 100", func(e *Experiment) { e.TrafficPercent = 101 }, ErrTrafficRange},
		{"negative traffic", func(e *Experiment) { e.TrafficPercent = -1 }, ErrTrafficRange},
		{"no variants", func(e *Experiment) { e.Variants = nil }, ErrNoVariants},
		{"negative weight", func(e *Experiment) { e.Variants[0].Weight = -5 }, ErrWeightRange},
		{"duplicate variant", func(e *Experiment) { e.Variants[1].ID = "control" }, ErrDuplicateVariant},
		{"weights under 100 are allowed", func(e *Experiment) { e.Variants[1].Weight = 10 }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := twoWay(100, StatusRunning)
			tt.mutate(exp)
			err := exp.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestExperiment_WeightTotalAndLookup(t *testing.T) {
	exp := twoWay(100, StatusRunning)
	if exp.WeightTotal() != 100 {
		t.Errorf("Expected weight total 100, got %d", exp.WeightTotal())
	}
	if v := exp.Variant("variant-a"); v == nil || v.ID != "variant-a" {
		t.Errorf("Expected variant-a lookup to succeed, got %v", v)
	}
	if v := exp.Variant("missing"); v != nil {
		t.Errorf("Expected nil for unknown variant, got %v", v)
	}
}

func TestTrackedEvent_Label(t *testing.T) {
	ev := TrackedEvent{TestID: "hero-cta-test", VariantID: "control"}
	if ev.Label() != "hero-cta-test_control" {
		t.Errorf("Unexpected label %q", ev.Label())
	}
	if ev.ValueOrZero() != 0 {
		t.Errorf("Expected zero value")
	}
}
