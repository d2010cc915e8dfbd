package domain

import (
	"math"
	"testing"
	"time"
)

func floatPtr(f float64) *float64 { return &f }

func TestComputeVariantStats(t *testing.T) {
	now := time.Now()
	events := []TrackedEvent{
		{TestID: "t", VariantID: "control", UserID: "u1", Event: "click", Timestamp: now, Value: floatPtr(10)},
		{TestID: "t", VariantID: "variant-a", UserID: "u2", Event: "click", Timestamp: now},
		{TestID: "t", VariantID: "control", UserID: "u1", Event: "submit", Timestamp: now, Value: floatPtr(5)},
		{TestID: "t", VariantID: "control", UserID: "u3", Event: "click", Timestamp: now},
	}

	stats := ComputeVariantStats(events)
	if len(stats) != 2 {
		t.Fatalf("Expected 2 variants, got %d", len(stats))
	}

	control := stats[0]
	if control.VariantID != "control" {
		t.Fatalf("Expected control first, got %s", control.VariantID)
	}
	if control.TotalEvents != 3 {
		t.Errorf("Expected 3 control events, got %d", control.TotalEvents)
	}
	if control.UniqueUsers != 2 {
		t.Errorf("Expected 2 unique control users, got %d", control.UniqueUsers)
	}
	if control.EventTypes["click"] != 2 || control.EventTypes["submit"] != 1 {
		t.Errorf("Unexpected event types: %v", control.EventTypes)
	}
	if control.TotalValue != 15 {
		t.Errorf("Expected total value 15, got %f", control.TotalValue)
	}
	if math.Abs(control.AvgValue-5) > 1e-9 {
		t.Errorf("Expected avg value 5, got %f", control.AvgValue)
	}

	variantA := stats[1]
	if variantA.TotalEvents != 1 || variantA.TotalValue != 0 || variantA.AvgValue != 0 {
		t.Errorf("Unexpected variant-a stats: %+v", variantA)
	}
}

func TestComputeVariantStats_Empty(t *testing.T) {
	stats := ComputeVariantStats(nil)
	if len(stats) != 0 {
		t.Errorf("Expected no stats, got %d", len(stats))
	}
}
