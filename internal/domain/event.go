package domain

import "time"

// TrackedEvent is an exposure or conversion record tagged with the variant
// the user was assigned. It is never mutated after creation.
type TrackedEvent struct {
	TestID    string    `json:"testId"`
	VariantID string    `json:"variantId"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
	Event     string    `json:"event"`
	Value     *float64  `json:"value,omitempty"`
}

// Label returns the "<testId>_<variantId>" label used by analytics sinks.
func (e TrackedEvent) Label() string {
	return e.TestID + "_" + e.VariantID
}

// ValueOrZero returns the event value, or 0 when none was recorded.
func (e TrackedEvent) ValueOrZero() float64 {
	if e.Value == nil {
		return 0
	}
	return *e.Value
}
