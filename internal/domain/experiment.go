package domain

import (
	"errors"
	"fmt"
	"time"
)

// Status is the lifecycle state of an experiment.
// A draft experiment starts running, may be paused and resumed, and is
// eventually completed. Those transitions happen outside this package.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusRunning, StatusPaused, StatusCompleted:
		return true
	}
	return false
}

// Experiment is a named A/B test with a traffic percentage, a status and an
// ordered list of variants. Variant order matters: it decides which variant
// owns each band of the bucket range.
type Experiment struct {
	ID             string     `json:"id" yaml:"id"`
	Name           string     `json:"name" yaml:"name"`
	Description    string     `json:"description" yaml:"description"`
	Variants       []Variant  `json:"variants" yaml:"variants"`
	TrafficPercent int        `json:"trafficPercent" yaml:"trafficPercent"`
	Status         Status     `json:"status" yaml:"status"`
	StartDate      *time.Time `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty" yaml:"endDate,omitempty"`
	Goal           string     `json:"goal" yaml:"goal"`
	TargetMetric   string     `json:"targetMetric" yaml:"targetMetric"`
}

// Variant is one treatment within an experiment.
type Variant struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Weight      int            `json:"weight" yaml:"weight"`
	Config      map[string]any `json:"config" yaml:"config"`
}

var (
	ErrMissingID        = errors.New("experiment id is required")
	ErrNoVariants       = errors.New("experiment has no variants")
	ErrInvalidStatus    = errors.New("invalid experiment status")
	ErrTrafficRange     = errors.New("traffic percent must be between 0 and 100")
	ErrWeightRange      = errors.New("variant weight must be between 0 and 100")
	ErrDuplicateVariant = errors.New("duplicate variant id")
)

// IsRunning reports whether the experiment may assign variants.
func (e *Experiment) IsRunning() bool {
	return e.Status == StatusRunning
}

// WeightTotal returns the sum of all variant weights.
func (e *Experiment) WeightTotal() int {
	total := 0
	for _, v := range e.Variants {
		total += v.Weight
	}
	return total
}

// Variant returns the variant with the given id, or nil.
func (e *Experiment) Variant(id string) *Variant {
	for i := range e.Variants {
		if e.Variants[i].ID == id {
			return &e.Variants[i]
		}
	}
	return nil
}

// Eligible reports whether userID falls inside the experiment's traffic
// sample. Non-running experiments have no eligible users.
func (e *Experiment) Eligible(userID string) bool {
	if !e.IsRunning() {
		return false
	}
	return Bucket(userID, e.ID) < e.TrafficPercent
}

// Pick walks the variants in declared order accumulating weights and returns
// the first one whose cumulative weight exceeds bucket. The first variant is
// returned when no cumulative weight exceeds bucket.
func (e *Experiment) Pick(bucket int) *Variant {
	if len(e.Variants) == 0 {
		return nil
	}
	cumulative := 0
	for i := range e.Variants {
		cumulative += e.Variants[i].Weight
		if bucket < cumulative {
			return &e.Variants[i]
		}
	}
	return &e.Variants[0]
}

// Validate checks structural constraints. It does not require the weights to
// sum to 100.
func (e *Experiment) Validate() error {
	if e.ID == "" {
		return ErrMissingID
	}
	if !e.Status.Valid() {
		return fmt.Errorf("experiment %q: %w: %q", e.ID, ErrInvalidStatus, e.Status)
	}
	if e.TrafficPercent < 0 || e.TrafficPercent > 100 {
		return fmt.Errorf("experiment %q: %w", e.ID, ErrTrafficRange)
	}
	if len(e.Variants) == 0 {
		return fmt.Errorf("experiment %q: %w", e.ID, ErrNoVariants)
	}

	seen := make(map[string]struct{}, len(e.Variants))
	for _, v := range e.Variants {
		if v.Weight < 0 || v.Weight > 100 {
			return fmt.Errorf("experiment %q variant %q: %w", e.ID, v.ID, ErrWeightRange)
		}
		if _, ok := seen[v.ID]; ok {
			return fmt.Errorf("experiment %q: %w: %q", e.ID, ErrDuplicateVariant, v.ID)
		}
		seen[v.ID] = struct{}{}
	}
	return nil
}
