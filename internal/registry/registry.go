// Package registry holds the static set of experiments known to a process.
//
// A Registry is built once at start-up, either from the built-in defaults or
// from a YAML file, and is read-only afterwards.
package registry

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/emiliopalmerini/abtrack/internal/domain"
)

var ErrDuplicateExperiment = errors.New("duplicate experiment id")

// Registry is an immutable, ordered collection of experiments.
type Registry struct {
	experiments []*domain.Experiment
	byID        map[string]*domain.Experiment
}

type file struct {
	Experiments []domain.Experiment `yaml:"experiments"`
}

// New validates experiments and builds a Registry.
// Experiments whose variant weights do not sum to 100 are accepted; a
// warning is logged because unassigned buckets fall back to the first
// variant and overweight tails become unreachable.
func New(experiments []domain.Experiment, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Registry{
		experiments: make([]*domain.Experiment, 0, len(experiments)),
		byID:        make(map[string]*domain.Experiment, len(experiments)),
	}

	for i := range experiments {
		exp := experiments[i]
		if err := exp.Validate(); err != nil {
			return nil, err
		}
		if _, ok := r.byID[exp.ID]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateExperiment, exp.ID)
		}
		if total := exp.WeightTotal(); total != domain.BucketCount {
			logger.Warn("experiment variant weights do not sum to 100",
				zap.String("experiment_id", exp.ID),
				zap.Int("weight_total", total),
			)
		}

		r.experiments = append(r.experiments, &exp)
		r.byID[exp.ID] = &exp
	}

	return r, nil
}

// Load reads a YAML registry file of the form:
//
//	experiments:
//	  - id: hero-cta-test
//	    status: running
//	    trafficPercent: 100
//	    variants:
//	      - id: control
//	        weight: 50
func Load(path string, logger *zap.Logger) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse registry file: %w", err)
	}

	return New(f.Experiments, logger)
}

// Get returns the experiment with the given id.
func (r *Registry) Get(id string) (*domain.Experiment, bool) {
	exp, ok := r.byID[id]
	return exp, ok
}

// List returns experiments in declaration order.
func (r *Registry) List() []*domain.Experiment {
	out := make([]*domain.Experiment, len(r.experiments))
	copy(out, r.experiments)
	return out
}
