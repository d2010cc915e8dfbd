package ports

import "github.com/emiliopalmerini/abtrack/internal/domain"

// ExperimentRegistry is the read-only set of experiments known to the process.
type ExperimentRegistry interface {
	Get(id string) (*domain.Experiment, bool)
	List() []*domain.Experiment
}
