package abtest

import (
	"context"
	"errors"
	"sync"

	"github.com/emiliopalmerini/abtrack/internal/domain"
	"github.com/emiliopalmerini/abtrack/internal/registry"
)

type recordingSink struct {
	name string

	mu     sync.Mutex
	events []domain.TrackedEvent
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Send(ctx context.Context, ev domain.TrackedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) Events() []domain.TrackedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.TrackedEvent, len(s.events))
	copy(out, s.events)
	return out
}

type failingSink struct{ name string }

func (s *failingSink) Name() string { return s.name }

func (s *failingSink) Send(ctx context.Context, ev domain.TrackedEvent) error {
	return errors.New("connection refused")
}

type panickingSink struct{}

func (s *panickingSink) Name() string { return "panicky" }

func (s *panickingSink) Send(ctx context.Context, ev domain.TrackedEvent) error {
	panic("boom")
}

type blockingSink struct {
	release chan struct{}
}

func (s *blockingSink) Name() string { return "blocking" }

func (s *blockingSink) Send(ctx context.Context, ev domain.TrackedEvent) error {
	<-s.release
	return nil
}

type closingSink struct {
	recordingSink
	closed bool
}

func (s *closingSink) Close(ctx context.Context) error {
	s.closed = true
	return nil
}

type brokenStore struct{}

func (brokenStore) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, errors.New("storage disabled")
}

func (brokenStore) Set(ctx context.Context, key, value string) error {
	return errors.New("storage disabled")
}

func testRegistry(experiments ...domain.Experiment) *registry.Registry {
	if len(experiments) == 0 {
		return registry.Default()
	}
	r, err := registry.New(experiments, nil)
	if err != nil {
		panic(err)
	}
	return r
}

func experiment(id string, traffic int, status domain.Status, weights ...int) domain.Experiment {
	exp := domain.Experiment{
		ID:             id,
		Name:           id,
		TrafficPercent: traffic,
		Status:         status,
	}
	ids := []string{"control", "variant-a", "variant-b", "variant-c"}
	for i, w := range weights {
		exp.Variants = append(exp.Variants, domain.Variant{
			ID:     ids[i],
			Weight: w,
			Config: map[string]any{"index": i},
		})
	}
	return exp
}
