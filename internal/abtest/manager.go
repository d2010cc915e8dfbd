package abtest

import (
	"context"
	"encoding/json"
	"maps"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/abtrack/internal/domain"
	"github.com/emiliopalmerini/abtrack/internal/ports"
)

// DefaultHistoryLimit is the number of events kept in the local history.
const DefaultHistoryLimit = 100

// Manager resolves variants and tracks events for a single identity.
// It is safe for concurrent use.
type Manager struct {
	registry     ports.ExperimentRegistry
	store        ports.KeyValueStore
	dispatcher   *Dispatcher
	logger       *zap.Logger
	now          func() time.Time
	historyLimit int
	fixedUserID  string

	mu          sync.Mutex
	userID      string
	assignments map[string]string
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithDispatcher sets the dispatcher that receives tracked events.
func WithDispatcher(d *Dispatcher) Option {
	return func(m *Manager) { m.dispatcher = d }
}

// WithClock overrides the time source used for ids and event timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithHistoryLimit sets how many events the local history retains.
func WithHistoryLimit(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.historyLimit = n
		}
	}
}

// WithUserID pins the identity instead of reading or generating one.
// The id is still written to the store so later Managers pick it up.
func WithUserID(id string) Option {
	return func(m *Manager) { m.fixedUserID = id }
}

// New creates a Manager, resolves its identity and loads persisted
// assignments. A nil store yields a no-op Manager with the sentinel identity.
func New(ctx context.Context, registry ports.ExperimentRegistry, store ports.KeyValueStore, opts ...Option) *Manager {
	m := &Manager{
		registry:     registry,
		store:        store,
		logger:       zap.NewNop(),
		now:          time.Now,
		historyLimit: DefaultHistoryLimit,
		assignments:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.userID = m.resolveUserID(ctx)
	m.loadStoredVariants(ctx)
	return m
}

// UserID returns the identity this Manager assigns for.
func (m *Manager) UserID() string {
	return m.userID
}

// Enabled reports whether the Manager has persistent storage.
func (m *Manager) Enabled() bool {
	return m.userID != SentinelUserID
}

func (m *Manager) resolveUserID(ctx context.Context) string {
	if m.store == nil {
		return SentinelUserID
	}

	if m.fixedUserID != "" {
		if err := m.store.Set(ctx, KeyUserID, m.fixedUserID); err != nil {
			m.logger.Error("failed to persist user id", zap.Error(err))
		}
		return m.fixedUserID
	}

	id, ok, err := m.store.Get(ctx, KeyUserID)
	if err != nil {
		m.logger.Error("storage unavailable, falling back to sentinel identity", zap.Error(err))
		m.store = nil
		return SentinelUserID
	}
	if ok && id != "" {
		return id
	}

	id = NewUserID(m.now())
	if err := m.store.Set(ctx, KeyUserID, id); err != nil {
		m.logger.Error("storage unavailable, falling back to sentinel identity", zap.Error(err))
		m.store = nil
		return SentinelUserID
	}
	return id
}

func (m *Manager) loadStoredVariants(ctx context.Context) {
	if m.store == nil {
		return
	}

	raw, ok, err := m.store.Get(ctx, KeyVariants)
	if err != nil {
		m.logger.Error("failed to read stored variants", zap.Error(err))
		return
	}
	if !ok || raw == "" {
		return
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		m.logger.Warn("ignoring malformed stored variants", zap.Error(err))
		return
	}

	for experimentID, entry := range entries {
		var variantID string
		if err := json.Unmarshal(entry, &variantID); err != nil || variantID == "" {
			m.logger.Warn("skipping malformed stored assignment",
				zap.String("experiment_id", experimentID),
				zap.ByteString("value", entry),
			)
			continue
		}
		m.assignments[experimentID] = variantID
	}
}

// IsEligible reports whether userID takes part in exp.
func (m *Manager) IsEligible(exp *domain.Experiment, userID string) bool {
	return exp.Eligible(userID)
}

// GetVariant returns the variant assigned to this identity for experimentID,
// or nil when the experiment is unknown, not running, or the identity falls
// outside its traffic sample.
func (m *Manager) GetVariant(ctx context.Context, experimentID string) *domain.Variant {
	if !m.Enabled() {
		return nil
	}

	exp, ok := m.registry.Get(experimentID)
	if !ok || !m.IsEligible(exp, m.userID) {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if variantID, ok := m.assignments[experimentID]; ok {
		if v := exp.Variant(variantID); v != nil {
			return v
		}
		m.logger.Warn("stored variant no longer exists, reassigning",
			zap.String("experiment_id", experimentID),
			zap.String("variant_id", variantID),
		)
	}

	v := exp.Pick(domain.Bucket(m.userID, experimentID))
	if v == nil {
		return nil
	}
	m.assignments[experimentID] = v.ID
	m.persistAssignments(ctx)
	return v
}

// persistAssignments must be called with m.mu held.
func (m *Manager) persistAssignments(ctx context.Context) {
	data, err := json.Marshal(m.assignments)
	if err != nil {
		m.logger.Error("failed to encode assignments", zap.Error(err))
		return
	}
	if err := m.store.Set(ctx, KeyVariants, string(data)); err != nil {
		m.logger.Error("failed to persist assignments", zap.Error(err))
	}
}

// GetConfig returns a copy of the assigned variant's config, or an empty map.
func (m *Manager) GetConfig(ctx context.Context, experimentID string) map[string]any {
	v := m.GetVariant(ctx, experimentID)
	if v == nil || v.Config == nil {
		return map[string]any{}
	}
	return maps.Clone(v.Config)
}

// Assignments returns a snapshot of assignments keyed by experiment id.
func (m *Manager) Assignments() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.assignments)
}

// Track records event for the identity's variant of experimentID. It is a
// no-op when the identity is not enrolled.
func (m *Manager) Track(ctx context.Context, experimentID, event string) {
	m.track(ctx, experimentID, event, nil)
}

// TrackValue is Track with a numeric value attached.
func (m *Manager) TrackValue(ctx context.Context, experimentID, event string, value float64) {
	m.track(ctx, experimentID, event, &value)
}

func (m *Manager) track(ctx context.Context, experimentID, event string, value *float64) {
	v := m.GetVariant(ctx, experimentID)
	if v == nil {
		return
	}

	ev := domain.TrackedEvent{
		TestID:    experimentID,
		VariantID: v.ID,
		UserID:    m.userID,
		Timestamp: m.now().UTC(),
		Event:     event,
		Value:     value,
	}

	m.appendHistory(ctx, ev)

	if m.dispatcher != nil {
		m.dispatcher.Emit(ev)
	}
}

func (m *Manager) appendHistory(ctx context.Context, ev domain.TrackedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := m.readHistory(ctx)
	history = append(history, ev)
	if len(history) > m.historyLimit {
		history = history[len(history)-m.historyLimit:]
	}

	data, err := json.Marshal(history)
	if err != nil {
		m.logger.Error("failed to encode event history", zap.Error(err))
		return
	}
	if err := m.store.Set(ctx, KeyEvents, string(data)); err != nil {
		m.logger.Error("failed to persist event history", zap.Error(err))
	}
}

// History returns the locally retained events, oldest first.
func (m *Manager) History(ctx context.Context) []domain.TrackedEvent {
	if !m.Enabled() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readHistory(ctx)
}

func (m *Manager) readHistory(ctx context.Context) []domain.TrackedEvent {
	raw, ok, err := m.store.Get(ctx, KeyEvents)
	if err != nil {
		m.logger.Error("failed to read event history", zap.Error(err))
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	var history []domain.TrackedEvent
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		m.logger.Warn("discarding malformed event history", zap.Error(err))
		return nil
	}
	return history
}
