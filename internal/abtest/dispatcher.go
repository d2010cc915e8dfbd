package abtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/abtrack/internal/domain"
	"github.com/emiliopalmerini/abtrack/internal/ports"
)

const (
	defaultQueueSize   = 256
	defaultSendTimeout = 10 * time.Second
)

// FailureFunc is called after a sink fails to accept an event.
type FailureFunc func(sink string, err error)

// Dispatcher fans events out to sinks. Each sink has its own bounded queue
// and worker goroutine; Emit never waits for delivery.
type Dispatcher struct {
	logger      *zap.Logger
	queueSize   int
	sendTimeout time.Duration
	onFailure   FailureFunc

	mu      sync.RWMutex
	closed  bool
	workers []*sinkWorker
	wg      sync.WaitGroup
}

type sinkWorker struct {
	sink  ports.EventSink
	queue chan domain.TrackedEvent
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatchLogger sets the logger. The default discards everything.
func WithDispatchLogger(l *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l }
}

// WithQueueSize sets the per-sink queue capacity. Events that arrive while
// a sink's queue is full are dropped for that sink.
func WithQueueSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queueSize = n
		}
	}
}

// WithSendTimeout bounds each individual Send call.
func WithSendTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.sendTimeout = timeout
		}
	}
}

// WithFailureFunc registers fn to be called on every failed or dropped delivery.
func WithFailureFunc(fn FailureFunc) DispatcherOption {
	return func(d *Dispatcher) { d.onFailure = fn }
}

// NewDispatcher starts one worker per sink.
func NewDispatcher(sinks []ports.EventSink, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		logger:      zap.NewNop(),
		queueSize:   defaultQueueSize,
		sendTimeout: defaultSendTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}

	for _, sink := range sinks {
		w := &sinkWorker{
			sink:  sink,
			queue: make(chan domain.TrackedEvent, d.queueSize),
		}
		d.workers = append(d.workers, w)
		d.wg.Add(1)
		go d.run(w)
	}
	return d
}

// Sinks returns the names of the configured sinks.
func (d *Dispatcher) Sinks() []string {
	names := make([]string, len(d.workers))
	for i, w := range d.workers {
		names[i] = w.sink.Name()
	}
	return names
}

// Emit queues ev for every sink and returns immediately.
func (d *Dispatcher) Emit(ev domain.TrackedEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Debug("dispatcher closed, dropping event", zap.String("test_id", ev.TestID))
		return
	}

	for _, w := range d.workers {
		select {
		case w.queue <- ev:
		default:
			d.logger.Warn("sink queue full, dropping event",
				zap.String("sink", w.sink.Name()),
				zap.String("test_id", ev.TestID),
				zap.String("event", ev.Event),
			)
			d.fail(w.sink.Name(), fmt.Errorf("queue full"))
		}
	}
}

func (d *Dispatcher) run(w *sinkWorker) {
	defer d.wg.Done()
	for ev := range w.queue {
		d.deliver(w.sink, ev)
	}
}

func (d *Dispatcher) deliver(sink ports.EventSink, ev domain.TrackedEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("sink panicked: %v", r)
			d.logger.Error("sink dispatch failed", zap.String("sink", sink.Name()), zap.Error(err))
			d.fail(sink.Name(), err)
		}
	}()

	if err := sink.Send(ctx, ev); err != nil {
		d.logger.Error("sink dispatch failed",
			zap.String("sink", sink.Name()),
			zap.String("test_id", ev.TestID),
			zap.String("variant_id", ev.VariantID),
			zap.Error(err),
		)
		d.fail(sink.Name(), err)
	}
}

func (d *Dispatcher) fail(sink string, err error) {
	if d.onFailure != nil {
		d.onFailure(sink, err)
	}
}

// Close stops accepting events, drains the queues and closes sinks that hold
// resources. It returns ctx.Err() if draining does not finish in time.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	for _, w := range d.workers {
		close(w.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	var firstErr error
	for _, w := range d.workers {
		c, ok := w.sink.(ports.CloseableSink)
		if !ok {
			continue
		}
		if err := c.Close(ctx); err != nil {
			d.logger.Warn("failed to close sink", zap.String("sink", w.sink.Name()), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
