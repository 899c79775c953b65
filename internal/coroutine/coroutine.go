// Package coroutine implements the Language's cooperative concurrency
// model (§5): a bounded-concurrency carrier that runs launched
// coroutines as goroutines, deferred results with await/isActive/
// isCompleted, a cooperative mutex, and cold, back-pressured flows.
//
// No async/future library appears anywhere in the example corpus this
// module was grounded on, so the mapping to Go's own goroutines,
// channels, and context.Context is the idiomatic choice rather than a
// third-party one (see DESIGN.md).
package coroutine

import (
	"context"
	"sync/atomic"

	"github.com/sergeych/lyng-sub006/internal/value"
)

// Carrier is a host-provided multi-carrier dispatcher (§5 "optional
// host-provided multi-carrier dispatcher"): it bounds how many launched
// coroutines may run concurrently. A Carrier with capacity 1 gives the
// single-threaded-cooperative default; capacity > 1 opts into the
// multi-carrier model without changing any evaluator code.
type Carrier struct {
	sem chan struct{}
}

// NewCarrier builds a Carrier that runs at most capacity coroutines at
// once. capacity <= 0 means unbounded.
func NewCarrier(capacity int) *Carrier {
	var sem chan struct{}
	if capacity > 0 {
		sem = make(chan struct{}, capacity)
	}
	return &Carrier{sem: sem}
}

// Task is the body of a launched coroutine: it receives the coroutine's
// own cancellable context and returns the value a `launch` expression's
// deferred resolves to.
type Task func(ctx context.Context) (value.Value, error)

// Deferred is the result of `launch(block)` (§5): `await()`, `isActive`,
// `isCompleted`.
type Deferred struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	result    value.Value
	err       error
	active    atomic.Bool
	completed atomic.Bool
}

// Launch spawns block as a new coroutine. It does not block; the
// returned Deferred completes asynchronously. Cancellation of parent
// propagates to block's context, observed at block's own suspension
// points (§5 "Cancellation propagates to the task's unfinished
// suspension points").
func (c *Carrier) Launch(parent context.Context, block Task) *Deferred {
	ctx, cancel := context.WithCancel(parent)
	d := &Deferred{ctx: ctx, cancel: cancel, done: make(chan struct{})}
	d.active.Store(true)

	go func() {
		if c.sem != nil {
			select {
			case c.sem <- struct{}{}:
				defer func() { <-c.sem }()
			case <-ctx.Done():
				d.finish(value.Void, ctx.Err())
				return
			}
		}
		result, err := block(ctx)
		d.finish(result, err)
	}()

	return d
}

func (d *Deferred) finish(v value.Value, err error) {
	d.result, d.err = v, err
	d.active.Store(false)
	d.completed.Store(true)
	close(d.done)
}

// Await blocks the calling coroutine until block completes or ctx is
// cancelled, whichever comes first (a suspension point, §5).
func (d *Deferred) Await(ctx context.Context) (value.Value, error) {
	select {
	case <-d.done:
		return d.result, d.err
	case <-ctx.Done():
		return value.Void, ctx.Err()
	}
}

func (d *Deferred) IsActive() bool    { return d.active.Load() }
func (d *Deferred) IsCompleted() bool { return d.completed.Load() }

// Cancel requests cancellation of the underlying task; observed only at
// its next suspension point, per §5.
func (d *Deferred) Cancel() { d.cancel() }

// Mutex is the cooperative critical-section primitive `Mutex.withLock`
// depends on (§5 "user code must employ Mutex.withLock{...} around
// critical sections" for containers, which offer no implicit locking).
type Mutex struct {
	ch chan struct{}
}

func NewMutex() *Mutex {
	m := &Mutex{ch: make(chan struct{}, 1)}
	m.ch <- struct{}{}
	return m
}

// Lock acquires the mutex, suspending the caller if it is held; returns
// ctx.Err() if ctx is cancelled first.
func (m *Mutex) Lock(ctx context.Context) error {
	select {
	case <-m.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mutex) Unlock() {
	select {
	case m.ch <- struct{}{}:
	default:
		panic("coroutine: Unlock of unlocked Mutex")
	}
}

// WithLock runs fn holding the mutex, releasing it unconditionally
// afterwards (including on panic unwinding through fn).
func (m *Mutex) WithLock(ctx context.Context, fn func() (value.Value, error)) (value.Value, error) {
	if err := m.Lock(ctx); err != nil {
		return value.Void, err
	}
	defer m.Unlock()
	return fn()
}

// Emitter is the `emit(x)` callback a Flow producer calls; it may block
// until the consumer is ready to receive, implementing back-pressure.
type Emitter func(ctx context.Context, v value.Value) error

// Producer is a cold flow body (§5 "flow { emit(x) } produces a cold
// sequence: the producer runs anew for each collect").
type Producer func(ctx context.Context, emit Emitter) error

// Flow is a cold, back-pressured sequence. Each Collect call re-runs
// Producer from scratch in its own goroutine; values cross to the
// consumer over an unbuffered channel so the producer cannot outrun the
// consumer (§5 "collection is driven by the consumer and respects
// back-pressure").
type Flow struct {
	produce Producer
}

func NewFlow(p Producer) *Flow { return &Flow{produce: p} }

// Collect drives the flow to completion, calling consume for every
// emitted value in order. It returns the first error from either side
// (producer failure, consumer failure, or context cancellation).
func (f *Flow) Collect(ctx context.Context, consume func(value.Value) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	values := make(chan value.Value)
	acks := make(chan error)
	producerErr := make(chan error, 1)

	emit := func(ctx context.Context, v value.Value) error {
		select {
		case values <- v:
		case <-ctx.Done():
			return ctx.Err()
		}
		select {
		case err := <-acks:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	go func() {
		defer close(values)
		producerErr <- f.produce(ctx, emit)
	}()

	for {
		select {
		case v, ok := <-values:
			if !ok {
				return <-producerErr
			}
			err := consume(v)
			select {
			case acks <- err:
			case <-ctx.Done():
				return ctx.Err()
			}
			if err != nil {
				cancel()
				<-producerErr
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
