package rewrite

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/scriba-editor/scriba/internal/surface"
)

// Generator produces a rewritten version of a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var _ Generator = (*Client)(nil)

// Dispatcher runs rewrite requests off the interactive loop. Each dispatch
// gets its own request ID and waiting indicator, and resolves with exactly
// one completion posted back onto the surface. Concurrent dispatches are
// independent.
type Dispatcher struct {
	gen     Generator
	surf    surface.Surface
	timeout time.Duration
	nextID  atomic.Uint64

	onBegin  func(id uint64)
	onFinish func(id uint64)
	onResult func(id uint64, text string, err error)
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithBeginHandler is called on the dispatching goroutine when a request
// starts, before any network activity.
func WithBeginHandler(fn func(id uint64)) DispatcherOption {
	return func(d *Dispatcher) { d.onBegin = fn }
}

// WithFinishHandler is called on the interactive loop when a request
// completes, exactly once per dispatch, before the result handler.
func WithFinishHandler(fn func(id uint64)) DispatcherOption {
	return func(d *Dispatcher) { d.onFinish = fn }
}

// WithResultHandler is called on the interactive loop with the completion
// text or the request's error.
func WithResultHandler(fn func(id uint64, text string, err error)) DispatcherOption {
	return func(d *Dispatcher) { d.onResult = fn }
}

// WithDispatchTimeout bounds each request.
func WithDispatchTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

// NewDispatcher creates a Dispatcher over the given generator and surface.
func NewDispatcher(gen Generator, surf surface.Surface, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		gen:     gen,
		surf:    surf,
		timeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch starts a rewrite of prompt and returns its request ID. The
// caller keeps typing; the completion arrives later through the handlers.
func (d *Dispatcher) Dispatch(prompt string) uint64 {
	id := d.nextID.Add(1)
	if d.onBegin != nil {
		d.onBegin(id)
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		text, err := d.gen.Generate(ctx, prompt)
		d.surf.Post(func() {
			if d.onFinish != nil {
				d.onFinish(id)
			}
			if d.onResult != nil {
				d.onResult(id, text, err)
			}
		})
	}()
	return id
}
