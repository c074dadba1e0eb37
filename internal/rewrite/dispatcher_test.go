package rewrite

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/scriba-editor/scriba/internal/surface"
)

// postSurface runs posted callbacks synchronously under a lock, standing in
// for the interactive loop.
type postSurface struct {
	mu sync.Mutex
}

func (p *postSurface) Text() string                          { return "" }
func (p *postSurface) TextRange(r surface.Range) string      { return "" }
func (p *postSurface) Insert(pt surface.Point, s string)     {}
func (p *postSurface) Delete(r surface.Range)                {}
func (p *postSurface) Selection() (surface.Range, bool)      { return surface.Range{}, false }
func (p *postSurface) SetStatus(s string)                    {}

func (p *postSurface) Post(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn()
}

type fakeGenerator struct {
	mu      sync.Mutex
	results map[string]string
	err     error
	delay   time.Duration
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.results[prompt], nil
}

type recorder struct {
	mu       sync.Mutex
	begun    []uint64
	finished []uint64
	results  map[uint64]string
	errs     map[uint64]error
	done     chan uint64
}

func newRecorder() *recorder {
	return &recorder{
		results: make(map[uint64]string),
		errs:    make(map[uint64]error),
		done:    make(chan uint64, 16),
	}
}

func (r *recorder) options() []DispatcherOption {
	return []DispatcherOption{
		WithBeginHandler(func(id uint64) {
			r.mu.Lock()
			r.begun = append(r.begun, id)
			r.mu.Unlock()
		}),
		WithFinishHandler(func(id uint64) {
			r.mu.Lock()
			r.finished = append(r.finished, id)
			r.mu.Unlock()
		}),
		WithResultHandler(func(id uint64, text string, err error) {
			r.mu.Lock()
			r.results[id] = text
			r.errs[id] = err
			r.mu.Unlock()
			r.done <- id
		}),
	}
}

func (r *recorder) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("Timed out waiting for completion %d of %d", i+1, n)
		}
	}
}

func TestDispatcher_Dispatch(t *testing.T) {
	gen := &fakeGenerator{results: map[string]string{"fix this": "fixed"}}
	rec := newRecorder()
	d := NewDispatcher(gen, &postSurface{}, rec.options()...)

	id := d.Dispatch("fix this")
	rec.wait(t, 1)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.begun) != 1 || rec.begun[0] != id {
		t.Errorf("Expected one begin for id %d, got %v", id, rec.begun)
	}
	if len(rec.finished) != 1 || rec.finished[0] != id {
		t.Errorf("Expected one finish for id %d, got %v", id, rec.finished)
	}
	if rec.results[id] != "fixed" {
		t.Errorf("Expected result %q, got %q", "fixed", rec.results[id])
	}
	if rec.errs[id] != nil {
		t.Errorf("Expected no error, got %v", rec.errs[id])
	}
}

func TestDispatcher_ConcurrentDispatchesResolveIndependently(t *testing.T) {
	gen := &fakeGenerator{
		results: map[string]string{"a": "alpha", "b": "beta"},
		delay:   20 * time.Millisecond,
	}
	rec := newRecorder()
	d := NewDispatcher(gen, &postSurface{}, rec.options()...)

	idA := d.Dispatch("a")
	idB := d.Dispatch("b")
	if idA == idB {
		t.Fatalf("Expected distinct request IDs, both %d", idA)
	}
	rec.wait(t, 2)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.results[idA] != "alpha" {
		t.Errorf("Expected request %d to resolve to %q, got %q", idA, "alpha", rec.results[idA])
	}
	if rec.results[idB] != "beta" {
		t.Errorf("Expected request %d to resolve to %q, got %q", idB, "beta", rec.results[idB])
	}
	if len(rec.finished) != 2 {
		t.Errorf("Expected each indicator dismissed once, got %d finishes", len(rec.finished))
	}
}

func TestDispatcher_FailureDelivered(t *testing.T) {
	wantErr := &RewriteError{Kind: KindUnauthorized, Status: 401, Detail: "bad key"}
	gen := &fakeGenerator{err: wantErr}
	rec := newRecorder()
	d := NewDispatcher(gen, &postSurface{}, rec.options()...)

	id := d.Dispatch("x")
	rec.wait(t, 1)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	var re *RewriteError
	if !errors.As(rec.errs[id], &re) {
		t.Fatalf("Expected RewriteError, got %v", rec.errs[id])
	}
	if re.Kind != KindUnauthorized {
		t.Errorf("Expected kind %q, got %q", KindUnauthorized, re.Kind)
	}
	if len(rec.finished) != 1 {
		t.Errorf("Expected indicator dismissed exactly once, got %d", len(rec.finished))
	}
}

func TestDispatcher_TimeoutDelivered(t *testing.T) {
	gen := &fakeGenerator{delay: time.Hour}
	rec := newRecorder()
	d := NewDispatcher(gen, &postSurface{}, append(rec.options(),
		WithDispatchTimeout(20*time.Millisecond))...)

	id := d.Dispatch("slow")
	rec.wait(t, 1)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if !errors.Is(rec.errs[id], context.DeadlineExceeded) {
		t.Errorf("Expected deadline error, got %v", rec.errs[id])
	}
}
