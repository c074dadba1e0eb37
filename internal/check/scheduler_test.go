package check

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/scriba-editor/scriba/internal/annotate"
	"github.com/scriba-editor/scriba/internal/surface"
)

// fakeSurface runs posted callbacks synchronously, which stands in for the
// interactive loop in tests.
type fakeSurface struct {
	mu      sync.Mutex
	text    string
	selText string
	sel     surface.Range
	hasSel  bool
	status  string
}

func (f *fakeSurface) Text() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text
}

func (f *fakeSurface) TextRange(r surface.Range) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selText
}

func (f *fakeSurface) Insert(p surface.Point, s string) {}

func (f *fakeSurface) Delete(r surface.Range) {}

func (f *fakeSurface) Selection() (surface.Range, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sel, f.hasSel
}

func (f *fakeSurface) Post(fn func()) { fn() }

func (f *fakeSurface) SetStatus(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = s
}

type fakeChecker struct {
	mu      sync.Mutex
	spans   []annotate.ErrorSpan
	err     error
	calls   int
	gotText string
	gotLang string
}

func (f *fakeChecker) Check(ctx context.Context, text, language string) ([]annotate.ErrorSpan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.gotText = text
	f.gotLang = language
	return f.spans, f.err
}

func (f *fakeChecker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("Timed out waiting for %s", what)
	}
}

// waitIdle blocks until no check cycle is in flight. With the scheduler
// stopped this guarantees no further posts will touch the manager.
func waitIdle(t *testing.T, state *State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !state.SnapshotState().Running {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Timed out waiting for checker to go idle")
}

func TestState_Transitions(t *testing.T) {
	s := NewState()
	if !s.Enabled() {
		t.Fatal("Expected new state enabled")
	}
	if !s.BeginCheck() {
		t.Fatal("Expected BeginCheck to succeed when idle")
	}
	if s.BeginCheck() {
		t.Error("Expected BeginCheck to fail while running")
	}
	s.EndCheck(42)

	snap := s.SnapshotState()
	if snap.Running {
		t.Error("Expected not running after EndCheck")
	}
	if snap.LastDocumentSize != 42 {
		t.Errorf("Expected last document size 42, got %d", snap.LastDocumentSize)
	}

	s.Disable()
	if s.BeginCheck() {
		t.Error("Expected BeginCheck to fail while disabled")
	}
	s.Enable()
	if !s.BeginCheck() {
		t.Error("Expected BeginCheck to succeed after Enable")
	}
}

func TestScheduler_PeriodicApply(t *testing.T) {
	surf := &fakeSurface{text: "helo world"}
	checker := &fakeChecker{spans: []annotate.ErrorSpan{
		{Offset: 0, Length: 4, Message: "spelling"},
	}}
	applied := make(chan struct{}, 16)
	mgr := annotate.NewManager(annotate.WithApplyHandler(func(annotate.Annotation) {
		applied <- struct{}{}
	}))
	state := NewState()
	sched := NewScheduler(surf, checker, mgr, state,
		WithInterval(10*time.Millisecond), WithLanguage("en-US"))

	sched.Start()
	waitFor(t, applied, "annotation batch")
	sched.Stop()
	waitIdle(t, state)

	if mgr.Len() != 1 {
		t.Errorf("Expected 1 annotation, got %d", mgr.Len())
	}
	checker.mu.Lock()
	defer checker.mu.Unlock()
	if checker.gotText != "helo world" {
		t.Errorf("Expected document snapshot submitted, got %q", checker.gotText)
	}
	if checker.gotLang != "en-US" {
		t.Errorf("Expected language %q, got %q", "en-US", checker.gotLang)
	}
}

func TestScheduler_OversizedDocumentSkips(t *testing.T) {
	surf := &fakeSurface{text: "this document is too large"}
	checker := &fakeChecker{}
	mgr := annotate.NewManager()
	mgr.ApplyBatch("seed text", []annotate.ErrorSpan{{Offset: 0, Length: 4, Message: "old"}}, 1, 0)

	skipped := make(chan struct{}, 16)
	var skipSize int
	var mu sync.Mutex
	sched := NewScheduler(surf, checker, mgr, NewState(),
		WithInterval(10*time.Millisecond),
		WithMaxCheckSize(5),
		WithSkipHandler(func(size int) {
			mu.Lock()
			skipSize = size
			mu.Unlock()
			skipped <- struct{}{}
		}))

	sched.Start()
	waitFor(t, skipped, "skipped cycle")
	sched.Stop()

	if checker.callCount() != 0 {
		t.Errorf("Expected checker never called, got %d calls", checker.callCount())
	}
	if mgr.Len() != 1 {
		t.Errorf("Expected prior annotations untouched, got %d", mgr.Len())
	}
	mu.Lock()
	defer mu.Unlock()
	if skipSize != 26 {
		t.Errorf("Expected skip size 26, got %d", skipSize)
	}
}

func TestScheduler_CheckFailureKeepsAnnotations(t *testing.T) {
	surf := &fakeSurface{text: "some text"}
	checker := &fakeChecker{err: errors.New("endpoint down")}
	mgr := annotate.NewManager()
	mgr.ApplyBatch("some text", []annotate.ErrorSpan{{Offset: 0, Length: 4, Message: "old"}}, 1, 0)

	failed := make(chan struct{}, 16)
	sched := NewScheduler(surf, checker, mgr, NewState(),
		WithInterval(10*time.Millisecond),
		WithCheckErrorHandler(func(err error) {
			var ce *CheckError
			if !errors.As(err, &ce) {
				t.Errorf("Expected CheckError, got %T", err)
			}
			failed <- struct{}{}
		}))

	sched.Start()
	waitFor(t, failed, "failed cycle")
	sched.Stop()

	if mgr.Len() != 1 {
		t.Errorf("Expected prior annotations kept on failure, got %d", mgr.Len())
	}
}

func TestScheduler_StopIdempotent(t *testing.T) {
	surf := &fakeSurface{text: "x"}
	sched := NewScheduler(surf, &fakeChecker{}, annotate.NewManager(), NewState(),
		WithInterval(time.Hour))

	sched.Stop()
	sched.Start()
	sched.Start()
	sched.Stop()
	sched.Stop()
}

// signalSurface announces each completed post, so tests can wait for an
// in-flight cycle to land.
type signalSurface struct {
	fakeSurface
	posted chan struct{}
}

func (s *signalSurface) Post(fn func()) {
	fn()
	s.posted <- struct{}{}
}

// blockingChecker holds every Check call until released.
type blockingChecker struct {
	release chan struct{}
	spans   []annotate.ErrorSpan
}

func (b *blockingChecker) Check(ctx context.Context, text, language string) ([]annotate.ErrorSpan, error) {
	<-b.release
	return b.spans, nil
}

func TestScheduler_DisableSuppressesInFlightCycle(t *testing.T) {
	surf := &signalSurface{
		fakeSurface: fakeSurface{text: "helo world"},
		posted:      make(chan struct{}, 1),
	}
	checker := &blockingChecker{
		release: make(chan struct{}),
		spans:   []annotate.ErrorSpan{{Offset: 0, Length: 4, Message: "spelling"}},
	}
	mgr := annotate.NewManager()
	state := NewState()
	sched := NewScheduler(surf, checker, mgr, state)

	sched.runCycle(context.Background())
	state.Disable()
	close(checker.release)
	waitFor(t, surf.posted, "in-flight completion")

	if mgr.Len() != 0 {
		t.Errorf("Expected no annotations when check was disabled mid-cycle, got %d", mgr.Len())
	}
	if state.SnapshotState().Running {
		t.Error("Expected cycle marked finished")
	}
}

func TestScheduler_CheckSelection(t *testing.T) {
	sel := surface.Range{
		Start: surface.Point{Line: 2, Col: 3},
		End:   surface.Point{Line: 2, Col: 8},
	}
	surf := &fakeSurface{text: "irrelevant", selText: "cd ef", sel: sel, hasSel: true}
	checker := &fakeChecker{spans: []annotate.ErrorSpan{
		{Offset: 3, Length: 2, Message: "sel error"},
	}}
	applied := make(chan struct{}, 1)
	mgr := annotate.NewManager(annotate.WithApplyHandler(func(annotate.Annotation) {
		applied <- struct{}{}
	}))
	state := NewState()
	sched := NewScheduler(surf, checker, mgr, state)

	if err := sched.CheckSelection(); err != nil {
		t.Fatalf("CheckSelection failed: %v", err)
	}
	waitFor(t, applied, "selection batch")

	anns := mgr.Annotations()
	if len(anns) != 1 {
		t.Fatalf("Expected 1 annotation, got %d", len(anns))
	}
	if anns[0].Start != (surface.Point{Line: 2, Col: 6}) {
		t.Errorf("Expected selection-relative start 2.6, got %s", anns[0].Start)
	}
	if !state.Enabled() {
		t.Error("Expected periodic checking restored after selection check")
	}
}

func TestScheduler_CheckSelectionKeepsDisabled(t *testing.T) {
	sel := surface.Range{
		Start: surface.Point{Line: 1, Col: 0},
		End:   surface.Point{Line: 1, Col: 4},
	}
	surf := &fakeSurface{selText: "word", sel: sel, hasSel: true}
	applied := make(chan struct{}, 1)
	mgr := annotate.NewManager(annotate.WithApplyHandler(func(annotate.Annotation) {
		applied <- struct{}{}
	}))
	state := NewState()
	state.Disable()
	sched := NewScheduler(surf, &fakeChecker{spans: []annotate.ErrorSpan{
		{Offset: 0, Length: 4, Message: "x"},
	}}, mgr, state)

	if err := sched.CheckSelection(); err != nil {
		t.Fatalf("CheckSelection failed: %v", err)
	}
	waitFor(t, applied, "selection batch")

	if state.Enabled() {
		t.Error("Expected periodic checking to stay disabled")
	}
}

func TestScheduler_CheckSelectionWithoutSelection(t *testing.T) {
	surf := &fakeSurface{text: "abc"}
	sched := NewScheduler(surf, &fakeChecker{}, annotate.NewManager(), NewState())

	if err := sched.CheckSelection(); !errors.Is(err, ErrNoSelection) {
		t.Errorf("Expected ErrNoSelection, got %v", err)
	}
}
