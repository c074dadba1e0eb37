package check

import (
	"context"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/scriba-editor/scriba/internal/annotate"
	"github.com/scriba-editor/scriba/internal/surface"
)

const (
	// DefaultInterval is the pause between periodic check cycles.
	DefaultInterval = 3 * time.Second

	// DefaultMaxCheckSize is the largest document, in runes, a periodic
	// cycle will submit. Larger documents skip the cycle.
	DefaultMaxCheckSize = 20000
)

// Checker submits text for grammar checking and returns the error spans
// found in it. Offsets in the returned spans are rune offsets into text.
type Checker interface {
	Check(ctx context.Context, text, language string) ([]annotate.ErrorSpan, error)
}

// Scheduler drives periodic background checks. Annotation updates are
// posted onto the interactive surface, never applied from the checker
// goroutine.
type Scheduler struct {
	surf     surface.Surface
	checker  Checker
	manager  *annotate.Manager
	state    *State
	interval time.Duration
	maxSize  int
	language string

	onSkip  func(size int)
	onError func(err error)

	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithInterval sets the pause between periodic cycles.
func WithInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithMaxCheckSize sets the rune-count ceiling for periodic cycles.
func WithMaxCheckSize(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxSize = n
		}
	}
}

// WithLanguage sets the language code submitted with each check.
func WithLanguage(lang string) SchedulerOption {
	return func(s *Scheduler) {
		if lang != "" {
			s.language = lang
		}
	}
}

// WithSkipHandler is called when a cycle is skipped for document size.
func WithSkipHandler(fn func(size int)) SchedulerOption {
	return func(s *Scheduler) { s.onSkip = fn }
}

// WithCheckErrorHandler is called when a cycle fails. The failed cycle is
// skipped and existing annotations are kept.
func WithCheckErrorHandler(fn func(err error)) SchedulerOption {
	return func(s *Scheduler) { s.onError = fn }
}

// NewScheduler creates a Scheduler over the given surface, checker and
// annotation manager.
func NewScheduler(surf surface.Surface, checker Checker, manager *annotate.Manager, state *State, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		surf:     surf,
		checker:  checker,
		manager:  manager,
		state:    state,
		interval: DefaultInterval,
		maxSize:  DefaultMaxCheckSize,
		language: "auto",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the scheduler's lifecycle state.
func (s *Scheduler) State() *State {
	return s.state
}

// Start launches the periodic loop. Calling Start on a running scheduler
// is a no-op.
func (s *Scheduler) Start() {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx)
}

// Stop cancels the periodic loop. It returns once the loop has exited;
// an in-flight check is abandoned, its completion callback becomes a
// no-op for state purposes. Stop is idempotent.
func (s *Scheduler) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	s.cancel()
	<-s.done
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.surf.Post(func() { s.runCycle(ctx) })
		}
	}
}

// runCycle executes on the interactive loop. It snapshots the document
// there, then hands the text to the checker on its own goroutine.
func (s *Scheduler) runCycle(ctx context.Context) {
	if !s.state.BeginCheck() {
		return
	}
	text := s.surf.Text()
	size := utf8.RuneCountInString(text)
	if size > s.maxSize {
		s.state.EndCheck(size)
		if s.onSkip != nil {
			s.onSkip(size)
		}
		return
	}
	go func() {
		spans, err := s.checker.Check(ctx, text, s.language)
		s.surf.Post(func() {
			s.state.EndCheck(size)
			if err != nil {
				if s.onError != nil {
					s.onError(&CheckError{Op: "cycle", Err: err})
				}
				return
			}
			// The check may have been disabled while this cycle was in
			// flight; its results must not land then.
			if !s.state.SnapshotState().Enabled {
				return
			}
			s.manager.ApplyBatch(text, spans, 1, 0)
		})
	}()
}

// CheckSelection runs a one-shot check over the current selection. The
// periodic path is suppressed while the selection check is in flight and
// restored to its prior state afterwards. It returns ErrNoSelection when
// nothing is selected.
func (s *Scheduler) CheckSelection() error {
	sel, ok := s.surf.Selection()
	if !ok || sel.IsEmpty() {
		return ErrNoSelection
	}
	wasEnabled := s.state.Enabled()
	s.state.Disable()
	text := s.surf.TextRange(sel)
	base := sel.Start
	go func() {
		spans, err := s.checker.Check(context.Background(), text, s.language)
		s.surf.Post(func() {
			if err != nil {
				if s.onError != nil {
					s.onError(&CheckError{Op: "selection", Err: err})
				}
			} else {
				s.manager.ApplyBatch(text, spans, base.Line, base.Col)
			}
			if wasEnabled {
				s.state.Enable()
			}
		})
	}()
	return nil
}
