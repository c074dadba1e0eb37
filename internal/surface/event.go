package surface

import "github.com/gdamore/tcell/v2"

// CallbackEvent carries a pending callback through the tcell event
// queue. Background workers wrap their mutations in one of these so
// the event loop executes them on the interactive thread.
type CallbackEvent struct {
	tcell.EventTime
	fn func()
}

// NewCallbackEvent wraps fn as a postable event.
func NewCallbackEvent(fn func()) *CallbackEvent {
	ev := &CallbackEvent{fn: fn}
	ev.SetEventNow()
	return ev
}

// Run executes the wrapped callback.
func (e *CallbackEvent) Run() {
	if e.fn != nil {
		e.fn()
	}
}
