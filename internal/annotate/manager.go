package annotate

import (
	"github.com/google/uuid"

	"github.com/scriba-editor/scriba/internal/surface"
)

// ErrorSpan is one error reported by the grammar collaborator. Offset
// and Length are rune counts against the exact snapshot that was
// checked.
type ErrorSpan struct {
	Offset      int
	Length      int
	Message     string
	Suggestions []string
}

// Annotation is a rendered error span with a stable identity and live
// buffer positions.
type Annotation struct {
	ID          uuid.UUID
	Start       surface.Point
	End         surface.Point
	Message     string
	Suggestions []string
}

// Manager owns the set of currently-displayed annotations. At most one
// batch is live at a time: applying a new batch always retires the
// previous one first. The manager never mutates buffer text; it only
// reports highlight changes through its callbacks.
//
// Manager is not safe for concurrent use. All calls must come from the
// interactive event loop; background workers reach it via Surface.Post.
type Manager struct {
	annotations []Annotation
	hovered     *uuid.UUID

	onApply  func(Annotation)
	onRetire func(Annotation)
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithApplyHandler sets the callback invoked for each annotation as a
// batch is applied, typically to attach a rendering highlight.
func WithApplyHandler(fn func(Annotation)) ManagerOption {
	return func(m *Manager) { m.onApply = fn }
}

// WithRetireHandler sets the callback invoked for each annotation as
// it is retired, typically to release its rendering highlight.
func WithRetireHandler(fn func(Annotation)) ManagerOption {
	return func(m *Manager) { m.onRetire = fn }
}

// NewManager creates an annotation manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ApplyBatch retires every existing annotation, maps all span
// boundaries against the snapshot in a single MapOffsets pass, and
// creates one annotation per span that resolved to a valid non-empty
// range. Spans whose offsets do not resolve are dropped silently: the
// collaborator's offsets are ground truth for the snapshot it saw, and
// a span that no longer fits is never applied against the wrong text.
// Returns the number of annotations created.
func (m *Manager) ApplyBatch(snapshot string, spans []ErrorSpan, baseLine, baseCol int) int {
	m.RetireAll()

	if len(spans) == 0 {
		return 0
	}

	offsets := make([]int, 0, len(spans)*2)
	for _, s := range spans {
		if s.Offset < 0 || s.Length <= 0 {
			continue
		}
		offsets = append(offsets, s.Offset, s.Offset+s.Length)
	}
	positions := MapOffsets(snapshot, offsets, baseLine, baseCol)

	for _, s := range spans {
		if s.Offset < 0 || s.Length <= 0 {
			continue
		}
		start, okStart := positions[s.Offset]
		end, okEnd := positions[s.Offset+s.Length]
		if !okStart || !okEnd {
			continue
		}
		r := surface.NewRange(start, end)
		if !r.IsValid() || r.IsEmpty() {
			continue
		}
		ann := Annotation{
			ID:          uuid.New(),
			Start:       start,
			End:         end,
			Message:     s.Message,
			Suggestions: append([]string(nil), s.Suggestions...),
		}
		m.annotations = append(m.annotations, ann)
		if m.onApply != nil {
			m.onApply(ann)
		}
	}

	return len(m.annotations)
}

// RetireAll removes every annotation, releasing rendering resources
// through the retire callback. Safe to call when none exist.
func (m *Manager) RetireAll() {
	if m.onRetire != nil {
		for _, ann := range m.annotations {
			m.onRetire(ann)
		}
	}
	m.annotations = nil
	m.hovered = nil
}

// Annotations returns a copy of the live annotation set.
func (m *Manager) Annotations() []Annotation {
	out := make([]Annotation, len(m.annotations))
	copy(out, m.annotations)
	return out
}

// Len returns the number of live annotations.
func (m *Manager) Len() int {
	return len(m.annotations)
}

// HoverAt returns the annotation covering the position, if any, and
// records it as hovered.
func (m *Manager) HoverAt(p surface.Point) (Annotation, bool) {
	for _, ann := range m.annotations {
		r := surface.NewRange(ann.Start, ann.End)
		if r.Contains(p) {
			id := ann.ID
			m.hovered = &id
			return ann, true
		}
	}
	m.hovered = nil
	return Annotation{}, false
}

// HoverEnd clears the hovered annotation.
func (m *Manager) HoverEnd() {
	m.hovered = nil
}

// Hovered returns the currently hovered annotation, if any.
func (m *Manager) Hovered() (Annotation, bool) {
	if m.hovered == nil {
		return Annotation{}, false
	}
	for _, ann := range m.annotations {
		if ann.ID == *m.hovered {
			return ann, true
		}
	}
	return Annotation{}, false
}
