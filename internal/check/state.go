package check

import "sync"

// State tracks the check machinery's lifecycle. All transitions go through
// its methods; nothing mutates the fields directly.
type State struct {
	mu               sync.Mutex
	enabled          bool
	running          bool
	lastDocumentSize int
}

// Snapshot is a point-in-time copy of the state.
type Snapshot struct {
	Enabled          bool
	Running          bool
	LastDocumentSize int
}

// NewState returns a State with periodic checking enabled.
func NewState() *State {
	return &State{enabled: true}
}

// Enable turns periodic checking on.
func (s *State) Enable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = true
}

// Disable turns periodic checking off. A check already in flight is not
// interrupted.
func (s *State) Disable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = false
}

// Enabled reports whether periodic checking is on.
func (s *State) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// BeginCheck marks a check cycle as running. It returns false when checking
// is disabled or a cycle is already in flight.
func (s *State) BeginCheck() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled || s.running {
		return false
	}
	s.running = true
	return true
}

// EndCheck marks the in-flight cycle as finished and records the size of
// the document it examined.
func (s *State) EndCheck(documentSize int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.lastDocumentSize = documentSize
}

// SnapshotState returns a copy of the current state.
func (s *State) SnapshotState() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Enabled:          s.enabled,
		Running:          s.running,
		LastDocumentSize: s.lastDocumentSize,
	}
}
