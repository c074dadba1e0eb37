package surface

// Surface is the narrow view of the interactive editor consumed by the
// background components (the check scheduler, autosave loop and rewrite
// dispatcher). All methods except Post must only be called from the
// event loop; Post is the one safe entry point from other goroutines.
type Surface interface {
	// Text returns the full buffer content.
	Text() string

	// TextRange returns the text covered by a range.
	TextRange(r Range) string

	// Insert places text at a position.
	Insert(p Point, text string)

	// Delete removes the text covered by a range.
	Delete(r Range)

	// Selection returns the active selection, if any.
	Selection() (Range, bool)

	// Post schedules fn to run on the interactive event loop. It is
	// safe to call from any goroutine; after the surface shuts down
	// posted callbacks are dropped.
	Post(fn func())

	// SetStatus displays a transient message in the status line.
	SetStatus(msg string)
}
