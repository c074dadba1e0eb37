package surface

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Highlight is a styled span rendered over the buffer, used for error
// annotations. The surface only draws highlights; their lifecycle is
// owned elsewhere.
type Highlight struct {
	ID      string
	Start   Point
	End     Point
	Message string
}

// Editor is the tcell-backed interactive surface. It owns the buffer,
// cursor, selection, highlight rendering and the status line. All
// methods except Post must run on the event loop goroutine.
type Editor struct {
	screen tcell.Screen
	buf    *Buffer

	cursor  Point
	topLine int
	anchor  *Point

	path  string
	dirty bool

	highlights []Highlight
	hover      string
	status     string
	waiting    int

	baseStyle      tcell.Style
	highlightStyle tcell.Style
	selectionStyle tcell.Style
	statusStyle    tcell.Style
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithContent sets the initial buffer content.
func WithContent(text string) EditorOption {
	return func(e *Editor) { e.buf = NewBuffer(text) }
}

// WithPath sets the file path used for saving.
func WithPath(path string) EditorOption {
	return func(e *Editor) { e.path = path }
}

// WithCursorColor sets the cursor color by name (e.g. "red").
func WithCursorColor(name string) EditorOption {
	return func(e *Editor) {
		if name == "" {
			return
		}
		e.screen.SetCursorStyle(tcell.CursorStyleSteadyBlock, tcell.GetColor(name))
	}
}

// NewEditor creates an editor over an initialized tcell screen.
func NewEditor(screen tcell.Screen, opts ...EditorOption) *Editor {
	e := &Editor{
		screen:         screen,
		buf:            NewBuffer(""),
		cursor:         Point{Line: 1, Col: 0},
		topLine:        1,
		baseStyle:      tcell.StyleDefault,
		highlightStyle: tcell.StyleDefault.Underline(true).Foreground(tcell.ColorRed),
		selectionStyle: tcell.StyleDefault.Reverse(true),
		statusStyle:    tcell.StyleDefault.Reverse(true),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Buffer exposes the underlying line buffer.
func (e *Editor) Buffer() *Buffer {
	return e.buf
}

// Path returns the file backing this editor, if any.
func (e *Editor) Path() string {
	return e.path
}

// Dirty reports whether the buffer has unsaved changes.
func (e *Editor) Dirty() bool {
	return e.dirty
}

// Cursor returns the current cursor position.
func (e *Editor) Cursor() Point {
	return e.cursor
}

// SetCursor moves the cursor, clamping to the buffer.
func (e *Editor) SetCursor(p Point) {
	e.cursor = e.buf.Clamp(p)
}

// MoveCursor shifts the cursor by lines and columns, clamping.
func (e *Editor) MoveCursor(dLine, dCol int) {
	e.SetCursor(Point{Line: e.cursor.Line + dLine, Col: e.cursor.Col + dCol})
}

// Text implements Surface.
func (e *Editor) Text() string {
	return e.buf.Text()
}

// TextRange implements Surface.
func (e *Editor) TextRange(r Range) string {
	return e.buf.TextRange(r)
}

// Insert implements Surface.
func (e *Editor) Insert(p Point, text string) {
	after := e.buf.Insert(p, text)
	if !e.cursor.Before(p) {
		e.cursor = e.buf.Clamp(after)
	}
	e.dirty = true
}

// Delete implements Surface.
func (e *Editor) Delete(r Range) {
	at := e.buf.Delete(r)
	e.cursor = e.buf.Clamp(at)
	e.dirty = true
}

// InsertRune inserts a single rune at the cursor.
func (e *Editor) InsertRune(r rune) {
	e.cursor = e.buf.Insert(e.cursor, string(r))
	e.dirty = true
}

// InsertNewline breaks the current line at the cursor.
func (e *Editor) InsertNewline() {
	e.cursor = e.buf.Insert(e.cursor, "\n")
	e.dirty = true
}

// Backspace deletes the rune before the cursor, joining lines at
// column zero.
func (e *Editor) Backspace() {
	if e.cursor.Col > 0 {
		e.Delete(Range{
			Start: Point{Line: e.cursor.Line, Col: e.cursor.Col - 1},
			End:   e.cursor,
		})
		return
	}
	if e.cursor.Line > 1 {
		prevLen := e.buf.LineLen(e.cursor.Line - 1)
		e.Delete(Range{
			Start: Point{Line: e.cursor.Line - 1, Col: prevLen},
			End:   Point{Line: e.cursor.Line, Col: 0},
		})
	}
}

// LinePrefix returns the current line's content up to the cursor.
func (e *Editor) LinePrefix() string {
	line := []rune(e.buf.Line(e.cursor.Line))
	if e.cursor.Col > len(line) {
		return string(line)
	}
	return string(line[:e.cursor.Col])
}

// ReplaceLinePrefix swaps the current line's content up to the cursor
// for newPrefix, keeping the rest of the line, and places the cursor
// at the end of the new prefix.
func (e *Editor) ReplaceLinePrefix(newPrefix string) {
	line := []rune(e.buf.Line(e.cursor.Line))
	col := e.cursor.Col
	if col > len(line) {
		col = len(line)
	}
	e.buf.ReplaceLine(e.cursor.Line, newPrefix+string(line[col:]))
	e.cursor = Point{Line: e.cursor.Line, Col: len([]rune(newPrefix))}
	e.dirty = true
}

// ToggleAnchor sets or clears the selection anchor at the cursor.
func (e *Editor) ToggleAnchor() {
	if e.anchor != nil {
		e.anchor = nil
		return
	}
	p := e.cursor
	e.anchor = &p
}

// ClearSelection drops the selection anchor.
func (e *Editor) ClearSelection() {
	e.anchor = nil
}

// Selection implements Surface. The selection spans from the anchor to
// the cursor; an unset or empty anchor means no selection.
func (e *Editor) Selection() (Range, bool) {
	if e.anchor == nil {
		return Range{}, false
	}
	r := NewRange(*e.anchor, e.cursor).Normalized()
	if r.IsEmpty() {
		return Range{}, false
	}
	return r, true
}

// Post implements Surface. The callback is dropped if the event queue
// is saturated or the screen has been finalized; by then the loop is
// no longer draining.
func (e *Editor) Post(fn func()) {
	_ = e.screen.PostEvent(NewCallbackEvent(fn))
}

// SetStatus implements Surface.
func (e *Editor) SetStatus(msg string) {
	e.status = msg
}

// AddHighlight adds one highlight.
func (e *Editor) AddHighlight(h Highlight) {
	e.highlights = append(e.highlights, h)
}

// RemoveHighlight drops the highlight with the given ID.
func (e *Editor) RemoveHighlight(id string) {
	for i, h := range e.highlights {
		if h.ID == id {
			e.highlights = append(e.highlights[:i], e.highlights[i+1:]...)
			return
		}
	}
}

// HighlightAt returns the first highlight containing p.
func (e *Editor) HighlightAt(p Point) (Highlight, bool) {
	for _, h := range e.highlights {
		if NewRange(h.Start, h.End).Contains(p) {
			return h, true
		}
	}
	return Highlight{}, false
}

// PointAt converts screen coordinates to a buffer position, clamped to
// the buffer. The status row maps to the last visible line.
func (e *Editor) PointAt(x, y int) Point {
	return e.buf.Clamp(Point{Line: e.topLine + y, Col: x})
}

// SetHover shows a hover message in the status line.
func (e *Editor) SetHover(msg string) {
	e.hover = msg
}

// ClearHover removes the hover message.
func (e *Editor) ClearHover() {
	e.hover = ""
}

// BeginWaiting increments the waiting-indicator count. Each in-flight
// rewrite request holds one.
func (e *Editor) BeginWaiting() {
	e.waiting++
}

// EndWaiting decrements the waiting-indicator count.
func (e *Editor) EndWaiting() {
	if e.waiting > 0 {
		e.waiting--
	}
}

// Waiting returns the number of active waiting indicators.
func (e *Editor) Waiting() int {
	return e.waiting
}

// Save writes the buffer to its backing file.
func (e *Editor) Save() error {
	if e.path == "" {
		return fmt.Errorf("no file path set")
	}
	if err := os.MkdirAll(filepath.Dir(e.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(e.path, []byte(e.buf.Text()), 0o644); err != nil {
		return err
	}
	e.dirty = false
	return nil
}

// Render draws the buffer, highlights, selection and status line.
func (e *Editor) Render() {
	width, height := e.screen.Size()
	if width <= 0 || height <= 0 {
		return
	}
	viewHeight := height - 1

	e.scrollToCursor(viewHeight)
	e.screen.Clear()

	sel, hasSel := e.Selection()
	for row := 0; row < viewHeight; row++ {
		lineNo := e.topLine + row
		if lineNo > e.buf.LineCount() {
			break
		}
		runes := []rune(e.buf.Line(lineNo))
		for col := 0; col < len(runes) && col < width; col++ {
			p := Point{Line: lineNo, Col: col}
			style := e.baseStyle
			if e.highlightCovers(p) {
				style = e.highlightStyle
			}
			if hasSel && sel.Contains(p) {
				style = e.selectionStyle
			}
			e.screen.SetContent(col, row, runes[col], nil, style)
		}
	}

	e.drawStatusLine(width, height-1)
	e.screen.ShowCursor(e.cursor.Col, e.cursor.Line-e.topLine)
	e.screen.Show()
}

// highlightCovers reports whether any highlight contains p.
func (e *Editor) highlightCovers(p Point) bool {
	for _, h := range e.highlights {
		if (Range{Start: h.Start, End: h.End}).Contains(p) {
			return true
		}
	}
	return false
}

// scrollToCursor keeps the cursor inside the viewport.
func (e *Editor) scrollToCursor(viewHeight int) {
	if viewHeight < 1 {
		return
	}
	if e.cursor.Line < e.topLine {
		e.topLine = e.cursor.Line
	}
	if e.cursor.Line >= e.topLine+viewHeight {
		e.topLine = e.cursor.Line - viewHeight + 1
	}
}

// drawStatusLine renders the bottom status row: file name, dirty
// marker, waiting indicators, then hover or status message.
func (e *Editor) drawStatusLine(width, y int) {
	name := e.path
	if name == "" {
		name = "[untitled]"
	}
	left := name
	if e.dirty {
		left += " *"
	}
	if e.waiting > 0 {
		left += fmt.Sprintf(" [rewriting %d...]", e.waiting)
	}

	msg := e.hover
	if msg == "" {
		msg = e.status
	}
	text := left
	if msg != "" {
		text += " | " + msg
	}
	pos := fmt.Sprintf(" %s ", e.cursor)

	line := text
	if pad := width - len([]rune(text)) - len(pos); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	line += pos

	runes := []rune(line)
	for x := 0; x < width; x++ {
		r := ' '
		if x < len(runes) {
			r = runes[x]
		}
		e.screen.SetContent(x, y, r, nil, e.statusStyle)
	}
}
