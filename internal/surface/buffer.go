package surface

import "strings"

// Buffer is a plain-text line buffer. Lines are addressed 1-based and
// columns are 0-based rune offsets, matching Point. A buffer always
// holds at least one (possibly empty) line.
//
// Buffer is not safe for concurrent use; it belongs to the interactive
// surface and is only touched from the event loop.
type Buffer struct {
	lines [][]rune
}

// NewBuffer creates a buffer from the given text.
func NewBuffer(text string) *Buffer {
	parts := strings.Split(text, "\n")
	lines := make([][]rune, len(parts))
	for i, p := range parts {
		lines[i] = []rune(p)
	}
	return &Buffer{lines: lines}
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// Line returns the content of a 1-based line, or "" out of range.
func (b *Buffer) Line(line int) string {
	if line < 1 || line > len(b.lines) {
		return ""
	}
	return string(b.lines[line-1])
}

// LineLen returns the rune length of a 1-based line.
func (b *Buffer) LineLen(line int) int {
	if line < 1 || line > len(b.lines) {
		return 0
	}
	return len(b.lines[line-1])
}

// Text returns the full buffer content.
func (b *Buffer) Text() string {
	var sb strings.Builder
	for i, line := range b.lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(line))
	}
	return sb.String()
}

// Clamp returns the nearest valid buffer position for p.
func (b *Buffer) Clamp(p Point) Point {
	if p.Line < 1 {
		p.Line = 1
	}
	if p.Line > len(b.lines) {
		p.Line = len(b.lines)
	}
	if p.Col < 0 {
		p.Col = 0
	}
	if n := len(b.lines[p.Line-1]); p.Col > n {
		p.Col = n
	}
	return p
}

// End returns the position just past the last rune of the buffer.
func (b *Buffer) End() Point {
	last := len(b.lines)
	return Point{Line: last, Col: len(b.lines[last-1])}
}

// TextRange returns the text covered by the (normalized, clamped)
// range. Line breaks inside the range are returned as "\n".
func (b *Buffer) TextRange(r Range) string {
	r = r.Normalized()
	start := b.Clamp(r.Start)
	end := b.Clamp(r.End)
	if start.Compare(end) >= 0 {
		return ""
	}

	if start.Line == end.Line {
		return string(b.lines[start.Line-1][start.Col:end.Col])
	}

	var sb strings.Builder
	sb.WriteString(string(b.lines[start.Line-1][start.Col:]))
	for line := start.Line + 1; line < end.Line; line++ {
		sb.WriteByte('\n')
		sb.WriteString(string(b.lines[line-1]))
	}
	sb.WriteByte('\n')
	sb.WriteString(string(b.lines[end.Line-1][:end.Col]))
	return sb.String()
}

// Insert places text at p, which is clamped first. The text may span
// several lines. It returns the position immediately after the
// inserted text.
func (b *Buffer) Insert(p Point, text string) Point {
	p = b.Clamp(p)
	line := b.lines[p.Line-1]
	head := line[:p.Col]
	tail := append([]rune(nil), line[p.Col:]...)

	parts := strings.Split(text, "\n")
	if len(parts) == 1 {
		inserted := []rune(parts[0])
		b.lines[p.Line-1] = append(append(append([]rune(nil), head...), inserted...), tail...)
		return Point{Line: p.Line, Col: p.Col + len(inserted)}
	}

	newLines := make([][]rune, len(parts))
	newLines[0] = append(append([]rune(nil), head...), []rune(parts[0])...)
	for i := 1; i < len(parts)-1; i++ {
		newLines[i] = []rune(parts[i])
	}
	lastInserted := []rune(parts[len(parts)-1])
	newLines[len(parts)-1] = append(append([]rune(nil), lastInserted...), tail...)

	rebuilt := make([][]rune, 0, len(b.lines)+len(parts)-1)
	rebuilt = append(rebuilt, b.lines[:p.Line-1]...)
	rebuilt = append(rebuilt, newLines...)
	rebuilt = append(rebuilt, b.lines[p.Line:]...)
	b.lines = rebuilt

	return Point{Line: p.Line + len(parts) - 1, Col: len(lastInserted)}
}

// Delete removes the text covered by the (normalized, clamped) range
// and returns the position where the deletion happened.
func (b *Buffer) Delete(r Range) Point {
	r = r.Normalized()
	start := b.Clamp(r.Start)
	end := b.Clamp(r.End)
	if start.Compare(end) >= 0 {
		return start
	}

	head := b.lines[start.Line-1][:start.Col]
	tail := b.lines[end.Line-1][end.Col:]
	merged := append(append([]rune(nil), head...), tail...)

	rebuilt := make([][]rune, 0, len(b.lines)-(end.Line-start.Line))
	rebuilt = append(rebuilt, b.lines[:start.Line-1]...)
	rebuilt = append(rebuilt, merged)
	rebuilt = append(rebuilt, b.lines[end.Line:]...)
	b.lines = rebuilt

	return start
}

// ReplaceLine swaps the full content of a 1-based line.
func (b *Buffer) ReplaceLine(line int, text string) {
	if line < 1 || line > len(b.lines) {
		return
	}
	b.lines[line-1] = []rune(text)
}
