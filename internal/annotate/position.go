package annotate

import (
	"sort"

	"github.com/scriba-editor/scriba/internal/surface"
)

// MapOffsets resolves a batch of rune offsets into text to line/column
// positions in one linear scan, regardless of how many offsets are
// requested. Lines count from baseLine and the first line's columns
// from baseCol, so offsets into a sub-selection can be mapped straight
// to absolute buffer coordinates.
//
// The position recorded for an offset is the one *before* consuming
// the rune at that offset; the offset equal to the rune length of text
// resolves to the end-of-text position. Offsets outside [0, runeLen]
// are absent from the result.
func MapOffsets(text string, offsets []int, baseLine, baseCol int) map[int]surface.Point {
	result := make(map[int]surface.Point, len(offsets))
	if len(offsets) == 0 {
		return result
	}

	wanted := append([]int(nil), offsets...)
	sort.Ints(wanted)

	line, col := baseLine, baseCol
	idx := 0 // rune index into text
	j := 0   // next unresolved offset

	// Skip offsets that can never resolve.
	for j < len(wanted) && wanted[j] < 0 {
		j++
	}

	for _, r := range text {
		for j < len(wanted) && wanted[j] == idx {
			result[wanted[j]] = surface.Point{Line: line, Col: col}
			j++
		}
		if j >= len(wanted) {
			return result
		}
		if r == '\n' {
			line++
			col = 0
		} else {
			col++
		}
		idx++
	}

	// End-of-text: the offset equal to the rune count resolves to the
	// running position without another rune to scan.
	for j < len(wanted) && wanted[j] == idx {
		result[wanted[j]] = surface.Point{Line: line, Col: col}
		j++
	}

	return result
}

// MapOffset resolves a single offset. It is a convenience wrapper over
// MapOffsets; batch callers should map all their offsets in one pass.
func MapOffset(text string, offset, baseLine, baseCol int) (surface.Point, bool) {
	m := MapOffsets(text, []int{offset}, baseLine, baseCol)
	p, ok := m[offset]
	return p, ok
}
