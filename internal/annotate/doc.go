// Package annotate maps externally-reported error spans onto live
// buffer positions and manages the resulting highlight annotations.
//
// Error spans arrive as rune offsets into the exact text snapshot the
// checker was given. MapOffsets converts a whole batch of offsets to
// line/column positions in a single scan; Manager turns spans into
// annotations, answers hover queries and retires complete batches at
// once, so highlights from two different checks never coexist.
package annotate
